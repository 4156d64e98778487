package compliance

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/gmplayout/pkg/catalog"
	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/geom"
)

func newRoom(id, name string, cat facility.Category, class facility.CleanroomClass) *facility.Room {
	return &facility.Room{ID: id, Name: name, Category: cat, Class: class, Size: geom.Size{W: 100, H: 100}}
}

func adj(a, b string) facility.Relationship {
	return facility.Relationship{Type: facility.AdjacentTo, Source: a, Target: b}
}

func mustEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := DefaultEngine()
	if err != nil {
		t.Fatalf("DefaultEngine: %v", err)
	}
	return e
}

func resultFor(t *testing.T, rep *Report, id string) CheckResult {
	t.Helper()
	for _, r := range rep.Results {
		if r.RuleID == id {
			return r
		}
	}
	t.Fatalf("no result for %s", id)
	return CheckResult{}
}

func TestRulebook(t *testing.T) {
	b := MustDefaultRulebook()
	if len(b.Applicable(JurisdictionEU)) != 9 {
		t.Errorf("EU checkable rules = %d, want 9", len(b.Applicable(JurisdictionEU)))
	}
	if len(b.Applicable(JurisdictionUS)) != 6 {
		t.Errorf("US checkable rules = %d, want 6", len(b.Applicable(JurisdictionUS)))
	}
	for _, r := range b.Reference(JurisdictionUS) {
		if r.Checkable {
			t.Errorf("reference rule %s is checkable", r.ID)
		}
	}

	r, ok := b.Rule("airlock-adequacy")
	if !ok {
		t.Fatal("missing airlock-adequacy")
	}
	r.Jurisdictions[0] = "MARS"
	again, _ := b.Rule("airlock-adequacy")
	if again.Jurisdictions[0] != JurisdictionGlobal {
		t.Error("Rule returned shared state")
	}
}

func TestLoadRulebookRejects(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"bad severity", `[[rules]]
id = "x"
severity = "fatal"
jurisdictions = ["EU"]`},
		{"bad jurisdiction", `[[rules]]
id = "x"
severity = "minor"
jurisdictions = ["MARS"]`},
		{"duplicate", `[[rules]]
id = "x"
severity = "minor"
jurisdictions = ["EU"]
[[rules]]
id = "x"
severity = "minor"
jurisdictions = ["EU"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadRulebook(strings.NewReader(tt.toml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewEngineMissingEvaluator(t *testing.T) {
	reg := DefaultRegistry()
	delete(reg, "waste-separation")
	_, err := NewEngine(MustDefaultRulebook(), reg)
	if !errors.Is(err, ErrMissingEvaluator) {
		t.Errorf("err = %v, want ErrMissingEvaluator", err)
	}
}

func TestRuleCountInvariant(t *testing.T) {
	e := mustEngine(t)
	l := facility.NewLayout("mixed")
	_ = l.AddRoom(newRoom("fill", "Aseptic Filling", facility.CategoryProduction, facility.ClassA))
	_ = l.AddRoom(newRoom("wh", "Warehouse", facility.CategoryWarehouse, facility.ClassNone))
	_ = l.AddRoom(newRoom("wc", "Washroom", facility.CategoryPersonnel, facility.ClassNone))
	_ = l.AddRelationship(adj("wc", "wh"))

	for _, zone := range Jurisdictions {
		t.Run(string(zone), func(t *testing.T) {
			rep, err := e.Check(context.Background(), l, zone)
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if rep.Passed+rep.Failed != rep.TotalChecks {
				t.Errorf("passed %d + failed %d != total %d", rep.Passed, rep.Failed, rep.TotalChecks)
			}
			if want := len(e.Rulebook().Applicable(zone)); rep.TotalChecks != want {
				t.Errorf("TotalChecks = %d, want %d", rep.TotalChecks, want)
			}
			if rep.Warnings > rep.Failed {
				t.Errorf("Warnings %d exceed Failed %d", rep.Warnings, rep.Failed)
			}
		})
	}
}

func TestClassAWithoutAirlock(t *testing.T) {
	l := facility.NewLayout("bare")
	_ = l.AddRoom(newRoom("fill", "Aseptic Filling", facility.CategoryProduction, facility.ClassA))

	rep, err := mustEngine(t).Check(context.Background(), l, JurisdictionEU)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	res := resultFor(t, rep, "airlock-adequacy")
	if res.Passed {
		t.Fatal("airlock-adequacy passed")
	}
	if !slices.Contains(res.Affected, "fill") {
		t.Errorf("Affected = %v, want fill", res.Affected)
	}
	if res.Remediation == "" || !res.AutoFix {
		t.Errorf("result = %+v, want remediation and auto fix", res)
	}
	if !strings.HasPrefix(rep.Summary, "Non-compliant") {
		t.Errorf("Summary = %q, want critical wording", rep.Summary)
	}
}

func TestDirectAToDAdjacency(t *testing.T) {
	l := facility.NewLayout("a-to-d")
	_ = l.AddRoom(newRoom("fill", "Aseptic Filling", facility.CategoryProduction, facility.ClassA))
	_ = l.AddRoom(newRoom("pack", "Packaging", facility.CategoryProduction, facility.ClassD))
	_ = l.AddRelationship(adj("fill", "pack"))

	rep, err := mustEngine(t).Check(context.Background(), l, JurisdictionEU)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	res := resultFor(t, rep, "cleanroom-progression")
	if res.Passed {
		t.Fatal("cleanroom-progression passed")
	}
	slices.Sort(res.Affected)
	if !slices.Equal(res.Affected, []string{"fill", "pack"}) {
		t.Errorf("Affected = %v, want [fill pack]", res.Affected)
	}
}

func TestCheckIdempotent(t *testing.T) {
	ticks := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	e, err := DefaultEngine(WithClock(func() time.Time {
		ticks = ticks.Add(time.Second)
		return ticks
	}))
	if err != nil {
		t.Fatalf("DefaultEngine: %v", err)
	}
	l := facility.NewLayout("twice")
	_ = l.AddRoom(newRoom("fill", "Aseptic Filling", facility.CategoryProduction, facility.ClassA))
	_ = l.AddRoom(newRoom("qc", "QC Lab", facility.CategoryQualityControl, facility.ClassNone))
	_ = l.AddRoom(newRoom("waste", "Waste Disposal", facility.CategorySupport, facility.ClassNone))
	_ = l.AddRelationship(adj("qc", "fill"))
	_ = l.AddRelationship(adj("waste", "fill"))

	first, _ := e.Check(context.Background(), l, JurisdictionEU)
	second, _ := e.Check(context.Background(), l, JurisdictionEU)
	if first.CheckedAt.Equal(second.CheckedAt) {
		t.Fatal("clock not advanced")
	}
	if !first.Equal(second) {
		t.Errorf("reports differ:\n%+v\n%+v", first, second)
	}
}

func TestCheckUnknownJurisdiction(t *testing.T) {
	_, err := mustEngine(t).Check(context.Background(), facility.NewLayout("x"), "MARS")
	if !errors.Is(err, ErrUnknownJurisdiction) {
		t.Errorf("err = %v, want ErrUnknownJurisdiction", err)
	}
}

func TestEmptyRulebookScores100(t *testing.T) {
	book, err := LoadRulebook(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadRulebook: %v", err)
	}
	e, err := NewEngine(book, Registry{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	rep, err := e.Check(context.Background(), facility.NewLayout("empty"), JurisdictionEU)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if rep.Score != 100 || rep.TotalChecks != 0 {
		t.Errorf("report = %+v, want score 100 with no checks", rep)
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		passed, total, want int
	}{
		{0, 0, 100},
		{2, 3, 67},
		{1, 3, 33},
		{1, 2, 50},
		{9, 9, 100},
	}
	for _, tt := range tests {
		if got := score(tt.passed, tt.total); got != tt.want {
			t.Errorf("score(%d, %d) = %d, want %d", tt.passed, tt.total, got, tt.want)
		}
	}
}

func TestSterileTemplateCompliant(t *testing.T) {
	cat := catalog.MustDefault()
	tpl, ok := cat.Template("sterile-injectable")
	if !ok {
		t.Fatal("missing sterile-injectable template")
	}
	l := facility.NewLayout(tpl.Name)
	for _, id := range tpl.Rooms {
		r, err := cat.NewRoom(id, id)
		if err != nil {
			t.Fatalf("NewRoom(%s): %v", id, err)
		}
		if err := l.AddRoom(r); err != nil {
			t.Fatalf("AddRoom: %v", err)
		}
	}
	for _, tr := range tpl.Relationships {
		rel := facility.Relationship{Type: tr.Type, Source: tr.Source, Target: tr.Target, Priority: tr.Priority}
		if err := l.AddRelationship(rel); err != nil {
			t.Fatalf("AddRelationship: %v", err)
		}
	}

	rep, err := mustEngine(t).Check(context.Background(), l, JurisdictionEU)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	for _, f := range rep.Failures() {
		t.Errorf("%s failed: %s", f.RuleID, f.Message)
	}
}
