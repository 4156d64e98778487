package dot

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/geom"
)

func plan(t *testing.T) *facility.Layout {
	t.Helper()
	l := facility.NewLayout("Sterile suite")
	rooms := []*facility.Room{
		{ID: "filling", Name: "Aseptic Filling", Type: "aseptic-filling", Class: facility.ClassA, Size: geom.Size{W: 200, H: 160}},
		{ID: "pal", Name: "Personnel Airlock", Class: facility.ClassB, Size: geom.Size{W: 80, H: 60}},
		{ID: "waste", Name: "Waste", Size: geom.Size{W: 60, H: 60}},
	}
	rooms[0].SetPosition(geom.Point{X: 300, Y: 200})
	rooms[1].SetPosition(geom.Point{X: 450, Y: 200})
	for _, r := range rooms {
		if err := l.AddRoom(r); err != nil {
			t.Fatal(err)
		}
	}
	for _, rel := range []facility.Relationship{
		{Type: facility.AdjacentTo, Source: "pal", Target: "filling"},
		{Type: facility.PersonnelFlow, Source: "pal", Target: "filling"},
		{Type: facility.ProhibitedNear, Source: "waste", Target: "filling"},
	} {
		if err := l.AddRelationship(rel); err != nil {
			t.Fatal(err)
		}
	}
	return l
}

func TestToDOT(t *testing.T) {
	src := ToDOT(plan(t), Options{Detailed: true})

	for _, want := range []string{
		"graph G {",
		"layout=neato;",
		`label="Sterile suite";`,
		`"filling" [label="Aseptic Filling\naseptic-filling\nGrade A", pos="300,80!"`,
		`fillcolor="#d7263d", fontcolor=white`,
		`"pal" -- "filling" [color="#888888", dir=none];`,
		`"pal" -- "filling" [color="#33a02c", style=dashed, dir=forward];`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("DOT missing %q\n%s", want, src)
		}
	}
	if strings.Contains(src, `"waste"`) {
		t.Error("unplaced room and its relationships should be skipped")
	}
}

func TestToDOTHideRelationships(t *testing.T) {
	src := ToDOT(plan(t), Options{HideRelationships: true, Title: "Plan"})
	if strings.Contains(src, " -- ") {
		t.Error("edges rendered with HideRelationships")
	}
	if !strings.Contains(src, `label="Plan";`) {
		t.Error("title not applied")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="400pt" height="300pt" viewBox="0.00 0.00 400.00 300.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 400.00 300.00" width="400" height="300"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox = %s", got)
	}
	if plain := []byte("<svg></svg>"); !bytes.Equal(normalizeViewBox(plain), plain) {
		t.Error("svg without viewBox should pass through")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(plan(t), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("Aseptic Filling")) {
		t.Errorf("unexpected SVG: %.200s", svg)
	}
}
