package graph

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/geom"
	"github.com/matzehuels/gmplayout/pkg/pipeline"
)

func sampleLayout(t *testing.T) *facility.Layout {
	t.Helper()
	l := facility.NewLayout("sample")
	rooms := []*facility.Room{
		{ID: "dispensing", Name: "Dispensing", Category: facility.CategoryProduction, Class: facility.ClassD, Size: geom.Size{W: 120, H: 100}},
		{ID: "granulation", Name: "Granulation", Category: facility.CategoryProduction, Class: facility.ClassD, Size: geom.Size{W: 160, H: 120}},
	}
	rooms[0].SetPosition(geom.Point{X: 200, Y: 300})
	for _, r := range rooms {
		if err := l.AddRoom(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := l.AddRelationship(facility.Relationship{
		Type: facility.MaterialFlow, Source: "dispensing", Target: "granulation",
		Priority: 8, FlowDirection: facility.Unidirectional,
	}); err != nil {
		t.Fatal(err)
	}
	return l
}

func TestLayoutFileRoundTrip(t *testing.T) {
	l := sampleLayout(t)
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if got.ID != l.ID || got.RoomCount() != 2 || got.RelationshipCount() != 1 {
		t.Fatalf("got %s with %d rooms, %d relationships", got.ID, got.RoomCount(), got.RelationshipCount())
	}
	r, ok := got.Room("dispensing")
	if !ok || !r.Placed() || r.Center() != (geom.Point{X: 200, Y: 300}) {
		t.Errorf("dispensing = %+v", r)
	}
	if r, _ := got.Room("granulation"); r.Placed() {
		t.Error("granulation should stay unplaced")
	}
}

func TestGraphRoundTrip(t *testing.T) {
	l := sampleLayout(t)
	var buf bytes.Buffer
	if err := WriteGraph(l, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"nodes"`) {
		t.Fatalf("node-link output missing nodes: %s", buf.String())
	}
	got, err := ReadLayout(&buf)
	if err != nil {
		t.Fatalf("ReadLayout: %v", err)
	}
	if got.ID != l.ID || got.Name != "sample" {
		t.Errorf("id/name = %s/%s", got.ID, got.Name)
	}
	rel := got.Relationships[0]
	if rel.Type != facility.MaterialFlow || rel.Priority != 8 || rel.FlowDirection != facility.Unidirectional {
		t.Errorf("relationship = %+v", rel)
	}
	if r, _ := got.Room("dispensing"); r.Name != "Dispensing" || r.Size.W != 120 {
		t.Errorf("room = %+v", r)
	}
}

func TestReadLayoutErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"duplicate room", `{"id":"x","rooms":[{"id":"a"},{"id":"a"}]}`, facility.ErrDuplicateRoomID},
		{"dangling relationship", `{"id":"x","rooms":[{"id":"a"}],"relationships":[{"type":"ADJACENT_TO","source":"a","target":"b"}]}`, facility.ErrUnknownTarget},
		{"graph duplicate node", `{"nodes":[{"id":"a"},{"id":"a"}],"edges":[]}`, facility.ErrDuplicateRoomID},
		{"graph bad edge type", `{"nodes":[{"id":"a"},{"id":"b"}],"edges":[{"from":"a","to":"b","type":"NEAR"}]}`, facility.ErrUnknownRelationType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadLayout(strings.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := ReadLayout(strings.NewReader("not json")); err == nil {
		t.Error("expected decode error")
	}
}

func TestNodeDisplayLabel(t *testing.T) {
	if got := (&Node{ID: "qc"}).DisplayLabel(); got != "qc" {
		t.Errorf("DisplayLabel() = %q", got)
	}
	if got := (&Node{ID: "qc", Label: "QC Lab"}).DisplayLabel(); got != "QC Lab" {
		t.Errorf("DisplayLabel() = %q", got)
	}
}

func TestResultFileRoundTrip(t *testing.T) {
	res := &pipeline.Result{
		Layout:   sampleLayout(t),
		Style:    "grid",
		Warnings: []string{"room type \"teleporter\" is not in the catalog"},
		Metrics:  pipeline.Metrics{TotalArea: 31200, FlowEfficiency: 1},
	}
	path := filepath.Join(t.TempDir(), "result.json")
	if err := WriteResultFile(res, path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadResultFile(path)
	if err != nil {
		t.Fatalf("ReadResultFile: %v", err)
	}
	if got.Style != "grid" || got.Metrics.TotalArea != 31200 || len(got.Warnings) != 1 {
		t.Errorf("result = %+v", got)
	}
	if got.Layout.RoomCount() != 2 {
		t.Errorf("rooms = %d", got.Layout.RoomCount())
	}

	if _, err := UnmarshalResult([]byte(`{"style":"grid"}`)); err == nil {
		t.Error("result without layout should fail")
	}
}
