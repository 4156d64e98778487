package graph_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/gmplayout/pkg/graph"
)

func ExampleReadLayout() {
	data := `{
	  "nodes": [
	    {"id": "dispensing", "category": "Production", "class": "D", "width": 120, "height": 100},
	    {"id": "granulation", "category": "Production", "class": "D", "width": 160, "height": 120}
	  ],
	  "edges": [{"from": "dispensing", "to": "granulation", "type": "MATERIAL_FLOW"}]
	}`
	l, err := graph.ReadLayout(strings.NewReader(data))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(l.RoomCount(), "rooms")
	fmt.Println(l.Relationships[0].Source, "->", l.Relationships[0].Target, l.Relationships[0].Priority)
	// Output:
	// 2 rooms
	// dispensing -> granulation 5
}
