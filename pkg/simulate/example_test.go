package simulate_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/geom"
	"github.com/matzehuels/gmplayout/pkg/simulate"
)

func ExampleSimulator_Simulate() {
	lobby := &facility.Room{ID: "lobby", Name: "Lobby", Size: geom.Size{W: 100, H: 60}}

	sim := simulate.New(simulate.DefaultParams())
	res, err := sim.Simulate(context.Background(), []*facility.Room{lobby}, nil,
		map[string]geom.Point{"lobby": {X: 305, Y: 207}}, simulate.StyleGrid)
	if err != nil {
		panic(err)
	}
	p := res.Positions["lobby"]
	fmt.Printf("lobby at (%.0f, %.0f), converged=%v\n", p.X, p.Y, res.Converged)
	// Output: lobby at (300, 200), converged=true
}
