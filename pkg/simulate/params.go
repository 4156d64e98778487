package simulate

import "github.com/matzehuels/gmplayout/pkg/geom"

// Defaults for [Params].
const (
	DefaultCanvasWidth       = 1200.0
	DefaultCanvasHeight      = 800.0
	DefaultPadding           = 40.0
	DefaultGridSize          = 20.0
	DefaultClearance         = 10.0
	DefaultIterations        = 100
	DefaultDamping           = 0.8
	DefaultRepulsion         = 400000.0
	DefaultAttraction        = 0.1
	DefaultMaxStep           = 40.0
	DefaultThreshold         = 0.5
	DefaultParallelThreshold = 32
	DefaultResolvePasses     = 50
)

// Params configures a [Simulator].
type Params struct {
	Canvas    geom.Canvas
	GridSize  float64
	Clearance float64

	// Iterations caps the number of relaxation ticks.
	Iterations int
	// Damping multiplies the velocity every tick.
	Damping float64
	// Repulsion is the Coulomb constant between every pair of rooms.
	Repulsion float64
	// Attraction is the spring constant along relationship edges.
	Attraction float64
	// MaxStep caps how far a room moves in one tick.
	MaxStep float64
	// Threshold stops the run once no room moves further in a tick.
	Threshold float64

	// Seed drives the random styles. Zero picks a time-derived seed.
	Seed uint64

	// ParallelThreshold is the room count from which repulsion is computed
	// concurrently.
	ParallelThreshold int
	// ResolvePasses caps the overlap resolution sweeps.
	ResolvePasses int
}

// DefaultParams returns the default simulation parameters.
func DefaultParams() Params {
	return Params{
		Canvas: geom.Canvas{
			Width:   DefaultCanvasWidth,
			Height:  DefaultCanvasHeight,
			Padding: DefaultPadding,
		},
		GridSize:          DefaultGridSize,
		Clearance:         DefaultClearance,
		Iterations:        DefaultIterations,
		Damping:           DefaultDamping,
		Repulsion:         DefaultRepulsion,
		Attraction:        DefaultAttraction,
		MaxStep:           DefaultMaxStep,
		Threshold:         DefaultThreshold,
		ParallelThreshold: DefaultParallelThreshold,
		ResolvePasses:     DefaultResolvePasses,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p == (Params{}) {
		return d
	}
	if p.Canvas.Width <= 0 || p.Canvas.Height <= 0 {
		p.Canvas = d.Canvas
	}
	if p.GridSize <= 0 {
		p.GridSize = d.GridSize
	}
	if p.Clearance < 0 {
		p.Clearance = d.Clearance
	}
	if p.Iterations <= 0 {
		p.Iterations = d.Iterations
	}
	if p.Damping <= 0 || p.Damping >= 1 {
		p.Damping = d.Damping
	}
	if p.Repulsion <= 0 {
		p.Repulsion = d.Repulsion
	}
	if p.Attraction <= 0 {
		p.Attraction = d.Attraction
	}
	if p.MaxStep <= 0 {
		p.MaxStep = d.MaxStep
	}
	if p.Threshold <= 0 {
		p.Threshold = d.Threshold
	}
	if p.ParallelThreshold <= 0 {
		p.ParallelThreshold = d.ParallelThreshold
	}
	if p.ResolvePasses <= 0 {
		p.ResolvePasses = d.ResolvePasses
	}
	return p
}
