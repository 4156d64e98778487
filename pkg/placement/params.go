package placement

import "github.com/matzehuels/gmplayout/pkg/geom"

// Objective weights. The aggregate score divides the weighted sum by the
// number of objectives.
const (
	WeightOverlap    = 1.0
	WeightAdjacency  = 0.8
	WeightSimilarity = 0.6
	WeightFlow       = 0.5
	WeightZone       = 0.7

	objectiveCount = 5
)

// Defaults for [Params].
const (
	DefaultCanvasWidth   = 1200.0
	DefaultCanvasHeight  = 800.0
	DefaultPadding       = 40.0
	DefaultGridSize      = 20.0
	DefaultIdealSpacing  = 150.0
	DefaultClearance     = 10.0
	DefaultScanStep      = 100.0
	DefaultMaxAnchors    = 3
	DefaultMaxGridCells  = 10
	DefaultParallelScore = 8
)

// Params configures the scorer, the generator and the placer.
type Params struct {
	Canvas geom.Canvas

	// GridSize is the snapping grid.
	GridSize float64
	// IdealSpacing is the centre-to-centre distance wanted between related
	// rooms; it is also the candidate ring radius.
	IdealSpacing float64
	// Clearance is the minimum gap kept between room footprints.
	Clearance float64
	// ScanStep is the coarse grid used to look for empty cells.
	ScanStep float64
	// MaxAnchors caps how many related rooms candidates are generated around.
	MaxAnchors int
	// MaxGridCells caps how many empty cells are proposed.
	MaxGridCells int
	// ParallelScore is the candidate count from which scoring fans out to
	// goroutines.
	ParallelScore int
}

// DefaultParams returns the default placement parameters.
func DefaultParams() Params {
	return Params{
		Canvas: geom.Canvas{
			Width:   DefaultCanvasWidth,
			Height:  DefaultCanvasHeight,
			Padding: DefaultPadding,
		},
		GridSize:      DefaultGridSize,
		IdealSpacing:  DefaultIdealSpacing,
		Clearance:     DefaultClearance,
		ScanStep:      DefaultScanStep,
		MaxAnchors:    DefaultMaxAnchors,
		MaxGridCells:  DefaultMaxGridCells,
		ParallelScore: DefaultParallelScore,
	}
}

// withDefaults fills zero fields from DefaultParams.
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
	if p.IdealSpacing <= 0 {
		p.IdealSpacing = d.IdealSpacing
	}
	if p.Clearance < 0 {
		p.Clearance = d.Clearance
	}
	if p.ScanStep <= 0 {
		p.ScanStep = d.ScanStep
	}
	if p.MaxAnchors <= 0 {
		p.MaxAnchors = d.MaxAnchors
	}
	if p.MaxGridCells <= 0 {
		p.MaxGridCells = d.MaxGridCells
	}
	if p.ParallelScore <= 0 {
		p.ParallelScore = d.ParallelScore
	}
	return p
}
