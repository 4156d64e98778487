// Package pkg provides the core libraries for gmplayout, a generator for
// GMP-compliant pharmaceutical cleanroom layouts.
//
// # Overview
//
// gmplayout places the rooms of a manufacturing facility on a 2D canvas so
// that required adjacencies, material and personnel flows and separations
// are respected, then checks the result against EU GMP Annex 1, FDA, WHO
// and PIC/S rules. The pkg directory is organized into four main areas:
//
//  1. Domain model - [facility], [geom], [catalog]
//  2. Layout - [simulate], [placement]
//  3. Checking - [compliance]
//  4. Orchestration and I/O - [pipeline], [graph], [render], [store], [cache]
//
// # Architecture
//
// The typical data flow through gmplayout:
//
//	Request (template, room types or description)
//	         ↓
//	    [interpret] package (optional, free text → structured request)
//	         ↓
//	    [pipeline] package (assemble rooms, infer relationships, zone)
//	         ↓
//	    [simulate] package (force-directed positioning)
//	         ↓
//	    [compliance] package (rule evaluation → report)
//	         ↓
//	    JSON/DOT/SVG/PDF/PNG output
//
// # Quick Start
//
// Generate a sterile injectable facility and check it:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/gmplayout/pkg/cache"
//	    "github.com/matzehuels/gmplayout/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	res, err := runner.Generate(context.Background(), pipeline.Request{
//	    FacilityType: "sterile",
//	    Jurisdiction: "EU",
//	})
//	fmt.Println(res.Compliance.Summary)
//
// # Main Packages
//
// [facility] - Rooms, relationships and the layout aggregate with its
// validation and lookup index.
//
// [catalog] - The embedded room-type catalog and facility templates.
//
// [simulate] - Deterministic force-directed simulator with grid snapping
// and overlap resolution. Styles map to tuned parameter sets.
//
// [placement] - Incremental placement of one room into an existing layout
// by scoring candidate positions.
//
// [compliance] - The rulebook, per-jurisdiction selection and the rule
// evaluators that produce a [compliance.Report].
//
// [interpret] - Free-text facility descriptions to structured requests
// through an OpenAI chat model.
//
// [pipeline] - Request validation, assembly, relationship inference,
// positioning, checking and metrics, with result caching.
//
// [graph] - JSON wire formats for layouts and results.
//
// [render] - DOT output and SVG/PDF/PNG rendering.
//
// [store] - Layout persistence (file, memory, MongoDB) and pattern queries.
//
// [cache] - Result caching (file, Redis, null) with TTLs and retries.
//
// [config] - TOML configuration with environment overrides.
//
// [facility]: https://pkg.go.dev/github.com/matzehuels/gmplayout/pkg/facility
// [geom]: https://pkg.go.dev/github.com/matzehuels/gmplayout/pkg/geom
// [catalog]: https://pkg.go.dev/github.com/matzehuels/gmplayout/pkg/catalog
// [simulate]: https://pkg.go.dev/github.com/matzehuels/gmplayout/pkg/simulate
// [placement]: https://pkg.go.dev/github.com/matzehuels/gmplayout/pkg/placement
// [compliance]: https://pkg.go.dev/github.com/matzehuels/gmplayout/pkg/compliance
// [compliance.Report]: https://pkg.go.dev/github.com/matzehuels/gmplayout/pkg/compliance#Report
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/gmplayout/pkg/pipeline
// [graph]: https://pkg.go.dev/github.com/matzehuels/gmplayout/pkg/graph
// [render]: https://pkg.go.dev/github.com/matzehuels/gmplayout/pkg/render
// [store]: https://pkg.go.dev/github.com/matzehuels/gmplayout/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/gmplayout/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/gmplayout/pkg/config
// [interpret]: https://pkg.go.dev/github.com/matzehuels/gmplayout/pkg/interpret
package pkg
