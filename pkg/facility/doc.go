// Package facility defines the room/relationship graph of a cleanroom layout.
//
// A [Layout] holds [Room] values (functional areas) and directed
// [Relationship] edges between them. The same graph is consumed by the
// force-directed simulator, the placement scorer and the compliance engine,
// so this package is the shared vocabulary of the whole module.
//
// # Building a layout
//
//	l := facility.NewLayout("Oral solids plant")
//	_ = l.AddRoom(&facility.Room{ID: "gran", Name: "Granulation", Category: facility.CategoryProduction, Class: facility.ClassD})
//	_ = l.AddRoom(&facility.Room{ID: "comp", Name: "Compression", Category: facility.CategoryProduction, Class: facility.ClassD})
//	_ = l.AddRelationship(facility.Relationship{Type: facility.MaterialFlow, Source: "gran", Target: "comp"})
//
// AddRoom and AddRelationship enforce the layout invariants: room ids are
// unique and non-empty, and relationship endpoints resolve inside the same
// layout. A layout decoded from JSON is checked with [Layout.Validate].
//
// # Positions
//
// Room positions are the centre of the room footprint and stay nil until the
// simulator or the placer assigns them. Only those two components mutate
// position fields; everything else treats a layout as read-only.
//
// # Concurrency
//
// A Layout is not safe for concurrent mutation. Concurrent reads (scoring,
// rule evaluation) are safe once construction has finished.
package facility
