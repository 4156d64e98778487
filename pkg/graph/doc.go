// Package graph provides the wire formats for layouts and generation
// results.
//
// Two layout encodings are accepted:
//
//   - the layout document, the JSON form of facility.Layout
//     ({"id", "name", "rooms", "relationships", ...})
//
//   - the node-link form used by graph stores and other tools, where rooms
//     are nodes and relationships are edges:
//
//     {
//     "nodes": [{"id": "dispensing", "category": "Production", "class": "D"}],
//     "edges": [{"from": "dispensing", "to": "granulation", "type": "MATERIAL_FLOW"}]
//     }
//
// [ReadLayout] detects the encoding; writers always produce the layout
// document unless [WriteGraph] is asked for node-link output.
//
// Common operations:
//
//	l, _ := graph.ReadLayoutFile("plant.json")   // File → Layout
//	graph.WriteLayoutFile(l, "plant.json")       // Layout → File
//	data, _ := graph.MarshalResult(res)          // Result → []byte
//	g := graph.FromLayout(l)                     // Layout → node-link
//
// Decoded layouts are validated; a layout with duplicate room ids or
// dangling relationships is rejected.
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
