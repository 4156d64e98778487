// Package placement decides where a single room goes, given rooms that are
// already placed and the relationships between them.
//
// # Components
//
//   - [Scorer]: rates one candidate position with five weighted objectives
//     (no-overlap, adjacency-distance fit, similarity clustering, flow-path
//     efficiency, cleanroom-zone cohesion). Scores lie in [0,1].
//   - [Generator]: proposes a bounded, grid-snapped, de-duplicated list of
//     candidate positions around related rooms, around the centroid of
//     same-class rooms and in empty grid cells.
//   - [Placer]: generates candidates, scores them concurrently and keeps the
//     best one. Used to add rooms to an existing layout one at a time.
//
// The first room of an empty layout goes to the canvas centre and is never
// scored.
//
// All types here are immutable after construction and safe for concurrent
// use; they only read the rooms and relationships they are given.
package placement
