// Package simulate positions a whole room set at once with a force-directed
// relaxation.
//
// Every pair of rooms repels with a Coulomb-like force K/d², and every
// relationship edge pulls its endpoints together with a spring force
// proportional to their distance. PROHIBITED_NEAR edges are the exception:
// they push their endpoints apart instead. Forces accumulate into a damped
// per-room velocity; positions stay inside the padded canvas.
//
// # Styles
//
// The initial arrangement is chosen by a [Style]:
//
//   - [StyleGrid] packs rooms into rows and columns
//   - [StyleCircular] spaces rooms evenly on a ring
//   - [StyleLinear] orders rooms along MATERIAL_FLOW edges, left to right
//   - [StyleRandom] scatters rooms uniformly using [Params.Seed]
//   - [StyleClustered] is random initialisation left to self-organise
//
// All styles except random are deterministic. Random is deterministic for a
// fixed non-zero seed.
//
// # Output
//
// The simulation runs on unsnapped coordinates. Only the final positions are
// snapped to the grid, after which a resolution pass pushes overlapping
// rooms apart in whole grid steps. Overlaps that survive are counted in
// [Result.Overlaps] so callers can widen the canvas and retry.
package simulate
