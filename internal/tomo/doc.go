// Package tomo implements the sparse-channel tomographic protocol engine.
//
// The engine maintains four parallel channel lanes (primary, verification,
// transit, derived) over a sparse 3D index space. One quarter of the
// logical slots are active per lane; the derived lane is always computed
// from primary and verification, which gives the 1/4 + 1/4 = 1/2 shared
// data model. Cell values come from odd-harmonic Fourier square-wave
// synthesis, each cell carries an analytic derivative trace, and a
// protocol cycle samples the grid at the six permutations of the current
// tomographic index to produce a packet and a risk-balance verdict.
//
// Everything here is single-writer, synchronous, and deterministic for a
// fixed RNG seed. Grid refreshes are all-or-nothing: a failed refresh
// leaves the grid at its pre-call snapshot.
package tomo
