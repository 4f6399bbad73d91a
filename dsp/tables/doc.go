// Package tables provides the precomputed lookup tables that replace
// transcendental calls in per-sample code: a sine table, tanh and exp-decay
// curves, band-limited sawtooth/triangle/square wavetable sets and the
// filter-tangent table used by the fast frequency setters.
//
// Sample-rate independent tables are built once per process. The tangent
// table depends on the sample rate and is built per context by NewTanTable.
// All lookups use linear interpolation.
package tables
