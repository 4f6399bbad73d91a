// Package svf implements the trapezoidal (topology-preserving) state-variable
// filter.
//
// One pair of integrator states produces lowpass, bandpass and highpass taps
// at once; the filter [Type] selects how the taps are mixed:
//
//	y = CH*x + CB*band + CL*low
//
// The cutoff prewarp is g = tan(pi*fc/sr) and damping is k = 1/Q. Cutoff is
// clamped below 0.4999*sr, so the filter stays stable for any setting.
//
// Integrator states live in a block of the context memory pool. Setters
// recompute coefficients only and never touch the states, so parameters can
// be modulated per sample without clicks from a reset.
package svf
