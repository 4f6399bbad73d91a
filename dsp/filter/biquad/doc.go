// Package biquad provides a second-order IIR section with pool-resident
// state, the general building block behind resonators and notches.
//
// A [BiQuad] runs Direct Form II Transposed over [Coefficients]. Besides
// raw coefficients it offers the classic pole/zero placements: a resonance
// pole pair ([BiQuad.SetResonance]), a notch zero pair ([BiQuad.SetNotch])
// and equal-gain zeros at DC and Nyquist.
//
// Frequency and pole/zero analysis helpers work on Coefficients alone and
// do not touch filter state.
package biquad
