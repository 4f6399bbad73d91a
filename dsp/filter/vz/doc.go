// Package vz implements Vadim Zavalishin's zero-delay-feedback state-variable
// filter with the full set of derived responses: bypass, lowpass, highpass,
// two bandpass flavours, band reject, bell, both shelves, allpass and a
// continuous lowpass-bandpass-highpass morph.
//
// Responses are mixes of the three outputs of one trapezoidal SVF core:
//
//	y = CL*low + CB*band + CH*high
//
// Bandwidth based types take their damping from a bandwidth in octaves,
// the others from Q. [CoefficientsFor] is a pure function so the mixes can
// be inspected and tested without a running filter.
package vz
