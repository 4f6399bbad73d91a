// Package pole provides the one-pole and two-pole recursive filters used
// as smoothers, leaky integrators and simple resonators.
//
//	OnePole: y = b0*x - a1*y[n-1]
//	TwoPole: y = b0*x - a1*y[n-1] - a2*y[n-2]
//
// Both apply an input gain before b0, keep their output history in a
// memory pool and follow the usual New, Tick, setters, Reset, Free
// lifecycle.
package pole
