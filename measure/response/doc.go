// Package response measures the linear behaviour of per-sample processors.
//
// A processor is excited with a unit impulse, the captured impulse response
// is transformed with an FFT, and the one-sided magnitude spectrum is kept
// for frequency lookups:
//
//	resp, err := response.MagnitudeResponse(filter, 8192, 48000)
//	gain := resp.AtDB(1000)
//
// The helpers are meant for offline checks and tests. They allocate and must
// not be called from an audio callback.
package response
