package vz_test

import (
	"fmt"

	"github.com/cwbudde/algo-leaf/dsp/filter/vz"
)

func ExampleCoefficientsFor() {
	c := vz.CoefficientsFor(vz.Morph, vz.Params{G: 0.1, Q: 1, Morph: 0.5})
	fmt.Printf("CL=%.1f CB=%.1f CH=%.1f\n", c.CL, c.CB, c.CH)

	// Output:
	// CL=0.0 CB=1.0 CH=0.0
}
