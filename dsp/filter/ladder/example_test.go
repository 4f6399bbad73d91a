package ladder_test

import (
	"fmt"

	"github.com/cwbudde/algo-leaf/dsp/core"
	"github.com/cwbudde/algo-leaf/dsp/filter/ladder"
	leaflog "github.com/cwbudde/algo-leaf/internal/log"
)

func ExampleTransistor() {
	ctx, err := core.NewContext(1024, core.WithLogger(leaflog.Discard()))
	if err != nil {
		panic(err)
	}

	lp, err := ladder.NewTransistor(ctx, 800, 1)
	if err != nil {
		panic(err)
	}

	var y float64
	for range 20000 {
		y = lp.Tick(0.01)
	}

	// resonance k trades passband level for the peak: DC gain is 1/(1+k)
	fmt.Printf("%.4f\n", y)

	// Output:
	// 0.0050
}
