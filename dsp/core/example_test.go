package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-leaf/dsp/core"
	leaflog "github.com/cwbudde/algo-leaf/internal/log"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(44100),
		core.WithBlockSize(256),
	)

	fmt.Printf("sampleRate=%.0f blockSize=%d\n", cfg.SampleRate, cfg.BlockSize)

	// Output:
	// sampleRate=44100 blockSize=256
}

func ExampleMix() {
	buf := make([]float64, 4)
	copied := core.CopyInto(buf, []float64{1, 2})
	core.Mix(buf[1:], []float64{1, 1, 1}, 0.5)
	fmt.Println(copied, buf)

	core.Zero(buf[:2])
	fmt.Println(buf)

	// Output:
	// 2 [1 2.5 0.5 0.5]
	// [0 0 0.5 0.5]
}

func ExampleNewContext() {
	ctx, err := core.NewContext(1<<16,
		core.WithProcessorOptions(core.WithSampleRate(44100), core.WithBlockSize(128)),
		core.WithLogger(leaflog.Discard()),
	)
	if err != nil {
		panic(err)
	}

	fmt.Println(ctx.SampleRate(), ctx.BlockSize(), ctx.Pool().Size())

	// Output:
	// 44100 128 65536
}
