package core

import "github.com/sirupsen/logrus"

// ProcessorConfig defines common DSP processing settings.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns sensible defaults for offline and streaming use.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 48000,
		BlockSize:  1024,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the processing block size.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

type contextConfig struct {
	processor []ProcessorOption
	random    func() float64
	logger    *logrus.Logger
	memory    []byte
}

// ContextOption mutates the settings used by NewContext.
type ContextOption func(*contextConfig)

// WithProcessorOptions forwards sample rate and block size options.
func WithProcessorOptions(opts ...ProcessorOption) ContextOption {
	return func(cfg *contextConfig) {
		cfg.processor = append(cfg.processor, opts...)
	}
}

// WithRandom installs the host random source. The function must return
// values in [0, 1).
func WithRandom(random func() float64) ContextOption {
	return func(cfg *contextConfig) {
		if random != nil {
			cfg.random = random
		}
	}
}

// WithLogger sets the logger used for setup-time diagnostics.
func WithLogger(logger *logrus.Logger) ContextOption {
	return func(cfg *contextConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithMemory makes the context pool manage buf instead of allocating its
// own arena. The memorySize argument of NewContext is ignored.
func WithMemory(buf []byte) ContextOption {
	return func(cfg *contextConfig) {
		cfg.memory = buf
	}
}
