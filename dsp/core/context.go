package core

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-leaf/dsp/mempool"
	"github.com/cwbudde/algo-leaf/dsp/tables"
	leaflog "github.com/cwbudde/algo-leaf/internal/log"
)

// ErrInvalidSampleRate is returned for sample rates that are not finite and
// positive.
var ErrInvalidSampleRate = errors.New("core: sample rate must be finite and > 0")

// Context carries the per-instance processing state shared by every object
// created against it: sample rate, block size, random source and the default
// memory pool.
//
// Objects copy what they need from the Context at construction. Changing the
// sample rate later does not reach existing objects; each object has its own
// SetSampleRate.
type Context struct {
	sampleRate              float64
	invSampleRate           float64
	twoPiTimesInvSampleRate float64
	blockSize               int

	random func() float64
	pool   *mempool.Pool
	tan    *tables.TanTable
	logger *logrus.Logger
}

// NewContext creates a context whose default pool spans memorySize bytes.
func NewContext(memorySize int, opts ...ContextOption) (*Context, error) {
	var cfg contextConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	proc := ApplyProcessorOptions(cfg.processor...)
	if !validSampleRate(proc.SampleRate) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, proc.SampleRate)
	}

	if cfg.logger == nil {
		cfg.logger = leaflog.GetLogger()
	}

	if cfg.random == nil {
		cfg.random = rand.New(rand.NewPCG(0x1eaf, 0x5eed)).Float64
	}

	poolOpts := []mempool.Option{mempool.WithName("leaf"), mempool.WithLogger(cfg.logger)}

	var (
		pool *mempool.Pool
		err  error
	)
	if cfg.memory != nil {
		pool, err = mempool.NewFromBuffer(cfg.memory, poolOpts...)
	} else {
		pool, err = mempool.New(memorySize, poolOpts...)
	}
	if err != nil {
		return nil, fmt.Errorf("core: default pool: %w", err)
	}

	c := &Context{
		blockSize: proc.BlockSize,
		random:    cfg.random,
		pool:      pool,
		logger:    cfg.logger,
	}
	c.applySampleRate(proc.SampleRate)

	c.logger.WithFields(logrus.Fields{
		"sampleRate": c.sampleRate,
		"blockSize":  c.blockSize,
		"memory":     pool.Size(),
		"pool":       pool.ID(),
	}).Info("core: context created")

	return c, nil
}

// SampleRate returns the context sample rate in Hz.
func (c *Context) SampleRate() float64 { return c.sampleRate }

// InvSampleRate returns 1/SampleRate.
func (c *Context) InvSampleRate() float64 { return c.invSampleRate }

// TwoPiTimesInvSampleRate returns 2*pi/SampleRate.
func (c *Context) TwoPiTimesInvSampleRate() float64 { return c.twoPiTimesInvSampleRate }

// BlockSize returns the nominal host block size.
func (c *Context) BlockSize() int { return c.blockSize }

// Random draws one value in [0, 1) from the context random source.
func (c *Context) Random() float64 { return c.random() }

// Pool returns the default memory pool.
func (c *Context) Pool() *mempool.Pool { return c.pool }

// TanTable returns the prewarped filter gain table for the current rate.
func (c *Context) TanTable() *tables.TanTable { return c.tan }

// Logger returns the setup-time logger.
func (c *Context) Logger() *logrus.Logger { return c.logger }

// SetSampleRate changes the context rate and rebuilds its tangent table.
// Objects created earlier keep their own rate.
func (c *Context) SetSampleRate(sampleRate float64) error {
	if !validSampleRate(sampleRate) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	c.applySampleRate(sampleRate)
	c.logger.WithField("sampleRate", sampleRate).Debug("core: sample rate changed")

	return nil
}

func (c *Context) applySampleRate(sampleRate float64) {
	c.sampleRate = sampleRate
	c.invSampleRate = 1 / sampleRate
	c.twoPiTimesInvSampleRate = 2 * math.Pi / sampleRate
	c.tan = tables.NewTanTable(sampleRate)
}

func validSampleRate(sampleRate float64) bool {
	return sampleRate > 0 && !math.IsInf(sampleRate, 0)
}
