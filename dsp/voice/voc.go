package voice

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-leaf/dsp/core"
	"github.com/cwbudde/algo-leaf/dsp/filter/svf"
	"github.com/cwbudde/algo-leaf/dsp/mempool"
)

const (
	// DefaultBlockSize is the number of samples rendered per control
	// update.
	DefaultBlockSize = 512
	// MaxConstrictions is the number of simultaneous constriction slots.
	MaxConstrictions = 2

	aspirationFreq = 500.0
	fricativeFreq  = 1000.0
	noiseQ         = 0.5
	outputLimit    = 1.5
	outputScale    = 0.125
)

type config struct {
	sections    int
	maxSections int
	blockSize   int
	freq        float64
	tenseness   float64
}

// Option configures a Voc.
type Option func(*config)

// WithSections sets the initial tract length.
func WithSections(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.sections = n
		}
	}
}

// WithMaxSections sizes the tract storage for later SetTractLength calls.
func WithMaxSections(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxSections = n
		}
	}
}

// WithBlockSize sets the control block length in samples.
func WithBlockSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.blockSize = n
		}
	}
}

// WithFreq sets the initial fundamental in Hz.
func WithFreq(freq float64) Option {
	return func(c *config) { c.freq = freq }
}

// WithTenseness sets the initial tenseness.
func WithTenseness(tenseness float64) Option {
	return func(c *config) { c.tenseness = tenseness }
}

// Voc is a complete voice: glottis, tract and the band-passed aspiration
// and fricative noise sources. Audio is rendered one block ahead and
// handed out one sample per Tick.
type Voc struct {
	glottis *Glottis
	tract   *Tract

	aspiration *svf.SVF
	fricative  *svf.SVF
	random     func() float64

	pool    *mempool.Pool
	handle  mempool.Handle
	buf     []float64
	counter int

	sampleRate     float64
	tongueIndex    float64
	tongueDiameter float64
	constrictions  [MaxConstrictions]Constriction
}

// New creates a voice from the context pool.
func New(ctx *core.Context, opts ...Option) (*Voc, error) {
	return NewToPool(ctx.Pool(), ctx, opts...)
}

// NewToPool creates a voice whose tract, filters and block buffer come
// from pool.
func NewToPool(pool *mempool.Pool, ctx *core.Context, opts ...Option) (*Voc, error) {
	cfg := config{
		sections:  DefaultSections,
		blockSize: DefaultBlockSize,
		freq:      140,
		tenseness: 0.6,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	v := &Voc{
		random:     ctx.Random,
		sampleRate: ctx.SampleRate(),
	}
	if err := v.alloc(pool, ctx, cfg); err != nil {
		return nil, errors.Join(err, v.Free())
	}

	v.glottis = NewGlottis(ctx, cfg.freq, cfg.tenseness)
	v.glottis.SetNoise(v.aspirationNoise)
	v.SetTongueShape(DefaultTongueIndex*float64(v.tract.Sections())/DefaultSections, DefaultTongueDiameter)

	return v, nil
}

func (v *Voc) alloc(pool *mempool.Pool, ctx *core.Context, cfg config) error {
	buf, h, err := mempool.MakeSlice[float64](pool, cfg.blockSize)
	if err != nil {
		return fmt.Errorf("voice: block buffer: %w", err)
	}
	v.pool, v.handle, v.buf = pool, h, buf

	if v.tract, err = NewTractToPool(pool, ctx, cfg.sections, cfg.maxSections); err != nil {
		return err
	}
	if v.aspiration, err = svf.NewToPool(pool, ctx, svf.Bandpass, aspirationFreq, noiseQ); err != nil {
		return fmt.Errorf("voice: aspiration filter: %w", err)
	}
	if v.fricative, err = svf.NewToPool(pool, ctx, svf.Bandpass, fricativeFreq, noiseQ); err != nil {
		return fmt.Errorf("voice: fricative filter: %w", err)
	}

	return nil
}

// Free returns all pool storage. Freeing twice is a no-op.
func (v *Voc) Free() error {
	var errs []error
	if v.tract != nil {
		errs = append(errs, v.tract.Free())
	}
	if v.aspiration != nil {
		errs = append(errs, v.aspiration.Free())
	}
	if v.fricative != nil {
		errs = append(errs, v.fricative.Free())
	}
	if v.pool != nil {
		errs = append(errs, v.pool.Free(v.handle))
		v.pool = nil
		v.buf = nil
	}
	v.tract, v.aspiration, v.fricative = nil, nil, nil

	return errors.Join(errs...)
}

// Tick returns the next output sample, rendering a new block when the
// previous one is used up.
func (v *Voc) Tick() float64 {
	if v.counter == 0 {
		v.renderBlock()
	}

	out := v.buf[v.counter]
	v.counter++
	if v.counter == len(v.buf) {
		v.counter = 0
	}

	return out
}

// ProcessBlock fills dst with output samples.
func (v *Voc) ProcessBlock(dst []float64) {
	for i := range dst {
		dst[i] = v.Tick()
	}
}

func (v *Voc) renderBlock() {
	tr := v.tract
	tr.articulate(v.constrictions[:])
	tr.Reshape(float64(len(v.buf)) / v.sampleRate)
	tr.CalculateReflections()

	n := float64(len(v.buf))
	for i := range v.buf {
		lambda1 := float64(i) / n
		lambda2 := (float64(i) + 0.5) / n

		glot := v.glottis.Compute(lambda1)
		turbulence := v.fricative.Tick(v.white()) * v.glottis.NoiseModulator()

		v.addTurbulence(turbulence)
		tr.Compute(glot, lambda1)
		out := tr.LipOutput() + tr.NoseOutput()

		v.addTurbulence(turbulence)
		tr.Compute(glot, lambda2)
		out += tr.LipOutput() + tr.NoseOutput()

		v.buf[i] = core.Clamp(core.Sanitize(out*outputScale), -outputLimit, outputLimit)
	}

	v.glottis.FinishBlock()
}

func (v *Voc) addTurbulence(noise float64) {
	for _, c := range v.constrictions {
		if c.Active && c.Fricative {
			v.tract.AddTurbulenceNoise(noise, c.Index, c.Diameter)
		}
	}
}

func (v *Voc) white() float64 { return 2*v.random() - 1 }

func (v *Voc) aspirationNoise() float64 { return v.aspiration.Tick(v.white()) }

// SetFreq sets the fundamental in Hz.
func (v *Voc) SetFreq(freq float64) { v.glottis.SetFreq(freq) }

// SetTenseness sets the vocal tenseness in [0, 1].
func (v *Voc) SetTenseness(tenseness float64) { v.glottis.SetTenseness(tenseness) }

// SetVelum sets the nasal opening; 0.01 is closed, 0.4 open.
func (v *Voc) SetVelum(diameter float64) { v.tract.SetVelum(diameter) }

// SetTongueShape places the tongue body at index with the given
// tongue-palate distance.
func (v *Voc) SetTongueShape(index, diameter float64) {
	if !core.IsFinite(index) || !core.IsFinite(diameter) {
		return
	}

	v.tongueIndex = index
	v.tongueDiameter = diameter
	v.tract.ShapeTongue(index, diameter)
}

// TongueShape returns the current tongue index and diameter.
func (v *Voc) TongueShape() (index, diameter float64) {
	return v.tongueIndex, v.tongueDiameter
}

// SetConstriction activates constriction slot with the given position
// and diameter. Slots outside [0, MaxConstrictions) are ignored.
func (v *Voc) SetConstriction(slot int, index, diameter float64, fricative bool) {
	if slot < 0 || slot >= MaxConstrictions || !core.IsFinite(index) || !core.IsFinite(diameter) {
		return
	}

	v.constrictions[slot] = Constriction{
		Index:     index,
		Diameter:  diameter,
		Fricative: fricative,
		Active:    true,
	}
}

// ClearConstriction releases constriction slot.
func (v *Voc) ClearConstriction(slot int) {
	if slot >= 0 && slot < MaxConstrictions {
		v.constrictions[slot] = Constriction{}
	}
}

// Constriction returns the state of slot.
func (v *Voc) Constriction(slot int) Constriction {
	if slot < 0 || slot >= MaxConstrictions {
		return Constriction{}
	}
	return v.constrictions[slot]
}

// SetTractLength changes the active section count without allocating.
// Tongue and constriction positions are rescaled to the new length and
// the tract restarts silent from its neutral shape.
func (v *Voc) SetTractLength(sections int) int {
	old := float64(v.tract.Sections())
	applied := v.tract.NewLength(sections)
	scale := float64(applied) / old

	for i := range v.constrictions {
		v.constrictions[i].Index *= scale
	}
	v.SetTongueShape(v.tongueIndex*scale, v.tongueDiameter)

	return applied
}

// SetSampleRate retunes every sample-rate dependent part.
func (v *Voc) SetSampleRate(sampleRate float64) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return
	}

	v.sampleRate = sampleRate
	v.glottis.SetSampleRate(sampleRate)
	v.tract.SetSampleRate(sampleRate)
	v.aspiration.SetSampleRate(sampleRate)
	v.fricative.SetSampleRate(sampleRate)
}

// Reset silences the voice and restarts the glottal cycle.
func (v *Voc) Reset() {
	v.tract.Reset()
	v.glottis.Reset()
	v.aspiration.Reset()
	v.fricative.Reset()
	core.Zero(v.buf)
	v.counter = 0
}

// Glottis returns the glottal source.
func (v *Voc) Glottis() *Glottis { return v.glottis }

// Tract returns the waveguide.
func (v *Voc) Tract() *Tract { return v.tract }

// BlockSize returns the control block length.
func (v *Voc) BlockSize() int { return len(v.buf) }
