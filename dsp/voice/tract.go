package voice

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-leaf/dsp/core"
	"github.com/cwbudde/algo-leaf/dsp/mempool"
)

const (
	// DefaultSections is the classic 44-section adult tract.
	DefaultSections = 44
	// MinSections is the shortest tract that keeps every landmark distinct.
	MinSections = 16

	glottalReflection    = 0.75
	lipReflection        = -0.85
	defaultMovementSpeed = 15.0
	closedVelum          = 0.01
	damping              = 0.999
	obstructionReflect   = 0.999
	epsilon              = 1e-9
)

// geometry holds the landmark indices for a tract of n sections. All
// landmarks scale with n from the 44-section layout.
type geometry struct {
	n          int
	noseLength int
	noseStart  int
	bladeStart int
	tipStart   int
	lipStart   int
}

func geometryFor(n int) geometry {
	scale := float64(n) / DefaultSections
	g := geometry{
		n:          n,
		noseLength: max(3, int(math.Round(28*scale))),
		bladeStart: int(math.Round(10 * scale)),
		tipStart:   int(math.Round(32 * scale)),
		lipStart:   int(math.Round(39 * scale)),
	}
	g.noseStart = n - g.noseLength + 1

	return g
}

// Tract is the vocal tract waveguide with its nasal branch.
type Tract struct {
	pool   *mempool.Pool
	handle mempool.Handle

	maxSections int
	maxNose     int
	geometry

	diameter       []float64
	restDiameter   []float64
	targetDiameter []float64
	area           []float64
	r, l           []float64
	reflection     []float64
	newReflection  []float64
	junctionOutR   []float64
	junctionOutL   []float64

	noseDiameter     []float64
	noseArea         []float64
	noseR, noseL     []float64
	noseReflection   []float64
	noseJunctionOutR []float64
	noseJunctionOutL []float64

	reflectionLeft, reflectionRight, reflectionNose          float64
	newReflectionLeft, newReflectionRight, newReflectionNose float64

	movementSpeed   float64
	velumTarget     float64
	lastObstruction int

	lipOutput, noseOutput float64

	t          float64 // seconds per sample
	transients transientPool
}

// NewTract creates a tract of sections sections from the context pool.
// Storage is sized for maxSections so NewLength never allocates.
func NewTract(ctx *core.Context, sections, maxSections int) (*Tract, error) {
	return NewTractToPool(ctx.Pool(), ctx, sections, maxSections)
}

// NewTractToPool creates a tract from pool.
func NewTractToPool(pool *mempool.Pool, ctx *core.Context, sections, maxSections int) (*Tract, error) {
	sections = max(sections, MinSections)
	maxSections = max(maxSections, sections)
	maxNose := geometryFor(maxSections).noseLength

	size := 8*maxSections + 2*(maxSections+1) + 5*maxNose + 2*(maxNose+1)
	mem, h, err := mempool.MakeSlice[float64](pool, size)
	if err != nil {
		return nil, fmt.Errorf("voice: tract of %d sections: %w", maxSections, err)
	}

	t := &Tract{
		pool:          pool,
		handle:        h,
		maxSections:   maxSections,
		maxNose:       maxNose,
		movementSpeed: defaultMovementSpeed,
		velumTarget:   closedVelum,
		t:             ctx.InvSampleRate(),
	}

	carve := func(n int) []float64 {
		s := mem[:n:n]
		mem = mem[n:]
		return s
	}
	t.diameter = carve(maxSections)
	t.restDiameter = carve(maxSections)
	t.targetDiameter = carve(maxSections)
	t.area = carve(maxSections)
	t.r = carve(maxSections)
	t.l = carve(maxSections)
	t.reflection = carve(maxSections)
	t.newReflection = carve(maxSections)
	t.junctionOutR = carve(maxSections + 1)
	t.junctionOutL = carve(maxSections + 1)
	t.noseDiameter = carve(maxNose)
	t.noseArea = carve(maxNose)
	t.noseR = carve(maxNose)
	t.noseL = carve(maxNose)
	t.noseReflection = carve(maxNose)
	t.noseJunctionOutR = carve(maxNose + 1)
	t.noseJunctionOutL = carve(maxNose + 1)

	t.NewLength(sections)

	return t, nil
}

// Free returns the tract storage to its pool.
func (t *Tract) Free() error {
	if t.pool == nil {
		return nil
	}

	err := t.pool.Free(t.handle)
	t.pool = nil

	return err
}

// NewLength sets the active section count, clamped to [MinSections,
// MaxSections], and restores the neutral tract shape with silent waves.
// It returns the applied length.
func (t *Tract) NewLength(sections int) int {
	sections = min(max(sections, MinSections), t.maxSections)
	t.geometry = geometryFor(sections)
	n := float64(sections)

	for i := range t.n {
		d := 1.5
		switch {
		case float64(i) < 7*n/DefaultSections-0.5:
			d = 0.6
		case float64(i) < 12*n/DefaultSections:
			d = 1.1
		}
		t.diameter[i] = d
		t.restDiameter[i] = d
		t.targetDiameter[i] = d
	}

	for i := range t.noseLength {
		d := 2 * float64(i) / float64(t.noseLength)
		var diameter float64
		if d < 1 {
			diameter = 0.4 + 1.6*d
		} else {
			diameter = 0.5 + 1.5*(2-d)
		}
		t.noseDiameter[i] = math.Min(diameter, 1.9)
	}
	t.noseDiameter[0] = t.velumTarget

	t.Reset()
	t.lastObstruction = -1
	t.calculateNoseReflections()
	t.CalculateReflections()
	t.CalculateReflections()

	return sections
}

// Reset silences all travelling waves and pending transients. The shape
// is kept.
func (t *Tract) Reset() {
	core.Zero(t.r)
	core.Zero(t.l)
	core.Zero(t.junctionOutR)
	core.Zero(t.junctionOutL)
	core.Zero(t.noseR)
	core.Zero(t.noseL)
	core.Zero(t.noseJunctionOutR)
	core.Zero(t.noseJunctionOutL)
	t.lipOutput = 0
	t.noseOutput = 0
	t.transients.clear()
}

// Reshape moves the diameters towards their targets over dt seconds.
// Closing is twice as fast as opening, the back of the tract returns
// slower than the front, and releasing a full closure with a shut velum
// fires a click.
func (t *Tract) Reshape(dt float64) {
	amount := dt * t.movementSpeed
	newLastObstruction := -1

	for i := range t.n {
		d := t.diameter[i]
		if d <= 0 {
			newLastObstruction = i
		}

		var slowReturn float64
		switch {
		case i < t.noseStart:
			slowReturn = 0.6
		case i >= t.tipStart:
			slowReturn = 1
		default:
			slowReturn = 0.6 + 0.4*float64(i-t.noseStart)/float64(t.tipStart-t.noseStart)
		}

		t.diameter[i] = core.MoveTowards(d, t.targetDiameter[i], slowReturn*amount, 2*amount)
	}

	if t.lastObstruction > -1 && newLastObstruction == -1 && t.noseArea[0] < 0.05 {
		t.transients.add(t.lastObstruction)
	}
	t.lastObstruction = newLastObstruction

	t.noseDiameter[0] = core.MoveTowards(t.noseDiameter[0], t.velumTarget, 0.25*amount, 0.1*amount)
	t.noseArea[0] = t.noseDiameter[0] * t.noseDiameter[0]
}

// CalculateReflections derives the junction reflection coefficients from
// the current diameters. The previous coefficients are kept as the start
// point of the per-sample interpolation in Compute.
func (t *Tract) CalculateReflections() {
	for i := range t.n {
		t.area[i] = t.diameter[i] * t.diameter[i]
	}

	for i := 1; i < t.n; i++ {
		t.reflection[i] = t.newReflection[i]
		sum := t.area[i-1] + t.area[i]
		if t.area[i] <= 0 || sum < epsilon {
			t.newReflection[i] = obstructionReflect
		} else {
			t.newReflection[i] = (t.area[i-1] - t.area[i]) / sum
		}
	}

	t.reflectionLeft = t.newReflectionLeft
	t.reflectionRight = t.newReflectionRight
	t.reflectionNose = t.newReflectionNose

	ns := t.noseStart
	sum := math.Max(t.area[ns]+t.area[ns+1]+t.noseArea[0], epsilon)
	t.newReflectionLeft = (2*t.area[ns] - sum) / sum
	t.newReflectionRight = (2*t.area[ns+1] - sum) / sum
	t.newReflectionNose = (2*t.noseArea[0] - sum) / sum
}

func (t *Tract) calculateNoseReflections() {
	for i := range t.noseLength {
		t.noseArea[i] = t.noseDiameter[i] * t.noseDiameter[i]
	}

	for i := 1; i < t.noseLength; i++ {
		sum := math.Max(t.noseArea[i-1]+t.noseArea[i], epsilon)
		t.noseReflection[i] = (t.noseArea[i-1] - t.noseArea[i]) / sum
	}
}

// Compute advances both waveguides by one step with glottal input in.
// lambda in [0, 1] interpolates between the previous and the latest
// reflection coefficients.
func (t *Tract) Compute(in, lambda float64) {
	if !core.IsFinite(in) {
		in = 0
	}
	lambda = core.Clamp(lambda, 0, 1)
	n := t.n

	t.transients.apply(t.r, t.l, 0.5*t.t)

	t.junctionOutR[0] = t.l[0]*glottalReflection + in
	t.junctionOutL[n] = t.r[n-1] * lipReflection

	for i := 1; i < n; i++ {
		r := t.reflection[i]*(1-lambda) + t.newReflection[i]*lambda
		w := r * (t.r[i-1] + t.l[i])
		t.junctionOutR[i] = t.r[i-1] - w
		t.junctionOutL[i] = t.l[i] + w
	}

	i := t.noseStart
	r := t.reflectionLeft*(1-lambda) + t.newReflectionLeft*lambda
	t.junctionOutL[i] = r*t.r[i-1] + (1+r)*(t.noseL[0]+t.l[i])
	r = t.reflectionRight*(1-lambda) + t.newReflectionRight*lambda
	t.junctionOutR[i] = r*t.l[i] + (1+r)*(t.r[i-1]+t.noseL[0])
	r = t.reflectionNose*(1-lambda) + t.newReflectionNose*lambda
	t.noseJunctionOutR[0] = r*t.noseL[0] + (1+r)*(t.l[i]+t.r[i-1])

	for i := range n {
		t.r[i] = core.FlushDenormals(t.junctionOutR[i] * damping)
		t.l[i] = core.FlushDenormals(t.junctionOutL[i+1] * damping)
	}
	t.lipOutput = t.r[n-1]

	nl := t.noseLength
	t.noseJunctionOutL[nl] = t.noseR[nl-1] * lipReflection

	for i := 1; i < nl; i++ {
		w := t.noseReflection[i] * (t.noseR[i-1] + t.noseL[i])
		t.noseJunctionOutR[i] = t.noseR[i-1] - w
		t.noseJunctionOutL[i] = t.noseL[i] + w
	}

	for i := range nl {
		t.noseR[i] = core.FlushDenormals(t.noseJunctionOutR[i])
		t.noseL[i] = core.FlushDenormals(t.noseJunctionOutL[i+1])
	}
	t.noseOutput = t.noseR[nl-1]
}

// AddTurbulenceNoise injects noise between the sections around the
// fractional position index. The amount peaks for narrow but open
// constrictions and vanishes for closed or wide ones.
func (t *Tract) AddTurbulenceNoise(noise, index, diameter float64) {
	if !core.IsFinite(noise) || !core.IsFinite(index) || index < 2 || index >= float64(t.n-3) {
		return
	}

	i := int(index)
	delta := index - float64(i)

	thinness := core.Clamp(8*(0.7-diameter), 0, 1)
	openness := core.Clamp(30*(diameter-0.3), 0, 1)
	noise0 := noise * (1 - delta) * thinness * openness
	noise1 := noise * delta * thinness * openness

	t.r[i+1] += noise0 / 2
	t.l[i+1] += noise0 / 2
	t.r[i+2] += noise1 / 2
	t.l[i+2] += noise1 / 2
}

// SetVelum sets the target nasal opening diameter; 0.01 is closed, 0.4
// open.
func (t *Tract) SetVelum(diameter float64) {
	if core.IsFinite(diameter) {
		t.velumTarget = math.Max(diameter, 0)
	}
}

// Velum returns the target nasal opening diameter.
func (t *Tract) Velum() float64 { return t.velumTarget }

// SetMovementSpeed sets how fast diameters follow their targets in
// diameter units per second.
func (t *Tract) SetMovementSpeed(speed float64) {
	if core.IsFinite(speed) && speed > 0 {
		t.movementSpeed = speed
	}
}

// SetSampleRate changes the sample period used to age transients.
func (t *Tract) SetSampleRate(sampleRate float64) {
	if sampleRate > 0 && !math.IsInf(sampleRate, 0) {
		t.t = 1 / sampleRate
	}
}

// LipOutput returns the wave leaving the mouth after the last Compute.
func (t *Tract) LipOutput() float64 { return t.lipOutput }

// NoseOutput returns the wave leaving the nostrils after the last Compute.
func (t *Tract) NoseOutput() float64 { return t.noseOutput }

// Sections returns the active section count.
func (t *Tract) Sections() int { return t.n }

// MaxSections returns the section count the storage was sized for.
func (t *Tract) MaxSections() int { return t.maxSections }

// NoseLength returns the nasal section count.
func (t *Tract) NoseLength() int { return t.noseLength }

// NoseStart returns the junction where the nasal branch couples in.
func (t *Tract) NoseStart() int { return t.noseStart }

// BladeStart returns the first tongue blade section.
func (t *Tract) BladeStart() int { return t.bladeStart }

// TipStart returns the first tongue tip section.
func (t *Tract) TipStart() int { return t.tipStart }

// LipStart returns the first lip section.
func (t *Tract) LipStart() int { return t.lipStart }

// Diameters returns the current diameters of the active sections.
func (t *Tract) Diameters() []float64 { return t.diameter[:t.n] }

// RestDiameters returns the neutral shape of the active sections. Callers
// may modify it; targets are rebuilt from it by the articulation.
func (t *Tract) RestDiameters() []float64 { return t.restDiameter[:t.n] }

// TargetDiameters returns the diameters Reshape moves towards. Callers may
// modify it.
func (t *Tract) TargetDiameters() []float64 { return t.targetDiameter[:t.n] }

// Reflections returns the junction coefficients computed by the latest
// CalculateReflections. Index 0 is unused.
func (t *Tract) Reflections() []float64 { return t.newReflection[:t.n] }

// NoseDiameters returns the nasal diameters; index 0 is the velum.
func (t *Tract) NoseDiameters() []float64 { return t.noseDiameter[:t.noseLength] }

// Transients returns the number of clicks currently sounding.
func (t *Tract) Transients() int { return t.transients.count() }
