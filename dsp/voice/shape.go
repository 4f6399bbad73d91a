package voice

import (
	"math"

	"github.com/cwbudde/algo-leaf/dsp/core"
)

const (
	gridOffset = 1.7

	// DefaultTongueIndex and DefaultTongueDiameter give a neutral vowel on
	// the 44-section tract.
	DefaultTongueIndex    = 12.9
	DefaultTongueDiameter = 2.43
)

// Constriction narrows the tract around Index to Diameter. A fricative
// constriction also injects turbulence noise there.
type Constriction struct {
	Index     float64
	Diameter  float64
	Fricative bool
	Active    bool
}

// ShapeTongue rewrites the rest diameters between the blade and the lips
// for a tongue body centred at index. diameter is the distance between
// tongue and palate, roughly 2 (high vowel) to 3.5 (low vowel).
func (t *Tract) ShapeTongue(index, diameter float64) {
	if !core.IsFinite(index) || !core.IsFinite(diameter) {
		return
	}

	fixed := 2 + (diameter-2)/1.5
	span := float64(t.tipStart - t.bladeStart)

	for i := t.bladeStart; i < t.lipStart; i++ {
		angle := 1.1 * math.Pi * (index - float64(i)) / span
		curve := (1.5 - fixed + gridOffset) * math.Cos(angle)
		if i == t.lipStart-1 {
			curve *= 0.8
		}
		if i == t.bladeStart || i == t.lipStart-2 {
			curve *= 0.94
		}
		t.restDiameter[i] = 1.5 - curve
	}
}

// constrict pulls the target diameters around c.Index down towards
// c.Diameter with a raised-cosine falloff. The falloff is wide at the back
// of the tract and narrow at the tip.
func (t *Tract) constrict(c Constriction) {
	diameter := math.Max(c.Diameter-0.3, 0)
	index := c.Index
	if index < 2 || index >= float64(t.n) || diameter >= 3 {
		return
	}

	scale := float64(t.n) / DefaultSections
	root := 25 * scale
	tip := float64(t.tipStart)

	var width float64
	switch {
	case index < root:
		width = 10
	case index >= tip:
		width = 5
	default:
		width = 10 - 5*(index-root)/(tip-root)
	}
	width *= scale

	center := int(math.Round(index))
	for k := -int(math.Ceil(width)) - 1; float64(k) < width+1; k++ {
		j := center + k
		if j < 0 || j >= t.n {
			continue
		}

		relpos := math.Abs(float64(j)-index) - 0.5
		var shrink float64
		switch {
		case relpos <= 0:
			shrink = 0
		case relpos > width:
			shrink = 1
		default:
			shrink = 0.5 * (1 - math.Cos(math.Pi*relpos/width))
		}

		if diameter < t.targetDiameter[j] {
			t.targetDiameter[j] = diameter + (t.targetDiameter[j]-diameter)*shrink
		}
	}
}

// articulate rebuilds the targets from the rest shape and constrictions.
func (t *Tract) articulate(constrictions []Constriction) {
	copy(t.targetDiameter[:t.n], t.restDiameter[:t.n])
	for _, c := range constrictions {
		if c.Active {
			t.constrict(c)
		}
	}
}
