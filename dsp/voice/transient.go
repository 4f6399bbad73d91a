package voice

import "math"

const (
	maxTransients     = 4
	transientLifetime = 0.2
	transientStrength = 0.3
	transientExponent = 200.0
)

// transient is a decaying click injected where an obstruction opens.
type transient struct {
	position  int
	timeAlive float64
	live      bool
}

// transientPool is a fixed set of slots; new clicks are dropped when all
// slots are busy.
type transientPool struct {
	slots [maxTransients]transient
}

func (p *transientPool) add(position int) bool {
	for i := range p.slots {
		if !p.slots[i].live {
			p.slots[i] = transient{position: position, live: true}
			return true
		}
	}

	return false
}

// apply adds every live click to both wave directions and ages it by dt.
func (p *transientPool) apply(r, l []float64, dt float64) {
	for i := range p.slots {
		tr := &p.slots[i]
		if !tr.live {
			continue
		}

		amp := transientStrength * math.Exp2(-transientExponent*tr.timeAlive)
		r[tr.position] += amp * 0.5
		l[tr.position] += amp * 0.5

		tr.timeAlive += dt
		if tr.timeAlive > transientLifetime {
			tr.live = false
		}
	}
}

func (p *transientPool) count() int {
	n := 0
	for _, tr := range p.slots {
		if tr.live {
			n++
		}
	}

	return n
}

func (p *transientPool) clear() {
	p.slots = [maxTransients]transient{}
}
