// SPDX-License-Identifier: MIT
package synth

// Schroeder reverb: four parallel comb filters feeding two serial allpass
// stages. Delay lengths are prime-ish sample counts tuned at 44.1 kHz and
// scaled for other rates.
const (
	combDelay1    = 1687
	combDelay2    = 1601
	combDelay3    = 2053
	combDelay4    = 2251
	allpassDelay1 = 389
	allpassDelay2 = 307

	combFeedback    = 0.78
	allpassFeedback = 0.5
	reverbScale     = 0.3
)

type combFilter struct {
	buffer []float64
	pos    int
}

func (c *combFilter) process(in float64) float64 {
	delayed := c.buffer[c.pos]
	c.buffer[c.pos] = in + delayed*combFeedback
	c.pos++
	if c.pos == len(c.buffer) {
		c.pos = 0
	}
	return delayed
}

type allpassFilter struct {
	buffer []float64
	pos    int
}

func (a *allpassFilter) process(in float64) float64 {
	delayed := a.buffer[a.pos]
	a.buffer[a.pos] = in + delayed*allpassFeedback
	a.pos++
	if a.pos == len(a.buffer) {
		a.pos = 0
	}
	return delayed - in
}

// Reverb holds the filter bank state. All buffers are allocated at
// construction; Process is allocation-free.
type Reverb struct {
	combs   [4]combFilter
	allpass [2]allpassFilter
}

// NewReverb builds the filter bank for the given sample rate.
func NewReverb(sampleRate float64) *Reverb {
	scale := sampleRate / 44100.0
	size := func(base int) int {
		n := int(float64(base) * scale)
		if n < 1 {
			n = 1
		}
		return n
	}
	r := &Reverb{}
	for i, base := range [4]int{combDelay1, combDelay2, combDelay3, combDelay4} {
		r.combs[i].buffer = make([]float64, size(base))
	}
	for i, base := range [2]int{allpassDelay1, allpassDelay2} {
		r.allpass[i].buffer = make([]float64, size(base))
	}
	return r
}

// Process feeds one dry sample through the bank and returns the wet
// sample. Wet/dry mixing is the caller's business.
func (r *Reverb) Process(in float64) float64 {
	var out float64
	for i := range r.combs {
		out += r.combs[i].process(in)
	}
	for i := range r.allpass {
		out = r.allpass[i].process(out)
	}
	return out * reverbScale
}
