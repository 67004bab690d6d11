// SPDX-License-Identifier: MIT
package synth

import "testing"

func TestReverbProducesTail(t *testing.T) {
	r := NewReverb(testSampleRate)

	// One impulse, then silence in: the wet path must ring afterwards.
	r.Process(1.0)
	var tail float64
	for i := 0; i < 4*combDelay4; i++ {
		if v := r.Process(0); v != 0 {
			tail += v * v
		}
	}
	if tail == 0 {
		t.Error("impulse produced no reverb tail")
	}
}

func TestReverbDecays(t *testing.T) {
	r := NewReverb(testSampleRate)
	r.Process(1.0)

	energy := func(n int) float64 {
		var e float64
		for i := 0; i < n; i++ {
			v := r.Process(0)
			e += v * v
		}
		return e
	}

	early := energy(testSampleRate / 2)
	late := energy(testSampleRate / 2)
	if late >= early {
		t.Errorf("tail energy did not decay: early %v, late %v", early, late)
	}
}

func TestReverbProcessZeroAllocs(t *testing.T) {
	r := NewReverb(testSampleRate)
	allocs := testing.AllocsPerRun(100, func() {
		r.Process(0.5)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in reverb, got %.1f", allocs)
	}
}
