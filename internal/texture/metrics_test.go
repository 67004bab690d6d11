// SPDX-License-Identifier: MIT
package texture

import (
	"math"
	"testing"
	"time"
)

func analyzeMetrics(t *testing.T, buf Buffer) Metrics {
	t.Helper()
	a := NewAnalyzer(DefaultParams(), testPitch())
	return a.Analyze(buf, time.Now()).Metrics
}

func TestMetricsRanges(t *testing.T) {
	// Striped pseudo-bark input.
	buf := flatBuffer(160, 120, 0)
	for y := 0; y < 120; y++ {
		for x := 0; x < 160; x++ {
			buf.Pix[y*160+x] = 0.5 + 0.5*math.Sin(float64(x)/5.0)
		}
	}

	m := analyzeMetrics(t, buf)
	for name, v := range map[string]float64{
		"FissureDepth":      m.FissureDepth,
		"FissureDensity":    m.FissureDensity,
		"PatternRegularity": m.PatternRegularity,
	} {
		if v < 0 || v > 1 {
			t.Errorf("%s = %v, outside [0,1]", name, v)
		}
	}
	if m.DominantOrientation < 0 || m.DominantOrientation > math.Pi {
		t.Errorf("DominantOrientation = %v, outside [0, pi]", m.DominantOrientation)
	}
}

func TestComplexityFormula(t *testing.T) {
	m := Metrics{FissureDepth: 0.8, FissureDensity: 0.6, PatternRegularity: 0.2}
	want := (0.8 + 0.6 + 0.8) / 3
	if got := m.Complexity(); math.Abs(got-want) > 1e-12 {
		t.Errorf("Complexity = %v, want %v", got, want)
	}
}

func TestFlatImageIsRegular(t *testing.T) {
	m := analyzeMetrics(t, flatBuffer(100, 50, 0.7))

	if m.FissureDepth != 0 {
		t.Errorf("FissureDepth = %v, want 0", m.FissureDepth)
	}
	if m.FissureDensity != 0 {
		t.Errorf("FissureDensity = %v, want 0", m.FissureDensity)
	}
	if m.PatternRegularity < 0.99 {
		t.Errorf("PatternRegularity = %v, want ~1 on a flat image", m.PatternRegularity)
	}
}

func TestVerticalStripesOrientHorizontalGradients(t *testing.T) {
	// Vertical fissures: all intensity change is along x, so the angle
	// atan2(sum|gx|, sum|gy|) approaches pi/2.
	buf := flatBuffer(160, 120, 0.9)
	for y := 0; y < 120; y++ {
		for x := 0; x < 160; x++ {
			if (x/8)%2 == 0 {
				buf.Pix[y*160+x] = 0.1
			}
		}
	}

	m := analyzeMetrics(t, buf)
	if math.Abs(m.DominantOrientation-math.Pi/2) > 0.1 {
		t.Errorf("DominantOrientation = %v, want ~pi/2", m.DominantOrientation)
	}
}

func TestDenseTransitionsRaiseFissureDensity(t *testing.T) {
	// Wide images keep both densities below the saturation clamp: one
	// band is 2 transitions per row, three bands are 6. Bands stay
	// narrower than the threshold window so their interiors binarize
	// dark edge to edge.
	smooth := bandBuffer(1000, 10, 100, 10, 0.9, 0.0)
	busy := flatBuffer(1000, 10, 0.9)
	for _, x0 := range []int{100, 400, 700} {
		for y := 0; y < 10; y++ {
			for x := x0; x < x0+10; x++ {
				busy.Pix[y*1000+x] = 0.0
			}
		}
	}

	mBusy := analyzeMetrics(t, busy)
	mSmooth := analyzeMetrics(t, smooth)
	if mBusy.FissureDensity >= 1 || mSmooth.FissureDensity >= 1 {
		t.Fatalf("densities %v and %v saturated, fixture too dense",
			mBusy.FissureDensity, mSmooth.FissureDensity)
	}
	if mBusy.FissureDensity <= mSmooth.FissureDensity {
		t.Errorf("busy density %v should exceed smooth density %v",
			mBusy.FissureDensity, mSmooth.FissureDensity)
	}
}
