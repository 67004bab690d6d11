// SPDX-License-Identifier: MIT
package texture

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// regularityLag is the fixed pixel lag of the autocorrelation used for the
// pattern-regularity metric. Bark fissures repeat on roughly this scale.
const regularityLag = 20

// Metrics describes the analyzed texture. All values except
// DominantOrientation are normalized to [0,1]; the orientation is in
// radians. Metrics are recomputed every analyzed frame with no history.
type Metrics struct {
	FissureDepth        float64 `json:"fissureDepth"`
	FissureDensity      float64 `json:"fissureDensity"`
	PatternRegularity   float64 `json:"patternRegularity"`
	DominantOrientation float64 `json:"dominantOrientation"`
}

// Complexity derives a single roughness figure from the three normalized
// metrics: deep, dense, irregular texture reads as complex.
func (m Metrics) Complexity() float64 {
	return (m.FissureDepth + m.FissureDensity + (1 - m.PatternRegularity)) / 3
}

// defaultMetrics is the neutral result substituted for unreadable input.
func defaultMetrics() Metrics {
	return Metrics{
		FissureDepth:      0.5,
		FissureDensity:    0.5,
		PatternRegularity: 0.5,
	}
}

// computeMetrics derives the four texture metrics from the raw and
// binarized images of the current pass.
func (a *Analyzer) computeMetrics(buf Buffer) Metrics {
	total := buf.W * buf.H

	darkCount := 0
	transitions := 0
	for y := 0; y < buf.H; y++ {
		row := y * buf.W
		for x := 0; x < buf.W; x++ {
			if a.dark[row+x] {
				darkCount++
			}
			if x > 0 && a.dark[row+x] != a.dark[row+x-1] {
				transitions++
			}
		}
	}

	return Metrics{
		FissureDepth:        math.Min(1, 2*float64(darkCount)/float64(total)),
		FissureDensity:      math.Min(1, 100*float64(transitions)/float64(total)),
		PatternRegularity:   a.patternRegularity(buf),
		DominantOrientation: a.dominantOrientation(buf),
	}
}

// patternRegularity measures how periodic the texture is via a fixed-lag
// autocorrelation normalized by the squared image mean. A flat or strictly
// periodic image scores 1, uncorrelated noise scores near 0.
func (a *Analyzer) patternRegularity(buf Buffer) float64 {
	if buf.W <= regularityLag {
		return 0.5
	}
	mean := stat.Mean(buf.Pix, nil)
	if mean <= 0 {
		return 0
	}

	var corr float64
	var n int
	for y := 0; y < buf.H; y++ {
		row := buf.Pix[y*buf.W : (y+1)*buf.W]
		corr += floats.Dot(row[:buf.W-regularityLag], row[regularityLag:])
		n += buf.W - regularityLag
	}
	corr /= float64(n)

	regularity := corr / (mean * mean)
	if regularity > 1 {
		regularity = 1
	}
	if regularity < 0 {
		regularity = 0
	}
	return regularity
}

// dominantOrientation compares summed horizontal and vertical gradient
// magnitudes over interior pixels. Vertical fissures produce strong
// horizontal gradients, pushing the angle toward pi/2.
func (a *Analyzer) dominantOrientation(buf Buffer) float64 {
	if buf.W < 3 || buf.H < 3 {
		return 0
	}
	var gx, gy float64
	for y := 1; y < buf.H-1; y++ {
		for x := 1; x < buf.W-1; x++ {
			i := y*buf.W + x
			gx += math.Abs(buf.Pix[i+1] - buf.Pix[i-1])
			gy += math.Abs(buf.Pix[i+buf.W] - buf.Pix[i-buf.W])
		}
	}
	return math.Atan2(gx, gy)
}
