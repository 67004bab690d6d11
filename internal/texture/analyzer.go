// SPDX-License-Identifier: MIT
/*
Package texture turns raw intensity buffers into frames of note candidates
plus texture metrics. The pipeline is adaptive thresholding over an
integral image, horizontal slicing, dark-region detection per slice, and
note-event synthesis via scale quantization.

Thread Safety:
- An Analyzer is confined to the analysis goroutine (single writer).
- Workspace buffers are reused across frames to keep the steady state
  allocation-free apart from the emitted Frame.
*/
package texture

import (
	"math"
	"time"

	"github.com/p-poss/bark/internal/music"
	"github.com/p-poss/bark/pkg/bitint"
)

// darkFactor is the local-contrast binarization factor: a pixel is dark
// when its intensity falls below darkFactor times the window mean.
const darkFactor = 0.85

// depthBoostSemitones is the maximum pitch boost for a region at the near
// edge of the depth window (one octave).
const depthBoostSemitones = 12

// Buffer is one frame of input as delivered by the capture collaborator:
// row-major intensities in [0,1] (0=black, 1=white) and an optional
// aligned depth buffer in meters.
type Buffer struct {
	W, H  int
	Pix   []float64
	Depth []float64 // nil when no depth sensor is present
}

// readable reports whether the buffer can actually be scanned. A capture
// handoff that failed mid-flight shows up as mismatched dimensions.
func (b Buffer) readable() bool {
	return b.W > 0 && b.H > 0 && len(b.Pix) == b.W*b.H &&
		(b.Depth == nil || len(b.Depth) == b.W*b.H)
}

// DarkRegion is a contiguous low-intensity run within one horizontal
// slice. Regions are transient: produced and consumed within a single
// analysis pass.
type DarkRegion struct {
	CenterX          int
	Width            int
	AverageIntensity float64 // 0=black, 1=white
	Center           music.Point
}

// Frame is the output of one analysis pass: ordered note candidates plus
// the metrics of the analyzed texture.
type Frame struct {
	Timestamp time.Time
	Notes     []music.NoteEvent
	Metrics   Metrics
}

// Params bound the per-frame analysis cost and the candidate filter.
type Params struct {
	BlockSize        int     // adaptive threshold window side (px)
	SliceHeight      int     // rows per horizontal band
	MaxSlices        int     // hard cap on analyzed bands per frame
	RegionThreshold  float64 // slice profile below this is "dark"
	MinRegionWidth   int     // narrower runs are discarded
	MinNoteVelocity  int     // quieter candidates are dropped
	MaxNotesPerFrame int     // candidate cap, scan order preserved
	DepthNear        float64 // depth boost window near edge (m)
	DepthFar         float64 // depth boost window far edge (m)
}

// DefaultParams returns the stock analysis parameters.
func DefaultParams() Params {
	return Params{
		BlockSize:        15,
		SliceHeight:      10,
		MaxSlices:        20,
		RegionThreshold:  0.4,
		MinRegionWidth:   5,
		MinNoteVelocity:  30,
		MaxNotesPerFrame: 8,
		DepthNear:        0.2,
		DepthFar:         1.5,
	}
}

// Pitch maps a normalized horizontal position to a MIDI note. The active
// mapping follows the current species voice profile and is swapped by the
// analysis goroutine between frames.
type Pitch struct {
	Scale      music.Scale
	Root       int
	LowOctave  int
	HighOctave int
}

// Analyzer converts intensity buffers into Frames. Not safe for concurrent
// use; own it from a single goroutine.
type Analyzer struct {
	params Params
	pitch  Pitch

	// Reusable workspace, grown on demand.
	integral []float64 // (w+1)*(h+1) prefix sums
	dark     []bool    // w*h binarized image
	profile  []float64 // per-slice column profile
	w, h     int
}

// NewAnalyzer creates an Analyzer with the given parameters and an initial
// pitch mapping.
func NewAnalyzer(params Params, pitch Pitch) *Analyzer {
	if params.BlockSize < 1 {
		params.BlockSize = 1
	}
	if params.SliceHeight < 1 {
		params.SliceHeight = 1
	}
	if pitch.Scale.Intervals == nil {
		pitch.Scale = music.Major
	}
	return &Analyzer{params: params, pitch: pitch}
}

// SetPitch swaps the pitch mapping, typically after a species change.
func (a *Analyzer) SetPitch(pitch Pitch) {
	if pitch.Scale.Intervals == nil {
		pitch.Scale = music.Major
	}
	a.pitch = pitch
}

// Analyze runs one full analysis pass and returns the resulting Frame.
// An unreadable buffer yields an empty Frame with centered metrics rather
// than an error; the caller keeps ticking.
func (a *Analyzer) Analyze(buf Buffer, now time.Time) Frame {
	if !buf.readable() {
		return Frame{Timestamp: now, Metrics: defaultMetrics()}
	}

	a.resize(buf.W, buf.H)
	a.buildIntegral(buf)
	a.binarize(buf)

	frame := Frame{
		Timestamp: now,
		Notes:     a.detectNotes(buf, now),
		Metrics:   a.computeMetrics(buf),
	}
	return frame
}

// resize grows the workspace to fit w*h. Capacity grows to the next
// power of two and shrinking keeps it, so a source that settles on a
// resolution stops reallocating quickly.
func (a *Analyzer) resize(w, h int) {
	if n := (w + 1) * (h + 1); cap(a.integral) < n {
		a.integral = make([]float64, n, bitint.NextPowerOfTwo(n))
	} else {
		a.integral = a.integral[:n]
	}
	if n := w * h; cap(a.dark) < n {
		a.dark = make([]bool, n, bitint.NextPowerOfTwo(n))
	} else {
		a.dark = a.dark[:n]
	}
	if cap(a.profile) < w {
		a.profile = make([]float64, w, bitint.NextPowerOfTwo(w))
	} else {
		a.profile = a.profile[:w]
	}
	a.w, a.h = w, h
}

// buildIntegral fills the 2-D prefix-sum image. Row and column 0 of the
// integral are zero so range sums need no edge branches.
func (a *Analyzer) buildIntegral(buf Buffer) {
	w, h := buf.W, buf.H
	stride := w + 1
	for i := 0; i <= w; i++ {
		a.integral[i] = 0
	}
	for y := 1; y <= h; y++ {
		a.integral[y*stride] = 0
		rowSum := 0.0
		for x := 1; x <= w; x++ {
			rowSum += buf.Pix[(y-1)*w+(x-1)]
			a.integral[y*stride+x] = a.integral[(y-1)*stride+x] + rowSum
		}
	}
}

// windowMean returns the mean intensity over the square window of side
// blockSize centered on (x, y), clipped to the image bounds. O(1) via the
// integral image.
func (a *Analyzer) windowMean(x, y int) float64 {
	half := a.params.BlockSize / 2
	x0, y0 := x-half, y-half
	x1, y1 := x+half+1, y+half+1
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > a.w {
		x1 = a.w
	}
	if y1 > a.h {
		y1 = a.h
	}
	stride := a.w + 1
	sum := a.integral[y1*stride+x1] - a.integral[y0*stride+x1] -
		a.integral[y1*stride+x0] + a.integral[y0*stride+x0]
	area := float64((x1 - x0) * (y1 - y0))
	return sum / area
}

// binarize marks each pixel dark when it falls below darkFactor times its
// local window mean. Local-contrast thresholding is robust to uneven
// lighting across the trunk.
func (a *Analyzer) binarize(buf Buffer) {
	for y := 0; y < buf.H; y++ {
		for x := 0; x < buf.W; x++ {
			i := y*buf.W + x
			a.dark[i] = buf.Pix[i] < a.windowMean(x, y)*darkFactor
		}
	}
}

// detectNotes slices the thresholded image into horizontal bands, finds
// dark regions in each, and synthesizes note candidates in scan order.
func (a *Analyzer) detectNotes(buf Buffer, now time.Time) []music.NoteEvent {
	p := a.params
	sliceCount := buf.H / p.SliceHeight
	if sliceCount > p.MaxSlices {
		sliceCount = p.MaxSlices
	}

	var notes []music.NoteEvent
	for s := 0; s < sliceCount; s++ {
		y0 := s * p.SliceHeight
		y1 := y0 + p.SliceHeight
		for _, region := range a.sliceRegions(buf, y0, y1) {
			ev, ok := a.regionToNote(buf, region, now)
			if !ok {
				continue
			}
			notes = append(notes, ev)
			if len(notes) >= p.MaxNotesPerFrame {
				return notes
			}
		}
	}
	return notes
}

// sliceRegions scans one band left to right for maximal dark runs. The
// column profile is the light-pixel fraction of the band, so a value below
// RegionThreshold means the column is mostly fissure. Runs narrower than
// MinRegionWidth are discarded, a trailing open run included.
func (a *Analyzer) sliceRegions(buf Buffer, y0, y1 int) []DarkRegion {
	p := a.params
	w := buf.W
	rows := float64(y1 - y0)
	for x := 0; x < w; x++ {
		light := 0
		for y := y0; y < y1; y++ {
			if !a.dark[y*w+x] {
				light++
			}
		}
		a.profile[x] = float64(light) / rows
	}

	var regions []DarkRegion
	runStart := -1
	flush := func(end int) {
		if runStart < 0 {
			return
		}
		width := end - runStart
		if width >= p.MinRegionWidth {
			regions = append(regions, a.makeRegion(buf, runStart, end, y0, y1))
		}
		runStart = -1
	}
	for x := 0; x < w; x++ {
		if a.profile[x] < p.RegionThreshold {
			if runStart < 0 {
				runStart = x
			}
		} else {
			flush(x)
		}
	}
	flush(w)
	return regions
}

// makeRegion records center, width, and the mean raw intensity of the run
// across the band rows.
func (a *Analyzer) makeRegion(buf Buffer, x0, x1, y0, y1 int) DarkRegion {
	sum := 0.0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			sum += buf.Pix[y*buf.W+x]
		}
	}
	width := x1 - x0
	centerX := x0 + width/2
	return DarkRegion{
		CenterX:          centerX,
		Width:            width,
		AverageIntensity: sum / float64(width*(y1-y0)),
		Center: music.Point{
			X: float64(centerX) / float64(buf.W),
			Y: (float64(y0) + float64(y1-y0)/2) / float64(buf.H),
		},
	}
}

// regionToNote synthesizes a candidate NoteEvent from a dark region.
// Darker regions play louder, wider regions play longer, and regions
// closer to the depth sensor play higher.
func (a *Analyzer) regionToNote(buf Buffer, region DarkRegion, now time.Time) (music.NoteEvent, bool) {
	p := a.params

	pitch := a.pitch.Scale.Quantize(region.Center.X, a.pitch.Root, a.pitch.LowOctave, a.pitch.HighOctave)
	pitch += a.depthBoost(buf, region)

	duration := music.Lerp(0.05, 0.5, float64(region.Width)/float64(buf.W))
	velocity := int(math.Round((1-region.AverageIntensity)*100)) + 27

	ev := music.NewNoteEvent(pitch, velocity, duration, region.Center, now)
	if ev.Velocity < p.MinNoteVelocity {
		return music.NoteEvent{}, false
	}
	return ev, true
}

// depthBoost returns the semitone boost for a region whose aligned depth
// sample falls inside [DepthNear, DepthFar]: closer regions get up to one
// octave. No depth data, or a sample outside the window, means no boost.
func (a *Analyzer) depthBoost(buf Buffer, region DarkRegion) int {
	if buf.Depth == nil {
		return 0
	}
	// An empty or inverted window disables the boost entirely. Without
	// this, a sample equal to both edges would normalize 0/0.
	if a.params.DepthFar <= a.params.DepthNear {
		return 0
	}
	x := region.CenterX
	y := int(region.Center.Y * float64(buf.H))
	if y >= buf.H {
		y = buf.H - 1
	}
	d := buf.Depth[y*buf.W+x]
	p := a.params
	if d < p.DepthNear || d > p.DepthFar {
		return 0
	}
	normalized := (d - p.DepthNear) / (p.DepthFar - p.DepthNear)
	return int(math.Round(depthBoostSemitones * (1 - normalized)))
}
