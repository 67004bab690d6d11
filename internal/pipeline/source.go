package pipeline

import (
	"math"
	"math/rand"

	"github.com/p-poss/bark/internal/texture"
)

// FrameSource delivers intensity buffers to the analysis loop. Next is
// called from the loop goroutine only; returning ok=false means no frame
// is available this tick, and the loop carries on with an empty frame.
type FrameSource interface {
	Next() (texture.Buffer, bool)
}

// SyntheticSource procedurally generates bark-like textures: a light
// background crossed by slowly drifting vertical fissures. It stands in
// for a camera during development and in tests.
type SyntheticSource struct {
	w, h    int
	rng     *rand.Rand
	tracks  []fissureTrack
	pix     []float64
	frameNo int
}

type fissureTrack struct {
	center float64 // column position
	width  float64 // columns
	drift  float64 // columns per frame
	depth  float64 // darkness at the fissure core, 0..1
}

// NewSyntheticSource creates a source of the given dimensions with a
// deterministic fissure layout derived from seed.
func NewSyntheticSource(w, h int, seed int64) *SyntheticSource {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	rng := rand.New(rand.NewSource(seed))

	nTracks := 2 + rng.Intn(3)
	tracks := make([]fissureTrack, nTracks)
	for i := range tracks {
		tracks[i] = fissureTrack{
			center: rng.Float64() * float64(w),
			width:  6 + rng.Float64()*10,
			drift:  (rng.Float64() - 0.5) * 0.6,
			depth:  0.7 + rng.Float64()*0.3,
		}
	}

	return &SyntheticSource{
		w:      w,
		h:      h,
		rng:    rng,
		tracks: tracks,
		pix:    make([]float64, w*h),
	}
}

// Next renders the current frame and advances the fissure drift. The
// returned buffer aliases internal storage and is valid until the next
// call.
func (s *SyntheticSource) Next() (texture.Buffer, bool) {
	for y := 0; y < s.h; y++ {
		for x := 0; x < s.w; x++ {
			v := 0.85 + s.rng.Float64()*0.1
			for _, t := range s.tracks {
				d := math.Abs(float64(x) - t.center)
				if d < t.width/2 {
					// Fissures darken toward their core.
					core := 1 - d/(t.width/2)
					v -= t.depth * core
				}
			}
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			s.pix[y*s.w+x] = v
		}
	}

	for i := range s.tracks {
		s.tracks[i].center += s.tracks[i].drift
		if s.tracks[i].center < 0 {
			s.tracks[i].center += float64(s.w)
		}
		if s.tracks[i].center >= float64(s.w) {
			s.tracks[i].center -= float64(s.w)
		}
	}
	s.frameNo++

	return texture.Buffer{W: s.w, H: s.h, Pix: s.pix}, true
}
