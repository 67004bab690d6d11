package audio

import (
	"errors"
	"fmt"
	"math"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var errNoEngine = errors.New("no audio engine available")

// recorder holds the WAV encoding state behind the atomic recording
// flag. The flag is flipped on before the first write and off before
// teardown, so a stop never races a write in progress.
type recorder struct {
	outputFile *os.File
	wavEncoder *wav.Encoder
	sampleBuf  *gaudio.IntBuffer
	scale      float64
}

// write converts one float32 buffer to integer PCM and appends it.
func (r *recorder) write(samples []float32) error {
	r.sampleBuf.Data = r.sampleBuf.Data[:len(samples)]
	for i, s := range samples {
		r.sampleBuf.Data[i] = int(float64(s) * r.scale)
	}
	return r.wavEncoder.Write(r.sampleBuf)
}

// StartRecording opens the WAV sink and arms the recording tap. Fails if
// already recording or the file cannot be created; the render path is
// unaffected either way.
func (e *Engine) StartRecording(filename string) error {
	if e.isRecording.Load() == 1 {
		return fmt.Errorf("already recording")
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	bitDepth := e.config.Recording.BitDepth
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		bitDepth = 16
	}
	channels := e.config.Audio.Channels

	e.rec = recorder{
		outputFile: file,
		wavEncoder: wav.NewEncoder(file, int(e.config.Audio.SampleRate), bitDepth, channels, 1),
		sampleBuf: &gaudio.IntBuffer{
			Format: &gaudio.Format{
				NumChannels: channels,
				SampleRate:  int(e.config.Audio.SampleRate),
			},
			SourceBitDepth: bitDepth,
			Data:           make([]int, e.config.Audio.FramesPerBuffer*channels),
		},
		scale: math.Pow(2, float64(bitDepth-1)) - 1,
	}

	e.isRecording.Store(1)
	return nil
}

// StopRecording disarms the tap and finalizes the WAV file. A no-op when
// not recording.
func (e *Engine) StopRecording() error {
	if e.isRecording.Load() == 0 {
		return nil
	}
	e.isRecording.Store(0)

	if e.rec.wavEncoder != nil {
		if err := e.rec.wavEncoder.Close(); err != nil {
			return err
		}
	}
	if e.rec.outputFile != nil {
		if err := e.rec.outputFile.Close(); err != nil {
			return err
		}
	}
	e.rec = recorder{}
	return nil
}

// Recording reports whether the tap is armed.
func (e *Engine) Recording() bool {
	return e.isRecording.Load() == 1
}
