// Package wavdump captures the machine's speaker output into a WAV file.
package wavdump

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// SampleRate the machine audio is pulled at.
const SampleRate = 22050

// Recorder accumulates mono 16-bit samples until Close writes them out.
type Recorder struct {
	path    string
	samples []int
}

// NewRecorder creates a recorder that will write to path on Close.
func NewRecorder(path string) *Recorder {
	return &Recorder{path: path}
}

// Push appends one sample.
func (r *Recorder) Push(s int16) {
	r.samples = append(r.samples, int(s))
}

// Len returns the number of samples captured so far.
func (r *Recorder) Len() int { return len(r.samples) }

// Close encodes the captured samples as a 16-bit mono WAV.
func (r *Recorder) Close() error {
	f, err := os.Create(r.path)
	if err != nil {
		return fmt.Errorf("wav create: %w", err)
	}
	enc := wav.NewEncoder(f, SampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: SampleRate},
		Data:           r.samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("wav write: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("wav finalize: %w", err)
	}
	return f.Close()
}
