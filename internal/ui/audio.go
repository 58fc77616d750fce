package ui

import (
	"encoding/binary"

	"to8emu/internal/machine"
	"to8emu/internal/wavdump"
)

// machineStream implements io.Reader by sampling the machine's speaker DAC
// and converting it to 16-bit little-endian stereo frames for ebiten's audio
// player. The TO8 DAC holds a level rather than producing a waveform, so the
// stream just replays the current level at the output rate.
type machineStream struct {
	m     *machine.Machine
	muted *bool
	rec   *wavdump.Recorder
}

func (s *machineStream) Read(p []byte) (int, error) {
	if len(p) < 4 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	frames := len(p) / 4
	var sample int16
	if !(s.muted != nil && *s.muted) && !s.m.Muted() {
		sample = s.m.AudioSample()
	}
	for i := 0; i < frames; i++ {
		binary.LittleEndian.PutUint16(p[i*4:], uint16(sample))
		binary.LittleEndian.PutUint16(p[i*4+2:], uint16(sample))
	}
	if s.rec != nil {
		for i := 0; i < frames; i++ {
			s.rec.Push(sample)
		}
	}
	return frames * 4, nil
}
