package wavdump

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func TestRecorder_WritesDecodableWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	r := NewRecorder(path)
	for i := 0; i < 100; i++ {
		r.Push(int16(i * 100))
	}
	if r.Len() != 100 {
		t.Fatalf("len got %d want 100", r.Len())
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(buf.Data) != 100 {
		t.Fatalf("decoded %d samples want 100", len(buf.Data))
	}
	if buf.Format.SampleRate != SampleRate || buf.Format.NumChannels != 1 {
		t.Fatalf("format got %+v", buf.Format)
	}
}
