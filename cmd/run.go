package cmd

import (
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"to8emu/internal/cpu"
	"to8emu/internal/machine"
	"to8emu/internal/rompack"
	"to8emu/internal/ui"
	"to8emu/internal/video"
	"to8emu/internal/wavdump"
)

// One PAL frame of machine time at 1 MHz.
const cyclesPerFrame = 312 * 64

var runFlags struct {
	romsDir string
	cart    string
	flavor  string
	scale   int
	trace   bool

	headless bool
	frames   int
	pngOut   string
	expect   string
	wavOut   string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the emulator",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEmulator()
	},
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.romsDir, "roms", "roms", "directory containing basic.rom and the monitor images")
	f.StringVar(&runFlags.cart, "cart", "", "cartridge image (.m7/.rom)")
	f.StringVar(&runFlags.flavor, "flavor", "to8", "machine flavor: to8 or to8d")
	f.IntVar(&runFlags.scale, "scale", 2, "window scale")
	f.BoolVar(&runFlags.trace, "trace", false, "log IO register traffic")

	f.BoolVar(&runFlags.headless, "headless", false, "run without a window")
	f.IntVar(&runFlags.frames, "frames", 300, "frames to run in headless mode")
	f.StringVar(&runFlags.pngOut, "outpng", "", "write last framebuffer to PNG at path")
	f.StringVar(&runFlags.expect, "expect", "", "assert framebuffer CRC32 (hex)")
	f.StringVar(&runFlags.wavOut, "wav", "", "record speaker output to a WAV file")
}

func runEmulator() error {
	set, err := rompack.Load(runFlags.romsDir)
	if err != nil {
		return fmt.Errorf("load ROMs: %w", err)
	}

	m := machine.New(machine.Config{Trace: runFlags.trace})
	m.SetROMs(set)
	c := cpu.New(m)
	gate := video.New(m)
	m.Attach(c, gate)

	if runFlags.cart != "" {
		data, err := os.ReadFile(runFlags.cart)
		if err != nil {
			return fmt.Errorf("read cartridge: %w", err)
		}
		if err := m.LoadCart(data); err != nil {
			return fmt.Errorf("load cartridge: %w", err)
		}
	}
	if strings.EqualFold(runFlags.flavor, "to8d") {
		m.SetFlavor(machine.TO8D)
	}
	m.HardReset()

	var rec *wavdump.Recorder
	if runFlags.wavOut != "" {
		rec = wavdump.NewRecorder(runFlags.wavOut)
	}

	if runFlags.headless {
		if err := runHeadless(m, gate, rec); err != nil {
			return err
		}
	} else {
		cfg := ui.Config{Title: "to8", Scale: runFlags.scale}
		app := ui.NewApp(cfg, m, gate)
		if runFlags.cart != "" {
			app.SetStatePrefix(strings.TrimSuffix(runFlags.cart, filepath.Ext(runFlags.cart)))
		}
		if rec != nil {
			app.SetRecorder(rec)
		}
		if err := app.Run(); err != nil {
			return err
		}
		app.SaveSettings()
	}

	if rec != nil && rec.Len() > 0 {
		if err := rec.Close(); err != nil {
			return err
		}
		log.Printf("wrote %s", runFlags.wavOut)
	}
	return nil
}

func runHeadless(m *machine.Machine, gate *video.Gate, rec *wavdump.Recorder) error {
	frames := runFlags.frames
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	overshoot := 0
	for i := 0; i < frames; i++ {
		overshoot = m.Run(cyclesPerFrame - overshoot)
		if rec != nil {
			sample := m.AudioSample()
			if m.Muted() {
				sample = 0
			}
			for j := 0; j < wavdump.SampleRate/50; j++ {
				rec.Push(sample)
			}
		}
	}
	dur := time.Since(start)

	fb := gate.Framebuffer()
	crc := crc32.ChecksumIEEE(fb)
	fps := float64(frames) / dur.Seconds()

	log.Printf("headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x",
		frames, dur.Truncate(time.Millisecond), fps, crc)

	if runFlags.pngOut != "" {
		w, h := gate.Size()
		if err := saveFramePNG(fb, w, h, runFlags.pngOut); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Printf("wrote %s", runFlags.pngOut)
	}

	if runFlags.expect != "" {
		want := strings.TrimPrefix(strings.ToLower(runFlags.expect), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func saveFramePNG(pix []byte, w, h int, path string) error {
	img := &image.RGBA{
		Pix:    make([]byte, len(pix)),
		Stride: 4 * w,
		Rect:   image.Rect(0, 0, w, h),
	}
	copy(img.Pix, pix)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
