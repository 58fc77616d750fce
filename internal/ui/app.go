package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"to8emu/internal/machine"
	"to8emu/internal/video"
	"to8emu/internal/wavdump"
)

// One PAL frame of machine time: 312 scanlines of 64 µs at 1 MHz.
const cyclesPerFrame = 312 * 64

// App runs a machine in an ebiten window: video out, keyboard/joystick in,
// audio, savestate slots.
type App struct {
	cfg  Config
	m    *machine.Machine
	gate *video.Gate
	tex  *ebiten.Image

	paused    bool
	fast      bool
	overshoot int

	audioCtx    *audio.Context
	audioPlayer *audio.Player
	audioMuted  bool
	recorder    *wavdump.Recorder

	currentSlot int
	statePrefix string // slot files are <prefix>.st<slot>

	toastMsg   string
	toastUntil time.Time
}

// NewApp wires a machine and its renderer into a window.
func NewApp(cfg Config, m *machine.Machine, gate *video.Gate) *App {
	cfg = loadSettings(cfg)
	cfg.Defaults()
	w, h := gate.Size()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(w*cfg.Scale/2, h*cfg.Scale)
	ebiten.SetTPS(50)
	a := &App{cfg: cfg, m: m, gate: gate, statePrefix: "to8"}
	a.audioMuted = cfg.Mute
	a.audioCtx = audio.NewContext(wavdump.SampleRate)
	return a
}

// SetStatePrefix names the savestate slot files.
func (a *App) SetStatePrefix(p string) {
	if p != "" {
		a.statePrefix = p
	}
}

// SetRecorder attaches a WAV recorder fed from the audio stream.
func (a *App) SetRecorder(r *wavdump.Recorder) { a.recorder = r }

// Run enters the ebiten main loop and blocks until the window closes.
func (a *App) Run() error {
	return ebiten.RunGame(a)
}

func (a *App) Update() error {
	a.handleHotkeys()
	a.handleMachineInput()

	if a.audioPlayer == nil {
		src := &machineStream{m: a.m, muted: &a.audioMuted, rec: a.recorder}
		p, err := a.audioCtx.NewPlayer(src)
		if err == nil {
			p.SetBufferSize(40 * time.Millisecond)
			a.audioPlayer = p
			p.Play()
		}
	}

	if a.paused {
		return nil
	}
	frames := 1
	if a.fast {
		frames = 4
	}
	for i := 0; i < frames; i++ {
		a.overshoot = a.m.Run(cyclesPerFrame - a.overshoot)
	}
	return nil
}

func (a *App) handleHotkeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF1):
		a.paused = !a.paused
		a.toast(map[bool]string{true: "paused", false: "resumed"}[a.paused])
	case inpututil.IsKeyJustPressed(ebiten.KeyF2):
		a.m.HardReset()
		a.toast("hard reset")
	case inpututil.IsKeyJustPressed(ebiten.KeyF3):
		a.audioMuted = !a.audioMuted
		a.toast(map[bool]string{true: "muted", false: "sound on"}[a.audioMuted])
	case inpututil.IsKeyJustPressed(ebiten.KeyF6):
		a.currentSlot = (a.currentSlot + 1) % 10
		a.toast(fmt.Sprintf("slot %d", a.currentSlot))
	case inpututil.IsKeyJustPressed(ebiten.KeyF7):
		a.saveState()
	case inpututil.IsKeyJustPressed(ebiten.KeyF8):
		a.loadState()
	}
	a.fast = ebiten.IsKeyPressed(ebiten.KeyF10)
}

func (a *App) handleMachineInput() {
	for key, sc := range keymap {
		if inpututil.IsKeyJustPressed(key) {
			a.m.Key(sc, true)
		}
		if inpututil.IsKeyJustReleased(key) {
			a.m.Key(sc, false)
		}
	}
	for key, axis := range joymap {
		if inpututil.IsKeyJustPressed(key) {
			a.m.Joy(axis, true)
		}
		if inpututil.IsKeyJustReleased(key) {
			a.m.Joy(axis, false)
		}
	}
	// lightpen follows the mouse
	x, y := ebiten.CursorPosition()
	a.m.SetLightpen(x, y, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
}

func (a *App) slotFile() string {
	return fmt.Sprintf("%s.st%d", a.statePrefix, a.currentSlot)
}

func (a *App) saveState() {
	buf := make([]byte, a.m.SnapshotSize())
	a.m.Serialize(buf)
	if err := os.WriteFile(a.slotFile(), buf, 0o644); err != nil {
		a.toast("save failed")
		return
	}
	a.toast(fmt.Sprintf("saved slot %d", a.currentSlot))
}

func (a *App) loadState() {
	buf, err := os.ReadFile(a.slotFile())
	if err != nil || len(buf) != a.m.SnapshotSize() {
		a.toast("no state in slot")
		return
	}
	a.m.Deserialize(buf)
	a.toast(fmt.Sprintf("loaded slot %d", a.currentSlot))
}

func (a *App) toast(msg string) {
	a.toastMsg = msg
	a.toastUntil = time.Now().Add(2 * time.Second)
}

func (a *App) Draw(screen *ebiten.Image) {
	w, h := a.gate.Size()
	if a.tex == nil {
		a.tex = ebiten.NewImage(w, h)
	}
	a.tex.WritePixels(a.gate.Framebuffer())
	op := &ebiten.DrawImageOptions{}
	// the machine's pixels are double-wide; halve X to get square output
	op.GeoM.Scale(0.5, 1)
	screen.DrawImage(a.tex, op)
	if a.toastMsg != "" && time.Now().Before(a.toastUntil) {
		ebitenutil.DebugPrint(screen, a.toastMsg)
	}
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := a.gate.Size()
	return w / 2, h
}
