package machine

import (
	"testing"
	"time"

	"to8emu/internal/cpu"
	"to8emu/internal/rompack"
)

// stubCPU is a scripted processor: every step burns a fixed cycle count.
type stubCPU struct {
	cycles  int
	resets  int
	irq     bool
	special bool
	op      byte
	state   [2]byte
}

func (s *stubCPU) Reset()             { s.resets++ }
func (s *stubCPU) SetIRQ(level bool)  { s.irq = level }
func (s *stubCPU) StateSize() int     { return len(s.state) }
func (s *stubCPU) SaveState(b []byte) { copy(b, s.state[:]) }
func (s *stubCPU) LoadState(b []byte) { copy(s.state[:], b) }
func (s *stubCPU) Step() cpu.StepResult {
	if s.special {
		return cpu.StepResult{Special: true, Opcode: s.op}
	}
	return cpu.StepResult{Cycles: s.cycles}
}

// stubVid records renderer traffic.
type stubVid struct {
	mode     int
	palette  [16][3]int
	segLines map[int]bool
	lines    int
	state    [2]byte
}

func newStubVid() *stubVid { return &stubVid{segLines: map[int]bool{}} }

func (v *stubVid) SetMode(m int) { v.mode = m }
func (v *stubVid) SetPalette(i, r, g, b int) {
	if i >= 0 && i < 16 {
		v.palette[i] = [3]int{r, g, b}
	}
}
func (v *stubVid) DrawSegment(line, cycle int) { v.segLines[line] = true }
func (v *stubVid) NextLine(line int)           { v.lines++ }
func (v *stubVid) StateSize() int              { return len(v.state) }
func (v *stubVid) SaveState(b []byte)          { copy(b, v.state[:]) }
func (v *stubVid) LoadState(b []byte)          { copy(v.state[:], b) }

// newTestMachine builds a reset machine with scripted collaborators.
func newTestMachine(opcycles int) (*Machine, *stubCPU, *stubVid) {
	m := New(Config{})
	c := &stubCPU{cycles: opcycles}
	v := newStubVid()
	m.Attach(c, v)
	m.HardReset()
	return m, c, v
}

// testROMs returns a minimal valid ROM set with recognizable fill bytes.
func testROMs() *rompack.Set {
	set := &rompack.Set{
		Basic:       make([]byte, rompack.BasicSize),
		To8Monitor:  make([]byte, rompack.MonitorSize),
		To8DMonitor: make([]byte, rompack.MonitorSize),
	}
	for i := range set.Basic {
		set.Basic[i] = 0xB5
	}
	for i := range set.To8Monitor {
		set.To8Monitor[i] = 0x8A
	}
	for i := range set.To8DMonitor {
		set.To8DMonitor[i] = 0x8D
	}
	return set
}

func TestHardReset_RAMPattern(t *testing.T) {
	m, _, _ := newTestMachine(10)

	if got := m.ram[0x007F]; got != 0x00 {
		t.Fatalf("ram[0x007F] got %02X want 00", got)
	}
	if got := m.ram[0x0080]; got != 0xFF {
		t.Fatalf("ram[0x0080] got %02X want FF", got)
	}
	if got := m.ram[0x0100]; got != 0x00 {
		t.Fatalf("ram[0x0100] got %02X want 00", got)
	}
}

func TestHardReset_Defaults(t *testing.T) {
	m, c, v := newTestMachine(10)

	if m.port[0x09] != 0x0F {
		t.Fatalf("port[09] got %02X want 0F", m.port[0x09])
	}
	if !m.capslock {
		t.Fatalf("capslock should engage at reset")
	}
	if m.latch6846 != 65535 || m.timer6846 != 65535 {
		t.Fatalf("timer got %d/%d want 65535/65535", m.timer6846, m.latch6846)
	}
	if m.joysposition != 0xFF || m.joysaction != 0xC0 {
		t.Fatalf("joystick rest state got %02X/%02X", m.joysposition, m.joysaction)
	}
	if c.resets != 1 {
		t.Fatalf("CPU reset %d times, want 1", c.resets)
	}
	if v.mode != Video320x16 {
		t.Fatalf("video mode got %d want default", v.mode)
	}
}

func TestHardReset_DatePatch(t *testing.T) {
	m := New(Config{})
	m.SetROMs(testROMs())
	m.Attach(&stubCPU{cycles: 10}, newStubVid())
	m.HardReset()

	want := time.Now().Format("02-01-06")
	if got := string(m.basic[0xEB90:0xEB98]); got != want {
		t.Fatalf("date patch got %q want %q", got, want)
	}
	if m.basic[0xEB98] != 0x1F {
		t.Fatalf("basic[EB98] got %02X want 1F", m.basic[0xEB98])
	}
	wantBoot := []byte{0x8E, 0x2B, 0x90, 0xBD, 0x29, 0xC8}
	for i, b := range wantBoot {
		if m.basic[0xE4E2+i] != b {
			t.Fatalf("boot hook byte %d got %02X want %02X", i, m.basic[0xE4E2+i], b)
		}
	}
}

func TestSetFlavor_SwitchesMonitorAndResets(t *testing.T) {
	m := New(Config{})
	m.SetROMs(testROMs())
	c := &stubCPU{cycles: 10}
	m.Attach(c, newStubVid())
	m.HardReset()

	if got := m.Read(0xE100); got != 0x8A {
		t.Fatalf("TO8 monitor byte got %02X want 8A", got)
	}
	m.SetFlavor(TO8D)
	if got := m.Read(0xE100); got != 0x8D {
		t.Fatalf("TO8D monitor byte got %02X want 8D", got)
	}
	if c.resets != 2 {
		t.Fatalf("flavor change should hard reset (resets=%d)", c.resets)
	}
	// same flavor again: no reset
	m.SetFlavor(TO8D)
	if c.resets != 2 {
		t.Fatalf("redundant flavor change reset the machine")
	}
	// invalid flavor: ignored
	m.SetFlavor(Flavor(9))
	if m.Flavor() != TO8D || c.resets != 2 {
		t.Fatalf("invalid flavor not ignored")
	}
}

func TestAudioSample(t *testing.T) {
	m, _, _ := newTestMachine(10)

	m.sound = 0
	if got := m.AudioSample(); got != -32768 {
		t.Fatalf("silent sample got %d want -32768", got)
	}
	m.sound = 63
	if got := m.AudioSample(); got != 32767 {
		t.Fatalf("full-scale sample got %d want 32767", got)
	}
	m.sound = 32
	if got := m.AudioSample(); got <= 0 {
		t.Fatalf("midpoint sample got %d want > 0", got)
	}
}

func TestLoadCart(t *testing.T) {
	m, _, _ := newTestMachine(10)

	img := make([]byte, 0x8000)
	img[0] = 0x42
	img[0x4000] = 0x43
	if err := m.LoadCart(img); err != nil {
		t.Fatalf("LoadCart: %v", err)
	}
	if m.cartype != CartSwitch {
		t.Fatalf("cartype got %d want switch", m.cartype)
	}
	// cartridge is selected at reset (BASIC bit clear)
	if got := m.Read(0x0000); got != 0x42 {
		t.Fatalf("cart read got %02X want 42", got)
	}
	// reset keeps the cartridge seeded
	m.HardReset()
	if got := m.Read(0x0000); got != 0x42 {
		t.Fatalf("cart lost across reset: got %02X", got)
	}
	if err := m.LoadCart(make([]byte, CartSize+1)); err == nil {
		t.Fatalf("oversize cartridge accepted")
	}
}
