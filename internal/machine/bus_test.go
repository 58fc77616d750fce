package machine

import "testing"

func TestIO_CompositeStatusRead(t *testing.T) {
	m, _, _ := newTestMachine(10)

	if got := m.Read(0xE7C0); got != 0 {
		t.Fatalf("idle CSR got %02X want 00", got)
	}
	m.port[0x00] = 0x02
	if got := m.Read(0xE7C0); got != 0x82 {
		t.Fatalf("active CSR got %02X want 82", got)
	}
}

func TestIO_PortCData(t *testing.T) {
	m, _, _ := newTestMachine(10)

	m.Write(0xE7C3, 0xFF)
	if m.port[0x03] != 0x3D {
		t.Fatalf("E7C3 mask got %02X want 3D", m.port[0x03])
	}
	if got := m.Read(0xE7C3); got != 0x3D|0x80 {
		t.Fatalf("E7C3 read got %02X want %02X", got, 0x3D|0x80)
	}
	m.SetLightpen(0, 0, true)
	if got := m.Read(0xE7C3); got&0x02 == 0 {
		t.Fatalf("pen button not visible: %02X", got)
	}

	// dropping the acknowledge bit cancels the keyboard IRQ window
	m.keybIRQCount = 12345
	m.Write(0xE7C3, 0x1D)
	if m.keybIRQCount != 0 {
		t.Fatalf("keyboard IRQ window survived: %d", m.keybIRQCount)
	}
}

func TestIO_TimerLatchAndControl(t *testing.T) {
	m, _, _ := newTestMachine(10)

	m.Write(0xE7C6, 0x12)
	m.Write(0xE7C7, 0x34)
	if m.latch6846 != 0x1234 {
		t.Fatalf("latch got %04X want 1234", m.latch6846)
	}
	// TCR bit 0 reloads the counter from the latch
	m.Write(0xE7C5, 0x01)
	if m.timer6846 != 0x1234<<3 {
		t.Fatalf("reload got %d want %d", m.timer6846, 0x1234<<3)
	}
	if got := m.Read(0xE7C6); got != byte(m.timer6846>>11) {
		t.Fatalf("TMSB got %02X", got)
	}
	if got := m.Read(0xE7C7); got != byte(m.timer6846>>3) {
		t.Fatalf("TLSB got %02X", got)
	}
}

func TestIO_MuteBit(t *testing.T) {
	m, _, _ := newTestMachine(10)

	m.Write(0xE7C1, 0x08)
	if !m.Muted() {
		t.Fatalf("mute bit not latched")
	}
	m.Write(0xE7C1, 0x00)
	if m.Muted() {
		t.Fatalf("mute bit not released")
	}
}

func TestIO_JoystickSoundMultiplex(t *testing.T) {
	m, _, _ := newTestMachine(10)

	// position port: selector off reads the shadow, on reads the sticks
	m.Write(0xE7CC, 0x12)
	if got := m.Read(0xE7CC); got != 0x12 {
		t.Fatalf("CC shadow got %02X want 12", got)
	}
	m.Write(0xE7CE, 0x04)
	if got := m.Read(0xE7CC); got != 0xFF {
		t.Fatalf("stick position got %02X want FF", got)
	}
	if got := m.Read(0xE7CE); got != 0x04 {
		t.Fatalf("E7CE read got %02X want hardwired 04", got)
	}

	// action port: selector routes writes to the DAC
	m.Write(0xE7CD, 0x21)
	if got := m.Read(0xE7CD); got != 0x21 {
		t.Fatalf("CD shadow got %02X want 21", got)
	}
	m.Write(0xE7CF, 0x04)
	m.Write(0xE7CD, 0x3F)
	if m.sound != 0x3F {
		t.Fatalf("sound level got %02X want 3F", m.sound)
	}
	if got := m.Read(0xE7CD); got != 0xC0|0x3F {
		t.Fatalf("action|sound got %02X want %02X", got, 0xC0|0x3F)
	}
}

func TestIO_PaletteWritePairs(t *testing.T) {
	m, _, v := newTestMachine(10)

	// color low then high commits entry 0 and advances the index by 2
	m.Write(0xE7DA, 0x4C) // G=4 R=C
	if m.port[0x1B] != 1 {
		t.Fatalf("index after low byte got %d want 1", m.port[0x1B])
	}
	m.Write(0xE7DA, 0x0B) // B=B
	if m.port[0x1B] != 2 {
		t.Fatalf("index after pair got %d want 2", m.port[0x1B])
	}
	if v.palette[0] != [3]int{0x0C, 0x04, 0x0B} {
		t.Fatalf("palette entry 0 got %v", v.palette[0])
	}

	// seeking with E7DB targets another entry
	m.Write(0xE7DB, 0x0A)
	m.Write(0xE7DA, 0x21)
	m.Write(0xE7DA, 0x03)
	if v.palette[5] != [3]int{0x01, 0x02, 0x03} {
		t.Fatalf("palette entry 5 got %v", v.palette[5])
	}

	// the index wraps inside the 32-byte latch
	m.Write(0xE7DB, 0x1F)
	m.Write(0xE7DA, 0x00)
	if m.port[0x1B] != 0 {
		t.Fatalf("index wrap got %d want 0", m.port[0x1B])
	}
}

func TestIO_PaletteReadback(t *testing.T) {
	m, _, _ := newTestMachine(10)

	m.x7da[0] = 0x12
	m.x7da[1] = 0x34
	m.Write(0xE7DB, 0x00)
	if got := m.Read(0xE7DA); got != 0x12 {
		t.Fatalf("latch[0] got %02X want 12", got)
	}
	if got := m.Read(0xE7DA); got != 0x34 {
		t.Fatalf("latch[1] got %02X want 34", got)
	}
	if m.port[0x1B] != 2 {
		t.Fatalf("read increment got %d want 2", m.port[0x1B])
	}
}

func TestIO_VideoModeDispatch(t *testing.T) {
	m, _, v := newTestMachine(10)

	cases := []struct {
		value byte
		mode  int
	}{
		{0x21, Video320x4},
		{0x2A, Video640x2},
		{0x41, Video320x4Special},
		{0x7B, Video160x16},
		{0x00, Video320x16},
	}
	for _, tc := range cases {
		m.Write(0xE7DC, tc.value)
		if v.mode != tc.mode {
			t.Fatalf("E7DC=%02X mode got %d want %d", tc.value, v.mode, tc.mode)
		}
	}
}

func TestIO_SystemRegisterReads(t *testing.T) {
	m, _, _ := newTestMachine(10)

	m.Write(0xE7DD, 0x5A)
	if got := m.Read(0xE7E4); got != 0x50 {
		t.Fatalf("E7E4 got %02X want 50", got)
	}
	m.Write(0xE7E6, 0xFF)
	if got := m.Read(0xE7E6); got != 0x7F {
		t.Fatalf("E7E6 got %02X want 7F", got)
	}
	m.port[0x1F] = 0x5C
	m.port[0x1E] = 0x01
	if got := m.Read(0xE7DF); got != 0x5C {
		t.Fatalf("E7DF got %02X want 5C", got)
	}
	if m.port[0x1E] != 0 {
		t.Fatalf("E7DF read did not clear port[1E]")
	}
}

func TestIO_FrameSyncBit(t *testing.T) {
	m, _, _ := newTestMachine(10)

	m.videolinenumber = 199
	if got := m.Read(0xE7CA); got != 0 {
		t.Fatalf("line 199 got %02X want 0", got)
	}
	m.videolinenumber = 200
	if got := m.Read(0xE7CA); got != 2 {
		t.Fatalf("line 200 got %02X want 2", got)
	}
}

func TestIO_LineWindowEdges(t *testing.T) {
	m, _, _ := newTestMachine(10)

	// iniln edge: opens at µs 11
	m.videolinenumber = 100
	m.videolinecycle = 11
	if got := m.Read(0xE7E7); got&0x20 == 0 {
		t.Fatalf("iniln closed at cycle 11: %02X", got)
	}
	m.videolinecycle = 10
	if got := m.Read(0xE7E7); got&0x20 != 0 {
		t.Fatalf("iniln open at cycle 10: %02X", got)
	}
	m.videolinecycle = 51
	if got := m.Read(0xE7E7); got&0x20 == 0 {
		t.Fatalf("iniln closed at cycle 51: %02X", got)
	}
	m.videolinecycle = 52
	if got := m.Read(0xE7E7); got&0x20 != 0 {
		t.Fatalf("iniln open at cycle 52: %02X", got)
	}
}

func TestIO_FrameWindowEdges(t *testing.T) {
	m, _, _ := newTestMachine(10)

	// initn edge: opens at line 56 µs 12
	m.videolinenumber = 56
	m.videolinecycle = 11
	if got := m.Read(0xE7E7); got&0x80 != 0 {
		t.Fatalf("initn open at 56/11: %02X", got)
	}
	m.videolinecycle = 12
	if got := m.Read(0xE7E7); got&0x80 == 0 {
		t.Fatalf("initn closed at 56/12: %02X", got)
	}
	// and closes at line 255 µs 50
	m.videolinenumber = 255
	m.videolinecycle = 50
	if got := m.Read(0xE7E7); got&0x80 == 0 {
		t.Fatalf("initn closed at 255/50: %02X", got)
	}
	m.videolinecycle = 51
	if got := m.Read(0xE7E7); got&0x80 != 0 {
		t.Fatalf("initn open at 255/51: %02X", got)
	}
}

func TestIO_UnmappedRegisterShadow(t *testing.T) {
	m, _, _ := newTestMachine(10)

	m.port[0x02] = 0x77
	if got := m.Read(0xE7C2); got != 0x77 {
		t.Fatalf("shadow read got %02X want 77", got)
	}
	// writes to unmapped registers are dropped
	m.Write(0xE7C2, 0x11)
	if m.port[0x02] != 0x77 {
		t.Fatalf("unmapped write landed: %02X", m.port[0x02])
	}
}

func TestBus_SystemROMWriteIgnored(t *testing.T) {
	m := New(Config{})
	m.SetROMs(testROMs())
	m.Attach(&stubCPU{cycles: 10}, newStubVid())
	m.HardReset()

	before := m.Read(0xF000)
	m.Write(0xF000, ^before)
	if got := m.Read(0xF000); got != before {
		t.Fatalf("system ROM written: got %02X want %02X", got, before)
	}
}
