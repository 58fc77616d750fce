package machine

import (
	"fmt"
	"os"
	"time"

	"to8emu/internal/cpu"
	"to8emu/internal/rompack"
)

// Memory geometry of the TO8/TO8D.
const (
	RAMSize     = 512 * 1024 // 32 banks of 16 KiB
	CartSize    = 64 * 1024  // 4 cartridge banks of 16 KiB
	PortSize    = 64         // E7C0..E7FF register shadow
	PaletteSize = 32         // palette write latch, 2 bytes per entry
	BasicSize   = 64 * 1024  // internal BASIC, 4 banks of 16 KiB
	MonitorSize = 16 * 1024  // monitor, 2 banks of 8 KiB

	// Number of keys of the TO8D keyboard.
	KeyboardKeys = 84

	// Sound level on 6 bits.
	maxSoundLevel = 0x3F
)

// Flavor selects which monitor ROM is active. The BASIC image is shared.
type Flavor int32

const (
	TO8 Flavor = iota
	TO8D
)

// Cartridge types.
const (
	CartSimple = iota // single 16 KiB bank
	CartSwitch        // bank switching via writes to 0x0000-0x0003
	CartOS9
)

// CPU is the processor the machine drives. The machine never looks inside it:
// it steps it, raises or drops the IRQ line, and carries its state blob in
// snapshots.
type CPU interface {
	Reset()
	Step() cpu.StepResult
	SetIRQ(bool)
	StateSize() int
	SaveState(buf []byte)
	LoadState(buf []byte)
}

// Renderer is the video back end fed by the raster gate. DrawSegment is called
// while the beam is inside the displayable area; NextLine when a scanline
// completes. The renderer reads video RAM back through the machine.
type Renderer interface {
	SetMode(mode int)
	SetPalette(index, r, g, b int)
	DrawSegment(line, cycle int)
	NextLine(line int)
	StateSize() int
	SaveState(buf []byte)
	LoadState(buf []byte)
}

// Video modes selected through E7DC.
const (
	Video320x16 = iota
	Video320x4
	Video320x4Special
	Video640x2
	Video160x16
)

// Config contains settings that affect emulation behavior.
type Config struct {
	Trace bool // log IO register traffic
}

// window maps a CPU address range onto a backing array: the effective index is
// int(addr)+off, so the bus can use raw 16-bit addresses without subtracting
// the window base.
type window struct {
	mem []byte
	off int
}

func (w window) at(a uint16) int { return int(a) + w.off }

// Machine is the whole TO8/TO8D machine core, advanced by Run.
type Machine struct {
	cfg    Config
	flavor Flavor
	roms   *rompack.Set

	cpu    CPU
	vid    Renderer
	ioHook func(op byte) // handler for trapped opcodes (floppy, tape, printer)

	// memory
	ram  [RAMSize]byte
	cart [CartSize]byte
	port [PortSize]byte
	x7da [PaletteSize]byte

	// mutable ROM copies, re-initialized and patched at hard reset
	basic   [BasicSize]byte
	monitor [MonitorSize]byte

	cartImage []byte // cartridge contents, restored into cart at reset

	// active windows
	ramvideo  window // 0x4000-0x5FFF
	ramuser   window // 0x6000-0x9FFF, fixed at reset
	rambank   window // 0xA000-0xDFFF
	rombank   window // 0x0000-0x3FFF
	romsys    window // 0xE000-0xFFFF
	pagevideo int    // scanout origin in ram

	// bank indices
	nvideopage int32 // 0-1
	nvideobank int32 // 0-3
	nrambank   int32 // 0-31
	nrombank   int32 // -1 or 0-7
	nsystbank  int32 // 0-1
	nctrlbank  int32 // 0-3

	cartype  int32
	carflags int32 // bits 0,1,4=bank, 2=cart-enabled, 3=write-enabled

	// keyboard, joysticks, lightpen
	touche       [KeyboardKeys]byte // 0x80=released, 0x00=pressed
	capslock     bool
	joysposition byte
	joysaction   byte
	xpen, ypen   int32
	penbutton    int32

	// raster position
	videolinecycle  int32 // 0-63 µs within the scanline
	videolinenumber int32 // 0-311
	vblnumber       int32 // 0-1, display enabled on 0
	displayflag     bool
	bordercolor     int32

	sound int32 // speaker level, 0-63
	mute  bool

	timer6846     int32 // countdown in CPU cycles, left-shifted by 3
	latch6846     int32 // 16-bit reload value
	keybIRQCount  int32 // cycles the keyboard IRQ stays asserted
	timerIRQCount int32 // cycles the timer IRQ stays asserted

	irq bool // state of the composite IRQ line

	debugIO bool
}

// New builds a machine with no CPU or renderer attached. Attach both, load a
// ROM set, then call HardReset before running.
func New(cfg Config) *Machine {
	m := &Machine{cfg: cfg, flavor: TO8}
	if cfg.Trace || os.Getenv("TO8_DEBUG_IO") != "" {
		m.debugIO = true
	}
	return m
}

// Attach wires the external collaborators. Must be called before HardReset.
func (m *Machine) Attach(c CPU, r Renderer) {
	m.cpu = c
	m.vid = r
}

// SetIOHook installs the handler invoked for trapped opcodes. The scheduler
// charges such a step 64 cycles whether or not a hook is installed.
func (m *Machine) SetIOHook(h func(op byte)) { m.ioHook = h }

// SetROMs installs the ROM images for both flavors.
func (m *Machine) SetROMs(set *rompack.Set) { m.roms = set }

// Flavor returns the currently selected machine flavor.
func (m *Machine) Flavor() Flavor { return m.flavor }

// SetFlavor switches between TO8 and TO8D. A change rebinds the monitor ROM
// and hard resets the machine; anything else is ignored.
func (m *Machine) SetFlavor(f Flavor) {
	if f != TO8 && f != TO8D {
		return
	}
	if f == m.flavor {
		return
	}
	m.flavor = f
	m.HardReset()
}

// LoadCart installs a cartridge image. The image is retained so hard resets
// re-seed the cartridge window.
func (m *Machine) LoadCart(data []byte) error {
	if len(data) == 0 || len(data) > CartSize {
		return fmt.Errorf("cartridge size %d not in 1..%d", len(data), CartSize)
	}
	m.cartImage = make([]byte, len(data))
	copy(m.cartImage, data)
	if len(data) > 0x4000 {
		m.cartype = CartSwitch
	} else {
		m.cartype = CartSimple
	}
	m.carflags = 4 // cart-enabled, bank 0
	m.seedCart()
	m.romBank()
	return nil
}

func (m *Machine) seedCart() {
	for i := range m.cart {
		m.cart[i] = 0
	}
	copy(m.cart[:], m.cartImage)
}

// HardReset reinitializes the whole machine: RAM checker pattern, ports,
// fresh patched ROM copies, default banking, released keys, CPU reset.
func (m *Machine) HardReset() {
	for i := range m.ram {
		// pull-up/pull-down pattern a real board shows at power-on
		if i&0x80 != 0 {
			m.ram[i] = 0xFF
		} else {
			m.ram[i] = 0x00
		}
	}
	for i := range m.port {
		m.port[i] = 0
	}
	m.port[0x09] = 0x0F
	m.seedCart()
	m.resetROMs()

	m.nvideobank = 0
	m.nrambank = 0
	m.nsystbank = 0
	m.nctrlbank = 0
	m.keybIRQCount = 0
	m.timerIRQCount = 0
	m.videolinecycle = 0
	m.videolinenumber = 0
	m.vblnumber = 0
	m.displayflag = false
	m.irq = false

	m.initProg()

	m.latch6846 = 65535
	m.timer6846 = 65535
	m.sound = 0
	m.mute = false
	m.penbutton = 0
	m.capslock = true
}

// initProg is the soft part of the reset: input state, default video mode,
// window binding, CPU reset vector.
func (m *Machine) initProg() {
	for i := range m.touche {
		m.touche[i] = 0x80
	}
	m.joysposition = 0xFF // sticks centered
	m.joysaction = 0xC0   // buttons released
	m.carflags &= 0xEC
	if m.vid != nil {
		m.vid.SetMode(Video320x16)
	}
	// fixed user RAM: CPU 0x6000-0x9FFF backed by ram[0x4000:0x8000]
	m.ramuser = window{mem: m.ram[:], off: -0x2000}
	m.videoPageBorder(m.port[0x1D])
	m.videoRAM()
	m.ramBank()
	m.romBank()
	if m.cpu != nil {
		m.cpu.SetIRQ(false)
		m.cpu.Reset()
	}
}

// resetROMs restores the mutable BASIC/monitor copies from their source blobs,
// applies the patch tables and the boot date.
func (m *Machine) resetROMs() {
	for i := range m.basic {
		m.basic[i] = 0
	}
	for i := range m.monitor {
		m.monitor[i] = 0
	}
	if m.roms != nil {
		copy(m.basic[:], m.roms.Basic)
		mon, patch := m.roms.Monitor(m.flavor == TO8D)
		copy(m.monitor[:], mon)
		rompack.Patch(m.basic[:], m.roms.BasicPatch, 0)
		// monitor patch addresses are CPU addresses in 0xE000-0xFFFF
		rompack.Patch(m.monitor[:], patch, -0xE000)
	}
	// replace the ROM's jj-mm-aa placeholder with the host date
	date := time.Now().Format("02-01-06")
	copy(m.basic[0xEB90:0xEB98], date)
	m.basic[0xEB98] = 0x1F
	// hook the reset routine so boot picks the date up
	// E4E2  8E 2B 90  LDX #$2B90
	// E4E5  BD 29 C8  JSR $29C8
	m.basic[0xE4E2] = 0x8E
	m.basic[0xE4E3] = 0x2B
	m.basic[0xE4E4] = 0x90
	m.basic[0xE4E5] = 0xBD
	m.basic[0xE4E6] = 0x29
	m.basic[0xE4E7] = 0xC8
}

// AudioSample converts the 6-bit speaker level to a signed 16-bit PCM sample.
// Muting is the caller's business (see Muted).
func (m *Machine) AudioSample() int16 {
	return int16(int(m.sound)*65535/maxSoundLevel - 65536/2)
}

// Muted reports the state of the mute bit in E7C1.
func (m *Machine) Muted() bool { return m.mute }

// Accessors used by the renderer while scanning out.

// VideoPageByte reads the displayed video page. Offsets 0x0000-0x1FFF address
// the forme plane, 0x2000-0x3FFF the couleur plane.
func (m *Machine) VideoPageByte(off int) byte { return m.ram[m.pagevideo+off] }

// BorderColor returns the palette index of the screen border.
func (m *Machine) BorderColor() int { return int(m.bordercolor) }

// LineCycle returns the µs position inside the current scanline (0-63).
func (m *Machine) LineCycle() int { return int(m.videolinecycle) }

// LineNumber returns the current scanline (0-311).
func (m *Machine) LineNumber() int { return int(m.videolinenumber) }

// SetLightpen updates the lightpen position and button state.
func (m *Machine) SetLightpen(x, y int, button bool) {
	m.xpen = int32(x)
	m.ypen = int32(y)
	if button {
		m.penbutton = 1
	} else {
		m.penbutton = 0
	}
}

// setIRQ drives the CPU interrupt line, remembering its state for snapshots.
func (m *Machine) setIRQ(level bool) {
	m.irq = level
	if m.cpu != nil {
		m.cpu.SetIRQ(level)
	}
}
