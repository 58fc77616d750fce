package machine

import "encoding/binary"

// Snapshots are a flat little-endian image of the whole machine. The field
// order is fixed; integers are 4 bytes, flags serialize as 0/1 int32. Callers
// must size buffers with SnapshotSize before Serialize/Deserialize.

const snapshotInts = 6 + // bank indices
	1 + // carflags
	KeyboardKeys + // key matrix
	1 + // capslock
	2 + // joystick position/action
	3 + // lightpen
	4 + // raster counters + displayflag
	1 + // border color
	2 + // sound + mute
	4 // timer, latch, irq pulse counters

// SnapshotSize returns the exact byte count of a serialized machine.
func (m *Machine) SnapshotSize() int {
	n := 4 // flavor
	if m.cpu != nil {
		n += m.cpu.StateSize()
	}
	if m.vid != nil {
		n += m.vid.StateSize()
	}
	n += RAMSize + PortSize + PaletteSize
	n += snapshotInts * 4
	return n
}

type snapCursor struct {
	buf []byte
	off int
}

func (s *snapCursor) putI32(v int32) {
	binary.LittleEndian.PutUint32(s.buf[s.off:], uint32(v))
	s.off += 4
}

func (s *snapCursor) i32() int32 {
	v := int32(binary.LittleEndian.Uint32(s.buf[s.off:]))
	s.off += 4
	return v
}

func (s *snapCursor) putBool(v bool) {
	if v {
		s.putI32(1)
	} else {
		s.putI32(0)
	}
}

func (s *snapCursor) flag() bool { return s.i32() != 0 }

func (s *snapCursor) putBytes(b []byte) {
	copy(s.buf[s.off:], b)
	s.off += len(b)
}

func (s *snapCursor) bytes(b []byte) {
	copy(b, s.buf[s.off:])
	s.off += len(b)
}

// Serialize writes the machine state into buf, which must hold at least
// SnapshotSize bytes.
func (m *Machine) Serialize(buf []byte) {
	s := &snapCursor{buf: buf}
	s.putI32(int32(m.flavor))
	if m.cpu != nil {
		n := m.cpu.StateSize()
		m.cpu.SaveState(s.buf[s.off : s.off+n])
		s.off += n
	}
	if m.vid != nil {
		n := m.vid.StateSize()
		m.vid.SaveState(s.buf[s.off : s.off+n])
		s.off += n
	}
	s.putBytes(m.ram[:])
	s.putBytes(m.port[:])
	s.putBytes(m.x7da[:])
	s.putI32(m.nvideopage)
	s.putI32(m.nvideobank)
	s.putI32(m.nrambank)
	s.putI32(m.nrombank)
	s.putI32(m.nsystbank)
	s.putI32(m.nctrlbank)
	s.putI32(m.carflags)
	for _, t := range m.touche {
		s.putI32(int32(t))
	}
	s.putBool(m.capslock)
	s.putI32(int32(m.joysposition))
	s.putI32(int32(m.joysaction))
	s.putI32(m.xpen)
	s.putI32(m.ypen)
	s.putI32(m.penbutton)
	s.putI32(m.videolinecycle)
	s.putI32(m.videolinenumber)
	s.putI32(m.vblnumber)
	s.putBool(m.displayflag)
	s.putI32(m.bordercolor)
	s.putI32(m.sound)
	s.putBool(m.mute)
	s.putI32(m.timer6846)
	s.putI32(m.latch6846)
	s.putI32(m.keybIRQCount)
	s.putI32(m.timerIRQCount)
}

// Deserialize restores the machine from a buffer produced by Serialize on a
// machine with the same collaborators. The flavor is applied first (a change
// hard resets and rebinds the ROMs); the window tuples are recomputed at the
// end so they agree with the restored ports.
func (m *Machine) Deserialize(buf []byte) {
	s := &snapCursor{buf: buf}
	m.SetFlavor(Flavor(s.i32()))
	if m.cpu != nil {
		n := m.cpu.StateSize()
		m.cpu.LoadState(s.buf[s.off : s.off+n])
		s.off += n
	}
	if m.vid != nil {
		n := m.vid.StateSize()
		m.vid.LoadState(s.buf[s.off : s.off+n])
		s.off += n
	}
	s.bytes(m.ram[:])
	s.bytes(m.port[:])
	s.bytes(m.x7da[:])
	m.nvideopage = s.i32()
	m.nvideobank = s.i32()
	m.nrambank = s.i32()
	m.nrombank = s.i32()
	m.nsystbank = s.i32()
	m.nctrlbank = s.i32()
	m.carflags = s.i32()
	for i := range m.touche {
		m.touche[i] = byte(s.i32())
	}
	m.capslock = s.flag()
	m.joysposition = byte(s.i32())
	m.joysaction = byte(s.i32())
	m.xpen = s.i32()
	m.ypen = s.i32()
	m.penbutton = s.i32()
	m.videolinecycle = s.i32()
	m.videolinenumber = s.i32()
	m.vblnumber = s.i32()
	m.displayflag = s.flag()
	m.bordercolor = s.i32()
	m.sound = s.i32()
	m.mute = s.flag()
	m.timer6846 = s.i32()
	m.latch6846 = s.i32()
	m.keybIRQCount = s.i32()
	m.timerIRQCount = s.i32()

	m.ramuser = window{mem: m.ram[:], off: -0x2000}
	m.videoPageBorder(m.port[0x1D])
	m.videoRAM()
	m.ramBank()
	m.romBank()
}
