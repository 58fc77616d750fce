package machine

// Window resolvers. Each is pure in the current port state: a write to one of
// the driving registers calls the matching resolver before the bus decodes
// anything else, so the next access already sees the new mapping.

// videoRAM recomputes the video RAM window (0x4000-0x5FFF) and the system ROM
// window (0xE000-0xFFFF) from E7C3.
func (m *Machine) videoRAM() {
	m.nvideopage = int32(m.port[0x03] & 1)
	m.ramvideo = window{mem: m.ram[:], off: int(m.nvideopage)<<13 - 0x4000}
	m.nsystbank = int32(m.port[0x03]&0x10) >> 4
	m.romsys = window{mem: m.monitor[:], off: int(m.nsystbank)<<13 - 0xE000}
}

// to7RAMBanks decodes the TO7/70-compatible bank select bits of E7C9.
var to7RAMBanks = map[byte]int32{
	0x08: 0,
	0x10: 1,
	0xE0: 2,
	0xA0: 3, // banks 5 and 6 are swapped on TO7/70 and TO9
	0x60: 4,
	0x20: 5,
}

// ramBank recomputes the banked RAM window (0xA000-0xDFFF). In TO8 mode the
// bank comes from E7E5; otherwise the TO7/70 compatibility decode of E7C9
// applies, with a different address bias.
func (m *Machine) ramBank() {
	if m.port[0x27]&0x10 != 0 {
		m.nrambank = int32(m.port[0x25] & 0x1F)
		m.rambank = window{mem: m.ram[:], off: int(m.nrambank)<<14 - 0xA000}
		return
	}
	n, ok := to7RAMBanks[m.port[0x09]&0xF8]
	if !ok {
		return // unknown pattern: keep the current bank
	}
	m.nrambank = n
	m.rambank = window{mem: m.ram[:], off: int(m.nrambank)<<14 - 0x2000}
}

// romBank recomputes the 0x0000-0x3FFF window. Three sources, in priority
// order: a RAM bank overlay (E7E6 bit 5, with its two 8 KiB halves swapped on
// access), the internal BASIC ROM (E7C3 bit 2), or the cartridge.
func (m *Machine) romBank() {
	if m.port[0x26]&0x20 != 0 {
		m.rombank = window{mem: m.ram[:], off: int(m.port[0x26]&0x1F) << 14}
		return
	}
	if m.port[0x03]&0x04 != 0 {
		m.nrombank = m.carflags & 3
		m.rombank = window{mem: m.basic[:], off: int(m.nrombank) << 14}
		return
	}
	m.nrombank = -1
	m.rombank = window{mem: m.cart[:], off: int(m.carflags&3) << 14}
}

// videoPageBorder latches E7DD: scanout origin and border color.
func (m *Machine) videoPageBorder(c byte) {
	m.port[0x1D] = c
	m.pagevideo = int(c&0xC0) << 8
	m.bordercolor = int32(c & 0x0F)
}

// videoMode latches E7DC and tells the renderer which decode to use.
func (m *Machine) videoMode(c byte) {
	m.port[0x1C] = c
	if m.vid == nil {
		return
	}
	switch c {
	case 0x21:
		m.vid.SetMode(Video320x4)
	case 0x2A:
		m.vid.SetMode(Video640x2)
	case 0x41:
		m.vid.SetMode(Video320x4Special)
	case 0x7B:
		m.vid.SetMode(Video160x16)
	default:
		m.vid.SetMode(Video320x16)
	}
}

// paletteColor latches one byte of a palette entry through E7DA. Entries are
// written low byte first; the odd write commits the pair.
func (m *Machine) paletteColor(c byte) {
	i := m.port[0x1B]
	m.x7da[i&0x1F] = c
	m.port[0x1B] = (m.port[0x1B] + 1) & 0x1F
	if i&1 != 0 {
		lo := m.x7da[i&0x1E]
		if m.vid != nil {
			m.vid.SetPalette(int(i&0x1F)>>1, int(lo&0x0F), int(lo>>4), int(c&0x0F))
		}
	}
}
