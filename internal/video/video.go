// Package video renders the Thomson gate-array output into an RGBA
// framebuffer. The machine drives it a segment at a time while the raster is
// inside the displayable window; pixels are read back from the machine's
// current video page.
package video

import "encoding/binary"

// Memory is the view of the machine the renderer scans out from. Offsets
// 0x0000-0x1FFF are the forme plane, 0x2000-0x3FFF the couleur plane.
type Memory interface {
	VideoPageByte(off int) byte
	BorderColor() int
}

// Modes, in the machine's numbering.
const (
	Mode320x16 = iota
	Mode320x4
	Mode320x4Special
	Mode640x2
	Mode160x16
)

// Framebuffer geometry: 42 µs of visible beam per line at 16 pixels per µs,
// lines 48-263 of the frame.
const (
	Width  = 672
	Height = 216

	firstLine   = 48  // top border starts here
	videoTop    = 56  // first displayable line
	videoBottom = 255 // last displayable line
	firstSlot   = 10  // µs the visible beam starts at
	lastSlot    = 51  // µs the visible beam ends at
)

// defaultPalette is the palette the machine boots with, as R, G, B nibbles
// that SetPalette widens to 8 bits per channel.
var defaultPalette = [16][3]byte{
	{0x0, 0x0, 0x0}, // black
	{0xF, 0x0, 0x0}, // red
	{0x0, 0xF, 0x0}, // green
	{0xF, 0xF, 0x0}, // yellow
	{0x0, 0x0, 0xF}, // blue
	{0xF, 0x0, 0xF}, // magenta
	{0x0, 0xF, 0xF}, // cyan
	{0xF, 0xF, 0xF}, // white
	{0x7, 0x7, 0x7}, // gray
	{0xF, 0x7, 0x7}, // pink
	{0x7, 0xF, 0x7}, // light green
	{0xF, 0xF, 0x7}, // light yellow
	{0x7, 0x7, 0xF}, // light blue
	{0xF, 0x7, 0xF}, // parma
	{0x7, 0xF, 0xF}, // light cyan
	{0xF, 0x7, 0x0}, // orange
}

// Gate is the rendering half of the video gate array.
type Gate struct {
	mem  Memory
	mode int32
	pal  [16][4]byte // RGBA
	fb   []byte      // RGBA Width*Height
	next int32       // next µs slot to draw on the current line
}

// New creates a renderer reading from mem.
func New(mem Memory) *Gate {
	g := &Gate{mem: mem, fb: make([]byte, Width*Height*4)}
	g.ResetPalette()
	return g
}

// Framebuffer returns the RGBA pixels, Width*Height*4 bytes.
func (g *Gate) Framebuffer() []byte { return g.fb }

// Size returns the framebuffer dimensions.
func (g *Gate) Size() (int, int) { return Width, Height }

// ResetPalette restores the boot palette.
func (g *Gate) ResetPalette() {
	for i, c := range defaultPalette {
		g.SetPalette(i, int(c[0]), int(c[1]), int(c[2]))
	}
}

// SetMode selects the pixel decode used from the next segment on.
func (g *Gate) SetMode(mode int) { g.mode = int32(mode) }

// SetPalette commits one palette entry from 4-bit components.
func (g *Gate) SetPalette(index, r, gr, b int) {
	if index < 0 || index > 15 {
		return
	}
	g.pal[index] = [4]byte{byte(r&0x0F) * 17, byte(gr&0x0F) * 17, byte(b&0x0F) * 17, 0xFF}
}

// DrawSegment catches the framebuffer up with the beam position: everything
// between the last drawn slot and µs position cycle on scanline line.
func (g *Gate) DrawSegment(line, cycle int) {
	row := line - firstLine
	if row < 0 || row >= Height {
		return
	}
	for s := int(g.next); s <= cycle && s <= lastSlot; s++ {
		if s >= firstSlot {
			g.drawSlot(row, line, s-firstSlot)
		}
	}
	if cycle >= int(g.next) {
		g.next = int32(cycle) + 1
	}
}

// NextLine completes the current scanline and rewinds for the next one.
func (g *Gate) NextLine(line int) {
	g.DrawSegment(line, lastSlot)
	g.next = 0
}

// drawSlot renders one µs of beam: 16 pixels. The first and last slots and
// the border lines show the border color.
func (g *Gate) drawSlot(row, line, slot int) {
	x0 := slot * 16
	if slot == 0 || slot == lastSlot-firstSlot || line < videoTop || line > videoBottom {
		border := g.pal[g.mem.BorderColor()&0x0F]
		for i := 0; i < 16; i++ {
			g.put(x0+i, row, border)
		}
		return
	}
	col := slot - 1 // byte column 0-39
	off := (line-videoTop)*40 + col
	forme := g.mem.VideoPageByte(off)
	couleur := g.mem.VideoPageByte(0x2000 + off)

	switch g.mode {
	case Mode640x2:
		// 16 single-width pixels, forme then couleur plane
		for i := 0; i < 8; i++ {
			g.put(x0+i, row, g.pal[forme>>(7-i)&1])
		}
		for i := 0; i < 8; i++ {
			g.put(x0+8+i, row, g.pal[couleur>>(7-i)&1])
		}
	case Mode320x4:
		for i := 0; i < 8; i++ {
			c := forme>>(7-i)&1 | couleur>>(7-i)&1<<1
			g.put2(x0+2*i, row, g.pal[c])
		}
	case Mode320x4Special:
		// same two-plane decode with the planes crossed
		for i := 0; i < 8; i++ {
			c := couleur>>(7-i)&1 | forme>>(7-i)&1<<1
			g.put2(x0+2*i, row, g.pal[c])
		}
	case Mode160x16:
		// four quadruple-width pixels from the two nibble pairs
		g.put4(x0, row, g.pal[forme>>4])
		g.put4(x0+4, row, g.pal[forme&0x0F])
		g.put4(x0+8, row, g.pal[couleur>>4])
		g.put4(x0+12, row, g.pal[couleur&0x0F])
	default: // Mode320x16
		fg := g.pal[couleur>>4]
		bg := g.pal[couleur&0x0F]
		for i := 0; i < 8; i++ {
			c := bg
			if forme&(0x80>>i) != 0 {
				c = fg
			}
			g.put2(x0+2*i, row, c)
		}
	}
}

func (g *Gate) put(x, y int, c [4]byte) {
	i := (y*Width + x) * 4
	g.fb[i] = c[0]
	g.fb[i+1] = c[1]
	g.fb[i+2] = c[2]
	g.fb[i+3] = c[3]
}

func (g *Gate) put2(x, y int, c [4]byte) {
	g.put(x, y, c)
	g.put(x+1, y, c)
}

func (g *Gate) put4(x, y int, c [4]byte) {
	g.put2(x, y, c)
	g.put2(x+2, y, c)
}

// Snapshot blob: mode, line progress, palette. The framebuffer itself is
// transient and redrawn within a frame.
const stateSize = 4 + 4 + 16*4

// StateSize returns the byte count of a serialized renderer.
func (g *Gate) StateSize() int { return stateSize }

// SaveState writes the renderer state into buf.
func (g *Gate) SaveState(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], uint32(g.mode))
	binary.LittleEndian.PutUint32(buf[4:], uint32(g.next))
	off := 8
	for _, c := range g.pal {
		copy(buf[off:], c[:])
		off += 4
	}
}

// LoadState restores the renderer state from buf.
func (g *Gate) LoadState(buf []byte) {
	g.mode = int32(binary.LittleEndian.Uint32(buf[0:]))
	g.next = int32(binary.LittleEndian.Uint32(buf[4:]))
	off := 8
	for i := range g.pal {
		copy(g.pal[i][:], buf[off:off+4])
		off += 4
	}
}
