package cpu

import "encoding/binary"

// Serialized register file: five 16-bit registers, four 8-bit registers and
// one flags byte, little-endian, fixed layout.
const stateSize = 5*2 + 4 + 1

const (
	stIRQ = 1 << iota
	stFIRQ
	stNMI
	stWaiting
	stSyncing
)

// StateSize returns the byte count of a serialized CPU.
func (c *CPU) StateSize() int { return stateSize }

// SaveState writes the register file into buf, which must hold StateSize
// bytes.
func (c *CPU) SaveState(buf []byte) {
	binary.LittleEndian.PutUint16(buf[0:], c.PC)
	binary.LittleEndian.PutUint16(buf[2:], c.X)
	binary.LittleEndian.PutUint16(buf[4:], c.Y)
	binary.LittleEndian.PutUint16(buf[6:], c.U)
	binary.LittleEndian.PutUint16(buf[8:], c.S)
	buf[10] = c.A
	buf[11] = c.B
	buf[12] = c.DP
	buf[13] = c.CC
	var fl byte
	if c.irq {
		fl |= stIRQ
	}
	if c.firq {
		fl |= stFIRQ
	}
	if c.nmiPending {
		fl |= stNMI
	}
	if c.waiting {
		fl |= stWaiting
	}
	if c.syncing {
		fl |= stSyncing
	}
	buf[14] = fl
}

// LoadState restores the register file from buf.
func (c *CPU) LoadState(buf []byte) {
	c.PC = binary.LittleEndian.Uint16(buf[0:])
	c.X = binary.LittleEndian.Uint16(buf[2:])
	c.Y = binary.LittleEndian.Uint16(buf[4:])
	c.U = binary.LittleEndian.Uint16(buf[6:])
	c.S = binary.LittleEndian.Uint16(buf[8:])
	c.A = buf[10]
	c.B = buf[11]
	c.DP = buf[12]
	c.CC = buf[13]
	fl := buf[14]
	c.irq = fl&stIRQ != 0
	c.firq = fl&stFIRQ != 0
	c.nmiPending = fl&stNMI != 0
	c.waiting = fl&stWaiting != 0
	c.syncing = fl&stSyncing != 0
}
