package machine

// Scancodes with machine-level meaning. Codes above 0x4F are modifiers and
// joystick contacts that never reach the monitor buffer.
const (
	ScancodeCapsLock   = 0x50
	ScancodeShiftLeft  = 0x51
	ScancodeShiftRight = 0x52
	ScancodeCtrl       = 0x53
)

// capslockKeys are the alphabetic scancodes the capslock latch upgrades to
// their shifted form.
var capslockKeys = map[byte]bool{
	0x02: true, 0x03: true, 0x07: true, 0x0A: true, 0x0B: true, 0x0F: true,
	0x12: true, 0x13: true, 0x17: true, 0x1A: true, 0x1B: true, 0x1F: true,
	0x22: true, 0x23: true, 0x27: true, 0x2A: true, 0x2B: true, 0x2F: true,
	0x32: true, 0x33: true, 0x3A: true, 0x3B: true, 0x42: true, 0x43: true,
	0x4A: true, 0x4B: true,
}

// Key updates the keyboard matrix. A press deposits the scancode (with its
// shift bit) into the monitor's key buffer and raises the keyboard IRQ for at
// most 500 ms of machine time; the IRQ drops early once all keys are released.
func (m *Machine) Key(scancode byte, down bool) {
	if int(scancode) >= KeyboardKeys {
		return
	}
	if down {
		m.touche[scancode] = 0x00
	} else {
		m.touche[scancode] = 0x80
	}
	if !down {
		// with any key still held the matrix state is unchanged
		for i := 0; i < 0x50; i++ {
			if m.touche[i] == 0 {
				return
			}
		}
		m.port[0x08] = 0x00
		m.keybIRQCount = 0
		return
	}
	if scancode == ScancodeCapsLock {
		m.capslock = !m.capslock
		return
	}
	if scancode > 0x4F {
		return // shift, ctrl and joystick contacts
	}
	var shift byte
	if m.touche[ScancodeShiftLeft] == 0 || m.touche[ScancodeShiftRight] == 0 {
		shift = 0x80
	}
	if m.capslock && capslockKeys[scancode] {
		shift = 0x80
	}
	m.monitor[0x30F8] = scancode | shift
	if m.touche[ScancodeCtrl] == 0 {
		m.monitor[0x3125] = 1
	} else {
		m.monitor[0x3125] = 0
	}
	m.port[0x08] |= 0x01
	m.port[0x00] |= 0x82 // CP1: keyboard interrupt
	m.keybIRQCount = 500000
	m.setIRQ(true)
}

// Joystick axes accepted by Joy. Axes 0-3 are stick 1, 4-7 stick 2, 8-9 the
// two fire buttons.
const (
	Joy1Up = iota
	Joy1Down
	Joy1Left
	Joy1Right
	Joy2Up
	Joy2Down
	Joy2Left
	Joy2Right
	Joy1Fire
	Joy2Fire
)

// Joy updates a joystick contact. Position bits are active-low; a direction
// only engages when its opposite is released, like the real switch gimbal.
func (m *Machine) Joy(axis int, on bool) {
	var n byte
	switch axis {
	case Joy1Up:
		if m.joysposition&0x02 != 0 {
			n = 0x01
		}
	case Joy1Down:
		if m.joysposition&0x01 != 0 {
			n = 0x02
		}
	case Joy1Left:
		if m.joysposition&0x08 != 0 {
			n = 0x04
		}
	case Joy1Right:
		if m.joysposition&0x04 != 0 {
			n = 0x08
		}
	case Joy2Up:
		if m.joysposition&0x20 != 0 {
			n = 0x10
		}
	case Joy2Down:
		if m.joysposition&0x10 != 0 {
			n = 0x20
		}
	case Joy2Left:
		if m.joysposition&0x80 != 0 {
			n = 0x40
		}
	case Joy2Right:
		if m.joysposition&0x40 != 0 {
			n = 0x80
		}
	case Joy1Fire:
		if on {
			m.joysaction &^= 0x40
		} else {
			m.joysaction |= 0x40
		}
		return
	case Joy2Fire:
		if on {
			m.joysaction &^= 0x80
		} else {
			m.joysaction |= 0x80
		}
		return
	default:
		return
	}
	if n == 0 {
		return
	}
	if on {
		m.joysposition &^= n
	} else {
		m.joysposition |= n
	}
}
