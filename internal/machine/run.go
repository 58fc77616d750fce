package machine

// Run advances the machine by at least budget CPU cycles and returns the
// overshoot, which the host subtracts from the next budget to hold the
// long-term rate. A budget <= 0 does no work.
//
// Each iteration steps the CPU one instruction, walks the raster position
// forward, ages the two IRQ sources, re-aggregates the composite IRQ line and
// counts the 6846 timer down.
func (m *Machine) Run(budget int) int {
	if budget <= 0 {
		return 0
	}
	cycles := 0
	for cycles < budget {
		r := m.cpu.Step()
		opcycles := r.Cycles
		if r.Special {
			// trapped opcode: the host emulates the device, the bus pays
			// a fixed 64 cycles
			if m.ioHook != nil {
				m.ioHook(r.Opcode)
			}
			opcycles = 64
		}
		cycles += opcycles
		m.videolinecycle += int32(opcycles)
		if m.displayflag && m.vid != nil {
			m.vid.DrawSegment(int(m.videolinenumber), int(m.videolinecycle))
		}
		if m.videolinecycle >= 64 {
			m.videolinecycle -= 64
			if m.displayflag && m.vid != nil {
				m.vid.NextLine(int(m.videolinenumber))
			}
			m.videolinenumber++
			if m.videolinenumber > 311 {
				// lines 0-47 top blanking, 48-55 top border,
				// 56-255 displayable, 256-263 bottom border,
				// 264-311 bottom blanking
				m.videolinenumber -= 312
				m.vblnumber++
				if m.vblnumber >= 2 {
					m.vblnumber = 0
				}
			}
			m.displayflag = m.vblnumber == 0 &&
				m.videolinenumber > 47 && m.videolinenumber < 264
		}
		// age the timer IRQ pulse
		if m.timerIRQCount > 0 {
			m.timerIRQCount -= int32(opcycles)
		}
		if m.timerIRQCount <= 0 {
			m.port[0x00] &= 0xFE
		}
		// age the keyboard IRQ pulse
		if m.keybIRQCount > 0 {
			m.keybIRQCount -= int32(opcycles)
		}
		if m.keybIRQCount <= 0 {
			m.port[0x00] &= 0xFD
		}
		// drop the composite line once no source is active
		if m.port[0x00]&0x07 == 0 {
			m.port[0x00] &= 0x7F
			m.setIRQ(false)
		}
		// 6846 countdown; the prescaler bit selects /1 or /8 rates
		if m.port[0x05]&0x01 == 0 {
			if m.port[0x05]&0x04 != 0 {
				m.timer6846 -= int32(opcycles)
			} else {
				m.timer6846 -= int32(opcycles) << 3
			}
		}
		if m.timer6846 <= 5 {
			m.timerIRQCount = 100
			m.timer6846 = m.latch6846 << 3
			m.port[0x00] |= 0x81
			m.setIRQ(true)
		}
	}
	return cycles - budget
}
