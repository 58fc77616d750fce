package cpu

// Page-1 opcodes with no documented meaning. They surface as Special step
// results; the monitor uses them as service traps.
var illegalPage1 = map[byte]bool{
	0x01: true, 0x02: true, 0x05: true, 0x0B: true,
	0x14: true, 0x15: true, 0x18: true, 0x1B: true,
	0x38: true, 0x3E: true,
	0x41: true, 0x42: true, 0x45: true, 0x4B: true, 0x4E: true,
	0x51: true, 0x52: true, 0x55: true, 0x5B: true, 0x5E: true,
	0x61: true, 0x62: true, 0x65: true, 0x6B: true,
	0x71: true, 0x72: true, 0x75: true, 0x7B: true,
	0x87: true, 0x8F: true, 0xC7: true, 0xCD: true, 0xCF: true,
}

func (c *CPU) execute(op byte) StepResult {
	if op == 0x10 {
		return c.executePage2(c.fetch8())
	}
	if op == 0x11 {
		return c.executePage3(c.fetch8())
	}
	if illegalPage1[op] {
		return StepResult{Special: true, Opcode: op}
	}

	switch {
	case op < 0x10: // memory unaries, direct page
		addr := c.direct()
		if op == 0x0E { // JMP
			c.PC = addr
			return StepResult{Cycles: 3}
		}
		return c.memUnary(op&0x0F, addr, 6)

	case op < 0x20:
		return c.executeMisc1(op)

	case op < 0x30: // short branches
		off := int8(c.fetch8())
		if c.branchCond(op) {
			c.PC += uint16(int16(off))
		}
		return StepResult{Cycles: 3}

	case op < 0x40:
		return c.executeMisc3(op)

	case op < 0x50: // unaries on A
		c.A = c.regUnary(op&0x0F, c.A)
		return StepResult{Cycles: 2}

	case op < 0x60: // unaries on B
		c.B = c.regUnary(op&0x0F, c.B)
		return StepResult{Cycles: 2}

	case op < 0x70: // memory unaries, indexed
		addr, e := c.indexed()
		if op == 0x6E { // JMP
			c.PC = addr
			return StepResult{Cycles: 3 + e}
		}
		return c.memUnary(op&0x0F, addr, 6+e)

	case op < 0x80: // memory unaries, extended
		addr := c.fetch16()
		if op == 0x7E { // JMP
			c.PC = addr
			return StepResult{Cycles: 4}
		}
		return c.memUnary(op&0x0F, addr, 7)

	default:
		return c.executeALU(op)
	}
}

// executeMisc1 covers 0x12-0x1F.
func (c *CPU) executeMisc1(op byte) StepResult {
	switch op {
	case 0x12: // NOP
		return StepResult{Cycles: 2}
	case 0x13: // SYNC
		c.syncing = true
		return StepResult{Cycles: 4}
	case 0x16: // LBRA
		off := c.fetch16()
		c.PC += off
		return StepResult{Cycles: 5}
	case 0x17: // LBSR
		off := c.fetch16()
		c.push16s(c.PC)
		c.PC += off
		return StepResult{Cycles: 9}
	case 0x19: // DAA
		lsn := c.A & 0x0F
		msn := c.A >> 4
		var adj byte
		if lsn > 9 || c.CC&flagH != 0 {
			adj |= 0x06
		}
		if msn > 9 || c.CC&flagC != 0 || (msn > 8 && lsn > 9) {
			adj |= 0x60
		}
		r := uint16(c.A) + uint16(adj)
		if r > 0xFF {
			c.CC |= flagC
		}
		c.A = byte(r)
		c.setNZ8(c.A)
		c.setFlag(flagV, false)
		return StepResult{Cycles: 2}
	case 0x1A: // ORCC
		c.CC |= c.fetch8()
		return StepResult{Cycles: 3}
	case 0x1C: // ANDCC
		c.CC &= c.fetch8()
		return StepResult{Cycles: 3}
	case 0x1D: // SEX
		if c.B&0x80 != 0 {
			c.A = 0xFF
		} else {
			c.A = 0x00
		}
		c.setNZ16(c.D())
		return StepResult{Cycles: 2}
	case 0x1E: // EXG
		pb := c.fetch8()
		a, b := c.tfrGet(pb>>4), c.tfrGet(pb&0x0F)
		c.tfrSet(pb>>4, b)
		c.tfrSet(pb&0x0F, a)
		return StepResult{Cycles: 8}
	default: // 0x1F TFR
		pb := c.fetch8()
		c.tfrSet(pb&0x0F, c.tfrGet(pb>>4))
		return StepResult{Cycles: 6}
	}
}

// executeMisc3 covers 0x30-0x3F.
func (c *CPU) executeMisc3(op byte) StepResult {
	switch op {
	case 0x30: // LEAX
		ea, e := c.indexed()
		c.X = ea
		c.setFlag(flagZ, c.X == 0)
		return StepResult{Cycles: 4 + e}
	case 0x31: // LEAY
		ea, e := c.indexed()
		c.Y = ea
		c.setFlag(flagZ, c.Y == 0)
		return StepResult{Cycles: 4 + e}
	case 0x32: // LEAS
		ea, e := c.indexed()
		c.S = ea
		return StepResult{Cycles: 4 + e}
	case 0x33: // LEAU
		ea, e := c.indexed()
		c.U = ea
		return StepResult{Cycles: 4 + e}
	case 0x34: // PSHS
		return c.pushRegs(c.fetch8(), false)
	case 0x35: // PULS
		return c.pullRegs(c.fetch8(), false)
	case 0x36: // PSHU
		return c.pushRegs(c.fetch8(), true)
	case 0x37: // PULU
		return c.pullRegs(c.fetch8(), true)
	case 0x39: // RTS
		c.PC = c.pull16s()
		return StepResult{Cycles: 5}
	case 0x3A: // ABX
		c.X += uint16(c.B)
		return StepResult{Cycles: 3}
	case 0x3B: // RTI
		c.CC = c.pull8s()
		if c.CC&flagE != 0 {
			c.A = c.pull8s()
			c.B = c.pull8s()
			c.DP = c.pull8s()
			c.X = c.pull16s()
			c.Y = c.pull16s()
			c.U = c.pull16s()
			c.PC = c.pull16s()
			return StepResult{Cycles: 15}
		}
		c.PC = c.pull16s()
		return StepResult{Cycles: 6}
	case 0x3C: // CWAI
		c.CC &= c.fetch8()
		c.stackAll()
		c.waiting = true
		return StepResult{Cycles: 20}
	case 0x3D: // MUL
		d := uint16(c.A) * uint16(c.B)
		c.setD(d)
		c.setFlag(flagZ, d == 0)
		c.setFlag(flagC, d&0x80 != 0)
		return StepResult{Cycles: 11}
	default: // 0x3F SWI
		c.stackAll()
		c.CC |= flagI | flagF
		c.PC = c.read16(vecSWI)
		return StepResult{Cycles: 19}
	}
}

// executeALU covers the regular 0x80-0xFF block. The accumulator is A below
// 0xC0 and B above; the low nibble selects the operation, bits 4-5 the
// addressing mode.
func (c *CPU) executeALU(op byte) StepResult {
	col := op & 0x0F
	mode := (op >> 4) & 0x03 // 0 imm, 1 direct, 2 indexed, 3 extended
	isB := op >= 0xC0

	acc := func() byte {
		if isB {
			return c.B
		}
		return c.A
	}
	setAcc := func(v byte) {
		if isB {
			c.B = v
		} else {
			c.A = v
		}
	}

	switch col {
	case 0x0: // SUB
		v, n := c.operand8(mode)
		setAcc(c.sub8(acc(), v, 0))
		return StepResult{Cycles: n}
	case 0x1: // CMP
		v, n := c.operand8(mode)
		c.sub8(acc(), v, 0)
		return StepResult{Cycles: n}
	case 0x2: // SBC
		v, n := c.operand8(mode)
		setAcc(c.sub8(acc(), v, c.carryIn()))
		return StepResult{Cycles: n}
	case 0x3: // SUBD / ADDD
		v, n := c.operand16(mode)
		if isB {
			c.setD(c.add16(c.D(), v))
		} else {
			c.setD(c.sub16(c.D(), v))
		}
		return StepResult{Cycles: n}
	case 0x4: // AND
		v, n := c.operand8(mode)
		r := acc() & v
		setAcc(r)
		c.setNZ8(r)
		c.setFlag(flagV, false)
		return StepResult{Cycles: n}
	case 0x5: // BIT
		v, n := c.operand8(mode)
		c.setNZ8(acc() & v)
		c.setFlag(flagV, false)
		return StepResult{Cycles: n}
	case 0x6: // LD
		v, n := c.operand8(mode)
		setAcc(v)
		c.setNZ8(v)
		c.setFlag(flagV, false)
		return StepResult{Cycles: n}
	case 0x7: // ST (immediate mode is filtered as illegal)
		addr, n := c.addr(mode)
		c.write8(addr, acc())
		c.setNZ8(acc())
		c.setFlag(flagV, false)
		return StepResult{Cycles: n}
	case 0x8: // EOR
		v, n := c.operand8(mode)
		r := acc() ^ v
		setAcc(r)
		c.setNZ8(r)
		c.setFlag(flagV, false)
		return StepResult{Cycles: n}
	case 0x9: // ADC
		v, n := c.operand8(mode)
		setAcc(c.add8(acc(), v, c.carryIn()))
		return StepResult{Cycles: n}
	case 0xA: // OR
		v, n := c.operand8(mode)
		r := acc() | v
		setAcc(r)
		c.setNZ8(r)
		c.setFlag(flagV, false)
		return StepResult{Cycles: n}
	case 0xB: // ADD
		v, n := c.operand8(mode)
		setAcc(c.add8(acc(), v, 0))
		return StepResult{Cycles: n}
	case 0xC:
		if isB { // LDD
			v, n := c.operandLD16(mode)
			c.setD(v)
			c.setNZ16(v)
			c.setFlag(flagV, false)
			return StepResult{Cycles: n}
		}
		// CMPX
		v, n := c.operand16(mode)
		c.sub16(c.X, v)
		return StepResult{Cycles: n}
	case 0xD:
		if isB { // STD
			addr, n := c.addr(mode)
			c.write16(addr, c.D())
			c.setNZ16(c.D())
			c.setFlag(flagV, false)
			return StepResult{Cycles: n + 1}
		}
		if mode == 0 { // BSR
			off := int8(c.fetch8())
			c.push16s(c.PC)
			c.PC += uint16(int16(off))
			return StepResult{Cycles: 7}
		}
		// JSR
		addr, n := c.addr(mode)
		c.push16s(c.PC)
		c.PC = addr
		return StepResult{Cycles: n + 3}
	case 0xE: // LDX / LDU
		v, n := c.operandLD16(mode)
		if isB {
			c.U = v
		} else {
			c.X = v
		}
		c.setNZ16(v)
		c.setFlag(flagV, false)
		return StepResult{Cycles: n}
	default: // 0xF: STX / STU
		addr, n := c.addr(mode)
		v := c.X
		if isB {
			v = c.U
		}
		c.write16(addr, v)
		c.setNZ16(v)
		c.setFlag(flagV, false)
		return StepResult{Cycles: n + 1}
	}
}

// Operand helpers for the regular block. Cycle counts are for the 8-bit
// forms; 16-bit forms add on top.

func (c *CPU) operand8(mode byte) (byte, int) {
	switch mode {
	case 0:
		return c.fetch8(), 2
	case 1:
		return c.read8(c.direct()), 4
	case 2:
		ea, e := c.indexed()
		return c.read8(ea), 4 + e
	default:
		return c.read8(c.fetch16()), 5
	}
}

func (c *CPU) operand16(mode byte) (uint16, int) {
	switch mode {
	case 0:
		return c.fetch16(), 4
	case 1:
		return c.read16(c.direct()), 6
	case 2:
		ea, e := c.indexed()
		return c.read16(ea), 6 + e
	default:
		return c.read16(c.fetch16()), 7
	}
}

func (c *CPU) operandLD16(mode byte) (uint16, int) {
	switch mode {
	case 0:
		return c.fetch16(), 3
	case 1:
		return c.read16(c.direct()), 5
	case 2:
		ea, e := c.indexed()
		return c.read16(ea), 5 + e
	default:
		return c.read16(c.fetch16()), 6
	}
}

// addr resolves the address-taking modes (direct, indexed, extended).
func (c *CPU) addr(mode byte) (uint16, int) {
	switch mode {
	case 1:
		return c.direct(), 4
	case 2:
		ea, e := c.indexed()
		return ea, 4 + e
	default:
		return c.fetch16(), 5
	}
}

// memUnary applies a read-modify-write operation at addr.
func (c *CPU) memUnary(col byte, addr uint16, cycles int) StepResult {
	if col == 0x0D { // TST
		v := c.read8(addr)
		c.setNZ8(v)
		c.setFlag(flagV, false)
		return StepResult{Cycles: cycles}
	}
	c.write8(addr, c.unary(col, c.read8(addr)))
	return StepResult{Cycles: cycles}
}

// regUnary applies a unary operation to an accumulator.
func (c *CPU) regUnary(col byte, v byte) byte {
	if col == 0x0D { // TST
		c.setNZ8(v)
		c.setFlag(flagV, false)
		return v
	}
	return c.unary(col, v)
}

// unary implements the shared NEG/COM/shift/rotate/INC/DEC/CLR group.
func (c *CPU) unary(col byte, v byte) byte {
	switch col {
	case 0x0: // NEG
		r := byte(0) - v
		c.setFlag(flagV, v == 0x80)
		c.setFlag(flagC, v != 0)
		c.setNZ8(r)
		return r
	case 0x3: // COM
		r := ^v
		c.setFlag(flagV, false)
		c.setFlag(flagC, true)
		c.setNZ8(r)
		return r
	case 0x4: // LSR
		c.setFlag(flagC, v&1 != 0)
		r := v >> 1
		c.setNZ8(r)
		return r
	case 0x6: // ROR
		r := v>>1 | c.carryIn()<<7
		c.setFlag(flagC, v&1 != 0)
		c.setNZ8(r)
		return r
	case 0x7: // ASR
		c.setFlag(flagC, v&1 != 0)
		r := v>>1 | v&0x80
		c.setNZ8(r)
		return r
	case 0x8: // ASL
		c.setFlag(flagV, ((v>>7)^(v>>6))&1 != 0)
		c.setFlag(flagC, v&0x80 != 0)
		r := v << 1
		c.setNZ8(r)
		return r
	case 0x9: // ROL
		r := v<<1 | c.carryIn()
		c.setFlag(flagV, ((v>>7)^(v>>6))&1 != 0)
		c.setFlag(flagC, v&0x80 != 0)
		c.setNZ8(r)
		return r
	case 0xA: // DEC
		r := v - 1
		c.setFlag(flagV, v == 0x80)
		c.setNZ8(r)
		return r
	case 0xC: // INC
		r := v + 1
		c.setFlag(flagV, v == 0x7F)
		c.setNZ8(r)
		return r
	default: // 0xF CLR
		c.setFlag(flagV, false)
		c.setFlag(flagC, false)
		c.setNZ8(0)
		return 0
	}
}

// branchCond evaluates the condition encoded in a branch opcode's low nibble.
func (c *CPU) branchCond(op byte) bool {
	nxorv := (c.CC>>3)&1 != (c.CC>>1)&1 // N != V
	switch op & 0x0F {
	case 0x0: // BRA
		return true
	case 0x1: // BRN
		return false
	case 0x2: // BHI
		return c.CC&(flagC|flagZ) == 0
	case 0x3: // BLS
		return c.CC&(flagC|flagZ) != 0
	case 0x4: // BCC/BHS
		return c.CC&flagC == 0
	case 0x5: // BCS/BLO
		return c.CC&flagC != 0
	case 0x6: // BNE
		return c.CC&flagZ == 0
	case 0x7: // BEQ
		return c.CC&flagZ != 0
	case 0x8: // BVC
		return c.CC&flagV == 0
	case 0x9: // BVS
		return c.CC&flagV != 0
	case 0xA: // BPL
		return c.CC&flagN == 0
	case 0xB: // BMI
		return c.CC&flagN != 0
	case 0xC: // BGE
		return !nxorv
	case 0xD: // BLT
		return nxorv
	case 0xE: // BGT
		return c.CC&flagZ == 0 && !nxorv
	default: // BLE
		return c.CC&flagZ != 0 || nxorv
	}
}

// pushRegs implements PSHS/PSHU; the postbyte names the registers, high
// addresses first.
func (c *CPU) pushRegs(pb byte, userStack bool) StepResult {
	push8, push16 := c.push8s, c.push16s
	other := c.U
	if userStack {
		push8, push16 = c.push8u, c.push16u
		other = c.S
	}
	n := 5
	if pb&0x80 != 0 {
		push16(c.PC)
		n += 2
	}
	if pb&0x40 != 0 {
		push16(other)
		n += 2
	}
	if pb&0x20 != 0 {
		push16(c.Y)
		n += 2
	}
	if pb&0x10 != 0 {
		push16(c.X)
		n += 2
	}
	if pb&0x08 != 0 {
		push8(c.DP)
		n++
	}
	if pb&0x04 != 0 {
		push8(c.B)
		n++
	}
	if pb&0x02 != 0 {
		push8(c.A)
		n++
	}
	if pb&0x01 != 0 {
		push8(c.CC)
		n++
	}
	return StepResult{Cycles: n}
}

// pullRegs implements PULS/PULU, the mirror order of pushRegs.
func (c *CPU) pullRegs(pb byte, userStack bool) StepResult {
	pull8, pull16 := c.pull8s, c.pull16s
	if userStack {
		pull8, pull16 = c.pull8u, c.pull16u
	}
	n := 5
	if pb&0x01 != 0 {
		c.CC = pull8()
		n++
	}
	if pb&0x02 != 0 {
		c.A = pull8()
		n++
	}
	if pb&0x04 != 0 {
		c.B = pull8()
		n++
	}
	if pb&0x08 != 0 {
		c.DP = pull8()
		n++
	}
	if pb&0x10 != 0 {
		c.X = pull16()
		n += 2
	}
	if pb&0x20 != 0 {
		c.Y = pull16()
		n += 2
	}
	if pb&0x40 != 0 {
		if userStack {
			c.S = pull16()
		} else {
			c.U = pull16()
		}
		n += 2
	}
	if pb&0x80 != 0 {
		c.PC = pull16()
		n += 2
	}
	return StepResult{Cycles: n}
}

// tfrGet/tfrSet implement the TFR/EXG register encoding. 8-bit registers
// read back with a set high byte, the way the bus sees them.
func (c *CPU) tfrGet(n byte) uint16 {
	switch n & 0x0F {
	case 0x0:
		return c.D()
	case 0x1:
		return c.X
	case 0x2:
		return c.Y
	case 0x3:
		return c.U
	case 0x4:
		return c.S
	case 0x5:
		return c.PC
	case 0x8:
		return 0xFF00 | uint16(c.A)
	case 0x9:
		return 0xFF00 | uint16(c.B)
	case 0xA:
		return 0xFF00 | uint16(c.CC)
	case 0xB:
		return 0xFF00 | uint16(c.DP)
	default:
		return 0xFFFF
	}
}

func (c *CPU) tfrSet(n byte, v uint16) {
	switch n & 0x0F {
	case 0x0:
		c.setD(v)
	case 0x1:
		c.X = v
	case 0x2:
		c.Y = v
	case 0x3:
		c.U = v
	case 0x4:
		c.S = v
	case 0x5:
		c.PC = v
	case 0x8:
		c.A = byte(v)
	case 0x9:
		c.B = byte(v)
	case 0xA:
		c.CC = byte(v)
	case 0xB:
		c.DP = byte(v)
	}
}

// executePage2 handles the 0x10 prefix: long branches, SWI2 and the Y/S/D
// register forms.
func (c *CPU) executePage2(op byte) StepResult {
	if op >= 0x21 && op <= 0x2F {
		off := c.fetch16()
		if c.branchCond(op) {
			c.PC += off
			return StepResult{Cycles: 6}
		}
		return StepResult{Cycles: 5}
	}
	mode := (op >> 4) & 0x03
	switch op {
	case 0x3F: // SWI2
		c.stackAll()
		c.PC = c.read16(vecSWI2)
		return StepResult{Cycles: 20}
	case 0x83, 0x93, 0xA3, 0xB3: // CMPD
		v, n := c.operand16(mode)
		c.sub16(c.D(), v)
		return StepResult{Cycles: n + 1}
	case 0x8C, 0x9C, 0xAC, 0xBC: // CMPY
		v, n := c.operand16(mode)
		c.sub16(c.Y, v)
		return StepResult{Cycles: n + 1}
	case 0x8E, 0x9E, 0xAE, 0xBE: // LDY
		v, n := c.operandLD16(mode)
		c.Y = v
		c.setNZ16(v)
		c.setFlag(flagV, false)
		return StepResult{Cycles: n + 1}
	case 0x9F, 0xAF, 0xBF: // STY
		addr, n := c.addr(mode)
		c.write16(addr, c.Y)
		c.setNZ16(c.Y)
		c.setFlag(flagV, false)
		return StepResult{Cycles: n + 2}
	case 0xCE, 0xDE, 0xEE, 0xFE: // LDS
		v, n := c.operandLD16(mode)
		c.S = v
		c.setNZ16(v)
		c.setFlag(flagV, false)
		return StepResult{Cycles: n + 1}
	case 0xDF, 0xEF, 0xFF: // STS
		addr, n := c.addr(mode)
		c.write16(addr, c.S)
		c.setNZ16(c.S)
		c.setFlag(flagV, false)
		return StepResult{Cycles: n + 2}
	default:
		return StepResult{Special: true, Opcode: op}
	}
}

// executePage3 handles the 0x11 prefix: SWI3, CMPU, CMPS.
func (c *CPU) executePage3(op byte) StepResult {
	mode := (op >> 4) & 0x03
	switch op {
	case 0x3F: // SWI3
		c.stackAll()
		c.PC = c.read16(vecSWI3)
		return StepResult{Cycles: 20}
	case 0x83, 0x93, 0xA3, 0xB3: // CMPU
		v, n := c.operand16(mode)
		c.sub16(c.U, v)
		return StepResult{Cycles: n + 1}
	case 0x8C, 0x9C, 0xAC, 0xBC: // CMPS
		v, n := c.operand16(mode)
		c.sub16(c.S, v)
		return StepResult{Cycles: n + 1}
	default:
		return StepResult{Special: true, Opcode: op}
	}
}
