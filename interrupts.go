// Copyright 2012 Lawrence Kesteloot

package z80

// checkInterrupts samples the two interrupt lines at an instruction
// boundary and services at most one of them, NMI taking priority over a
// maskable interrupt. It reports whether it consumed the cycle, in which
// case step's caller should not also decode an opcode this round.
func (c *CPU) checkInterrupts() (serviced bool, tStates int) {
	if c.ports.NMI() {
		c.handleNmi()
		return true, 17
	}

	if c.iff1 && c.ports.INT() {
		return true, c.handleInt()
	}

	return false, 0
}

// handleNmi services a non-maskable interrupt: IFF1 is cleared so a
// maskable interrupt cannot nest inside the handler, IFF2 is left alone so
// RETN can restore the prior enabled state, and control vectors to 0x66.
// HALT is always exited, since NMI cannot be masked.
func (c *CPU) handleNmi() {
	c.leaveHalt()
	c.iff1 = false
	c.pushWord(c.r.pc)
	c.r.pc = 0x0066
}

// leaveHalt advances PC past a parked HALT opcode before an interrupt
// pushes it, so the eventual RETI/RETN resumes at the instruction after
// HALT rather than re-executing it forever.
func (c *CPU) leaveHalt() {
	if c.halted {
		c.r.pc++
		c.halted = false
	}
}

// handleInt services a maskable interrupt already known to be enabled
// (IFF1) and pending. Its effect on PC depends on the programmed
// interrupt mode; the data byte the peripheral places on the bus during
// acknowledge is used in mode 0 (as an RST opcode) and in mode 2 (as the
// low byte of the vector-table address). All three modes cost 17 T-states.
func (c *CPU) handleInt() int {
	c.leaveHalt()
	c.iff1 = false
	c.iff2 = false

	switch c.interruptMode {
	case 0:
		// Mode 0: the peripheral supplies an instruction byte over the
		// data bus. This core only supports the common case, an RST
		// opcode (the overwhelming majority of mode-0 peripherals used
		// on this family of hardware), executed without a fetch cycle.
		data := c.ports.Data()
		c.pushWord(c.r.pc)
		c.r.pc = word(data & 0x38)
	case 1:
		c.pushWord(c.r.pc)
		c.r.pc = 0x0038
	case 2:
		vector := word(c.r.i)<<8 | word(c.ports.Data())
		c.pushWord(c.r.pc)
		c.r.pc = c.readMemWord(vector)
	default:
		panic("z80: invalid interrupt mode")
	}
	return 17
}

// retn restores IFF1 from IFF2, the behavior RETN and the end of an NMI
// handler depend on to resume accepting maskable interrupts.
func (c *CPU) retn() {
	c.iff1 = c.iff2
	c.r.pc = c.popWord()
}
