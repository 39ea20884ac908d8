// Copyright 2012 Lawrence Kesteloot

package z80

import "fmt"

// CPU is a cycle-approximate Z80 interpreter. It owns the register file and
// interrupt flip-flops, and drives an external Memory and Ports
// collaborator one instruction (or one interrupt acknowledge) at a time
// via Step. It is not safe for concurrent use: see §5, exactly one caller
// is expected to drive Step.
type CPU struct {
	r registers

	iff1, iff2     bool
	interruptMode  byte
	halted         bool

	// suppressInterruptCheck implements the one-instruction delay after EI
	// during which even a pending interrupt must wait, so that EI followed
	// by RET (the classic interrupt-handler epilogue) is never itself
	// interrupted.
	suppressInterruptCheck bool

	memory Memory
	ports  Ports
	logger Logger

	clock Clock

	root *instruction
}

// New constructs a core bound to the given memory and port collaborators
// and resets it. logger may be nil, in which case diagnostics are
// discarded. Passing a nil memory or ports is a construction error.
func New(memory Memory, ports Ports, logger Logger) (*CPU, error) {
	if memory == nil {
		return nil, fmt.Errorf("z80: memory collaborator is required")
	}
	if ports == nil {
		return nil, fmt.Errorf("z80: ports collaborator is required")
	}
	if logger == nil {
		logger = NopLogger{}
	}

	c := &CPU{
		memory: memory,
		ports:  ports,
		logger: logger,
		clock:  realClock{},
		root:   buildInstructionTree(),
	}
	c.Reset()
	return c, nil
}

// Reset reinitializes the register file and flip-flops per §3: A=F=0xFF,
// SP=0xFFFF, PC=0, IFF1=IFF2=false, interrupt mode 0, not halted, every
// other register zero.
func (c *CPU) Reset() {
	c.r.reset()
	c.iff1 = false
	c.iff2 = false
	c.interruptMode = 0
	c.halted = false
}

// Halted reports whether the core is parked in the HALT state.
func (c *CPU) Halted() bool {
	return c.halted
}

// SetClock installs a pluggable clock, letting tests run the pacer
// deterministically instead of against the wall clock. See pacer.go.
func (c *CPU) SetClock(clock Clock) {
	if clock == nil {
		clock = realClock{}
	}
	c.clock = clock
}

// Composite register reads, for test scaffolding and host front ends.
func (c *CPU) A() byte    { return c.r.a }
func (c *CPU) F() byte    { return byte(c.r.f) }
func (c *CPU) BC() uint16 { return uint16(c.r.bc) }
func (c *CPU) DE() uint16 { return uint16(c.r.de) }
func (c *CPU) HL() uint16 { return uint16(c.r.hl) }
func (c *CPU) IX() uint16 { return uint16(c.r.ix) }
func (c *CPU) IY() uint16 { return uint16(c.r.iy) }
func (c *CPU) SP() uint16 { return uint16(c.r.sp) }
func (c *CPU) PC() uint16 { return uint16(c.r.pc) }
func (c *CPU) I() byte    { return c.r.i }
func (c *CPU) R() byte    { return c.r.r }
func (c *CPU) IFF1() bool { return c.iff1 }
func (c *CPU) IFF2() bool { return c.iff2 }
func (c *CPU) InterruptMode() byte { return c.interruptMode }

// SetPC lets a host loader (a ROM image, a raw binary, a test fixture)
// start execution somewhere other than address 0 after Reset.
func (c *CPU) SetPC(pc uint16) { c.r.pc = word(pc) }
