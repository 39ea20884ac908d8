// Copyright 2012 Lawrence Kesteloot

package z80

// Memory is the external 64 KiB memory collaborator. The core treats it as
// byte-addressable and makes no assumption about what lives below any ROM
// boundary; an implementation may silently ignore writes to a protected
// region, matching the behavior xtrs documents for TRS-80 ROM writes.
type Memory interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

// Ports is the external 16-bit I/O port space, plus the two interrupt
// lines and the data bus byte the core reads during interrupt
// acknowledge. Edge detection on NMI/INT is the implementer's job: the
// core only samples levels at instruction boundaries (see step.go).
type Ports interface {
	ReadPort(addr uint16) byte
	WritePort(addr uint16, value byte)

	NMI() bool
	INT() bool
	Data() byte
}

// Logger is the diagnostic-build sink for human-readable disassembly.
// Every call may be elided entirely by a release build; NopLogger does
// exactly that.
type Logger interface {
	LogMemRead(addr uint16, value byte)
	Log(text string)
	RegName8(idx int) string
	RegName16(idx int) string
}

// NopLogger discards everything. It is the default logger so that a core
// built without a diagnostic sink costs nothing beyond an interface call
// that inlines away.
type NopLogger struct{}

func (NopLogger) LogMemRead(addr uint16, value byte) {}
func (NopLogger) Log(text string)                    {}
func (NopLogger) RegName8(idx int) string             { return reg8Names[idx&7] }
func (NopLogger) RegName16(idx int) string            { return reg16Names[idx&3] }

var reg8Names = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
var reg16Names = [4]string{"BC", "DE", "HL", "SP"}

func (c *CPU) readMem(addr word) byte {
	b := c.memory.Read(uint16(addr))
	c.logger.LogMemRead(uint16(addr), b)
	return b
}

func (c *CPU) writeMem(addr word, value byte) {
	c.memory.Write(uint16(addr), value)
}

func (c *CPU) readMemWord(addr word) word {
	var w word
	w.setL(c.readMem(addr))
	w.setH(c.readMem(addr + 1))
	return w
}

func (c *CPU) writeMemWord(addr word, value word) {
	c.writeMem(addr, value.l())
	c.writeMem(addr+1, value.h())
}

func (c *CPU) pushByte(b byte) {
	c.r.sp--
	c.writeMem(c.r.sp, b)
}

func (c *CPU) pushWord(value word) {
	c.pushByte(value.h())
	c.pushByte(value.l())
}

func (c *CPU) popByte() byte {
	c.r.sp++
	return c.readMem(c.r.sp - 1)
}

func (c *CPU) popWord() word {
	var w word
	w.setL(c.popByte())
	w.setH(c.popByte())
	return w
}

func (c *CPU) in(port word) byte {
	return c.ports.ReadPort(uint16(port))
}

func (c *CPU) out(port word, value byte) {
	c.ports.WritePort(uint16(port), value)
}
