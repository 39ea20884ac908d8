// Copyright 2012 Lawrence Kesteloot

package z80

import (
	"fmt"
	"regexp"
)

// Look for N and NN on word boundaries.
var nRegExp = regexp.MustCompile(`\bN\b`)
var nnRegExp = regexp.MustCompile(`\bNN\b`)

// Disassemble decodes one instruction at pc without mutating any CPU
// state (no register or flag writes, and memory reads bypass the
// Logger's LogMemRead hook so a debugger stepping ahead of the PC does
// not pollute a memory-access trace). It returns the formatted line and
// the address of the following instruction.
func (c *CPU) Disassemble(pc uint16) (line string, nextPc uint16) {
	instPc := word(pc)
	walk := instPc
	inst, byteData, wordData := c.lookUpInstQuiet(&walk)
	nextPc = uint16(walk)

	line = fmt.Sprintf("%04X ", instPc)
	for p := instPc; p < instPc+4; p++ {
		if p < walk {
			line += fmt.Sprintf("%02X ", c.memory.Read(uint16(p)))
		} else {
			line += "   "
		}
	}

	if inst == nil {
		line += "???"
		return
	}

	asm := inst.asm
	asm = nRegExp.ReplaceAllLiteralString(asm, fmt.Sprintf("%02X", byteData))
	asm = nnRegExp.ReplaceAllLiteralString(asm, fmt.Sprintf("%04X", wordData))

	line += asm
	return
}

// lookUpInstQuiet mirrors lookUpInst but reads memory directly, for use
// by Disassemble, which must not trigger read-side logging.
func (c *CPU) lookUpInstQuiet(pc *word) (inst *instruction, byteData byte, wordData word) {
	haveByteData := false
	inst = c.root

	for {
		if inst.asm != "" {
			return
		}

		opcode := c.memory.Read(uint16(*pc))
		*pc++

		if inst.xx != nil {
			if haveByteData {
				wordData.setH(opcode)
				wordData.setL(byteData)
			} else {
				byteData = opcode
				haveByteData = true
			}
			inst = inst.xx
		} else {
			inst = inst.imap[opcode]
			if inst == nil {
				return nil, 0, 0
			}
		}
	}
}
