// Copyright 2012 Lawrence Kesteloot

package z80

// getByteValue and its three siblings below resolve an operand reference
// string (the same tokens that appear in the right half of an
// instructionList line, e.g. "A", "(HL)", "(IX+N)") against the current
// register file and bus, consuming byteData/wordData for any operand
// that carries an immediate. Centralizing addressing here means step.go's
// per-instruction-type dispatch does not need one case per register, just
// one per instInt value, since the same reference strings cover both the
// HL-based and IX/IY-indexed forms of an instruction.
func (c *CPU) getByteValue(ref string, byteData byte, wordData word) byte {
	switch ref {
	case "A":
		return c.r.a
	case "B":
		return c.r.b()
	case "C":
		return c.r.c()
	case "D":
		return c.r.d()
	case "E":
		return c.r.e()
	case "H":
		return c.r.h()
	case "L":
		return c.r.l()
	case "HX":
		return c.r.ixh()
	case "LX":
		return c.r.ixl()
	case "HY":
		return c.r.iyh()
	case "LY":
		return c.r.iyl()
	case "I":
		return c.r.i
	case "R":
		return c.r.r
	case "(BC)":
		return c.readMem(c.r.bc)
	case "(DE)":
		return c.readMem(c.r.de)
	case "(HL)":
		return c.readMem(c.r.hl)
	case "(IX+N)":
		return c.readMem(c.r.ix.plus(int8(byteData)))
	case "(IY+N)":
		return c.readMem(c.r.iy.plus(int8(byteData)))
	case "N":
		return byteData
	case "(NN)":
		return c.readMem(wordData)
	case "(C)":
		return c.in(c.r.bc)
	case "0":
		// OUT (C),0: an undocumented encoding that writes a constant
		// zero byte rather than a register.
		return 0
	}

	panic("z80: unhandled byte addressing mode " + ref)
}

func (c *CPU) getWordValue(ref string, byteData byte, wordData word) word {
	switch ref {
	case "AF":
		var w word
		w.setH(c.r.a)
		w.setL(byte(c.r.f))
		return w
	case "AF'":
		var w word
		w.setH(c.r.ap)
		w.setL(byte(c.r.fp))
		return w
	case "BC":
		return c.r.bc
	case "DE":
		return c.r.de
	case "HL":
		return c.r.hl
	case "IX":
		return c.r.ix
	case "IY":
		return c.r.iy
	case "SP":
		return c.r.sp
	case "NN":
		return wordData
	case "(NN)":
		return c.readMemWord(wordData)
	case "(HL)":
		return c.readMemWord(c.r.hl)
	case "(SP)":
		return c.readMemWord(c.r.sp)
	}

	panic("z80: unhandled word addressing mode " + ref)
}

func (c *CPU) setByte(ref string, value byte, byteData byte, wordData word) {
	switch ref {
	case "A":
		c.r.a = value
	case "B":
		c.r.setB(value)
	case "C":
		c.r.setC(value)
	case "D":
		c.r.setD(value)
	case "E":
		c.r.setE(value)
	case "H":
		c.r.setH(value)
	case "L":
		c.r.setL(value)
	case "HX":
		c.r.setIxh(value)
	case "LX":
		c.r.setIxl(value)
	case "HY":
		c.r.setIyh(value)
	case "LY":
		c.r.setIyl(value)
	case "I":
		c.r.i = value
	case "R":
		c.r.r = value
	case "(BC)":
		c.writeMem(c.r.bc, value)
	case "(DE)":
		c.writeMem(c.r.de, value)
	case "(HL)":
		c.writeMem(c.r.hl, value)
	case "(IX+N)":
		c.writeMem(c.r.ix.plus(int8(byteData)), value)
	case "(IY+N)":
		c.writeMem(c.r.iy.plus(int8(byteData)), value)
	case "(NN)":
		c.writeMem(wordData, value)
	case "(C)":
		c.out(c.r.bc, value)
	default:
		panic("z80: unhandled byte destination " + ref)
	}
}

func (c *CPU) setWord(ref string, value word, byteData byte, wordData word) {
	switch ref {
	case "AF":
		c.r.a = value.h()
		c.r.f = flags(value.l())
	case "AF'":
		c.r.ap = value.h()
		c.r.fp = flags(value.l())
	case "BC":
		c.r.setBc(value)
	case "DE":
		c.r.setDe(value)
	case "HL":
		c.r.setHl(value)
	case "SP":
		c.r.sp = value
	case "IX":
		c.r.ix = value
	case "IY":
		c.r.iy = value
	case "(NN)":
		c.writeMemWord(wordData, value)
	case "(SP)":
		c.writeMemWord(c.r.sp, value)
	default:
		panic("z80: unhandled word destination " + ref)
	}
}
