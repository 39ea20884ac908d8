// Copyright 2012 Lawrence Kesteloot

package z80

import (
	"fmt"
	"strconv"
	"strings"
)

// Step executes exactly one instruction, or services one pending
// interrupt, and returns the number of T-states it cost. A caller driving
// a real-time host can feed that count straight to a clock; a caller
// replaying a test vector can ignore it.
func (c *CPU) Step() int {
	if c.suppressInterruptCheck {
		c.suppressInterruptCheck = false
	} else if serviced, tStates := c.checkInterrupts(); serviced {
		c.wait(tStates)
		return tStates
	}

	if c.halted {
		c.wait(4)
		return 4
	}

	inst, byteData, wordData := c.lookUpInst(&c.r.pc)
	if inst == nil {
		// An unrecognized byte sequence (almost always an unsupported
		// byte after a DD/FD prefix) halts rather than panics: callers
		// detect it by observing an unexpected halt, per the core's
		// minimal error taxonomy.
		c.halted = true
		c.wait(4)
		return 4
	}
	nextInstPc := c.r.pc

	c.dispatch(inst, byteData, wordData)

	if inst.instInt == instEi {
		c.suppressInterruptCheck = true
	}

	tStates := int(inst.cycles)
	if c.r.pc != nextInstPc {
		tStates += int(inst.jumpPenalty)
	}
	c.wait(tStates)
	return tStates
}

// dispatch carries out the semantics of one decoded instruction. It is
// split out of Step so that the parked-in-HALT handling and the
// interrupt-gate logic around EI stay in Step, not buried in a 60-case
// switch.
func (c *CPU) dispatch(inst *instruction, byteData byte, wordData word) {
	r := &c.r
	f := &r.f
	subfields := inst.subfields

	switch inst.instInt {
	case instAdc:
		if isWordOperand(subfields[0]) || isWordOperand(subfields[1]) {
			value1 := c.getWordValue(subfields[0], byteData, wordData)
			value2 := c.getWordValue(subfields[1], byteData, wordData)
			result := adcWord(f, value1, value2, f.c())
			c.setWord(subfields[0], result, byteData, wordData)
		} else {
			value1 := c.getByteValue(subfields[0], byteData, wordData)
			value2 := c.getByteValue(subfields[1], byteData, wordData)
			result := adcByte(f, value1, value2, f.c())
			c.setByte(subfields[0], result, byteData, wordData)
		}
	case instAdd:
		if isWordOperand(subfields[0]) || isWordOperand(subfields[1]) {
			value1 := c.getWordValue(subfields[0], byteData, wordData)
			value2 := c.getWordValue(subfields[1], byteData, wordData)
			result := addWord(f, value1, value2)
			c.setWord(subfields[0], result, byteData, wordData)
		} else {
			value1 := c.getByteValue(subfields[0], byteData, wordData)
			value2 := c.getByteValue(subfields[1], byteData, wordData)
			result := addByte(f, value1, value2)
			c.setByte(subfields[0], result, byteData, wordData)
		}
	case instAnd:
		value := c.getByteValue(subfields[0], byteData, wordData)
		r.a = andByte(f, r.a, value)
	case instOr:
		value := c.getByteValue(subfields[0], byteData, wordData)
		r.a = orByte(f, r.a, value)
	case instXor:
		value := c.getByteValue(subfields[0], byteData, wordData)
		r.a = xorByte(f, r.a, value)
	case instBit:
		b, _ := strconv.ParseUint(subfields[0], 10, 8)
		value := c.getByteValue(subfields[1], byteData, wordData)
		bitTest(f, byte(b), value, subfields[1] != "(IX+N)" && subfields[1] != "(IY+N)")
	case instCcf:
		carry := f.c()
		f.setH(carry)
		f.setN(false)
		f.setC(!carry)
		f.setUndoc(r.a)
	case instCp:
		value := c.getByteValue(subfields[0], byteData, wordData)
		subByte(f, r.a, value, false)
	case instCpi, instCpir, instCpd, instCpdr:
		c.blockCompare(inst.instInt)
	case instCpl:
		r.a = complementA(f, r.a)
	case instDaa:
		r.a = daa(f, r.a)
	case instDec:
		if isWordOperand(subfields[0]) {
			value := c.getWordValue(subfields[0], byteData, wordData)
			c.setWord(subfields[0], decWord(value), byteData, wordData)
		} else {
			value := c.getByteValue(subfields[0], byteData, wordData)
			c.setByte(subfields[0], decByte(f, value), byteData, wordData)
		}
	case instDi:
		c.iff1 = false
		c.iff2 = false
	case instDjnz:
		r.setB(r.b() - 1)
		if r.b() != 0 {
			r.pc = r.pc.plus(int8(byteData))
		}
	case instEi:
		c.iff1 = true
		c.iff2 = true
	case instEx:
		value1 := c.getWordValue(subfields[0], byteData, wordData)
		value2 := c.getWordValue(subfields[1], byteData, wordData)
		c.setWord(subfields[0], value2, byteData, wordData)
		c.setWord(subfields[1], value1, byteData, wordData)
	case instExx:
		r.bc, r.bcp = r.bcp, r.bc
		r.de, r.dep = r.dep, r.de
		r.hl, r.hlp = r.hlp, r.hl
	case instHalt:
		r.pc--
		c.halted = true
	case instIm:
		switch subfields[0] {
		case "0":
			c.interruptMode = 0
		case "1":
			c.interruptMode = 1
		case "2":
			c.interruptMode = 2
		default:
			panic("z80: unknown interrupt mode " + subfields[0])
		}
	case instIn:
		var port word
		source := subfields[len(subfields)-1]
		affectFlags := false
		switch source {
		case "(C)":
			port = r.bc
			affectFlags = true
		case "(N)":
			port = word(byteData)
		default:
			panic("z80: unknown IN source " + source)
		}
		value := c.in(port)
		if len(subfields) == 2 {
			c.setByte(subfields[0], value, byteData, wordData)
		}
		if affectFlags {
			f.setSZUndoc(value)
			f.setPv(isEvenParity(value))
			f.setH(false)
			f.setN(false)
		}
	case instInc:
		if isWordOperand(subfields[0]) {
			value := c.getWordValue(subfields[0], byteData, wordData)
			c.setWord(subfields[0], incWord(value), byteData, wordData)
		} else {
			value := c.getByteValue(subfields[0], byteData, wordData)
			c.setByte(subfields[0], incByte(f, value), byteData, wordData)
		}
	case instIni, instInir, instInd, instIndr:
		c.blockIn(inst.instInt)
	case instJp, instCall:
		addr := c.getWordValue(subfields[len(subfields)-1], byteData, wordData)
		if len(subfields) == 1 || c.conditionSatisfied(subfields[0]) {
			if inst.instInt == instCall {
				c.pushWord(r.pc)
			}
			r.pc = addr
		}
	case instJr:
		if len(subfields) == 1 || c.conditionSatisfied(subfields[0]) {
			r.pc = r.pc.plus(int8(byteData))
		}
	case instLd:
		if isWordOperand(subfields[0]) || isWordOperand(subfields[1]) {
			value := c.getWordValue(subfields[1], byteData, wordData)
			c.setWord(subfields[0], value, byteData, wordData)
		} else if subfields[0] == "A" && (subfields[1] == "I" || subfields[1] == "R") {
			// LD A,I and LD A,R additionally report IFF2 in P/V, the one
			// place software can observe the shadow flip-flop.
			value := c.getByteValue(subfields[1], byteData, wordData)
			r.a = value
			f.setSZ(value)
			f.setH(false)
			f.setN(false)
			f.setPv(c.iff2)
		} else {
			// LD (IX+N),N and LD (IY+N),N each carry two immediate bytes:
			// the displacement is captured as byteData, the value to
			// store as the high byte of wordData (see lookUpInst).
			var value byte
			if strings.HasSuffix(inst.fields[1], "N),N") {
				value = wordData.h()
			} else {
				value = c.getByteValue(subfields[1], byteData, wordData)
			}
			c.setByte(subfields[0], value, byteData, wordData)
		}
	case instLdi, instLdir, instLdd, instLddr:
		c.blockMove(inst.instInt)
	case instNeg:
		r.a = negByte(f, r.a)
	case instNop:
	case instOut:
		var port word
		value := c.getByteValue(subfields[1], byteData, wordData)
		switch subfields[0] {
		case "(C)":
			port = r.bc
		case "(N)":
			port = word(byteData)
		default:
			panic("z80: unknown OUT destination " + subfields[0])
		}
		c.out(port, value)
	case instOtdr, instOtir, instOutd, instOuti:
		c.blockOut(inst.instInt)
	case instPop:
		c.setWord(subfields[0], c.popWord(), byteData, wordData)
	case instPush:
		c.pushWord(c.getWordValue(subfields[0], byteData, wordData))
	case instRes:
		b, _ := strconv.ParseUint(subfields[0], 10, 8)
		value := c.getByteValue(subfields[1], byteData, wordData)
		c.setByte(subfields[1], resBit(byte(b), value), byteData, wordData)
	case instRet:
		if subfields == nil || c.conditionSatisfied(subfields[0]) {
			r.pc = c.popWord()
		}
	case instReti:
		// Signaling peripherals that their interrupt was serviced is a
		// daisy-chain detail of the original hardware that no collaborator
		// here models, but restoring IFF1 from IFF2 is architectural, not
		// a daisy-chain detail, so RETI shares retn's implementation.
		c.retn()
	case instRetn:
		c.retn()
	case instRl:
		value := c.getByteValue(subfields[0], byteData, wordData)
		result, carryOut := rotateLeftThroughCarry(value, f.c())
		updateShiftFlags(f, result, carryOut)
		c.setByte(subfields[0], result, byteData, wordData)
	case instRla:
		result, carryOut := rotateLeftThroughCarry(r.a, f.c())
		r.a = result
		updateAccumulatorRotateFlags(f, result, carryOut)
	case instRlc:
		value := c.getByteValue(subfields[0], byteData, wordData)
		result, carryOut := rotateLeft(value)
		updateShiftFlags(f, result, carryOut)
		c.setByte(subfields[0], result, byteData, wordData)
	case instRlca:
		result, carryOut := rotateLeft(r.a)
		r.a = result
		updateAccumulatorRotateFlags(f, result, carryOut)
	case instRld:
		addr := r.hl
		origValue := c.readMem(addr)
		newValue := (origValue << 4) | (r.a & 0x0F)
		r.a = (r.a & 0xF0) | (origValue >> 4)
		f.setSZUndoc(r.a)
		f.setPv(isEvenParity(r.a))
		f.setN(false)
		f.setH(false)
		c.writeMem(addr, newValue)
	case instRr:
		value := c.getByteValue(subfields[0], byteData, wordData)
		result, carryOut := rotateRightThroughCarry(value, f.c())
		updateShiftFlags(f, result, carryOut)
		c.setByte(subfields[0], result, byteData, wordData)
	case instRra:
		result, carryOut := rotateRightThroughCarry(r.a, f.c())
		r.a = result
		updateAccumulatorRotateFlags(f, result, carryOut)
	case instRrc:
		value := c.getByteValue(subfields[0], byteData, wordData)
		result, carryOut := rotateRight(value)
		updateShiftFlags(f, result, carryOut)
		c.setByte(subfields[0], result, byteData, wordData)
	case instRrca:
		result, carryOut := rotateRight(r.a)
		r.a = result
		updateAccumulatorRotateFlags(f, result, carryOut)
	case instRrd:
		addr := r.hl
		value := c.readMem(addr)
		result := (value >> 4) | ((r.a & 0x0F) << 4)
		r.a = (r.a & 0xF0) | (value & 0x0F)
		f.setSZUndoc(r.a)
		f.setPv(isEvenParity(r.a))
		f.setH(false)
		f.setN(false)
		c.writeMem(addr, result)
	case instRst:
		addr := parseByte(subfields[0])
		c.pushWord(r.pc)
		r.pc.setH(0)
		r.pc.setL(addr)
	case instScf:
		f.setH(false)
		f.setN(false)
		f.setC(true)
		f.setUndoc(r.a)
	case instSet:
		b, _ := strconv.ParseUint(subfields[0], 10, 8)
		value := c.getByteValue(subfields[1], byteData, wordData)
		c.setByte(subfields[1], setBit(byte(b), value), byteData, wordData)
	case instSbc:
		if isWordOperand(subfields[0]) {
			before := c.getWordValue(subfields[0], byteData, wordData)
			value := c.getWordValue(subfields[1], byteData, wordData)
			result := sbcWord(f, before, value, f.c())
			c.setWord(subfields[0], result, byteData, wordData)
		} else {
			before := c.getByteValue(subfields[0], byteData, wordData)
			value := c.getByteValue(subfields[1], byteData, wordData)
			result := subByte(f, before, value, f.c())
			c.setByte(subfields[0], result, byteData, wordData)
		}
	case instSla:
		value := c.getByteValue(subfields[0], byteData, wordData)
		result, carryOut := shiftLeftArithmetic(value)
		updateShiftFlags(f, result, carryOut)
		c.setByte(subfields[0], result, byteData, wordData)
	case instSll:
		value := c.getByteValue(subfields[0], byteData, wordData)
		result, carryOut := shiftLeftLogicalUndoc(value)
		updateShiftFlags(f, result, carryOut)
		c.setByte(subfields[0], result, byteData, wordData)
	case instSra:
		value := c.getByteValue(subfields[0], byteData, wordData)
		result, carryOut := shiftRightArithmetic(value)
		updateShiftFlags(f, result, carryOut)
		c.setByte(subfields[0], result, byteData, wordData)
	case instSrl:
		value := c.getByteValue(subfields[0], byteData, wordData)
		result, carryOut := shiftRightLogical(value)
		updateShiftFlags(f, result, carryOut)
		c.setByte(subfields[0], result, byteData, wordData)
	case instSub:
		value := c.getByteValue(subfields[0], byteData, wordData)
		r.a = subByte(f, r.a, value, false)
	default:
		panic(fmt.Sprintf("z80: unimplemented instruction %s", inst.asm))
	}
}

// blockMove implements LDI/LDIR/LDD/LDDR: copy (HL) to (DE), step both
// pointers, decrement BC, and for the repeating forms rewind PC by 2 to
// re-execute until BC reaches zero.
func (c *CPU) blockMove(instInt int) {
	r := &c.r
	f := &r.f

	value := c.readMem(r.hl)
	c.writeMem(r.de, value)

	switch instInt {
	case instLdi, instLdir:
		r.hl++
		r.de++
	case instLdd, instLddr:
		r.hl--
		r.de--
	}
	r.bc--

	switch instInt {
	case instLdir, instLddr:
		if r.bc != 0 {
			r.pc -= 2
		}
	}

	f.setPv(r.bc != 0)
	f.setH(false)
	f.setN(false)

	n := r.a + value
	f.setMask(undoc3Mask, n&byte(undoc3Mask) != 0)
	f.setMask(undoc5Mask, n&0x02 != 0)
}

// blockCompare implements CPI/CPIR/CPD/CPDR: compare A against (HL),
// step HL, decrement BC, and for the repeating forms rewind PC by 2 while
// BC is still nonzero and no match has been found.
func (c *CPU) blockCompare(instInt int) {
	r := &c.r
	f := &r.f

	carry := f.c()
	value := c.readMem(r.hl)
	result := r.a - value

	switch instInt {
	case instCpi, instCpir:
		r.hl++
	case instCpd, instCpdr:
		r.hl--
	}
	r.bc--

	switch instInt {
	case instCpir, instCpdr:
		if r.bc != 0 && result != 0 {
			r.pc -= 2
		}
	}

	subByte(f, r.a, value, false)
	f.setC(carry)
	f.setPv(r.bc != 0)

	n := result
	if f.h() {
		n--
	}
	f.setMask(undoc3Mask, n&byte(undoc3Mask) != 0)
	f.setMask(undoc5Mask, n&0x02 != 0)
}

// blockIn implements INI/INIR/IND/INDR: read port C into (HL), step HL,
// decrement B, and for the repeating forms rewind PC by 2 while B is
// still nonzero.
func (c *CPU) blockIn(instInt int) {
	r := &c.r
	f := &r.f

	value := c.in(r.bc)
	c.writeMem(r.hl, value)

	switch instInt {
	case instIni, instInir:
		r.hl++
	case instInd, instIndr:
		r.hl--
	}

	b := r.b() - 1
	r.setB(b)

	switch instInt {
	case instInir, instIndr:
		if b != 0 {
			r.pc -= 2
		}
	}

	f.setZ(b == 0)
	f.setN(true)
}

// blockOut implements OUTI/OTIR/OUTD/OTDR: write (HL) to port C, step HL,
// decrement B, and for the repeating forms rewind PC by 2 while B is
// still nonzero.
func (c *CPU) blockOut(instInt int) {
	r := &c.r
	f := &r.f

	value := c.readMem(r.hl)
	c.out(r.bc, value)

	switch instInt {
	case instOutd, instOtdr:
		r.hl--
	case instOuti, instOtir:
		r.hl++
	}

	b := r.b() - 1
	r.setB(b)

	switch instInt {
	case instOtdr, instOtir:
		if b != 0 {
			r.pc -= 2
		}
	}

	f.setZ(b == 0)
	f.setN(true)
}

// Whether the specified condition, such as carry flag, is currently
// satisfied by the flags of the CPU.
func (c *CPU) conditionSatisfied(cond string) bool {
	f := c.r.f
	switch cond {
	case "C":
		return f.c()
	case "NC":
		return !f.c()
	case "Z":
		return f.z()
	case "NZ":
		return !f.z()
	case "M":
		return f.s()
	case "P":
		return !f.s()
	case "PE":
		return f.pv()
	case "PO":
		return !f.pv()
	}

	panic("z80: unknown condition " + cond)
}

// Whether the operand is on a word register or immediate.
func isWordOperand(op string) bool {
	switch op {
	case "BC", "DE", "HL", "NN", "SP", "IX", "IY":
		return true
	}

	return false
}
