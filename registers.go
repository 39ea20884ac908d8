// Copyright 2012 Lawrence Kesteloot

package z80

// registers is the 26-byte mutable CPU state: the primary and alternate
// 8-bit register pairs, the index registers, the stack pointer and program
// counter, the interrupt vector and refresh registers. Every 16-bit pair is
// also addressable as two bytes, and the two views are kept coherent by
// routing all access through the word and byte helpers below.
type registers struct {
	// Main 8-bit registers, grouped as 16-bit pairs.
	bc, de, hl word
	a          byte
	f          flags

	// Alternate ("prime") register set, swapped in by EXX / EX AF,AF'.
	bcp, dep, hlp word
	ap            byte
	fp            flags

	// Interrupt vector and memory refresh.
	i, r byte

	// Index registers.
	ix, iy word

	// Stack pointer and program counter.
	sp, pc word
}

func (r *registers) reset() {
	*r = registers{
		a: 0xFF,
		f: 0xFF,
		sp: 0xFFFF,
	}
}

func (r *registers) setBc(v word) { r.bc = v }
func (r *registers) setDe(v word) { r.de = v }
func (r *registers) setHl(v word) { r.hl = v }

// b/c/d/e/h/l give byte-level access to the BC/DE/HL pairs so that the
// 3-bit register-field decoder can index into them directly.
func (r *registers) b() byte { return r.bc.h() }
func (r *registers) c() byte { return r.bc.l() }
func (r *registers) d() byte { return r.de.h() }
func (r *registers) e() byte { return r.de.l() }
func (r *registers) h() byte { return r.hl.h() }
func (r *registers) l() byte { return r.hl.l() }

func (r *registers) setB(v byte) { r.bc.setH(v) }
func (r *registers) setC(v byte) { r.bc.setL(v) }
func (r *registers) setD(v byte) { r.de.setH(v) }
func (r *registers) setE(v byte) { r.de.setL(v) }
func (r *registers) setH(v byte) { r.hl.setH(v) }
func (r *registers) setL(v byte) { r.hl.setL(v) }

func (r *registers) ixh() byte { return r.ix.h() }
func (r *registers) ixl() byte { return r.ix.l() }
func (r *registers) iyh() byte { return r.iy.h() }
func (r *registers) iyl() byte { return r.iy.l() }

func (r *registers) setIxh(v byte) { r.ix.setH(v) }
func (r *registers) setIxl(v byte) { r.ix.setL(v) }
func (r *registers) setIyh(v byte) { r.iy.setH(v) }
func (r *registers) setIyl(v byte) { r.iy.setL(v) }

// incR advances the refresh counter by delta, keeping bit 7 sticky and
// wrapping only the low 7 bits, as the hardware does on every instruction
// fetch and interrupt acknowledge.
func (r *registers) incR(delta byte) {
	r.r = (r.r & 0x80) | ((r.r + delta) & 0x7F)
}

// bytes returns the 26-byte register image used by GetState, in the order
// documented by the Core API: main set, alternate set, I, R, IX, IY, SP, PC.
func (r *registers) bytes() [26]byte {
	return [26]byte{
		r.b(), r.c(), r.d(), r.e(), r.h(), r.l(), byte(r.f), r.a,
		r.bcp.h(), r.bcp.l(), r.dep.h(), r.dep.l(), r.hlp.h(), r.hlp.l(), byte(r.fp), r.ap,
		r.i, r.r,
		r.ixh(), r.ixl(), r.iyh(), r.iyl(),
		r.sp.h(), r.sp.l(),
		r.pc.h(), r.pc.l(),
	}
}
