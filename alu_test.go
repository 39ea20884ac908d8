package z80

import "testing"

func TestAddByteFlags(t *testing.T) {
	cases := []struct {
		name               string
		a, b               byte
		wantResult         byte
		wantH, wantPv, wantC, wantZ, wantS bool
	}{
		{"no flags", 0x01, 0x01, 0x02, false, false, false, false, false},
		{"half carry", 0x0F, 0x01, 0x10, true, false, false, false, false},
		{"signed overflow", 0x7F, 0x01, 0x80, true, true, false, false, true},
		{"carry and zero", 0xFF, 0x01, 0x00, true, false, true, true, false},
		{"carry without zero", 0xFF, 0x02, 0x01, true, false, true, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var f flags
			got := addByte(&f, tc.a, tc.b)
			if got != tc.wantResult {
				t.Errorf("result = %02X, want %02X", got, tc.wantResult)
			}
			if f.h() != tc.wantH {
				t.Errorf("H = %v, want %v", f.h(), tc.wantH)
			}
			if f.pv() != tc.wantPv {
				t.Errorf("P/V = %v, want %v", f.pv(), tc.wantPv)
			}
			if f.c() != tc.wantC {
				t.Errorf("C = %v, want %v", f.c(), tc.wantC)
			}
			if f.z() != tc.wantZ {
				t.Errorf("Z = %v, want %v", f.z(), tc.wantZ)
			}
			if f.s() != tc.wantS {
				t.Errorf("S = %v, want %v", f.s(), tc.wantS)
			}
			if f.n() {
				t.Error("N should be clear after an addition")
			}
		})
	}
}

func TestSubByteBorrowUsesUnsignedComparison(t *testing.T) {
	cases := []struct {
		name       string
		a, b       byte
		wantResult byte
		wantC      bool
	}{
		{"no borrow", 0x05, 0x03, 0x02, false},
		{"exact zero", 0x05, 0x05, 0x00, false},
		{"borrow across zero", 0x00, 0x01, 0xFF, true},
		{"borrow at boundary", 0x80, 0x81, 0xFF, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var f flags
			got := subByte(&f, tc.a, tc.b, false)
			if got != tc.wantResult {
				t.Errorf("result = %02X, want %02X", got, tc.wantResult)
			}
			if f.c() != tc.wantC {
				t.Errorf("C = %v, want %v", f.c(), tc.wantC)
			}
			if !f.n() {
				t.Error("N should be set after a subtraction")
			}
		})
	}
}

func TestAdcByteIncludesIncomingCarry(t *testing.T) {
	var f flags
	f.setC(true)
	got := adcByte(&f, 0x0F, 0x00, true)
	if got != 0x10 {
		t.Errorf("result = %02X, want 10", got)
	}
	if !f.h() {
		t.Error("expected half carry: 0x0F + 0 + carry-in crosses the nibble boundary")
	}
}

func TestSbcByteIncludesIncomingBorrow(t *testing.T) {
	var f flags
	got := subByte(&f, 0x00, 0x00, true)
	if got != 0xFF {
		t.Errorf("result = %02X, want FF", got)
	}
	if !f.c() {
		t.Error("expected borrow: 0 - 0 - carry-in underflows")
	}
}

func TestIncDecByteOverflowEdges(t *testing.T) {
	var f flags
	if got := incByte(&f, 0x7F); got != 0x80 {
		t.Errorf("INC 0x7F = %02X, want 80", got)
	}
	if !f.pv() {
		t.Error("INC 0x7F should set P/V: the only byte that overflows into the sign bit")
	}

	f = 0
	if got := decByte(&f, 0x80); got != 0x7F {
		t.Errorf("DEC 0x80 = %02X, want 7F", got)
	}
	if !f.pv() {
		t.Error("DEC 0x80 should set P/V: the only byte that overflows out of the sign bit")
	}

	f = 0xFF // carry must be left untouched by INC/DEC
	incByte(&f, 0x00)
	if !f.c() {
		t.Error("INC must not touch the carry flag")
	}
}

func TestParity(t *testing.T) {
	cases := []struct {
		value byte
		want  bool
	}{
		{0x00, true},
		{0x01, false},
		{0x03, true},
		{0x07, false},
		{0xFF, true},
		{0x81, true},
	}
	for _, tc := range cases {
		if got := isEvenParity(tc.value); got != tc.want {
			t.Errorf("isEvenParity(%02X) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestDaaAfterBcdAddition(t *testing.T) {
	var f flags
	a := addByte(&f, 0x15, 0x27) // 15 + 27 in packed BCD
	got := daa(&f, a)
	if got != 0x42 {
		t.Errorf("DAA(ADD 0x15,0x27) = %02X, want 42", got)
	}
	if f.c() {
		t.Error("no decimal carry expected out of 15+27=42")
	}
}

func TestDaaAfterBcdAdditionWithDecimalCarry(t *testing.T) {
	var f flags
	a := addByte(&f, 0x58, 0x44) // 58 + 44 = 102 in decimal
	got := daa(&f, a)
	if got != 0x02 {
		t.Errorf("DAA(ADD 0x58,0x44) = %02X, want 02", got)
	}
	if !f.c() {
		t.Error("expected decimal carry out of 58+44=102")
	}
}

func TestDaaBranchesOnSubtract(t *testing.T) {
	var f flags
	a := subByte(&f, 0x42, 0x17, false) // 42 - 17 = 25 in packed BCD
	got := daa(&f, a)
	if got != 0x25 {
		t.Errorf("DAA(SUB 0x42,0x17) = %02X, want 25", got)
	}
}

func TestRotateLeftCarriesBit7IntoBit0AndCarry(t *testing.T) {
	result, carryOut := rotateLeft(0x80)
	if result != 0x01 || !carryOut {
		t.Errorf("RLC 0x80 = %02X/%v, want 01/true", result, carryOut)
	}
}

func TestShiftRightArithmeticPreservesSignBit(t *testing.T) {
	result, carryOut := shiftRightArithmetic(0x81)
	if result != 0xC0 || !carryOut {
		t.Errorf("SRA 0x81 = %02X/%v, want C0/true", result, carryOut)
	}
}

func TestShiftLeftLogicalUndocSetsBit0(t *testing.T) {
	result, carryOut := shiftLeftLogicalUndoc(0x81)
	if result != 0x03 || !carryOut {
		t.Errorf("SLL 0x81 = %02X/%v, want 03/true", result, carryOut)
	}
}

func TestAddWordOnlyTouchesHNC(t *testing.T) {
	var f flags
	f.setS(true)
	f.setZ(true)
	f.setPv(true)
	got := addWord(&f, 0x0FFF, 0x0001)
	if got != 0x1000 {
		t.Errorf("result = %04X, want 1000", got)
	}
	if !f.h() {
		t.Error("expected half carry crossing bit 12")
	}
	if !f.s() || !f.z() || !f.pv() {
		t.Error("ADD HL,ss must not touch S, Z, or P/V")
	}
}

func TestSbcWordSetsEveryFlagUnlikeAddWord(t *testing.T) {
	var f flags
	got := sbcWord(&f, 0x0000, 0x0001, false)
	if got != 0xFFFF {
		t.Errorf("result = %04X, want FFFF", got)
	}
	if !f.c() {
		t.Error("expected borrow")
	}
	if !f.s() {
		t.Error("expected sign set: 0xFFFF is negative as a 16-bit value")
	}
	if f.z() {
		t.Error("result is nonzero")
	}
}
