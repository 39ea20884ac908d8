package z80

import "testing"

// LDIR copies low-to-high, one byte per iteration, always reading ahead
// of where it writes. That makes it safe for disjoint ranges and for an
// overlap where the destination trails the source (shifting data down),
// but it is a real hardware hazard — not tested here — when the
// destination leads the source, since the copy then overwrites bytes it
// has not read yet.
func TestLdirDisjointAndOverlapping(t *testing.T) {
	cases := []struct {
		name    string
		srcAddr word
		dstAddr word
	}{
		{"disjoint", 0x2000, 0x3000},
		{"overlapping-dst-trails-src", 0x2001, 0x2000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cpu, mem, _ := newTestCPU()
			mem.bytes[tc.srcAddr] = 1
			mem.bytes[tc.srcAddr+1] = 2
			mem.bytes[tc.srcAddr+2] = 3

			cpu.r.hl = tc.srcAddr
			cpu.r.de = tc.dstAddr
			cpu.r.bc = 3
			mem.loadAt(0, 0xED, 0xB0) // LDIR

			// One Step per iteration: BC=3 takes three Steps to reach 0.
			for i := 0; i < 3; i++ {
				cpu.Step()
			}

			if cpu.BC() != 0 {
				t.Fatalf("BC = %04X after LDIR, want 0", cpu.BC())
			}
			if cpu.HL() != uint16(tc.srcAddr)+3 || cpu.DE() != uint16(tc.dstAddr)+3 {
				t.Fatalf("HL/DE = %04X/%04X, want %04X/%04X",
					cpu.HL(), cpu.DE(), uint16(tc.srcAddr)+3, uint16(tc.dstAddr)+3)
			}
			if mem.bytes[tc.dstAddr] != 1 || mem.bytes[tc.dstAddr+1] != 2 || mem.bytes[tc.dstAddr+2] != 3 {
				t.Fatalf("copied bytes = %d %d %d, want 1 2 3",
					mem.bytes[tc.dstAddr], mem.bytes[tc.dstAddr+1], mem.bytes[tc.dstAddr+2])
			}
			if flags(cpu.F()).pv() {
				t.Error("P/V should be clear once BC reaches 0")
			}
		})
	}
}

func TestLdirRewindsPcWhileBcNonzero(t *testing.T) {
	cpu, mem, _ := newTestCPU()
	cpu.r.hl = 0x2000
	cpu.r.de = 0x3000
	cpu.r.bc = 2
	mem.loadAt(0, 0xED, 0xB0) // LDIR

	cpu.Step() // first iteration: BC becomes 1, PC rewinds to re-fetch LDIR

	if cpu.PC() != 0 {
		t.Errorf("PC = %04X after one LDIR iteration with BC still nonzero, want 0 (rewound)", cpu.PC())
	}
	if cpu.BC() != 1 {
		t.Errorf("BC = %04X, want 1", cpu.BC())
	}

	cpu.Step() // second iteration: BC becomes 0, falls through

	if cpu.PC() != 2 {
		t.Errorf("PC = %04X after LDIR completes, want 2", cpu.PC())
	}
	if cpu.BC() != 0 {
		t.Errorf("BC = %04X, want 0", cpu.BC())
	}
}

func TestCpirStopsOnMatch(t *testing.T) {
	cpu, mem, _ := newTestCPU()
	mem.bytes[0x2000] = 0x11
	mem.bytes[0x2001] = 0x99
	mem.bytes[0x2002] = 0x33

	cpu.r.a = 0x99
	cpu.r.hl = 0x2000
	cpu.r.bc = 3
	mem.loadAt(0, 0xED, 0xB1) // CPIR

	cpu.Step() // no match, BC=2, rewind
	if cpu.PC() != 0 || cpu.HL() != 0x2001 {
		t.Fatalf("after first iteration PC=%04X HL=%04X, want 0/2001", cpu.PC(), cpu.HL())
	}

	cpu.Step() // match at 0x2001, stop even though BC is still nonzero

	if cpu.PC() != 2 {
		t.Errorf("PC = %04X after CPIR found a match, want 2 (not rewound)", cpu.PC())
	}
	if cpu.HL() != 0x2002 {
		t.Errorf("HL = %04X, want 2002", cpu.HL())
	}
	if cpu.BC() != 1 {
		t.Errorf("BC = %04X, want 1", cpu.BC())
	}
	if !flags(cpu.F()).z() {
		t.Error("Z should be set: a match was found")
	}
}

// OTIR writes (HL) to port C, steps HL up, decrements B, and rewinds PC
// by 2 while B is still nonzero, exactly like INIR but in the other
// direction down the bus.
func TestOtirWritesPortsUntilBExhausted(t *testing.T) {
	cpu, mem, ports := newTestCPU()
	mem.bytes[0x2000] = 0xAA
	mem.bytes[0x2001] = 0xBB

	cpu.r.hl = 0x2000
	cpu.r.bc = 0x0200 // B=2, C=0
	mem.loadAt(0, 0xED, 0xB3) // OTIR

	cpu.Step() // B=1, wrote 0xAA, rewind
	if cpu.PC() != 0 || cpu.HL() != 0x2001 {
		t.Fatalf("after first iteration PC=%04X HL=%04X, want 0/2001", cpu.PC(), cpu.HL())
	}
	if ports.written[0x0200] != 0xAA {
		t.Fatalf("port 0200 = %02X, want AA", ports.written[0x0200])
	}

	cpu.Step() // B=0, wrote 0xBB, falls through
	if cpu.PC() != 2 {
		t.Errorf("PC = %04X after OTIR completes, want 2", cpu.PC())
	}
	if cpu.HL() != 0x2002 {
		t.Errorf("HL = %04X, want 2002", cpu.HL())
	}
	if ports.written[0x0100] != 0xBB {
		t.Fatalf("port 0100 = %02X, want BB", ports.written[0x0100])
	}
	if !flags(cpu.F()).z() {
		t.Error("Z should be set once B reaches 0")
	}
}

// OTDR is OTIR's mirror image: HL steps down instead of up.
func TestOtdrWritesPortsDescendingUntilBExhausted(t *testing.T) {
	cpu, mem, ports := newTestCPU()
	mem.bytes[0x2000] = 0x11
	mem.bytes[0x1FFF] = 0x22

	cpu.r.hl = 0x2000
	cpu.r.bc = 0x0200 // B=2, C=0
	mem.loadAt(0, 0xED, 0xBB) // OTDR

	cpu.Step() // B=1, wrote 0x11, rewind
	if cpu.PC() != 0 || cpu.HL() != 0x1FFF {
		t.Fatalf("after first iteration PC=%04X HL=%04X, want 0/1FFF", cpu.PC(), cpu.HL())
	}
	if ports.written[0x0200] != 0x11 {
		t.Fatalf("port 0200 = %02X, want 11", ports.written[0x0200])
	}

	cpu.Step() // B=0, wrote 0x22, falls through
	if cpu.PC() != 2 {
		t.Errorf("PC = %04X after OTDR completes, want 2", cpu.PC())
	}
	if cpu.HL() != 0x1FFE {
		t.Errorf("HL = %04X, want 1FFE", cpu.HL())
	}
	if ports.written[0x0100] != 0x22 {
		t.Fatalf("port 0100 = %02X, want 22", ports.written[0x0100])
	}
	if !flags(cpu.F()).z() {
		t.Error("Z should be set once B reaches 0")
	}
}

func TestCpirExhaustsBcWithoutMatch(t *testing.T) {
	cpu, mem, _ := newTestCPU()
	mem.bytes[0x2000] = 0x01
	mem.bytes[0x2001] = 0x02

	cpu.r.a = 0xFF
	cpu.r.hl = 0x2000
	cpu.r.bc = 2
	mem.loadAt(0, 0xED, 0xB1) // CPIR

	cpu.Step() // BC=1, no match, rewind
	cpu.Step() // BC=0, no match, falls through regardless

	if cpu.PC() != 2 {
		t.Errorf("PC = %04X after BC reached 0, want 2", cpu.PC())
	}
	if cpu.BC() != 0 {
		t.Errorf("BC = %04X, want 0", cpu.BC())
	}
	if flags(cpu.F()).z() {
		t.Error("Z should be clear: no match was ever found")
	}
}
