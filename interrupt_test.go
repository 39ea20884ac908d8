package z80

import "testing"

// IM1, RETI round trip: a pending maskable interrupt in mode 1 vectors to
// 0x0038, pushes the return address, and RETI restores it so execution
// resumes exactly where it was interrupted.
func TestInterruptMode1RoundTripViaReti(t *testing.T) {
	cpu, mem, ports := newTestCPU()
	mem.loadAt(0,
		0xFB,       // EI
		0x00,       // NOP  (suppressInterruptCheck window covers this one)
		0x00,       // NOP  (the interrupt is serviced before this executes)
	)
	mem.loadAt(0x0038, 0xED, 0x4D) // RETI

	cpu.Step() // EI: IFF1/IFF2 true, arms the one-instruction delay
	if !cpu.IFF1() {
		t.Fatal("EI did not enable interrupts")
	}

	cpu.interruptMode = 1
	ports.intLine = true

	cpu.Step() // NOP at PC=1: suppressInterruptCheck consumes this round
	if cpu.PC() != 2 {
		t.Fatalf("PC = %d after the EI-delay NOP, want 2", cpu.PC())
	}

	cpu.Step() // now the pending interrupt is serviced instead of the NOP at PC=2
	if cpu.PC() != 0x0038 {
		t.Fatalf("PC = %04X after interrupt ack in mode 1, want 0038", cpu.PC())
	}
	if cpu.IFF1() || cpu.IFF2() {
		t.Error("IFF1/IFF2 should be cleared on interrupt entry")
	}
	if cpu.SP() != 0xFFFD {
		t.Fatalf("SP = %04X after pushing return address, want FFFD", cpu.SP())
	}

	ports.intLine = false // peripheral deasserts once acknowledged
	cpu.iff2 = true       // simulate EI having re-armed IFF2 inside the handler
	cpu.Step()            // RETI

	if cpu.PC() != 2 {
		t.Fatalf("PC = %04X after RETI, want 2 (resumed where the NOP was interrupted)", cpu.PC())
	}
	if cpu.SP() != 0xFFFF {
		t.Fatalf("SP = %04X after RETI pops the return address, want FFFF", cpu.SP())
	}
	if !cpu.IFF1() {
		t.Error("RETI should have restored IFF1 from IFF2, same as RETN")
	}
}

func TestNonMaskableInterruptPreservesIff2AndUsesRetn(t *testing.T) {
	cpu, mem, ports := newTestCPU()
	mem.loadAt(0, 0x00, 0x00) // two NOPs
	mem.loadAt(0x0066, 0xED, 0x45) // RETN

	cpu.iff1 = true
	cpu.iff2 = true
	ports.nmi = true

	cpu.Step() // NMI taken instead of the first NOP

	if cpu.PC() != 0x0066 {
		t.Fatalf("PC = %04X after NMI, want 0066", cpu.PC())
	}
	if cpu.IFF1() {
		t.Error("NMI must clear IFF1 so a maskable interrupt can't nest")
	}
	if !cpu.IFF2() {
		t.Error("NMI must leave IFF2 alone so RETN can restore the prior state")
	}

	ports.nmi = false
	cpu.Step() // RETN

	if cpu.PC() != 0 {
		t.Fatalf("PC = %04X after RETN, want 0", cpu.PC())
	}
	if !cpu.IFF1() {
		t.Error("RETN should have restored IFF1 from IFF2")
	}
}

// A halted core with interrupts enabled must wake up on a pending
// interrupt and resume at the instruction after HALT, not loop forever
// re-executing HALT.
func TestInterruptWakesHaltedCore(t *testing.T) {
	cpu, mem, ports := newTestCPU()
	mem.loadAt(0, 0x76, 0x00) // HALT; NOP
	mem.loadAt(0x0038, 0x00)  // landing pad, not exercised further

	cpu.iff1 = true
	cpu.iff2 = true
	cpu.interruptMode = 1

	cpu.Step() // HALT
	if !cpu.Halted() || cpu.PC() != 0 {
		t.Fatalf("after HALT: halted=%v pc=%04X, want true/0000", cpu.Halted(), cpu.PC())
	}

	ports.intLine = true
	cpu.Step() // interrupt serviced while halted

	if cpu.Halted() {
		t.Error("interrupt should have taken the core out of HALT")
	}
	if cpu.PC() != 0x0038 {
		t.Fatalf("PC = %04X after interrupt wakes a halted core, want 0038", cpu.PC())
	}
	// The return address pushed must be the instruction after HALT (1),
	// not HALT itself, or RETI/RETN would resume into an infinite re-halt.
	returnAddr := word(mem.bytes[cpu.SP()]) | word(mem.bytes[cpu.SP()+1])<<8
	if returnAddr != 1 {
		t.Errorf("pushed return address = %04X, want 0001", returnAddr)
	}
}
