// Copyright 2012 Lawrence Kesteloot

package z80

import "time"

// Clock paces real-time execution. A core driven from a test or from a
// batch tool has no need to run at 1:1 speed with the host, so pacing is
// a pluggable trait rather than something step() hard-codes: realClock
// sleeps to approximate the original hardware's rate, and a test can
// install a clock that does nothing at all.
type Clock interface {
	// Advance is called once per instruction with the number of T-states
	// it cost. A real-time implementation sleeps long enough to keep the
	// emulated clock rate honest; a no-op implementation returns at once.
	Advance(tStates int)
}

// realClock paces to a 4 MHz Z80 clock rate: one T-state every 250 ns.
type realClock struct{}

const tStatesPerSecond = 4000000

func (realClock) Advance(tStates int) {
	time.Sleep(time.Duration(tStates) * time.Second / tStatesPerSecond)
}

// NopClock never sleeps, for tests and batch tools that want Step to run
// as fast as the host allows.
type NopClock struct{}

func (NopClock) Advance(tStates int) {}

// wait accounts for the T-states an instruction (or an interrupt
// acknowledge) consumed: the refresh register advances by the ceiling of
// a quarter of that count, staying within its low 7 bits with bit 7 left
// untouched, and the clock is given a chance to pace real time.
func (c *CPU) wait(tStates int) {
	c.r.incR(byte((tStates + 3) / 4))
	c.clock.Advance(tStates)
}
