// Copyright 2012 Lawrence Kesteloot

// Command z80run is a minimal interactive front end for the z80 core: it
// loads a raw binary image into memory, then drives Step from a
// breakpoint-aware command loop modeled on the teacher's VM command
// dispatcher.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	z80 "github.com/lkesteloot/z80core"
)

const historicalPcCount = 20

var (
	loadAddr = flag.Int("addr", 0, "address to load the image at")
	romSize  = flag.Int("rom", 0, "number of bytes at the bottom of memory to treat as read-only")
	trace    = flag.Bool("trace", false, "disassemble every instruction as it executes")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: z80run [flags] <image>")
		os.Exit(2)
	}

	image, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	mem := &flatMemory{romSize: *romSize}
	copy(mem.bytes[*loadAddr:], image)

	ports := newConsolePorts()
	cpu, err := z80.New(mem, ports, nil)
	if err != nil {
		log.Fatal(err)
	}
	cpu.Reset()
	cpu.SetPC(uint16(*loadAddr))

	h := &host{
		cpu:   cpu,
		mem:   mem,
		ports: ports,
		bp:    &z80.Breakpoints{},
	}
	h.repl()
}

type host struct {
	cpu   *z80.CPU
	mem   *flatMemory
	ports *consolePorts
	bp    *z80.Breakpoints

	historicalPc    [historicalPcCount]uint16
	historicalPcPtr int
}

func (h *host) recordPc() {
	h.historicalPcPtr = (h.historicalPcPtr + 1) % historicalPcCount
	h.historicalPc[h.historicalPcPtr] = h.cpu.PC()
}

func (h *host) logHistory() {
	for i := 0; i < historicalPcCount; i++ {
		pc := h.historicalPc[(h.historicalPcPtr+i+1)%historicalPcCount]
		line, _ := h.cpu.Disassemble(pc)
		log.Print(line)
	}
}

// runUntilBreak executes instructions until an armed breakpoint is hit
// or the core parks in HALT with interrupts disabled (nothing left that
// could ever wake it).
func (h *host) runUntilBreak() {
	for {
		if h.cpu.AtBreakpoint(h.bp) {
			fmt.Printf("breakpoint at %04X\n", h.cpu.PC())
			return
		}
		if h.cpu.Halted() && !h.cpu.IFF1() {
			fmt.Println("halted with interrupts disabled, nothing left to do")
			return
		}

		h.recordPc()
		if *trace {
			line, _ := h.cpu.Disassemble(h.cpu.PC())
			fmt.Println(line)
		}
		h.cpu.Step()
	}
}

// repl drives the command loop. The prompt is only printed when stdin is
// an actual terminal, so piping a command script at z80run (as the test
// harness does) produces clean, promptless output.
func (h *host) repl() {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	scanner := bufio.NewScanner(os.Stdin)
	prompt := func() {
		if interactive {
			fmt.Print("z80run> ")
		}
	}

	prompt()
	for scanner.Scan() {
		h.handleCommand(strings.TrimSpace(scanner.Text()))
		prompt()
	}
}

func (h *host) handleCommand(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "run", "r":
		h.runUntilBreak()
	case "step", "s":
		n := 1
		if len(fields) > 1 {
			n, _ = strconv.Atoi(fields[1])
		}
		for i := 0; i < n; i++ {
			h.recordPc()
			line, _ := h.cpu.Disassemble(h.cpu.PC())
			fmt.Println(line)
			h.cpu.Step()
		}
	case "break", "b":
		if len(fields) != 2 {
			fmt.Println("usage: break <hex-addr>")
			return
		}
		addr, err := strconv.ParseUint(fields[1], 16, 16)
		if err != nil {
			fmt.Println(err)
			return
		}
		h.bp.Add(uint16(addr))
	case "regs":
		fmt.Println(h.cpu.DumpState())
	case "history":
		h.logHistory()
	case "reset":
		h.cpu.Reset()
	case "nmi":
		// NMI is edge-triggered on real hardware: assert it, let the next
		// Step take it, then drop the line again rather than leaving it
		// stuck pending for every subsequent instruction.
		h.ports.triggerNMI()
		h.recordPc()
		h.cpu.Step()
		h.ports.clearNMI()
		fmt.Printf("NMI serviced, pc now %04X\n", h.cpu.PC())
	case "int":
		// Asserted for one Step; if interrupts are disabled or the core is
		// still inside the one-instruction EI delay, that Step just runs
		// the next instruction instead and the interrupt is missed, same
		// as a peripheral whose IRQ loses the race on real hardware.
		data := byte(0)
		if len(fields) > 1 {
			v, err := strconv.ParseUint(fields[1], 16, 8)
			if err != nil {
				fmt.Println(err)
				return
			}
			data = byte(v)
		}
		h.ports.triggerInt(data)
		h.recordPc()
		h.cpu.Step()
		h.ports.clearInt()
		fmt.Printf("INT serviced (data=%02X), pc now %04X\n", data, h.cpu.PC())
	case "quit", "q":
		os.Exit(0)
	default:
		fmt.Printf("unknown command %q (try run, step, break, regs, history, reset, nmi, int, quit)\n", fields[0])
	}
}
