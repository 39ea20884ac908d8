package z80

// flatTestMemory is a minimal Memory collaborator for tests: a plain
// 64 KiB array with no protected region.
type flatTestMemory struct {
	bytes [65536]byte
}

func (m *flatTestMemory) Read(addr uint16) byte         { return m.bytes[addr] }
func (m *flatTestMemory) Write(addr uint16, value byte) { m.bytes[addr] = value }

func (m *flatTestMemory) loadAt(addr uint16, program ...byte) {
	copy(m.bytes[addr:], program)
}

// stubPorts is a Ports collaborator whose interrupt lines and port values
// are driven directly by the test rather than any simulated peripheral.
type stubPorts struct {
	values  map[uint16]byte
	written map[uint16]byte

	nmi, intLine bool
	data         byte
}

func newStubPorts() *stubPorts {
	return &stubPorts{values: map[uint16]byte{}, written: map[uint16]byte{}}
}

func (p *stubPorts) ReadPort(addr uint16) byte       { return p.values[addr] }
func (p *stubPorts) WritePort(addr uint16, v byte)   { p.written[addr] = v }
func (p *stubPorts) NMI() bool                       { return p.nmi }
func (p *stubPorts) INT() bool                       { return p.intLine }
func (p *stubPorts) Data() byte                      { return p.data }

func newTestCPU() (*CPU, *flatTestMemory, *stubPorts) {
	mem := &flatTestMemory{}
	ports := newStubPorts()
	cpu, err := New(mem, ports, nil)
	if err != nil {
		panic(err)
	}
	cpu.SetClock(NopClock{})
	return cpu, mem, ports
}
