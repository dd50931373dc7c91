package cpu

import "testing"

func TestStepHaltsAtExitAddress(t *testing.T) {
	c, bus := newTestCPU(0x04)
	// nop; nop (exit address lands after the second nop)
	bus.loadProgram(uint16(opNOP)<<8, uint16(opNOP)<<8)

	if _, err := c.Step(); err != nil {
		t.Fatalf("first nop: unexpected error: %v", err)
	}
	if halted, _ := c.Halted(); halted {
		t.Fatal("must not halt before reaching the exit address")
	}

	if _, err := c.Step(); err != nil {
		t.Fatalf("second nop: unexpected error: %v", err)
	}
	halted, err := c.Halted()
	if !halted || err != nil {
		t.Errorf("expected a clean halt at the exit address, halted=%v err=%v", halted, err)
	}
}

func TestRunNStopsOnFault(t *testing.T) {
	c, bus := newTestCPU(0x100)
	bus.loadProgram(uint16(opNOP)<<8, 0xFFFF)

	executed, err := c.RunN(10)
	if executed != 1 {
		t.Errorf("expected exactly 1 instruction before the fault, got %d", executed)
	}
	if err == nil {
		t.Error("expected the unknown opcode to surface as an error")
	}
}

func TestOddPCFaults(t *testing.T) {
	c, _ := newTestCPU(0x10)
	c.pc = 0x01
	_, err := c.Step()
	if err == nil {
		t.Fatal("expected a fault for fetching from an odd PC")
	}
	f, ok := err.(*Fault)
	if !ok || f.Kind != FaultAddress {
		t.Errorf("expected a FaultAddress, got %v", err)
	}
}

func TestResetRestoresArchitecturalState(t *testing.T) {
	c, _ := newTestCPU(0x10)
	c.regs[3] = 0xdeadbeef
	c.ccr = 0xff
	c.totalCycles = 500
	c.Reset()

	if c.pc != MemBase {
		t.Errorf("pc got %06x wanted %06x", c.pc, MemBase)
	}
	if c.regs[7] != MemEnd-0x0F {
		t.Errorf("ER7 got %08x wanted %08x", c.regs[7], MemEnd-0x0F)
	}
	for i := 0; i < 7; i++ {
		if c.regs[i] != 0 {
			t.Errorf("ER%d got %08x wanted 0", i, c.regs[i])
		}
	}
	if c.ccr != 0 {
		t.Errorf("ccr got %02x wanted 0", c.ccr)
	}
	if c.totalCycles != 0 {
		t.Errorf("totalCycles got %d wanted 0", c.totalCycles)
	}
}

func TestRunWithoutClockDoesNotBlock(t *testing.T) {
	c, bus := newTestCPU(0x02)
	bus.loadProgram(uint16(opNOP) << 8)

	if err := c.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	halted, err := c.Halted()
	if !halted || err != nil {
		t.Errorf("expected a clean halt, halted=%v err=%v", halted, err)
	}
}
