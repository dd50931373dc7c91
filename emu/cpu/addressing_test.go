package cpu

import "testing"

func TestEaRegIndirect(t *testing.T) {
	c, _ := newTestCPU(0)
	c.writeLong(2, 0xFFCF20)
	if ea := c.eaRegIndirect(2); ea != 0xFFCF20 {
		t.Errorf("eaRegIndirect got %06x wanted %06x", ea, 0xFFCF20)
	}
}

func TestEaPostIncAdvancesByWidth(t *testing.T) {
	c, _ := newTestCPU(0)
	c.writeLong(0, 0x1000)
	if ea := c.eaPostInc(0, Word); ea != 0x1000 {
		t.Errorf("eaPostInc returned %06x wanted %06x (pre-increment value)", ea, 0x1000)
	}
	if c.regs[0] != 0x1002 {
		t.Errorf("ER0 after postinc got %06x wanted %06x", c.regs[0], 0x1002)
	}
}

func TestEaPreDecAdvancesByWidth(t *testing.T) {
	c, _ := newTestCPU(0)
	c.writeLong(0, 0x1000)
	if ea := c.eaPreDec(0, Long); ea != 0x0FFC {
		t.Errorf("eaPreDec returned %06x wanted %06x (post-decrement value)", ea, 0x0FFC)
	}
	if c.regs[0] != 0x0FFC {
		t.Errorf("ER0 after predec got %06x wanted %06x", c.regs[0], 0x0FFC)
	}
}

func TestEaAbs8TopOfMap(t *testing.T) {
	c, _ := newTestCPU(0)
	if ea := c.eaAbs8(0x20); ea != 0xFFFF20 {
		t.Errorf("eaAbs8 got %06x wanted %06x", ea, 0xFFFF20)
	}
}

func TestEaAbs16SignExtends(t *testing.T) {
	c, bus := newTestCPU(0)
	bus.WriteWord(MemBase, 0x8000)
	ea, err := c.eaAbs16()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ea != 0xFF8000 {
		t.Errorf("eaAbs16(0x8000) got %06x wanted %06x", ea, 0xFF8000)
	}
}

func TestWriteEANotifiesSinkOnlyOnSuccess(t *testing.T) {
	c, _ := newTestCPU(0)
	s := &recordingSink{}
	c.sink = s
	if err := c.writeEA(Word, 0x100, 0xBEEF); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.calls) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(s.calls))
	}
	if s.calls[0].addr != 0x100 || s.calls[0].value != 0xBEEF {
		t.Errorf("notification mismatch: %+v", s.calls[0])
	}

	if err := c.writeEA(Word, 0x101, 0x1234); err == nil {
		t.Error("expected a fault for an odd word write")
	}
	if len(s.calls) != 1 {
		t.Error("a faulted write must not notify the sink")
	}
}

type sinkCall struct {
	width Width
	addr  uint32
	value uint32
}

type recordingSink struct {
	calls []sinkCall
}

func (s *recordingSink) Notify(w Width, addr uint32, value uint32) {
	s.calls = append(s.calls, sinkCall{w, addr, value})
}
