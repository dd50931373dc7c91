/*
   Copyright (c) 2024, Richard Cornwell
   See memory.go for license text.
*/

package memory

import (
	"testing"

	"github.com/gosimh8/h8sim/emu/cpu"
)

func TestWordReadWriteBigEndian(t *testing.T) {
	m := New(0)
	if err := m.WriteWord(0x1000, 0xB6A5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hi, _ := m.ReadByte(0x1000)
	lo, _ := m.ReadByte(0x1001)
	if hi != 0xB6 || lo != 0xA5 {
		t.Errorf("big-endian bytes got %02x %02x wanted B6 A5", hi, lo)
	}
	v, err := m.ReadWord(0x1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0xB6A5 {
		t.Errorf("ReadWord got %04x wanted %04x", v, 0xB6A5)
	}
}

func TestLongReadWriteIsTwoWords(t *testing.T) {
	m := New(0)
	if err := m.WriteLong(0x2000, 0x11223344); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hi, _ := m.ReadWord(0x2000)
	lo, _ := m.ReadWord(0x2002)
	if hi != 0x1122 || lo != 0x3344 {
		t.Errorf("halves got %04x %04x wanted 1122 3344", hi, lo)
	}
}

func TestRegionClassification(t *testing.T) {
	m := New(0xFFF000)
	if r := m.Region(0xFFFF10); r != cpu.RegionOnChipIO {
		t.Errorf("0xFFFF10 got %v wanted RegionOnChipIO", r)
	}
	if r := m.Region(0xFFF500); r != cpu.RegionOnChipRAM {
		t.Errorf("0xFFF500 got %v wanted RegionOnChipRAM", r)
	}
	if r := m.Region(0x001000); r != cpu.RegionExternal {
		t.Errorf("0x001000 got %v wanted RegionExternal", r)
	}
}

func TestLoadAtCopiesBytes(t *testing.T) {
	m := New(0)
	prog := []byte{0x00, 0x00, 0x54, 0x00}
	if err := m.LoadAt(0x400, prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := m.ReadByte(0x402)
	if v != 0x54 {
		t.Errorf("byte at 0x402 got %02x wanted 0x54", v)
	}
}

func TestLoadAtRejectsOverflow(t *testing.T) {
	m := New(0)
	if err := m.LoadAt(Size-1, []byte{1, 2, 3}); err == nil {
		t.Error("expected an error for a program that runs past the end of memory")
	}
}

func TestOutOfRangeReadErrors(t *testing.T) {
	m := New(0)
	if _, err := m.ReadByte(Size); err == nil {
		t.Error("expected an error reading past the end of memory")
	}
}
