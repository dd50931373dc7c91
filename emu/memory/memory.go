/*
   H8/300H memory façade: a flat byte-addressable store over
   [MEM_BASE, MEM_END) with big-endian word/long access and a region
   classifier the core uses purely for cycle costing.

   Copyright (c) 2024, Richard Cornwell
   See LICENSE text carried over from the original memory package this
   one is adapted from.

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/

package memory

import (
	"fmt"

	"github.com/gosimh8/h8sim/emu/cpu"
)

const (
	// AMASK masks an address down to the modelled 24-bit space.
	AMASK uint32 = 0x00ffffff

	// Size is the full 2^24-byte address space, matching cpu.MemEnd.
	Size = 1 << 24

	// ioBase marks the start of the on-chip I/O window, which is also
	// the window the @aa:8 addressing mode's "top of map" shortcut
	// lands in (see spec.md §4.3).
	ioBase uint32 = 0xFFFF00

	// defaultRAMWindow is how far below ioBase on-chip RAM extends when
	// the caller doesn't configure a different size.
	defaultRAMWindow uint32 = 8 * 1024
)

// Memory is a Bus implementation backed by a single flat byte array.
// Unlike the teacher's package-level singleton, it is an ordinary value
// type constructed per-run, since spec.md's core is built fresh around
// an explicit memory façade rather than a shared global.
type Memory struct {
	bytes   []byte
	ramBase uint32
}

// New allocates a full-sized address space. ramBase is the first
// address treated as on-chip RAM (everything from there up to ioBase is
// RAM; everything below it is external); pass 0 to use defaultRAMWindow
// below ioBase.
func New(ramBase uint32) *Memory {
	if ramBase == 0 {
		ramBase = ioBase - defaultRAMWindow
	}
	return &Memory{
		bytes:   make([]byte, Size),
		ramBase: ramBase,
	}
}

// Region classifies addr for the core's cycle-cost formula. addr is
// expected to already be a bounded 24-bit address, as every address
// the core hands to the bus is.
func (m *Memory) Region(addr uint32) cpu.Region {
	switch {
	case addr >= ioBase:
		return cpu.RegionOnChipIO
	case addr >= m.ramBase:
		return cpu.RegionOnChipRAM
	default:
		return cpu.RegionExternal
	}
}

// ReadByte returns the byte at addr. addr is not re-masked: an address
// at or beyond the 2^24-byte space is a caller bug, reported as an
// error rather than silently wrapped.
func (m *Memory) ReadByte(addr uint32) (uint8, error) {
	if int(addr) >= len(m.bytes) {
		return 0, fmt.Errorf("read out of range: %#06x", addr)
	}
	return m.bytes[addr], nil
}

// WriteByte stores v at addr.
func (m *Memory) WriteByte(addr uint32, v uint8) error {
	if int(addr) >= len(m.bytes) {
		return fmt.Errorf("write out of range: %#06x", addr)
	}
	m.bytes[addr] = v
	return nil
}

// ReadWord returns the big-endian 16-bit word at addr. Callers that
// need the alignment check spec.md §3 requires use cpu.CPU's own
// fetch/readEA paths, which check alignment before calling here.
func (m *Memory) ReadWord(addr uint32) (uint16, error) {
	hi, err := m.ReadByte(addr)
	if err != nil {
		return 0, err
	}
	lo, err := m.ReadByte(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// WriteWord stores v at addr, big-endian.
func (m *Memory) WriteWord(addr uint32, v uint16) error {
	if err := m.WriteByte(addr, uint8(v>>8)); err != nil {
		return err
	}
	return m.WriteByte(addr+1, uint8(v))
}

// ReadLong returns the big-endian 32-bit long at addr, as two word reads.
func (m *Memory) ReadLong(addr uint32) (uint32, error) {
	hi, err := m.ReadWord(addr)
	if err != nil {
		return 0, err
	}
	lo, err := m.ReadWord(addr + 2)
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo), nil
}

// WriteLong stores v at addr, as two word writes.
func (m *Memory) WriteLong(addr uint32, v uint32) error {
	if err := m.WriteWord(addr, uint16(v>>16)); err != nil {
		return err
	}
	return m.WriteWord(addr+2, uint16(v))
}

// LoadAt copies data into memory starting at base, for use by emu/loader.
func (m *Memory) LoadAt(base uint32, data []byte) error {
	base &= AMASK
	if int(base)+len(data) > len(m.bytes) {
		return fmt.Errorf("program of %d bytes at %#06x does not fit in memory", len(data), base)
	}
	copy(m.bytes[base:], data)
	return nil
}
