/*
   H8/300H CPU definitions: core state, external contracts, fault types.

   Copyright (c) 2024, Richard Cornwell

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

package cpu

import "fmt"

// Region classifies the memory area an effective address falls in, used
// only for per-access cycle costing.
type Region int

const (
	RegionOnChipRAM Region = iota
	RegionOnChipIO
	RegionExternal
)

// Width is the operand width of a memory access or instruction.
type Width int

const (
	Byte Width = 1
	Word Width = 2
	Long Width = 4
)

// Bus is the memory façade the core depends on. spec.md treats it as an
// external collaborator; emu/memory.Memory satisfies it structurally.
type Bus interface {
	ReadByte(addr uint32) (uint8, error)
	WriteByte(addr uint32, v uint8) error
	ReadWord(addr uint32) (uint16, error)
	WriteWord(addr uint32, v uint16) error
	ReadLong(addr uint32) (uint32, error)
	WriteLong(addr uint32, v uint32) error
	Region(addr uint32) Region
}

// Sink is the write-mirroring notification contract. Notify must not
// block instruction execution; a real Sink buffers internally.
type Sink interface {
	Notify(width Width, addr uint32, value uint32)
}

// nopSink is used when the caller attaches no notification sink.
type nopSink struct{}

func (nopSink) Notify(Width, uint32, uint32) {}

// FaultKind distinguishes the two fatal error classes spec.md defines.
type FaultKind int

const (
	FaultDecode FaultKind = iota
	FaultAddress
)

func (k FaultKind) String() string {
	switch k {
	case FaultDecode:
		return "decode error"
	case FaultAddress:
		return "address error"
	default:
		return "unknown fault"
	}
}

// Fault is the error type returned for unknown opcodes, out-of-range
// fetches, odd-aligned word/long accesses, and invalid long register
// selectors. It carries PC and opcode context so the dispatch loop (or
// any caller) can report a readable diagnostic without re-deriving it.
type Fault struct {
	Kind    FaultKind
	PC      uint32
	Opcode1 uint16
	Opcode2 uint16
	HasOp2  bool
	Detail  string
}

func (f *Fault) Error() string {
	if f.HasOp2 {
		return fmt.Sprintf("%s at pc=%#06x opcode=%#04x/%#04x: %s",
			f.Kind, f.PC, f.Opcode1, f.Opcode2, f.Detail)
	}
	return fmt.Sprintf("%s at pc=%#06x opcode=%#04x: %s", f.Kind, f.PC, f.Opcode1, f.Detail)
}

// MemBase and MemEnd bound the modelled device's 2^24-byte address space.
const (
	MemBase uint32 = 0x000000
	MemEnd  uint32 = 0x1000000 // MemBase + 2^24

	addrMask uint32 = 0x00ffffff // 24-bit effective-address mask
)

// decoded carries the opcode word(s) of one instruction and the PC it
// was dispatched from, for its handler and for fault context. Handlers
// keep register selectors, fetched extension data and effective
// addresses in locals; the imm, disp, abs and width fields below are not
// set by any handler.
type decoded struct {
	opcode1 uint16 // first fetched opcode word
	opcode2 uint16 // second opcode word, only for the 0x6A/0x6B/0x71/0x78/0x7C/0x7E prefixes
	hasOp2  bool

	pcAtDispatch uint32 // PC at the start of this instruction, for fault context

	// extension data slots (unused by the current handlers).
	imm   uint32 // immediate value (any width, zero-extended)
	disp  int32  // sign-extended displacement
	abs   uint32 // absolute address operand
	width Width
}

// CPU holds the full architectural state of one H8/300H core: the eight
// 32-bit general registers, PC, CCR, and the wiring to the external bus
// and notification sink. The register file and CCR are plain state;
// mutation only ever happens from the dispatch loop (single logical
// thread of control per spec.md §5).
type CPU struct {
	regs [8]uint32 // ER0..ER7
	pc   uint32
	ccr  uint8

	bus  Bus
	sink Sink

	exitAddr uint32

	table     [256]handlerFunc
	prefixTbl map[prefixKey]handlerFunc

	// cycle accounting and pacing, per spec.md §4.6/§4.7.
	totalCycles uint64
	clockHz     uint64 // simulated CPU clock, Hz; 0 disables pacing
	pacer       pacer

	halted   bool
	haltErr  error
	haltAddr uint32
}

type handlerFunc func(c *CPU, d *decoded) (cycles int, err error)

type prefixKey struct {
	op2Hi  uint8
	op2Nib uint8
}

// Option configures a CPU at construction time.
type Option func(*CPU)

// WithSink attaches a notification sink. Without this option writes are
// not mirrored anywhere.
func WithSink(s Sink) Option {
	return func(c *CPU) { c.sink = s }
}

// WithClock sets the simulated clock frequency in Hz used for pacing.
// A zero or unset clock disables wall-clock throttling entirely, which
// is useful for tests that want cycle-accurate results without delay.
func WithClock(hz uint64) Option {
	return func(c *CPU) { c.clockHz = hz }
}

// New constructs a CPU wired to bus and terminating when PC reaches
// exitAddr, per spec.md §6: "Execution begins with PC = memory base,
// ER7 = MEM_END − 0x0F, all other ER = 0, CCR = 0."
func New(bus Bus, exitAddr uint32, opts ...Option) *CPU {
	c := &CPU{
		bus:      bus,
		sink:     nopSink{},
		exitAddr: exitAddr,
	}
	c.buildTables()
	c.Reset()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reset restores the initial architectural state defined in spec.md §6.
func (c *CPU) Reset() {
	c.pc = MemBase
	for i := range c.regs {
		c.regs[i] = 0
	}
	c.regs[7] = MemEnd - 0x0F
	c.ccr = 0
	c.totalCycles = 0
	c.halted = false
	c.haltErr = nil
	c.pacer = pacer{}
}

// PC returns the current program counter.
func (c *CPU) PC() uint32 { return c.pc }

// SetPC overrides the program counter, used once after Reset to jump to
// a loader-resolved entry point that differs from MemBase.
func (c *CPU) SetPC(addr uint32) { c.pc = addr & addrMask }

// CCRByte returns the raw condition code register byte.
func (c *CPU) CCRByte() uint8 { return c.ccr }

// Cycles returns the total simulated cycle count consumed so far.
func (c *CPU) Cycles() uint64 { return c.totalCycles }

// Halted reports whether the run loop has stopped, and why (nil error
// means a clean exit-address termination).
func (c *CPU) Halted() (bool, error) {
	return c.halted, c.haltErr
}

// ER returns the full 32-bit value of ERn (n in 0..7), for diagnostics.
func (c *CPU) ER(n int) uint32 { return c.regs[n&7] }
