/*
   Branch, jump, subroutine call/return and TRAPA.

   Copyright (c) 2024, Richard Cornwell
   See cpudefs.go for license text.
*/

package cpu

// condition enumerates the 16 H8/300H branch conditions, encoded in the
// low nibble of the Bcc opcode.
type condition uint8

const (
	condBRA condition = iota // always
	condBRN                  // never
	condHI
	condLS
	condCC // carry clear
	condCS // carry set
	condNE
	condEQ
	condVC
	condVS
	condPL
	condMI
	condGE
	condLT
	condGT
	condLE
)

func (c *CPU) evalCondition(cc condition) bool {
	flagc := c.get(flagC) != 0
	flagz := c.get(flagZ) != 0
	flagv := c.get(flagV) != 0
	flagn := c.get(flagN) != 0

	switch cc {
	case condBRA:
		return true
	case condBRN:
		return false
	case condHI:
		return !flagc && !flagz
	case condLS:
		return flagc || flagz
	case condCC:
		return !flagc
	case condCS:
		return flagc
	case condNE:
		return !flagz
	case condEQ:
		return flagz
	case condVC:
		return !flagv
	case condVS:
		return flagv
	case condPL:
		return !flagn
	case condMI:
		return flagn
	case condGE:
		return flagn == flagv
	case condLT:
		return flagn != flagv
	case condGT:
		return !flagz && (flagn == flagv)
	default: // condLE
		return flagz || (flagn != flagv)
	}
}

// opBcc8 implements the 8-bit-displacement Bcc family, opcodes
// 0x40..0x4F: the branch condition is the opcode's low nibble, and the
// signed displacement is the low byte of the same opcode word, so no
// extension fetch is needed.
func opBcc8(cc condition) handlerFunc {
	return func(c *CPU, d *decoded) (int, error) {
		disp := int8(d.opcode1)
		if c.evalCondition(cc) {
			c.pc = uint32(int32(c.pc) + int32(disp))
		}
		return baseCycles, nil
	}
}

// opBcc16Handler implements the 0x58 prefix: a 16-bit-displacement Bcc
// whose condition lives in the high nibble of the opcode's low byte and
// whose displacement is a full extension word.
func opBcc16Handler(c *CPU, d *decoded) (int, error) {
	cc := condition(uint8(d.opcode1>>4) & 0xf)
	disp, err := c.fetchWord()
	if err != nil {
		return 0, err
	}
	if c.evalCondition(cc) {
		c.pc = uint32(int32(c.pc) + int32(int16(disp)))
	}
	return baseCycles + extWordCycles, nil
}

func opJmpInd(c *CPU, d *decoded) (int, error) {
	ernSel := uint8(d.opcode1) & 0x7
	c.pc = c.eaRegIndirect(ernSel)
	return baseCycles, nil
}

func opJmpAbs(c *CPU, d *decoded) (int, error) {
	ea, err := c.eaAbs24()
	if err != nil {
		return 0, err
	}
	c.pc = ea
	return baseCycles + 2*extWordCycles, nil
}

// opJmpVec implements "jmp @@aa:8": the low byte of the opcode word is
// an 8-bit vector number whose slot in the low 256 bytes of memory
// holds the 32-bit jump target.
func opJmpVec(c *CPU, d *decoded) (int, error) {
	vec := uint8(d.opcode1)
	target, err := c.bus.ReadLong(uint32(vec))
	if err != nil {
		return 0, c.faultAddr("vector read: " + err.Error())
	}
	c.pc = target & addrMask
	return baseCycles + memCycles(c, uint32(vec)), nil
}

// pushLong decrements ER7 by 4 and writes v at the new top of stack.
func (c *CPU) pushLong(v uint32) error {
	c.regs[7] -= 4
	return c.bus.WriteLong(c.regs[7]&addrMask, v)
}

// popLong reads the long at ER7 and increments ER7 by 4.
func (c *CPU) popLong() (uint32, error) {
	v, err := c.bus.ReadLong(c.regs[7] & addrMask)
	if err != nil {
		return 0, err
	}
	c.regs[7] += 4
	return v, nil
}

func opJsrInd(c *CPU, d *decoded) (int, error) {
	ernSel := uint8(d.opcode1) & 0x7
	target := c.eaRegIndirect(ernSel)
	if err := c.pushLong(c.pc); err != nil {
		return 0, c.faultAddr("jsr stack push: " + err.Error())
	}
	c.pc = target
	return baseCycles + memCycles(c, c.regs[7]), nil
}

func opJsrAbs(c *CPU, d *decoded) (int, error) {
	target, err := c.eaAbs24()
	if err != nil {
		return 0, err
	}
	if err := c.pushLong(c.pc); err != nil {
		return 0, c.faultAddr("jsr stack push: " + err.Error())
	}
	c.pc = target
	return baseCycles + 2*extWordCycles + memCycles(c, c.regs[7]), nil
}

func opJsrVec(c *CPU, d *decoded) (int, error) {
	vec := uint8(d.opcode1)
	target, err := c.bus.ReadLong(uint32(vec))
	if err != nil {
		return 0, c.faultAddr("vector read: " + err.Error())
	}
	if err := c.pushLong(c.pc); err != nil {
		return 0, c.faultAddr("jsr stack push: " + err.Error())
	}
	c.pc = target & addrMask
	return baseCycles + 2*memCycles(c, c.regs[7]), nil
}

func opRts(c *CPU, d *decoded) (int, error) {
	target, err := c.popLong()
	if err != nil {
		return 0, c.faultAddr("rts stack pop: " + err.Error())
	}
	c.pc = target & addrMask
	return baseCycles + memCycles(c, c.regs[7]-4), nil
}

// opTrapa implements the trap instruction as a fixed-cost no-op: the
// emulated system has no interrupt/exception vector table to enter, so
// there is nothing to do beyond charging the documented cycle cost.
func opTrapa(c *CPU, d *decoded) (int, error) {
	return 14, nil
}
