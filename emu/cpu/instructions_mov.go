/*
   MOV family: register-register, immediate, and every addressing mode.

   Copyright (c) 2024, Richard Cornwell
   See cpudefs.go for license text.
*/

package cpu

const baseCycles = 2
const extWordCycles = 2
const postIncDecCycles = 2

func memCycles(c *CPU, ea uint32) int {
	return 2 * c.regionCost(ea)
}

// opMovRR implements "mov.<w> Rs,Rd" (also used for ERs,ERd at Long).
func opMovRR(w Width) handlerFunc {
	return func(c *CPU, d *decoded) (int, error) {
		src := uint8(d.opcode1>>4) & 0xf
		dst := uint8(d.opcode1) & 0xf
		if w == Long {
			if err := c.decodeLongSelector(src, d.pcAtDispatch, d.opcode1); err != nil {
				return 0, err
			}
			if err := c.decodeLongSelector(dst, d.pcAtDispatch, d.opcode1); err != nil {
				return 0, err
			}
		}
		v := c.readReg(w, src)
		c.writeReg(w, dst, v)
		c.setMoveFlags(w, v)
		return baseCycles, nil
	}
}

// opMovImm8 implements "mov.b #xx:8,Rd": a single opcode word with Rd in
// the low nibble of the high byte and the immediate itself in the low
// byte, no extension word fetched.
func opMovImm8(c *CPU, d *decoded) (int, error) {
	dst := uint8(d.opcode1>>8) & 0xf
	imm := uint32(d.opcode1 & 0xff)
	c.writeReg(Byte, dst, imm)
	c.setMoveFlags(Byte, imm)
	return baseCycles, nil
}

// movDirection reports whether opcode1's direction bit selects the
// register-to-memory (store) form over the memory-to-register (load)
// form. Every single-opcode MOV addressing mode below shares this bit.
func movDirection(opcode1 uint16) bool {
	return opcode1&0x0080 != 0
}

// opMovInd implements "mov.<w> @ERn,Rd" and "mov.<w> Rs,@ERn" as one
// opcode, direction chosen by movDirection.
func opMovInd(w Width) handlerFunc {
	return func(c *CPU, d *decoded) (int, error) {
		ernSel := uint8(d.opcode1>>4) & 0x7
		regSel := uint8(d.opcode1) & 0xf
		ea := c.eaRegIndirect(ernSel)
		if movDirection(d.opcode1) {
			v := c.readReg(w, regSel)
			if err := c.writeEA(w, ea, v); err != nil {
				return 0, err
			}
			c.setMoveFlags(w, v)
		} else {
			v, err := c.readEA(w, ea)
			if err != nil {
				return 0, err
			}
			c.writeReg(w, regSel, v)
			c.setMoveFlags(w, v)
		}
		return baseCycles + memCycles(c, ea), nil
	}
}

// opMovD16 implements "mov.<w> @(d16,ERn),Rd" and "mov.<w> Rs,@(d16,ERn)".
func opMovD16(w Width) handlerFunc {
	return func(c *CPU, d *decoded) (int, error) {
		ernSel := uint8(d.opcode1>>4) & 0x7
		regSel := uint8(d.opcode1) & 0xf
		ea, err := c.eaDisp16(ernSel)
		if err != nil {
			return 0, err
		}
		if movDirection(d.opcode1) {
			v := c.readReg(w, regSel)
			if err := c.writeEA(w, ea, v); err != nil {
				return 0, err
			}
			c.setMoveFlags(w, v)
		} else {
			v, err := c.readEA(w, ea)
			if err != nil {
				return 0, err
			}
			c.writeReg(w, regSel, v)
			c.setMoveFlags(w, v)
		}
		return baseCycles + extWordCycles + memCycles(c, ea), nil
	}
}

// opMovIncDec implements "mov.<w> @ERn+,Rd" (direction 0, load,
// post-increment) and "mov.<w> Rs,@-ERn" (direction 1, store,
// pre-decrement), the only pairing the real instruction defines.
func opMovIncDec(w Width) handlerFunc {
	return func(c *CPU, d *decoded) (int, error) {
		ernSel := uint8(d.opcode1>>4) & 0x7
		regSel := uint8(d.opcode1) & 0xf
		if movDirection(d.opcode1) {
			ea := c.eaPreDec(ernSel, w)
			v := c.readReg(w, regSel)
			if err := c.writeEA(w, ea, v); err != nil {
				return 0, err
			}
			c.setMoveFlags(w, v)
			return baseCycles + memCycles(c, ea) + postIncDecCycles, nil
		}
		ea := c.eaPostInc(ernSel, w)
		v, err := c.readEA(w, ea)
		if err != nil {
			return 0, err
		}
		c.writeReg(w, regSel, v)
		c.setMoveFlags(w, v)
		return baseCycles + memCycles(c, ea) + postIncDecCycles, nil
	}
}

// opMovAbs8 implements "mov.b @aa:8,Rd" (store=false) and
// "mov.b Rs,@aa:8" (store=true): the two forms live at disjoint opcode
// ranges (0x20-0x27 vs 0x30-0x37) rather than sharing a direction bit,
// so the direction is fixed per table entry instead of read from opcode1.
func opMovAbs8(w Width, store bool) handlerFunc {
	return func(c *CPU, d *decoded) (int, error) {
		reg := uint8(d.opcode1>>8) & 0x7
		ea := c.eaAbs8(uint8(d.opcode1))
		if store {
			v := c.readReg(w, reg)
			if err := c.writeEA(w, ea, v); err != nil {
				return 0, err
			}
			c.setMoveFlags(w, v)
		} else {
			v, err := c.readEA(w, ea)
			if err != nil {
				return 0, err
			}
			c.writeReg(w, reg, v)
			c.setMoveFlags(w, v)
		}
		return baseCycles + memCycles(c, ea), nil
	}
}

// opMovAbsPrefix implements "mov.<w> @aa:16/24,Rd" and
// "mov.<w> Rs,@aa:16/24": the prefix's second opcode word carries the
// register (low nibble), the direction (bit 0x0080), and the address
// width (bit 0x0020, set for :24).
func opMovAbsPrefix(w Width) handlerFunc {
	return func(c *CPU, d *decoded) (int, error) {
		op2, err := c.fetchOpcode2(d)
		if err != nil {
			return 0, err
		}
		reg := uint8(op2) & 0xf
		store := op2&0x0080 != 0
		wide24 := op2&0x0020 != 0

		var ea uint32
		cycles := baseCycles + extWordCycles
		if wide24 {
			ea, err = c.eaAbs24()
			if err != nil {
				return 0, err
			}
			cycles += 2 * extWordCycles
		} else {
			ea, err = c.eaAbs16()
			if err != nil {
				return 0, err
			}
			cycles += extWordCycles
		}

		if store {
			v := c.readReg(w, reg)
			if err := c.writeEA(w, ea, v); err != nil {
				return 0, err
			}
			c.setMoveFlags(w, v)
		} else {
			v, err := c.readEA(w, ea)
			if err != nil {
				return 0, err
			}
			c.writeReg(w, reg, v)
			c.setMoveFlags(w, v)
		}
		return cycles + memCycles(c, ea), nil
	}
}

// opMovD24 implements the 0x78 prefix family: MOV.B/W/L @(d24,ERn), both
// directions, selected by the sub-op carried in the second opcode
// word's high byte.
func opMovD24(c *CPU, d *decoded) (int, error) {
	ernSel := uint8(d.opcode1) & 0x7
	op2, err := c.fetchOpcode2(d)
	if err != nil {
		return 0, err
	}
	sub := uint8(op2 >> 8)
	regSel := uint8(op2)

	ea, err := c.eaDisp24(ernSel)
	if err != nil {
		return 0, err
	}

	var w Width
	switch sub {
	case subLdB, subStB:
		w = Byte
	case subLdW, subStW:
		w = Word
	default:
		w = Long
	}

	store := sub == subStB || sub == subStW || sub == subStL
	if store {
		v := c.readReg(w, regSel)
		if err := c.writeEA(w, ea, v); err != nil {
			return 0, err
		}
		c.setMoveFlags(w, v)
	} else {
		v, err := c.readEA(w, ea)
		if err != nil {
			return 0, err
		}
		c.writeReg(w, regSel, v)
		c.setMoveFlags(w, v)
	}
	// ext word for opcode2, plus a 32-bit (two-word) displacement fetch.
	return baseCycles + extWordCycles + 2*extWordCycles + memCycles(c, ea), nil
}

// opImmGroup implements the 0x79/0x7A prefix family: MOV/ADD/CMP/SUB
// with a word or long immediate, per spec.md's scenario S2.
func opImmGroup(w Width) handlerFunc {
	return func(c *CPU, d *decoded) (int, error) {
		sub := uint8(d.opcode1>>4) & 0xf
		dst := uint8(d.opcode1) & 0xf

		var imm uint32
		var err error
		extCycles := extWordCycles
		if w == Long {
			imm, err = c.fetchLong()
			extCycles = 2 * extWordCycles
		} else {
			var ext uint16
			ext, err = c.fetchWord()
			imm = uint32(ext)
		}
		if err != nil {
			return 0, err
		}

		switch sub {
		case immMOV:
			c.writeReg(w, dst, imm)
			c.setMoveFlags(w, imm)
		case immADD:
			a := c.readReg(w, dst)
			r := c.truncate(w, a+imm)
			c.writeReg(w, dst, r)
			c.addFlags(w, a, imm, r)
		case immCMP:
			a := c.readReg(w, dst)
			r := c.truncate(w, a-imm)
			c.subFlags(w, a, imm, r)
		default: // immSUB
			a := c.readReg(w, dst)
			r := c.truncate(w, a-imm)
			c.writeReg(w, dst, r)
			c.subFlags(w, a, imm, r)
		}
		return baseCycles + extCycles, nil
	}
}
