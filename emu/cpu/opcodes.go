/*
   Opcode assignments and dispatch table construction.

   The primary table is keyed solely by the high byte of the first
   opcode word, matching spec.md §4.5's decode rule; everything else
   (register selectors, direction, immediate/displacement data) lives in
   the low byte or in extension words fetched by the handler itself.
   0x6A/0x6B/0x71/0x78/0x7C/0x7E are two-word prefixes: the handler
   fetches a second opcode word and decodes bits within it. 0x79/0x7A
   take their sub-operation from the low byte of the first word and
   fetch only the immediate.

   Copyright (c) 2024, Richard Cornwell
   See cpudefs.go for license text.
*/

package cpu

const (
	opNOP = 0x00

	opADD_B = 0x08
	opADD_W = 0x09
	opADD_L = 0x0A
	opADDS  = 0x0B

	opMOV_B_RR = 0x0C
	opMOV_W_RR = 0x0D
	opMOV_L_RR = 0x0F

	opSUB_B = 0x18
	opSUB_W = 0x19
	opSUB_L = 0x1A
	opSUBS  = 0x1B

	opCMP_B = 0x1C
	opCMP_W = 0x1D
	// 0x1E is unassigned; falls through to the nil-handler fault.
	opCMP_L = 0x1F

	opCmpImm8Base = 0xA0 // 0xA0..0xA7, "cmp.b #xx:8,Rd" with Rd = low 3 bits of the opcode index

	// byte-width @aa:8, split by top nibble of the full opcode word:
	// 0x20..0x27 loads, 0x30..0x37 stores. Register is the low nibble
	// of opcode1's high byte; the absolute address is opcode1's low byte.
	opMOV_B_ABS8_LD_BASE = 0x20
	opMOV_B_ABS8_ST_BASE = 0x30

	opBcc8Base = 0x40 // 0x40..0x4F, cond in low nibble of high byte, disp8 in low byte

	opRTS   = 0x54
	opTRAPA = 0x57
	opBcc16 = 0x58 // prefix: cond in high nibble of low byte, ext word = disp16

	opJMP_IND = 0x59
	opJMP_ABS = 0x5A
	opJMP_VEC = 0x5B

	opJSR_IND = 0x5D
	opJSR_ABS = 0x5E
	opJSR_VEC = 0x5F

	// single-opcode, direction-bit (0x0080 of opcode1) addressing forms,
	// one opcode per width shared between load and store.
	opMOV_B_IND        = 0x68
	opMOV_W_IND        = 0x69
	opMOV_B_ABS_PREFIX = 0x6A // prefix: opcode2 selects abs16 vs abs24 and direction
	opMOV_W_ABS_PREFIX = 0x6B
	opMOV_B_INCDEC     = 0x6C
	opMOV_W_INCDEC     = 0x6D
	opMOV_B_D16        = 0x6E
	opMOV_W_D16        = 0x6F

	// Long addressing modes mirror the byte/word direction-bit shape;
	// no original_source reference exists for MOV.L beyond its
	// register-to-register and immediate forms (see DESIGN.md), so this
	// layout is this implementation's own extrapolation by analogy.
	opMOV_L_IND        = 0x70
	opMOV_L_ABS_PREFIX = 0x71
	opMOV_L_D16        = 0x72
	opMOV_L_INCDEC     = 0x73

	opBXOR_RR = 0x75 // Rn direct; also reused as the opcode2 of the prefix forms below

	opMOV_B_IMM8Base = 0xF0 // 0xF0..0xF7, "mov.b #xx:8,Rd", single word: Rd in low nibble of high byte, imm8 in low byte

	opMOV_D24  = 0x78 // prefix: MOV.B/W/L @(d24,ERn), both directions
	opImmWord  = 0x79 // prefix: MOV/ADD/CMP/SUB #imm16,Rd
	opImmLong  = 0x7A // prefix: MOV/ADD/CMP/SUB #imm32,ERd
	opBXOR_IND = 0x7C // prefix: BXOR over @ERn
	opBXOR_ABS = 0x7E // prefix: BXOR over @aa:8
)

// d24 prefix sub-ops, carried in the high byte of the second opcode word.
const (
	subLdB = iota
	subStB
	subLdW
	subStW
	subLdL
	subStL
)

// immediate-group prefix sub-ops (0x79/0x7A), carried in the high
// nibble of the low byte of the first opcode word. Ordered to match
// original_source/src/cpu.rs's 0x79/0x7A nibble dispatch: 0=MOV,
// 1=ADD, 2=CMP, 3=SUB.
const (
	immMOV = iota
	immADD
	immCMP
	immSUB
)

func (c *CPU) buildTables() {
	t := &c.table

	t[opNOP] = opNop

	t[opADD_B] = opAddRR(Byte)
	t[opADD_W] = opAddRR(Word)
	t[opADD_L] = opAddRR(Long)
	t[opADDS] = opAdds

	t[opMOV_B_RR] = opMovRR(Byte)
	t[opMOV_W_RR] = opMovRR(Word)
	t[opMOV_L_RR] = opMovRR(Long)

	t[opSUB_B] = opSubRR(Byte)
	t[opSUB_W] = opSubRR(Word)
	t[opSUB_L] = opSubRR(Long)
	t[opSUBS] = opSubs

	t[opCMP_B] = opCmpRR(Byte)
	t[opCMP_W] = opCmpRR(Word)
	t[opCMP_L] = opCmpRR(Long)
	for i := 0; i < 8; i++ {
		t[opCmpImm8Base+i] = opCmpImm8(uint8(i))
	}

	for i := 0; i < 8; i++ {
		t[opMOV_B_ABS8_LD_BASE+i] = opMovAbs8(Byte, false)
		t[opMOV_B_ABS8_ST_BASE+i] = opMovAbs8(Byte, true)
	}
	for i := 0; i < 8; i++ {
		t[opMOV_B_IMM8Base+i] = opMovImm8
	}

	t[opMOV_B_IND] = opMovInd(Byte)
	t[opMOV_W_IND] = opMovInd(Word)
	t[opMOV_L_IND] = opMovInd(Long)

	t[opMOV_B_ABS_PREFIX] = opMovAbsPrefix(Byte)
	t[opMOV_W_ABS_PREFIX] = opMovAbsPrefix(Word)
	t[opMOV_L_ABS_PREFIX] = opMovAbsPrefix(Long)

	t[opMOV_B_INCDEC] = opMovIncDec(Byte)
	t[opMOV_W_INCDEC] = opMovIncDec(Word)
	t[opMOV_L_INCDEC] = opMovIncDec(Long)

	t[opMOV_B_D16] = opMovD16(Byte)
	t[opMOV_W_D16] = opMovD16(Word)
	t[opMOV_L_D16] = opMovD16(Long)

	for i := 0; i < 16; i++ {
		t[opBcc8Base+i] = opBcc8(condition(i))
	}
	t[opBcc16] = opBcc16Handler

	t[opRTS] = opRts
	t[opTRAPA] = opTrapa
	t[opJMP_IND] = opJmpInd
	t[opJMP_ABS] = opJmpAbs
	t[opJMP_VEC] = opJmpVec
	t[opJSR_IND] = opJsrInd
	t[opJSR_ABS] = opJsrAbs
	t[opJSR_VEC] = opJsrVec

	t[opBXOR_RR] = opBxorRR
	t[opMOV_D24] = opMovD24
	t[opImmWord] = opImmGroup(Word)
	t[opImmLong] = opImmGroup(Long)
	t[opBXOR_IND] = opBxorInd
	t[opBXOR_ABS] = opBxorAbs
}
