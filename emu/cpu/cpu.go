/*
   H8/300H fetch/decode/dispatch loop and cycle-based real-time pacing.

   Copyright (c) 2024, Richard Cornwell
   See cpudefs.go for license text.
*/

package cpu

import "fmt"

// Step executes exactly one instruction (or takes the fatal-error path)
// and returns the number of cycles it consumed. The caller (Run, or a
// monitor's "step" command) is responsible for deciding whether to keep
// going; Step itself never loops.
func (c *CPU) Step() (int, error) {
	if c.halted {
		return 0, c.haltErr
	}

	d := &decoded{pcAtDispatch: c.pc}

	op1, err := c.fetchWord()
	if err != nil {
		c.stop(err)
		return 0, err
	}
	d.opcode1 = op1

	handler := c.table[op1>>8]
	if handler == nil {
		err = c.faultDecode(d, "unknown opcode")
		c.stop(err)
		return 0, err
	}

	cycles, err := handler(c, d)
	if err != nil {
		c.stop(err)
		return cycles, err
	}

	c.totalCycles += uint64(cycles)

	if c.pc == c.exitAddr {
		c.halted = true
		c.haltAddr = c.pc
	}

	return cycles, nil
}

func (c *CPU) stop(err error) {
	c.halted = true
	c.haltErr = err
}

// fetchOpcode2 fetches the second opcode word of a prefix instruction
// (0x6A/0x6B/0x71/0x78/0x7C/0x7E) and records it on d for fault context.
func (c *CPU) fetchOpcode2(d *decoded) (uint16, error) {
	op2, err := c.fetchWord()
	if err != nil {
		return 0, err
	}
	d.opcode2 = op2
	d.hasOp2 = true
	return op2, nil
}

// Run executes instructions until the exit address is reached or a
// fatal error occurs, pacing itself against the configured clock (see
// pacing.go). It returns the terminal error, which is nil on a clean
// exit-address termination.
func (c *CPU) Run() error {
	for {
		_, err := c.Step()
		if err != nil {
			return err
		}
		if c.halted {
			return nil
		}
		c.pacer.throttle(c.totalCycles, c.clockHz)
	}
}

// RunN executes up to n instructions (fewer if halted first), without
// pacing — used by tests and by the monitor's "step N" command.
func (c *CPU) RunN(n int) (int, error) {
	executed := 0
	for ; executed < n; executed++ {
		_, err := c.Step()
		if err != nil {
			return executed, err
		}
		if c.halted {
			return executed, nil
		}
	}
	return executed, nil
}

// RegisterDump formats "ER0:<hex> ... ER7:<hex>" per spec.md §6's
// diagnostics contract.
func (c *CPU) RegisterDump() string {
	s := ""
	for i := 0; i < 8; i++ {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("ER%d:%08x", i, c.regs[i])
	}
	return s
}
