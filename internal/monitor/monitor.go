/*
   Interactive monitor console: a local liner-based REPL that drives one
   cpu.CPU (run/stop/step/reg/mem/quit). Adapted from the teacher's
   command/reader ConsoleReader loop, with its own small command set in
   place of the teacher's parser package — there is no device model to
   register commands for here, only a CPU and a memory façade.

   This is a local stdin/stdout console, not a wire protocol: it does
   not reach outside the process, so it does not reintroduce the
   debugger-protocol surface spec.md explicitly excludes.

   Copyright (c) 2024, Richard Cornwell
   See LICENSE text carried over from the command reader this is
   adapted from.

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

package monitor

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/peterh/liner"

	"github.com/gosimh8/h8sim/emu/cpu"
)

// MemReader is the subset of emu/memory.Memory the "mem" command needs.
type MemReader interface {
	ReadByte(addr uint32) (uint8, error)
}

// Monitor wraps a CPU with the run/stop/step command surface and the
// WaitGroup/done-channel shutdown shape the teacher's emu/core used for
// its goroutine-driven run loop.
type Monitor struct {
	cpu *cpu.CPU
	mem MemReader

	wg   sync.WaitGroup
	done chan struct{}

	mu      sync.Mutex
	running bool
}

// New wraps cpu for interactive control from a console.
func New(c *cpu.CPU, mem MemReader) *Monitor {
	return &Monitor{
		cpu:  c,
		mem:  mem,
		done: make(chan struct{}),
	}
}

// Console runs the liner REPL until "quit" or a prompt abort (Ctrl-C).
// It blocks the calling goroutine; the CPU's own Run executes on a
// separate goroutine started by the "run" command.
func (m *Monitor) Console() {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(l string) []string {
		return completions(l)
	})

	for {
		command, err := line.Prompt("h8sim> ")
		if err == nil {
			line.AppendHistory(command)
			quit := m.dispatch(command)
			if quit {
				m.shutdown()
				return
			}
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) {
			m.shutdown()
			return
		}
		slog.Error("monitor: error reading line", "error", err)
	}
}

func (m *Monitor) shutdown() {
	m.mu.Lock()
	running := m.running
	m.mu.Unlock()
	if running {
		close(m.done)
		m.wg.Wait()
	}
}

var commandNames = []string{"run", "stop", "step", "reg", "mem", "quit", "help"}

func completions(line string) []string {
	var out []string
	for _, c := range commandNames {
		if strings.HasPrefix(c, line) {
			out = append(out, c)
		}
	}
	return out
}

// dispatch executes one command line and reports whether the console
// should exit.
func (m *Monitor) dispatch(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "run":
		m.cmdRun()
	case "stop":
		m.cmdStop()
	case "step":
		m.cmdStep(fields[1:])
	case "reg":
		fmt.Println(m.cpu.RegisterDump())
	case "mem":
		m.cmdMem(fields[1:])
	case "help":
		fmt.Println("commands: run, stop, step [n], reg, mem <addr> [len], quit")
	case "quit", "exit":
		return true
	default:
		fmt.Println("unknown command: " + fields[0] + " (try 'help')")
	}
	return false
}

func (m *Monitor) cmdRun() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		fmt.Println("already running")
		return
	}
	m.running = true
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.cpu.Run(); err != nil {
			fmt.Println("halted: " + err.Error())
		} else {
			fmt.Println("program reached the exit address")
		}
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()
}

func (m *Monitor) cmdStop() {
	m.mu.Lock()
	running := m.running
	m.mu.Unlock()
	if !running {
		fmt.Println("not running")
		return
	}
	fmt.Println("stop has no effect once 'run' is executing: step instead, or let it reach the exit address")
}

func (m *Monitor) cmdStep(args []string) {
	m.mu.Lock()
	running := m.running
	m.mu.Unlock()
	if running {
		fmt.Println("already running: step is not available until run stops")
		return
	}
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			fmt.Println("usage: step [n]")
			return
		}
		n = v
	}
	executed, err := m.cpu.RunN(n)
	fmt.Printf("executed %d instruction(s), pc=%#06x\n", executed, m.cpu.PC())
	if err != nil {
		fmt.Println("halted: " + err.Error())
	}
}

func (m *Monitor) cmdMem(args []string) {
	if len(args) == 0 {
		fmt.Println("usage: mem <addr> [len]")
		return
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(args[0], "0x"), 16, 32)
	if err != nil {
		fmt.Println("bad address: " + args[0])
		return
	}
	length := 16
	if len(args) > 1 {
		if v, err := strconv.Atoi(args[1]); err == nil && v > 0 {
			length = v
		}
	}
	for i := 0; i < length; i++ {
		v, err := m.mem.ReadByte(uint32(addr) + uint32(i))
		if err != nil {
			fmt.Println("read error: " + err.Error())
			return
		}
		fmt.Printf("%06x: %02x\n", uint32(addr)+uint32(i), v)
	}
}
