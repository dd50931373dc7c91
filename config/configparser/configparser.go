/*
 * h8sim - Configuration file parser
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package configparser reads the simulator's configuration file: one
// "key value" pair per line, '#' starts a comment that runs to end of
// line, blank lines are ignored. There is no device model registry
// here, unlike the machine this parser is descended from — a single
// CPU and bus do not need one.
package configparser

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is every setting the simulator reads from a config file, with
// the defaults New fills in before Load overrides them.
type Config struct {
	Program   string // path to the program image (ELF or raw binary)
	EntrySym  string // ELF symbol naming the entry point
	ExitSym   string // ELF symbol naming the exit/sentinel address
	ExitAddr  uint32 // raw-binary exit address, when ExitSym resolves to nothing
	LoadBase  uint32 // base address for a raw binary load
	ClockHz   uint64 // simulated clock frequency; 0 disables pacing
	NotifyAddr string // listen address for the write-notification socket, empty disables it
	LogFile   string // path to the log file
}

// New returns the built-in defaults, the same way the simulator behaves
// with no configuration file at all.
func New() *Config {
	return &Config{
		EntrySym: "_start",
		ExitSym:  "__exit",
		LoadBase: 0x000000,
		ClockHz:  0,
		LogFile:  "h8sim.log",
	}
}

// Load reads path line by line and applies every "key value" pair onto
// cfg, returning an error that names the offending line number.
func Load(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("configparser: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := stripComment(scanner.Text())
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		key := strings.ToLower(fields[0])
		value := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

		if err := apply(cfg, key, value); err != nil {
			return fmt.Errorf("configparser: line %d: %w", lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("configparser: %w", err)
	}
	return nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func apply(cfg *Config, key, value string) error {
	switch key {
	case "program":
		cfg.Program = value
	case "entry":
		cfg.EntrySym = value
	case "exit":
		cfg.ExitSym = value
	case "exitaddr":
		v, err := parseAddr(value)
		if err != nil {
			return fmt.Errorf("exitaddr: %w", err)
		}
		cfg.ExitAddr = v
	case "loadbase":
		v, err := parseAddr(value)
		if err != nil {
			return fmt.Errorf("loadbase: %w", err)
		}
		cfg.LoadBase = v
	case "clock":
		v, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("clock: %w", err)
		}
		cfg.ClockHz = v
	case "notify":
		cfg.NotifyAddr = value
	case "logfile":
		cfg.LogFile = value
	default:
		return fmt.Errorf("unknown option: %s", key)
	}
	return nil
}

func parseAddr(value string) (uint32, error) {
	value = strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "0X")
	v, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
