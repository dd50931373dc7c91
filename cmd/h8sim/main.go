/*
 * h8sim - Main process.
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

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	config "github.com/gosimh8/h8sim/config/configparser"
	"github.com/gosimh8/h8sim/emu/cpu"
	"github.com/gosimh8/h8sim/emu/loader"
	"github.com/gosimh8/h8sim/emu/memory"
	"github.com/gosimh8/h8sim/emu/notify"
	"github.com/gosimh8/h8sim/internal/monitor"
	logger "github.com/gosimh8/h8sim/util/logger"
)

var Logger *slog.Logger

func main() {
	optConfig := getopt.StringLong("config", 'c', "h8sim.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file (overrides the config file's logfile entry)")
	optProgram := getopt.StringLong("program", 'p', "", "Program image to load (overrides the config file's program entry)")
	optInteractive := getopt.BoolLong("interactive", 'i', "Start the interactive monitor instead of running to completion")
	optDebug := getopt.BoolLong("debug", 'd', "Echo log records to stderr regardless of level")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	cfg := config.New()
	if _, err := os.Stat(*optConfig); err == nil {
		if err := config.Load(*optConfig, cfg); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	}
	if *optProgram != "" {
		cfg.Program = *optProgram
	}
	if *optLogFile != "" {
		cfg.LogFile = *optLogFile
	}

	var file *os.File
	if cfg.LogFile != "" {
		var err error
		file, err = os.Create(cfg.LogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "h8sim: cannot create log file: "+err.Error())
			os.Exit(1)
		}
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	Logger = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, optDebug))
	slog.SetDefault(Logger)

	Logger.Info("h8sim started")

	if cfg.Program == "" {
		Logger.Error("no program specified: pass -p or set 'program' in the configuration file")
		os.Exit(1)
	}

	mem := memory.New(0)

	var sink cpu.Sink
	var sinkCloser interface{ Close() }
	if cfg.NotifyAddr != "" {
		s, err := notify.Listen(cfg.NotifyAddr)
		if err != nil {
			Logger.Error("starting notification socket: " + err.Error())
			os.Exit(1)
		}
		sink = s
		sinkCloser = s
		Logger.Info("notification socket listening", "addr", cfg.NotifyAddr)
	}

	img, err := loader.Load(cfg.Program, mem, cfg.LoadBase, cfg.EntrySym, cfg.ExitSym)
	if err != nil {
		Logger.Error("loading program: " + err.Error())
		os.Exit(1)
	}
	exitAddr := img.Exit
	if exitAddr == 0 {
		exitAddr = cfg.ExitAddr
	}

	opts := []cpu.Option{}
	if sink != nil {
		opts = append(opts, cpu.WithSink(sink))
	}
	if cfg.ClockHz != 0 {
		opts = append(opts, cpu.WithClock(cfg.ClockHz))
	}
	c := cpu.New(mem, exitAddr, opts...)
	if img.Entry != cpu.MemBase {
		c.SetPC(img.Entry)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if *optInteractive {
		mon := monitor.New(c, mem)
		go func() {
			<-sigChan
			fmt.Println("\nh8sim: quit signal received")
			os.Exit(0)
		}()
		mon.Console()
	} else {
		done := make(chan error, 1)
		go func() { done <- c.Run() }()

		select {
		case <-sigChan:
			Logger.Info("quit signal received, stopping")
		case runErr := <-done:
			if runErr != nil {
				Logger.Error("halted: " + runErr.Error())
			}
		}
	}

	if sinkCloser != nil {
		sinkCloser.Close()
	}

	fmt.Println(c.RegisterDump())
	halted, haltErr := c.Halted()
	state := 0
	if halted && haltErr != nil {
		state = 1
	}
	fmt.Printf("state: %d, cycles: %d\n", state, c.Cycles())

	Logger.Info("h8sim stopped")
}
