/*
   Write-mirroring notification sink: a buffered, single-writer-goroutine
   TCP broadcaster of every memory write the core makes, so an external
   observer can attach and watch the program run.

   Adapted from the accept/shutdown shape of the teacher's telnet
   listener and the wire format of the Rust reference socket writer
   (u8/u16/u32:<addr>:<value>\n, fire-and-forget, ordered within one
   writer).

   Copyright (c) 2024, Richard Cornwell
   See LICENSE text carried over from the telnet listener this is
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

package notify

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/gosimh8/h8sim/emu/cpu"
)

// queueDepth bounds how many pending records Notify will buffer before
// it starts dropping. Telemetry, not authoritative state: a slow or
// absent observer must never make the core wait.
const queueDepth = 4096

type record struct {
	width cpu.Width
	addr  uint32
	value uint32
}

// Sink implements cpu.Sink over a TCP listener: the first connection
// that arrives is the observer, and every write notification after that
// is formatted and queued to it. Only that one connection is ever
// accepted: once the observer disconnects, no new connection is taken.
type Sink struct {
	wg       sync.WaitGroup
	listener net.Listener
	shutdown chan struct{}
	queue    chan record
	dropped  uint64
}

// Listen starts accepting connections on addr ("host:port" or ":port")
// and returns a Sink ready to attach to cpu.New via cpu.WithSink.
func Listen(addr string) (*Sink, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("notify: failed to listen on %s: %w", addr, err)
	}
	s := &Sink{
		listener: l,
		shutdown: make(chan struct{}),
		queue:    make(chan record, queueDepth),
	}
	s.wg.Add(1)
	go s.acceptAndServe()
	return s, nil
}

// Notify implements cpu.Sink. It never blocks: a full queue means a
// slow or absent observer, and the record is dropped rather than
// stalling instruction execution.
func (s *Sink) Notify(width cpu.Width, addr uint32, value uint32) {
	select {
	case s.queue <- record{width, addr, value}:
	default:
		s.dropped++
	}
}

// Close stops accepting new connections and waits for the writer
// goroutine to flush what it has written and exit, per the teacher's
// Stop-then-wait shutdown shape. Records still in the queue are not sent.
func (s *Sink) Close() {
	close(s.shutdown)
	s.listener.Close()
	s.wg.Wait()
}

// Dropped reports how many notifications were discarded because the
// queue was full when they were produced.
func (s *Sink) Dropped() uint64 {
	return s.dropped
}

func (s *Sink) acceptAndServe() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
				slog.Warn("notify: accept failed", "error", err)
				return
			}
		}
		s.serve(conn)
		return
	}
}

func (s *Sink) serve(conn net.Conn) {
	defer conn.Close()
	w := bufio.NewWriter(conn)
	for {
		select {
		case <-s.shutdown:
			w.Flush()
			return
		case rec := <-s.queue:
			if _, err := fmt.Fprintf(w, "%s:%d:%d\n", widthTag(rec.width), rec.addr, rec.value); err != nil {
				slog.Warn("notify: write failed, dropping observer", "error", err)
				return
			}
			if len(s.queue) == 0 {
				w.Flush()
			}
		}
	}
}

func widthTag(w cpu.Width) string {
	switch w {
	case cpu.Byte:
		return "u8"
	case cpu.Word:
		return "u16"
	default:
		return "u32"
	}
}
