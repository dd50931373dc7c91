/*
   Copyright (c) 2024, Richard Cornwell
   See notify.go for license text.
*/

package notify

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/gosimh8/h8sim/emu/cpu"
)

func TestNotifyDeliversFormattedRecords(t *testing.T) {
	s, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	conn, err := net.Dial("tcp", s.listener.Addr().String())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	s.Notify(cpu.Byte, 0x1000, 0x42)
	s.Notify(cpu.Word, 0x2000, 0xBEEF)
	s.Notify(cpu.Long, 0x3000, 0xDEADBEEF)

	reader := bufio.NewReader(conn)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	want := []string{
		"u8:4096:66\n",
		"u16:8192:48879\n",
		"u32:12288:3735928559\n",
	}
	for _, w := range want {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if line != w {
			t.Errorf("got %q wanted %q", line, w)
		}
	}
}

func TestNotifyDropsWhenQueueFull(t *testing.T) {
	s := &Sink{queue: make(chan record, 1)}
	s.Notify(cpu.Byte, 0, 1)
	s.Notify(cpu.Byte, 0, 2)
	if s.Dropped() != 1 {
		t.Errorf("dropped count got %d wanted 1", s.Dropped())
	}
}
