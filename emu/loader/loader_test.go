/*
   Copyright (c) 2024, Richard Cornwell
   See loader.go for license text.
*/

package loader

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

type fakeTarget struct {
	loads map[uint32][]byte
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{loads: make(map[uint32][]byte)}
}

func (f *fakeTarget) LoadAt(base uint32, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	f.loads[base] = cp
	return nil
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write test fixture: %v", err)
	}
	return path
}

func TestLoadRawBinaryAtBase(t *testing.T) {
	prog := []byte{0x00, 0x00, 0x54, 0x00} // nop; rts
	path := writeFile(t, prog)

	tgt := newFakeTarget()
	img, err := Load(path, tgt, 0x400, "_start", "_exit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Entry != 0x400 {
		t.Errorf("entry got %#x wanted %#x", img.Entry, 0x400)
	}
	if !bytes.Equal(tgt.loads[0x400], prog) {
		t.Errorf("loaded bytes got %v wanted %v", tgt.loads[0x400], prog)
	}
}

// buildMinimalELF assembles just enough of an ELF64 little-endian
// executable for debug/elf to parse: a header and a single PT_LOAD
// program header, no section headers, no symbol table.
func buildMinimalELF(t *testing.T, entry uint64, vaddr uint64, payload []byte) []byte {
	t.Helper()
	const ehsize = 64
	const phentsize = 56

	buf := &bytes.Buffer{}

	ident := [16]byte{0x7f, 'E', 'L', 'F', 2 /* ELFCLASS64 */, 1 /* ELFDATA2LSB */, 1 /* EV_CURRENT */}
	buf.Write(ident[:])
	binary.Write(buf, binary.LittleEndian, uint16(2))  // e_type = ET_EXEC
	binary.Write(buf, binary.LittleEndian, uint16(0))  // e_machine (unused by the loader)
	binary.Write(buf, binary.LittleEndian, uint32(1))  // e_version
	binary.Write(buf, binary.LittleEndian, entry)      // e_entry
	binary.Write(buf, binary.LittleEndian, uint64(ehsize)) // e_phoff
	binary.Write(buf, binary.LittleEndian, uint64(0))  // e_shoff
	binary.Write(buf, binary.LittleEndian, uint32(0))  // e_flags
	binary.Write(buf, binary.LittleEndian, uint16(ehsize))
	binary.Write(buf, binary.LittleEndian, uint16(phentsize))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // e_phnum
	binary.Write(buf, binary.LittleEndian, uint16(0)) // e_shentsize
	binary.Write(buf, binary.LittleEndian, uint16(0)) // e_shnum
	binary.Write(buf, binary.LittleEndian, uint16(0)) // e_shstrndx

	dataOff := uint64(ehsize + phentsize)
	binary.Write(buf, binary.LittleEndian, uint32(1)) // p_type = PT_LOAD
	binary.Write(buf, binary.LittleEndian, uint32(5)) // p_flags = R+X
	binary.Write(buf, binary.LittleEndian, dataOff)   // p_offset
	binary.Write(buf, binary.LittleEndian, vaddr)     // p_vaddr
	binary.Write(buf, binary.LittleEndian, vaddr)     // p_paddr
	binary.Write(buf, binary.LittleEndian, uint64(len(payload))) // p_filesz
	binary.Write(buf, binary.LittleEndian, uint64(len(payload))) // p_memsz
	binary.Write(buf, binary.LittleEndian, uint64(4)) // p_align

	buf.Write(payload)
	return buf.Bytes()
}

func TestLoadELFUsesEntryAndLoadsSegment(t *testing.T) {
	payload := []byte{0x00, 0x00, 0x54, 0x00}
	data := buildMinimalELF(t, 0x1000, 0x1000, payload)
	path := writeFile(t, data)

	tgt := newFakeTarget()
	img, err := Load(path, tgt, 0, "_start", "_exit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Entry != 0x1000 {
		t.Errorf("entry got %#x wanted %#x", img.Entry, 0x1000)
	}
	if !bytes.Equal(tgt.loads[0x1000], payload) {
		t.Errorf("loaded segment got %v wanted %v", tgt.loads[0x1000], payload)
	}
}
