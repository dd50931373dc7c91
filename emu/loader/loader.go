/*
   Program loader: sniffs the ELF magic number and either parses an ELF
   image for its entry point and symbol table, or treats the file as a
   raw binary loaded at a caller-supplied base address.

   No third-party ELF-reading library appears anywhere in the reference
   corpus this module was built from — only ELF *writers* built on
   encoding/binary — so this is the one component that falls back to the
   standard library, via debug/elf, rather than an ecosystem package.

   Copyright (c) 2024, Richard Cornwell
   See LICENSE text carried over from the memory package this is
   grounded alongside.

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

package loader

import (
	"bytes"
	"debug/elf"
	"fmt"
	"os"
)

// Target is what a Loader writes into, satisfied by *memory.Memory.
type Target interface {
	LoadAt(base uint32, data []byte) error
}

// Image describes what was loaded: where execution should begin, and
// where it should stop (see spec.md §6 on entry/exit symbols).
type Image struct {
	Entry uint32
	Exit  uint32
}

// elfMagic is the four-byte ELF identifier debug/elf also checks for,
// sniffed here first so a raw binary that happens to start differently
// is never misread as ELF.
var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// Load reads path, detects its format, and writes it into tgt. entrySym
// and exitSym name the ELF symbols to resolve for Entry/Exit; they are
// ignored for a raw binary, whose Entry is always loadBase and whose
// Exit must come from the caller's configuration instead.
func Load(path string, tgt Target, loadBase uint32, entrySym, exitSym string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("loader: %w", err)
	}

	if bytes.HasPrefix(data, elfMagic) {
		return loadELF(data, tgt, entrySym, exitSym)
	}
	return loadRaw(data, tgt, loadBase)
}

func loadRaw(data []byte, tgt Target, base uint32) (Image, error) {
	if err := tgt.LoadAt(base, data); err != nil {
		return Image{}, err
	}
	return Image{Entry: base}, nil
}

func loadELF(data []byte, tgt Target, entrySym, exitSym string) (Image, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("loader: not a valid ELF image: %w", err)
	}
	defer f.Close()

	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		seg := make([]byte, prog.Filesz)
		if _, err := prog.ReadAt(seg, 0); err != nil {
			return Image{}, fmt.Errorf("loader: reading segment at %#x: %w", prog.Vaddr, err)
		}
		if err := tgt.LoadAt(uint32(prog.Vaddr), seg); err != nil {
			return Image{}, fmt.Errorf("loader: loading segment at %#x: %w", prog.Vaddr, err)
		}
	}

	img := Image{Entry: uint32(f.Entry)}

	syms, err := f.Symbols()
	if err != nil && len(f.Progs) == 0 {
		return Image{}, fmt.Errorf("loader: no symbol table and no loadable segments: %w", err)
	}
	for _, sym := range syms {
		switch sym.Name {
		case entrySym:
			img.Entry = uint32(sym.Value)
		case exitSym:
			img.Exit = uint32(sym.Value)
		}
	}

	return img, nil
}
