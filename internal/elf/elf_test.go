package elf

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"spear/internal/address"
	"spear/internal/bus"
)

const elfMachineRISCV = 0xF3

// buildMinimalELF32 assembles a tiny ELF32 little-endian executable with a
// single PT_LOAD segment: filesz bytes of data followed by a zero-filled
// tail up to memsz. No section headers, so there is no symbol table.
func buildMinimalELF32(t *testing.T, entry, vaddr uint32, data []byte, memsz uint32) []byte {
	t.Helper()
	const ehsize, phentsize = 52, 32

	var buf bytes.Buffer
	buf.Write([]byte{0x7f, 'E', 'L', 'F', 1, 1, 1, 0})
	buf.Write(make([]byte, 8)) // e_ident padding

	write := func(v any) {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatalf("writing ELF field: %v", err)
		}
	}
	write(uint16(2))               // e_type = ET_EXEC
	write(uint16(elfMachineRISCV)) // e_machine
	write(uint32(1))               // e_version
	write(uint32(entry))           // e_entry
	write(uint32(ehsize))          // e_phoff
	write(uint32(0))               // e_shoff
	write(uint32(0))               // e_flags
	write(uint16(ehsize))          // e_ehsize
	write(uint16(phentsize))       // e_phentsize
	write(uint16(1))               // e_phnum
	write(uint16(0))               // e_shentsize
	write(uint16(0))               // e_shnum
	write(uint16(0))               // e_shstrndx

	write(uint32(1))                   // p_type = PT_LOAD
	write(uint32(ehsize + phentsize)) // p_offset
	write(uint32(vaddr))               // p_vaddr
	write(uint32(vaddr))               // p_paddr
	write(uint32(len(data)))           // p_filesz
	write(uint32(memsz))               // p_memsz
	write(uint32(5))                   // p_flags = R+X
	write(uint32(4))                   // p_align

	buf.Write(data)
	return buf.Bytes()
}

func TestLoadRegistersSegmentAndZeroFills(t *testing.T) {
	data := []byte{0x13, 0x01, 0x01, 0xff} // addi x2, x2, -16
	raw := buildMinimalELF32(t, 0x80000000, 0x80000000, data, 16)

	path := filepath.Join(t.TempDir(), "prog.elf")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	b := bus.New()
	img, err := Load(path, b)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Entry != address.FromUint32(0x80000000) {
		t.Errorf("entry = %#x, want 0x80000000", img.Entry.Uint32())
	}
	if img.HasTohost {
		t.Error("minimal image without a symbol table should report HasTohost = false")
	}

	word, err := b.ReadWord(address.FromUint32(0x80000000))
	if err != nil {
		t.Fatal(err)
	}
	if word != 0xFF010113 {
		t.Errorf("loaded word = %#x, want 0xff010113", word)
	}

	tail, err := b.ReadWord(address.FromUint32(0x80000004))
	if err != nil {
		t.Fatal(err)
	}
	if tail != 0 {
		t.Errorf("zero-fill tail = %#x, want 0", tail)
	}
}

func TestLoadRejectsBigEndian(t *testing.T) {
	raw := buildMinimalELF32(t, 0x80000000, 0x80000000, []byte{1, 2, 3, 4}, 4)
	raw[5] = 2 // EI_DATA = ELFDATA2MSB

	path := filepath.Join(t.TempDir(), "prog.elf")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	b := bus.New()
	if _, err := Load(path, b); err == nil {
		t.Fatal("expected an error loading a big-endian image")
	}
}
