// Package elf loads a RISC-V ELF image onto a memory bus: parse LOAD
// segments into bus RAM devices, report the entry point, and resolve the
// tohost symbol for the HTIF contract.
package elf

import (
	"debug/elf"
	"fmt"

	"spear/internal/address"
	"spear/internal/bus"
)

// Image is the result of loading an ELF file: where execution begins and,
// if present, where the HTIF tohost word lives.
type Image struct {
	Entry     address.Address
	Tohost    address.Address
	HasTohost bool
}

// Load parses the ELF file at path, registers one RAM device per PT_LOAD
// segment onto b (file bytes followed by a zero-fill to Memsz), and
// resolves the tohost symbol if the binary carries a symbol table. A
// segment whose range overlaps a device already on b is instead written
// byte by byte into the existing mapping; it fails if any byte is unmapped.
func Load(path string, b *bus.Bus) (Image, error) {
	f, err := elf.Open(path)
	if err != nil {
		return Image{}, fmt.Errorf("elf: opening %s: %w", path, err)
	}
	defer f.Close()

	if f.Data == elf.ELFDATA2MSB {
		return Image{}, fmt.Errorf("elf: %s is big-endian, which this hart does not support", path)
	}

	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD || prog.Memsz == 0 {
			continue
		}
		data := make([]byte, prog.Memsz)
		if prog.Filesz > 0 {
			n, err := prog.ReadAt(data[:prog.Filesz], 0)
			if err != nil || uint64(n) != prog.Filesz {
				return Image{}, fmt.Errorf("elf: reading segment at %#x: %w", prog.Vaddr, err)
			}
		}
		base := address.FromUint32(uint32(prog.Vaddr))
		if err := b.AddDevice(base, bus.NewRAMFromBytes(data)); err != nil {
			// The range is already covered by a device (such as DRAM):
			// copy the segment into that device instead.
			for i, v := range data {
				if werr := b.WriteByte(base.Add(address.FromUint32(uint32(i))), v); werr != nil {
					return Image{}, fmt.Errorf("elf: registering segment at %#x: %w", prog.Vaddr, err)
				}
			}
		}
	}

	img := Image{Entry: address.FromUint32(uint32(f.Entry))}

	if syms, err := f.Symbols(); err == nil {
		for _, s := range syms {
			if s.Name == "tohost" {
				img.Tohost = address.FromUint32(uint32(s.Value))
				img.HasTohost = true
				break
			}
		}
	}

	return img, nil
}
