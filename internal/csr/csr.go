// Package csr implements the Zicsr control-and-status register file: a
// dense 4096-entry array with privilege-checked access, S-mode views onto
// M-mode registers, and the satp/TVM trap.
package csr

import (
	"spear/internal/address"
	"spear/internal/priv"
	"spear/internal/trap"
)

// SSTATUSMask selects the bits of mstatus that are visible through the
// sstatus view. This is the RV32 layout of the mask: SD sits at bit 31 and
// there is no UXL field.
const SSTATUSMask = address.Address(0x800DE162)

// mstatusTVM is bit 20 of mstatus: when set, S-mode access to satp traps.
const mstatusTVM = 20

// File is the CSR register bank belonging to one hart.
type File struct {
	regs [CSRCount]address.Address
}

// New returns a CSR file with misa seeded for RV32I base (bit 8) plus
// Supervisor (bit 18) and User (bit 20) extensions, MXL=1 (32-bit) in the
// top two bits.
func New() *File {
	f := &File{}
	f.regs[Misa] = address.Address((1 << 30) | (1 << 20) | (1 << 18) | (1 << 8))
	return f
}

func lowestMode(a Address) priv.Mode {
	return priv.FromBits(uint8((a >> 8) & 0b11))
}

func readOnly(a Address) bool {
	return (a>>10)&0b11 == 0b11
}

// ReadableIn reports whether CSR a may be read while running in mode.
func ReadableIn(a Address, mode priv.Mode) bool {
	return mode.CanAccess(lowestMode(a))
}

// WriteableIn reports whether CSR a may be written while running in mode.
func WriteableIn(a Address, mode priv.Mode) bool {
	if readOnly(a) {
		return false
	}
	return mode.CanAccess(lowestMode(a))
}

// Read performs a privilege-checked read, applying the sstatus/sie/sip view
// masks and the satp/TVM trap.
func (f *File) Read(a Address, mode priv.Mode) (address.Address, error) {
	if !ReadableIn(a, mode) {
		return 0, trap.IllegalInstruction(0)
	}
	if a == Satp && mode == priv.Supervisor && f.regs[Mstatus].GetBit(mstatusTVM) {
		return 0, trap.IllegalInstruction(0)
	}
	return f.viewRead(a), nil
}

// Write performs a privilege-checked write, masking view CSRs so only the
// bits the view exposes are modified.
func (f *File) Write(a Address, value address.Address, mode priv.Mode) error {
	if !WriteableIn(a, mode) {
		return trap.IllegalInstruction(0)
	}
	if a == Satp && mode == priv.Supervisor && f.regs[Mstatus].GetBit(mstatusTVM) {
		return trap.IllegalInstruction(0)
	}
	f.viewWrite(a, value)
	return nil
}

// ForceRead bypasses privilege and TVM checks; used by the trap engine to
// read xepc/xcause/xstatus during delivery.
func (f *File) ForceRead(a Address) address.Address {
	return f.viewRead(a)
}

// ForceWrite bypasses privilege and TVM checks; used by the trap engine
// while stacking trap state.
func (f *File) ForceWrite(a Address, value address.Address) {
	f.viewWrite(a, value)
}

func (f *File) viewRead(a Address) address.Address {
	switch a {
	case Sstatus:
		return f.regs[Mstatus] & SSTATUSMask
	case Sie:
		return f.regs[Mie] & f.regs[Mideleg]
	case Sip:
		return f.regs[Mip] & f.regs[Mideleg]
	default:
		return f.regs[a]
	}
}

func (f *File) viewWrite(a Address, value address.Address) {
	switch a {
	case Sstatus:
		f.regs[Mstatus] = (f.regs[Mstatus] &^ SSTATUSMask) | (value & SSTATUSMask)
	case Sie:
		deleg := f.regs[Mideleg]
		f.regs[Mie] = (f.regs[Mie] &^ deleg) | (value & deleg)
	case Sip:
		deleg := f.regs[Mideleg]
		f.regs[Mip] = (f.regs[Mip] &^ deleg) | (value & deleg)
	default:
		f.regs[a] = value
	}
}
