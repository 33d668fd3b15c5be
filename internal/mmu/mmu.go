// Package mmu implements the Sv32 two-level page-table walker: SUM/MXR/MPRV
// aware permission checks and Accessed/Dirty enforcement on every leaf PTE.
package mmu

import (
	"spear/internal/bus"
	"spear/internal/csr"
	"spear/internal/priv"
	"spear/internal/trap"

	"spear/internal/address"
)

// AccessType is the kind of memory access being translated, which selects
// both the required PTE permission bit and the page-fault variant raised
// on failure.
type AccessType uint8

const (
	Read AccessType = iota
	Write
	Fetch
)

const (
	pteV = 1 << 0
	pteR = 1 << 1
	pteW = 1 << 2
	pteX = 1 << 3
	pteU = 1 << 4
	pteA = 1 << 6
	pteD = 1 << 7
)

const (
	mstatusSUM  = 18
	mstatusMXR  = 19
	mstatusMPRV = 17
)

// MMU walks the Sv32 page table. It is stateless: all mutable state lives
// in the CSR file and the bus it is given on each call.
type MMU struct{}

// New returns an MMU ready to translate addresses.
func New() *MMU { return &MMU{} }

func pageFaultFor(access AccessType, addr address.Address) trap.Exception {
	switch access {
	case Write:
		return trap.StorePageFault(addr)
	case Fetch:
		return trap.InstructionPageFault(addr)
	default:
		return trap.LoadPageFault(addr)
	}
}

// Translate converts a virtual address to a physical one for the given
// privilege mode and access type, walking Sv32 page tables when satp.MODE
// is set and the effective privilege is not Machine. It returns addr
// unchanged when translation is not active.
func (m *MMU) Translate(f *csr.File, b *bus.Bus, mode priv.Mode, addr address.Address, access AccessType) (address.Address, error) {
	mstatus := f.ForceRead(csr.Mstatus)

	effective := mode
	if access != Fetch && mstatus.GetBit(mstatusMPRV) {
		effective = priv.FromBits(uint8(mstatus.GetBits(11, 13)))
	}

	if effective == priv.Machine {
		return addr, nil
	}

	satp := f.ForceRead(csr.Satp)
	if !satp.GetBit(31) {
		return addr, nil
	}

	sum := mstatus.GetBit(mstatusSUM)
	mxr := mstatus.GetBit(mstatusMXR)

	tableBase := satp.GetBits(0, 22).Shl(12)

	for level := 1; level >= 0; level-- {
		shift := uint(12 + level*10)
		idx := addr.Shr(shift) & 0x3FF

		pteAddr := tableBase.Add(idx.Mul(4))
		word, err := b.ReadWord(pteAddr)
		if err != nil {
			// A faulting PTE fetch is reported as a page fault, not a
			// raw access fault, matching the walker's own fault domain.
			return 0, pageFaultFor(access, addr)
		}
		pte := address.FromUint32(word)

		valid := pte.GetBit(0)
		r := pte.GetBit(1)
		w := pte.GetBit(2)
		if !valid || (!r && w) {
			return 0, pageFaultFor(access, addr)
		}

		x := pte.GetBit(3)
		if !r && !x {
			// Branch: descend to the next level.
			tableBase = pte.GetBits(10, 32).Shl(12)
			continue
		}

		// Leaf.
		u := pte.GetBit(4)
		accessed := pte.GetBit(6)
		dirty := pte.GetBit(7)

		ok := true
		switch access {
		case Read:
			ok = r || (x && mxr)
		case Write:
			ok = w
		case Fetch:
			ok = x
		}
		if u {
			if effective == priv.Supervisor && (access == Fetch || !sum) {
				ok = false
			}
		} else if effective == priv.User {
			ok = false
		}
		if !accessed {
			ok = false
		}
		if access == Write && !dirty {
			ok = false
		}
		if !ok {
			return 0, pageFaultFor(access, addr)
		}

		offsetBits := uint(12 + 10*level)
		pageOffset := addr.GetBits(0, offsetBits)
		physBase := pte.GetBits(10, 32).Shl(12)
		return physBase.Or(pageOffset), nil
	}

	return 0, pageFaultFor(access, addr)
}
