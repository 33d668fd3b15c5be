package hart

import (
	"spear/internal/address"
	"spear/internal/csr"
	"spear/internal/inst"
	"spear/internal/priv"
	"spear/internal/trap"
)

const mstatusTVM = 20
const mstatusTSR = 22

// execZicsr implements the six CSR opcodes and the privileged xRET/WFI/
// SFENCE.VMA instructions.
func (h *Hart) execZicsr(in inst.Instruction) (Continuation, error) {
	switch in.Op {
	case inst.CSRRW:
		src := h.ReadRegister(in.Rs1)
		return h.csrReadModifyWrite(csr.Address(in.Val), in.Rd, false, func(address.Address) address.Address { return src })
	case inst.CSRRS:
		src := h.ReadRegister(in.Rs1)
		return h.csrReadModifyWrite(csr.Address(in.Val), in.Rd, in.Rs1 == 0, func(old address.Address) address.Address { return old.Or(src) })
	case inst.CSRRC:
		src := h.ReadRegister(in.Rs1)
		return h.csrReadModifyWrite(csr.Address(in.Val), in.Rd, in.Rs1 == 0, func(old address.Address) address.Address { return old.And(src.Not()) })
	case inst.CSRRWI:
		zimm := address.Address(in.Rs1)
		return h.csrReadModifyWrite(csr.Address(in.Val), in.Rd, false, func(address.Address) address.Address { return zimm })
	case inst.CSRRSI:
		zimm := address.Address(in.Rs1)
		return h.csrReadModifyWrite(csr.Address(in.Val), in.Rd, in.Rs1 == 0, func(old address.Address) address.Address { return old.Or(zimm) })
	case inst.CSRRCI:
		zimm := address.Address(in.Rs1)
		return h.csrReadModifyWrite(csr.Address(in.Val), in.Rd, in.Rs1 == 0, func(old address.Address) address.Address { return old.And(zimm.Not()) })

	case inst.MRET:
		return h.mret()
	case inst.SRET:
		return h.sret()
	case inst.WFI:
		return WaitForInterrupt, nil
	case inst.SFENCEVMA:
		return h.sfenceVMA()

	default:
		return Next, trap.IllegalInstruction(address.FromUint32(in.RawWord))
	}
}

// csrReadModifyWrite reads the CSR, writes back newVal(old) unless skip is
// set, and deposits the old value into x[rd] — the "read first, then
// compute, then conditionally write" order every Zicsr opcode shares.
func (h *Hart) csrReadModifyWrite(addr csr.Address, rd uint8, skip bool, newVal func(old address.Address) address.Address) (Continuation, error) {
	old, err := h.CSR.Read(addr, h.mode)
	if err != nil {
		return Next, err
	}
	if !skip {
		if err := h.CSR.Write(addr, newVal(old), h.mode); err != nil {
			return Next, err
		}
	}
	h.WriteRegister(rd, old)
	return Next, nil
}

// mret returns from an M-mode trap: restores MIE from MPIE, sets MPIE,
// drops MPP to User, and jumps to mepc.
func (h *Hart) mret() (Continuation, error) {
	if h.mode != priv.Machine {
		return Next, trap.IllegalInstruction(0)
	}
	mstatus := h.CSR.ForceRead(csr.Mstatus)
	mpp := priv.FromBits(uint8(mstatus.GetBits(statusMPPLo, statusMPPHi)))
	mpie := mstatus.GetBit(statusMPIE)
	mstatus = mstatus.SetBit(statusMIE, mpie)
	mstatus = mstatus.SetBit(statusMPIE, true)
	mstatus = mstatus.SetBits(statusMPPLo, statusMPPHi, address.Address(priv.User.Bits()))
	h.CSR.ForceWrite(csr.Mstatus, mstatus)

	h.mode = mpp
	h.pc = h.CSR.ForceRead(csr.Mepc)
	return Jump, nil
}

// sret returns from an S-mode trap: restores SIE from SPIE, sets SPIE,
// drops SPP to User, and jumps to sepc.
func (h *Hart) sret() (Continuation, error) {
	if h.mode == priv.User {
		return Next, trap.IllegalInstruction(0)
	}
	mstatus := h.CSR.ForceRead(csr.Mstatus)
	if h.mode == priv.Supervisor && mstatus.GetBit(mstatusTSR) {
		return Next, trap.IllegalInstruction(0)
	}

	sstatus := h.CSR.ForceRead(csr.Sstatus)
	spp := sstatus.GetBit(statusSPP)
	spie := sstatus.GetBit(statusSPIE)
	sstatus = sstatus.SetBit(statusSIE, spie)
	sstatus = sstatus.SetBit(statusSPIE, true)
	sstatus = sstatus.SetBit(statusSPP, false)
	h.CSR.ForceWrite(csr.Sstatus, sstatus)

	if spp {
		h.mode = priv.Supervisor
	} else {
		h.mode = priv.User
	}
	h.pc = h.CSR.ForceRead(csr.Sepc)
	return Jump, nil
}

// sfenceVMA is a no-op in this emulator; it still traps under TVM in
// S-mode.
func (h *Hart) sfenceVMA() (Continuation, error) {
	if h.mode == priv.Supervisor && h.CSR.ForceRead(csr.Mstatus).GetBit(mstatusTVM) {
		return Next, trap.IllegalInstruction(0)
	}
	return Next, nil
}
