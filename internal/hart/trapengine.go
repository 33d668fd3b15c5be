package hart

import (
	"spear/internal/address"
	"spear/internal/csr"
	"spear/internal/priv"
	"spear/internal/trap"
)

const (
	statusSIE   = 1
	statusMIE   = 3
	statusSPIE  = 5
	statusMPIE  = 7
	statusSPP   = 8
	statusMPPLo = 11
	statusMPPHi = 13
)

// deliverException routes a synchronous exception through the delegation
// and stacking rules, unconditionally — the exception's Kind is
// informational only and never gates delivery.
func (h *Hart) deliverException(exc trap.Exception) {
	pc := h.pc
	cause := exc.Cause()
	tval := exc.TrapValue(pc)
	if h.mode != priv.Machine && h.delegatedException(cause) {
		h.deliverToS(pc, cause, tval)
	} else {
		h.deliverToM(pc, cause, tval)
	}
}

// deliverInterrupt routes an asynchronous interrupt the same way, via
// mideleg rather than medeleg.
func (h *Hart) deliverInterrupt(i trap.Interrupt) {
	pc := h.pc
	cause := i.Cause()
	if h.mode != priv.Machine && h.delegatedInterrupt(cause) {
		h.deliverToS(pc, cause, address.Zero)
	} else {
		h.deliverToM(pc, cause, address.Zero)
	}
}

func (h *Hart) delegatedException(cause address.Address) bool {
	return h.CSR.ForceRead(csr.Medeleg).GetBit(uint(cause.Uint32()))
}

func (h *Hart) delegatedInterrupt(cause address.Address) bool {
	bit := cause.Uint32() &^ 0x80000000
	return h.CSR.ForceRead(csr.Mideleg).GetBit(uint(bit))
}

// deliverToS stacks trap state into the S-mode CSRs and vectors PC through
// stvec.
func (h *Hart) deliverToS(oldPC, cause, tval address.Address) {
	prv := h.mode
	h.mode = priv.Supervisor

	stvec := h.CSR.ForceRead(csr.Stvec)
	base := stvec.And(^address.Address(1))
	offset := address.Zero
	if stvec.GetBit(0) {
		offset = cause.And(0x7FFFFFFF).Mul(4)
	}
	h.pc = base.Add(offset)

	h.CSR.ForceWrite(csr.Sepc, oldPC)
	h.CSR.ForceWrite(csr.Scause, cause)
	h.CSR.ForceWrite(csr.Stval, tval)

	sstatus := h.CSR.ForceRead(csr.Sstatus)
	sie := sstatus.GetBit(statusSIE)
	sstatus = sstatus.SetBit(statusSPIE, sie)
	sstatus = sstatus.SetBit(statusSIE, false)
	sstatus = sstatus.SetBit(statusSPP, prv == priv.Supervisor)
	h.CSR.ForceWrite(csr.Sstatus, sstatus)
}

// deliverToM stacks trap state into the M-mode CSRs and vectors PC through
// mtvec.
func (h *Hart) deliverToM(oldPC, cause, tval address.Address) {
	prv := h.mode
	h.mode = priv.Machine

	mtvec := h.CSR.ForceRead(csr.Mtvec)
	base := mtvec.And(^address.Address(1))
	offset := address.Zero
	if mtvec.GetBit(0) {
		offset = cause.And(0x7FFFFFFF).Mul(4)
	}
	h.pc = base.Add(offset)

	h.CSR.ForceWrite(csr.Mepc, oldPC)
	h.CSR.ForceWrite(csr.Mcause, cause)
	h.CSR.ForceWrite(csr.Mtval, tval)

	mstatus := h.CSR.ForceRead(csr.Mstatus)
	mie := mstatus.GetBit(statusMIE)
	mstatus = mstatus.SetBit(statusMPIE, mie)
	mstatus = mstatus.SetBit(statusMIE, false)
	mstatus = mstatus.SetBits(statusMPPLo, statusMPPHi, address.Address(prv.Bits()))
	h.CSR.ForceWrite(csr.Mstatus, mstatus)
}
