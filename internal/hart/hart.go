// Package hart ties the register file, CSR file, MMU, and memory bus
// together into a single RISC-V hart and drives its step loop: check for a
// pending interrupt, then fetch, decode, and execute one instruction.
package hart

import (
	"spear/internal/bus"
	"spear/internal/csr"
	"spear/internal/decode"
	"spear/internal/interrupt"
	"spear/internal/mmu"
	"spear/internal/priv"
	"spear/internal/trap"

	"spear/internal/address"
)

// Hart is one RISC-V hardware thread: registers, PC, privilege mode, CSR
// file, MMU, and the memory bus it executes against.
type Hart struct {
	regs registerFile
	pc   address.Address
	mode priv.Mode

	CSR *csr.File
	Bus *bus.Bus
	MMU *mmu.MMU
}

// New returns a hart reset into M-mode with PC set to entry, the ELF entry
// point.
func New(entry address.Address, b *bus.Bus) *Hart {
	return &Hart{
		pc:   entry,
		mode: priv.Machine,
		CSR:  csr.New(),
		Bus:  b,
		MMU:  mmu.New(),
	}
}

// PC returns the current program counter.
func (h *Hart) PC() address.Address { return h.pc }

// Mode returns the current privilege mode.
func (h *Hart) Mode() priv.Mode { return h.mode }

// ReadRegister returns the value of x[idx]; x0 always reads zero.
func (h *Hart) ReadRegister(idx uint8) address.Address { return h.regs.read(idx) }

// WriteRegister sets x[idx]; writes to x0 are discarded.
func (h *Hart) WriteRegister(idx uint8, v address.Address) { h.regs.write(idx, v) }

// Step executes exactly one step: first check for a pending interrupt,
// then fetch/decode/execute one instruction.
func (h *Hart) Step() error {
	if i, ok := interrupt.Pending(h.CSR, h.mode); ok {
		h.deliverInterrupt(i)
		return nil
	}

	fetchAddr, err := h.MMU.Translate(h.CSR, h.Bus, h.mode, h.pc, mmu.Fetch)
	if err != nil {
		h.deliverException(err.(trap.Exception))
		return nil
	}
	if fetchAddr.Uint32()&3 != 0 {
		h.deliverException(trap.InstructionAddressMisaligned(fetchAddr))
		return nil
	}
	word, err := h.Bus.ReadWord(fetchAddr)
	if err != nil {
		h.deliverException(err.(trap.Exception))
		return nil
	}

	in, ok := decode.Decode(word)
	if !ok {
		h.deliverException(trap.IllegalInstruction(address.FromUint32(word)))
		return nil
	}

	cont, execErr := h.execute(in)
	if execErr != nil {
		h.deliverException(execErr.(trap.Exception))
		return nil
	}

	switch cont {
	case Next:
		h.pc = h.pc.Add(4)
	case Jump, WaitForInterrupt:
		// Executor already updated pc, or it is intentionally left alone.
	}
	return nil
}

// Run steps the hart until the word at tohost (if known) becomes non-zero,
// the HTIF signal that the guest program has finished, or an unrecoverable
// host error occurs.
func (h *Hart) Run(tohost address.Address, haveTohost bool) error {
	if haveTohost {
		if err := h.Bus.WriteWord(tohost, 0); err != nil {
			return err
		}
	}
	for {
		if err := h.Step(); err != nil {
			return err
		}
		if haveTohost {
			v, err := h.Bus.ReadWord(tohost)
			if err != nil {
				return err
			}
			if v != 0 {
				return nil
			}
		}
	}
}
