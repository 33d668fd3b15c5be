package hart

import (
	"spear/internal/address"
	"spear/internal/inst"
	"spear/internal/trap"
)

// execute dispatches a decoded instruction to the RV32I or Zicsr executor
// by opcode range.
func (h *Hart) execute(in inst.Instruction) (Continuation, error) {
	switch {
	case in.Op >= inst.LUI && in.Op <= inst.EBREAK:
		return h.execRV32I(in)
	case in.Op >= inst.CSRRW && in.Op <= inst.SFENCEVMA:
		return h.execZicsr(in)
	default:
		return Next, trap.IllegalInstruction(address.FromUint32(in.RawWord))
	}
}
