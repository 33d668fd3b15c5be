package hart

import (
	"spear/internal/address"
	"spear/internal/inst"
	"spear/internal/mmu"
	"spear/internal/priv"
	"spear/internal/trap"
)

// ecallException selects UserEcall/SupervisorEcall/MachineEcall by the
// hart's current privilege mode.
func (h *Hart) ecallException() trap.Exception {
	switch h.mode {
	case priv.Machine:
		return trap.MachineEcall()
	case priv.Supervisor:
		return trap.SupervisorEcall()
	default:
		return trap.UserEcall()
	}
}

// execRV32I implements the per-opcode semantics of the base integer ISA.
// Arithmetic is wrapping throughout, as RISC-V requires.
func (h *Hart) execRV32I(in inst.Instruction) (Continuation, error) {
	switch in.Op {
	case inst.LUI:
		h.WriteRegister(in.Rd, address.FromUint32(uint32(inst.ImmU(in.Val))))
		return Next, nil

	case inst.AUIPC:
		h.WriteRegister(in.Rd, h.pc.Add(address.FromUint32(uint32(inst.ImmU(in.Val)))))
		return Next, nil

	case inst.JAL:
		target := h.pc.Add(address.FromUint32(uint32(inst.SignExtendJ(in.Val))))
		if target.Uint32()&3 != 0 {
			return Next, trap.InstructionAddressMisaligned(target)
		}
		h.WriteRegister(in.Rd, h.pc.Add(4))
		h.pc = target
		return Jump, nil

	case inst.JALR:
		target := h.ReadRegister(in.Rs1).Add(address.FromUint32(uint32(inst.SignExtendI(in.Val)))).And(^address.Address(1))
		if target.Uint32()&3 != 0 {
			return Next, trap.InstructionAddressMisaligned(target)
		}
		ret := h.pc.Add(4)
		h.pc = target
		h.WriteRegister(in.Rd, ret)
		return Jump, nil

	case inst.BEQ:
		return h.branch(in, func(a, b address.Address) bool { return a == b })
	case inst.BNE:
		return h.branch(in, func(a, b address.Address) bool { return a != b })
	case inst.BLT:
		return h.branch(in, func(a, b address.Address) bool { return a.Signed() < b.Signed() })
	case inst.BGE:
		return h.branch(in, func(a, b address.Address) bool { return a.Signed() >= b.Signed() })
	case inst.BLTU:
		return h.branch(in, func(a, b address.Address) bool { return a.Unsigned() < b.Unsigned() })
	case inst.BGEU:
		return h.branch(in, func(a, b address.Address) bool { return a.Unsigned() >= b.Unsigned() })

	case inst.LB:
		return h.load(in, 1, true)
	case inst.LH:
		return h.load(in, 2, true)
	case inst.LW:
		return h.load(in, 4, true)
	case inst.LBU:
		return h.load(in, 1, false)
	case inst.LHU:
		return h.load(in, 2, false)

	case inst.SB:
		return h.store(in, 1)
	case inst.SH:
		return h.store(in, 2)
	case inst.SW:
		return h.store(in, 4)

	case inst.ADDI:
		return h.immOp(in, func(v address.Address) address.Address {
			return v.Add(address.FromUint32(uint32(inst.SignExtendI(in.Val))))
		})
	case inst.SLTI:
		return h.immOp(in, func(v address.Address) address.Address {
			if v.Signed() < inst.SignExtendI(in.Val) {
				return 1
			}
			return 0
		})
	case inst.SLTIU:
		return h.immOp(in, func(v address.Address) address.Address {
			if v.Unsigned() < uint32(inst.SignExtendI(in.Val)) {
				return 1
			}
			return 0
		})
	case inst.XORI:
		return h.immOp(in, func(v address.Address) address.Address {
			return v.Xor(address.FromUint32(uint32(inst.SignExtendI(in.Val))))
		})
	case inst.ORI:
		return h.immOp(in, func(v address.Address) address.Address {
			return v.Or(address.FromUint32(uint32(inst.SignExtendI(in.Val))))
		})
	case inst.ANDI:
		return h.immOp(in, func(v address.Address) address.Address {
			return v.And(address.FromUint32(uint32(inst.SignExtendI(in.Val))))
		})
	case inst.SLLI:
		shamt := inst.Shamt(in.Val)
		if shamt >= 32 {
			return Next, trap.IllegalInstruction(0)
		}
		return h.immOp(in, func(v address.Address) address.Address { return v.Shl(uint(shamt)) })
	case inst.SRLI:
		shamt := inst.Shamt(in.Val)
		if shamt >= 32 {
			return Next, trap.IllegalInstruction(0)
		}
		return h.immOp(in, func(v address.Address) address.Address { return v.Shr(uint(shamt)) })
	case inst.SRAI:
		shamt := inst.Shamt(in.Val)
		if shamt >= 32 {
			return Next, trap.IllegalInstruction(0)
		}
		return h.immOp(in, func(v address.Address) address.Address { return v.Sar(uint(shamt)) })

	case inst.ADD:
		return h.regOp(in, func(a, b address.Address) address.Address { return a.Add(b) })
	case inst.SUB:
		return h.regOp(in, func(a, b address.Address) address.Address { return a.Sub(b) })
	case inst.SLL:
		return h.regOp(in, func(a, b address.Address) address.Address { return a.Shl(uint(b.Uint32() & 0x1F)) })
	case inst.SLT:
		return h.regOp(in, func(a, b address.Address) address.Address {
			if a.Signed() < b.Signed() {
				return 1
			}
			return 0
		})
	case inst.SLTU:
		return h.regOp(in, func(a, b address.Address) address.Address {
			if a.Unsigned() < b.Unsigned() {
				return 1
			}
			return 0
		})
	case inst.XOR:
		return h.regOp(in, func(a, b address.Address) address.Address { return a.Xor(b) })
	case inst.SRL:
		return h.regOp(in, func(a, b address.Address) address.Address { return a.Shr(uint(b.Uint32() & 0x1F)) })
	case inst.SRA:
		return h.regOp(in, func(a, b address.Address) address.Address { return a.Sar(uint(b.Uint32() & 0x1F)) })
	case inst.OR:
		return h.regOp(in, func(a, b address.Address) address.Address { return a.Or(b) })
	case inst.AND:
		return h.regOp(in, func(a, b address.Address) address.Address { return a.And(b) })

	case inst.FENCE, inst.FENCEI:
		return Next, nil

	case inst.ECALL:
		return Next, h.ecallException()

	case inst.EBREAK:
		return Next, trap.Breakpoint()

	default:
		return Next, trap.IllegalInstruction(address.FromUint32(in.RawWord))
	}
}

func (h *Hart) branch(in inst.Instruction, cond func(a, b address.Address) bool) (Continuation, error) {
	if !cond(h.ReadRegister(in.Rs1), h.ReadRegister(in.Rs2)) {
		return Next, nil
	}
	target := h.pc.Add(address.FromUint32(uint32(inst.SignExtendB(in.Val))))
	if target.Uint32()&3 != 0 {
		return Next, trap.InstructionAddressMisaligned(target)
	}
	h.pc = target
	return Jump, nil
}

func (h *Hart) immOp(in inst.Instruction, f func(address.Address) address.Address) (Continuation, error) {
	h.WriteRegister(in.Rd, f(h.ReadRegister(in.Rs1)))
	return Next, nil
}

func (h *Hart) regOp(in inst.Instruction, f func(a, b address.Address) address.Address) (Continuation, error) {
	h.WriteRegister(in.Rd, f(h.ReadRegister(in.Rs1), h.ReadRegister(in.Rs2)))
	return Next, nil
}

func (h *Hart) load(in inst.Instruction, width uint, signed bool) (Continuation, error) {
	vaddr := h.ReadRegister(in.Rs1).Add(address.FromUint32(uint32(inst.SignExtendI(in.Val))))
	paddr, err := h.MMU.Translate(h.CSR, h.Bus, h.mode, vaddr, mmu.Read)
	if err != nil {
		return Next, err
	}
	var raw uint32
	var bits uint
	switch width {
	case 1:
		v, lerr := h.Bus.ReadByte(paddr)
		raw, bits, err = uint32(v), 8, lerr
	case 2:
		v, lerr := h.Bus.ReadHalf(paddr)
		raw, bits, err = uint32(v), 16, lerr
	default:
		v, lerr := h.Bus.ReadWord(paddr)
		raw, bits, err = v, 32, lerr
	}
	if err != nil {
		return Next, err
	}
	var result address.Address
	if signed && bits < 32 {
		shift := 32 - bits
		result = address.FromUint32(uint32(int32(raw<<shift) >> shift))
	} else {
		result = address.FromUint32(raw)
	}
	h.WriteRegister(in.Rd, result)
	return Next, nil
}

func (h *Hart) store(in inst.Instruction, width uint) (Continuation, error) {
	vaddr := h.ReadRegister(in.Rs1).Add(address.FromUint32(uint32(inst.SignExtendI(in.Val))))
	paddr, err := h.MMU.Translate(h.CSR, h.Bus, h.mode, vaddr, mmu.Write)
	if err != nil {
		return Next, err
	}
	v := h.ReadRegister(in.Rs2).Uint32()
	switch width {
	case 1:
		err = h.Bus.WriteByte(paddr, uint8(v))
	case 2:
		err = h.Bus.WriteHalf(paddr, uint16(v))
	default:
		err = h.Bus.WriteWord(paddr, v)
	}
	if err != nil {
		return Next, err
	}
	return Next, nil
}
