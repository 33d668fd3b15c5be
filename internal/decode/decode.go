// Package decode turns a 32-bit fetched word into an inst.Instruction.
// Dispatch is opcode first, then funct3/funct7.
package decode

import "spear/internal/inst"

const (
	opLoad     = 0b0000011
	opMiscMem  = 0b0001111
	opOpImm    = 0b0010011
	opAUIPC    = 0b0010111
	opStore    = 0b0100011
	opOp       = 0b0110011
	opLUI      = 0b0110111
	opBranch   = 0b1100011
	opJALR     = 0b1100111
	opJAL      = 0b1101111
	opSystem   = 0b1110011
)

// Decode decodes one 32-bit RISC-V word. The bool is false when the
// encoding is not recognized; the caller raises IllegalInstruction(word).
func Decode(word uint32) (inst.Instruction, bool) {
	opcode := word & 0x7F
	funct3 := (word >> 12) & 0x7
	rd := uint8((word >> 7) & 0x1F)
	rs1 := uint8((word >> 15) & 0x1F)
	rs2 := uint8((word >> 20) & 0x1F)

	in := inst.Instruction{RawWord: word}

	switch opcode {
	case opLUI:
		in.Op, in.Rd, in.Val = inst.LUI, rd, word&0xFFFFF000
		return in, true
	case opAUIPC:
		in.Op, in.Rd, in.Val = inst.AUIPC, rd, word&0xFFFFF000
		return in, true
	case opJAL:
		in.Op, in.Rd = inst.JAL, rd
		in.Val = (word>>11)&0x100000 | word&0xFF000 | (word>>9)&0x800 | (word>>20)&0x7FE
		return in, true
	case opJALR:
		if funct3 != 0 {
			return in, false
		}
		in.Op, in.Rd, in.Rs1, in.Val = inst.JALR, rd, rs1, word>>20
		return in, true
	case opBranch:
		op, ok := branchOp(funct3)
		if !ok {
			return in, false
		}
		in.Op, in.Rs1, in.Rs2 = op, rs1, rs2
		in.Val = (word>>19)&0x1000 | (word<<4)&0x800 | (word>>20)&0x7E0 | (word>>7)&0x1E
		return in, true
	case opLoad:
		op, ok := loadOp(funct3)
		if !ok {
			return in, false
		}
		in.Op, in.Rd, in.Rs1, in.Val = op, rd, rs1, word>>20
		return in, true
	case opStore:
		op, ok := storeOp(funct3)
		if !ok {
			return in, false
		}
		in.Op, in.Rs1, in.Rs2 = op, rs1, rs2
		in.Val = (word>>20)&0xFE0 | (word>>7)&0x1F
		return in, true
	case opOpImm:
		return decodeOpImm(word, funct3, rd, rs1)
	case opOp:
		return decodeOp(word, funct3, rd, rs1, rs2)
	case opMiscMem:
		switch funct3 {
		case 0b000:
			in.Op = inst.FENCE
			return in, true
		case 0b001:
			in.Op = inst.FENCEI
			return in, true
		}
		return in, false
	case opSystem:
		return decodeSystem(word, funct3, rd, rs1)
	default:
		return in, false
	}
}

func branchOp(funct3 uint32) (inst.Op, bool) {
	switch funct3 {
	case 0b000:
		return inst.BEQ, true
	case 0b001:
		return inst.BNE, true
	case 0b100:
		return inst.BLT, true
	case 0b101:
		return inst.BGE, true
	case 0b110:
		return inst.BLTU, true
	case 0b111:
		return inst.BGEU, true
	default:
		return inst.OpInvalid, false
	}
}

func loadOp(funct3 uint32) (inst.Op, bool) {
	switch funct3 {
	case 0b000:
		return inst.LB, true
	case 0b001:
		return inst.LH, true
	case 0b010:
		return inst.LW, true
	case 0b100:
		return inst.LBU, true
	case 0b101:
		return inst.LHU, true
	default:
		return inst.OpInvalid, false
	}
}

func storeOp(funct3 uint32) (inst.Op, bool) {
	switch funct3 {
	case 0b000:
		return inst.SB, true
	case 0b001:
		return inst.SH, true
	case 0b010:
		return inst.SW, true
	default:
		return inst.OpInvalid, false
	}
}

func decodeOpImm(word uint32, funct3 uint32, rd, rs1 uint8) (inst.Instruction, bool) {
	in := inst.Instruction{RawWord: word, Rd: rd, Rs1: rs1, Val: word >> 20}
	funct7 := word >> 25
	switch funct3 {
	case 0b000:
		in.Op = inst.ADDI
	case 0b010:
		in.Op = inst.SLTI
	case 0b011:
		in.Op = inst.SLTIU
	case 0b100:
		in.Op = inst.XORI
	case 0b110:
		in.Op = inst.ORI
	case 0b111:
		in.Op = inst.ANDI
	case 0b001:
		if funct7 != 0 {
			return in, false
		}
		in.Op = inst.SLLI
	case 0b101:
		// SRLI vs SRAI distinguished by bit 30 of the word (funct7 is
		// 0100000 for SRAI, 0000000 for SRLI).
		if word&(1<<30) != 0 {
			in.Op = inst.SRAI
		} else {
			in.Op = inst.SRLI
		}
	default:
		return in, false
	}
	return in, true
}

func decodeOp(word uint32, funct3 uint32, rd, rs1, rs2 uint8) (inst.Instruction, bool) {
	in := inst.Instruction{RawWord: word, Rd: rd, Rs1: rs1, Rs2: rs2}
	funct7 := word >> 25
	switch {
	case funct3 == 0b000 && funct7 == 0b0000000:
		in.Op = inst.ADD
	case funct3 == 0b000 && funct7 == 0b0100000:
		in.Op = inst.SUB
	case funct3 == 0b001 && funct7 == 0b0000000:
		in.Op = inst.SLL
	case funct3 == 0b010 && funct7 == 0b0000000:
		in.Op = inst.SLT
	case funct3 == 0b011 && funct7 == 0b0000000:
		in.Op = inst.SLTU
	case funct3 == 0b100 && funct7 == 0b0000000:
		in.Op = inst.XOR
	case funct3 == 0b101 && funct7 == 0b0000000:
		in.Op = inst.SRL
	case funct3 == 0b101 && funct7 == 0b0100000:
		in.Op = inst.SRA
	case funct3 == 0b110 && funct7 == 0b0000000:
		in.Op = inst.OR
	case funct3 == 0b111 && funct7 == 0b0000000:
		in.Op = inst.AND
	default:
		return in, false
	}
	return in, true
}

func decodeSystem(word uint32, funct3 uint32, rd, rs1 uint8) (inst.Instruction, bool) {
	in := inst.Instruction{RawWord: word, Rd: rd, Rs1: rs1, Val: word >> 20}
	switch funct3 {
	case 0b001:
		in.Op = inst.CSRRW
		return in, true
	case 0b010:
		in.Op = inst.CSRRS
		return in, true
	case 0b011:
		in.Op = inst.CSRRC
		return in, true
	case 0b101:
		in.Op = inst.CSRRWI
		return in, true
	case 0b110:
		in.Op = inst.CSRRSI
		return in, true
	case 0b111:
		in.Op = inst.CSRRCI
		return in, true
	case 0b000:
		return decodePrivileged(word, rd, rs1)
	default:
		return in, false
	}
}

// decodePrivileged handles the funct3=0 SYSTEM encodings: ECALL, EBREAK,
// MRET, SRET, WFI, and SFENCE.VMA, disambiguated by rs2/funct7.
func decodePrivileged(word uint32, rd, rs1 uint8) (inst.Instruction, bool) {
	in := inst.Instruction{RawWord: word}
	if rd != 0 {
		return in, false
	}
	funct12 := word >> 20
	rs2 := (word >> 20) & 0x1F
	funct7 := word >> 25
	switch {
	case funct12 == 0x000 && rs1 == 0:
		in.Op = inst.ECALL
		return in, true
	case funct12 == 0x001 && rs1 == 0:
		in.Op = inst.EBREAK
		return in, true
	case funct12 == 0x302:
		in.Op = inst.MRET
		return in, true
	case funct12 == 0x102:
		in.Op = inst.SRET
		return in, true
	case funct12 == 0x105:
		in.Op = inst.WFI
		return in, true
	case funct7 == 0b0001001:
		in.Op, in.Rs1, in.Rs2 = inst.SFENCEVMA, rs1, uint8(rs2)
		return in, true
	default:
		return in, false
	}
}
