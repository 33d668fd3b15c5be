package decode

import (
	"testing"

	"spear/internal/inst"
)

func TestDecodeAddiNegativeImmediate(t *testing.T) {
	// addi x2, x2, -16
	in, ok := Decode(0xFF010113)
	if !ok {
		t.Fatal("expected a valid decode")
	}
	if in.Op != inst.ADDI || in.Rd != 2 || in.Rs1 != 2 {
		t.Fatalf("got %+v", in)
	}
	if got := inst.SignExtendI(in.Val); got != -16 {
		t.Errorf("sign-extended immediate = %d, want -16", got)
	}
}

func TestDecodeAddiPositiveImmediate(t *testing.T) {
	// addi s1, s1, 56
	in, ok := Decode(0x03848493)
	if !ok {
		t.Fatal("expected a valid decode")
	}
	if in.Op != inst.ADDI || in.Rd != 9 || in.Rs1 != 9 {
		t.Fatalf("got %+v", in)
	}
	if got := inst.SignExtendI(in.Val); got != 56 {
		t.Errorf("sign-extended immediate = %d, want 56", got)
	}
}

func TestDecodeUnknownOpcodeFails(t *testing.T) {
	if _, ok := Decode(0x0000007F); ok {
		t.Fatal("expected decode to reject an unassigned opcode")
	}
}

func TestDecodeSRLIvsSRAI(t *testing.T) {
	// srli x1, x2, 3: funct7 = 0000000
	in, ok := Decode(0x00315093)
	if !ok || in.Op != inst.SRLI {
		t.Fatalf("expected SRLI, got %+v ok=%v", in, ok)
	}
	// srai x1, x2, 3: funct7 = 0100000
	in, ok = Decode(0x40315093)
	if !ok || in.Op != inst.SRAI {
		t.Fatalf("expected SRAI, got %+v ok=%v", in, ok)
	}
}

func TestDecodeMretSretWfi(t *testing.T) {
	if in, ok := Decode(0x30200073); !ok || in.Op != inst.MRET {
		t.Fatalf("expected MRET, got %+v ok=%v", in, ok)
	}
	if in, ok := Decode(0x10200073); !ok || in.Op != inst.SRET {
		t.Fatalf("expected SRET, got %+v ok=%v", in, ok)
	}
	if in, ok := Decode(0x10500073); !ok || in.Op != inst.WFI {
		t.Fatalf("expected WFI, got %+v ok=%v", in, ok)
	}
}

func TestDecodeCsrrw(t *testing.T) {
	// csrrw x1, mstatus, x2 -> csr=0x300, rs1=2, rd=1
	word := uint32(0x300) <<20 | uint32(2)<<15 | uint32(0b001)<<12 | uint32(1)<<7 | 0b1110011
	in, ok := Decode(word)
	if !ok || in.Op != inst.CSRRW || in.Rd != 1 || in.Rs1 != 2 || in.Val != 0x300 {
		t.Fatalf("got %+v ok=%v", in, ok)
	}
}
