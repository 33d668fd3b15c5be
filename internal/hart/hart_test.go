package hart

import (
	"testing"

	"spear/internal/address"
	"spear/internal/bus"
	"spear/internal/csr"
	"spear/internal/priv"
)

func newTestHart(t *testing.T) *Hart {
	t.Helper()
	b := bus.New()
	if err := b.AddDevice(address.FromUint32(0x80000000), bus.NewRAM(4096)); err != nil {
		t.Fatal(err)
	}
	return New(address.FromUint32(0x80000000), b)
}

func TestAddiNegativeImmediateBoundaryScenario(t *testing.T) {
	h := newTestHart(t)
	// addi x2, x2, -16
	if err := h.Bus.WriteWord(address.FromUint32(0x80000000), 0xFF010113); err != nil {
		t.Fatal(err)
	}
	h.WriteRegister(2, address.FromUint32(0x1000))
	if err := h.Step(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := h.ReadRegister(2); got != address.FromUint32(0x0FF0) {
		t.Errorf("x2 = %#x, want 0x0ff0", got.Uint32())
	}
}

func TestAddiZeroBaseBoundaryScenario(t *testing.T) {
	h := newTestHart(t)
	// addi s1, s1, 56
	if err := h.Bus.WriteWord(address.FromUint32(0x80000000), 0x03848493); err != nil {
		t.Fatal(err)
	}
	if err := h.Step(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := h.ReadRegister(9); got.Uint32() != 56 {
		t.Errorf("s1 = %d, want 56", got.Uint32())
	}
}

func TestPCAdvancesByFourAfterNext(t *testing.T) {
	h := newTestHart(t)
	h.Bus.WriteWord(address.FromUint32(0x80000000), 0x03848493)
	if err := h.Step(); err != nil {
		t.Fatal(err)
	}
	if h.PC() != address.FromUint32(0x80000004) {
		t.Errorf("pc = %#x, want 0x80000004", h.PC().Uint32())
	}
}

func TestEcallFromMachineModeTrapsToM(t *testing.T) {
	h := newTestHart(t)
	h.Bus.WriteWord(address.FromUint32(0x80000000), 0x00000073) // ecall
	h.CSR.ForceWrite(csr.Mtvec, address.FromUint32(0x80001000))
	if err := h.Step(); err != nil {
		t.Fatal(err)
	}
	if h.PC() != address.FromUint32(0x80001000) {
		t.Errorf("pc = %#x, want mtvec base", h.PC().Uint32())
	}
	mcause := h.CSR.ForceRead(csr.Mcause)
	if mcause.Uint32() != 11 {
		t.Errorf("mcause = %d, want 11 (MachineEcall)", mcause.Uint32())
	}
}

func TestMretRestoresPreviousMode(t *testing.T) {
	h := newTestHart(t)
	h.CSR.ForceWrite(csr.Mepc, address.FromUint32(0x80002000))
	h.CSR.ForceWrite(csr.Mstatus, address.FromUint32(1<<7)) // MPIE=1, MPP=User(00)
	h.Bus.WriteWord(address.FromUint32(0x80000000), 0x30200073) // mret
	if err := h.Step(); err != nil {
		t.Fatal(err)
	}
	if h.PC() != address.FromUint32(0x80002000) {
		t.Errorf("pc = %#x, want mepc", h.PC().Uint32())
	}
	if h.Mode() != priv.User {
		t.Errorf("mode = %s, want U (the MPP value before MRET)", h.Mode())
	}
	mstatus := h.CSR.ForceRead(csr.Mstatus)
	if !mstatus.GetBit(3) {
		t.Error("MIE should equal the previously observed MPIE (1)")
	}
	if !mstatus.GetBit(7) {
		t.Error("MPIE should be set to 1 after MRET")
	}
}
