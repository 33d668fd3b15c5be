package csr

import (
	"testing"

	"spear/internal/address"
	"spear/internal/priv"
)

func TestReadableInMonotone(t *testing.T) {
	modes := []priv.Mode{priv.User, priv.Supervisor, priv.Machine}
	for _, a := range []Address{Mstatus, Sstatus, Cycle} {
		for i := 1; i < len(modes); i++ {
			if ReadableIn(a, modes[i-1]) && !ReadableIn(a, modes[i]) {
				t.Errorf("readable_in not monotone for %#x between %s and %s", a, modes[i-1], modes[i])
			}
		}
	}
}

func TestMstatusPrivilege(t *testing.T) {
	if !ReadableIn(Mstatus, priv.Machine) {
		t.Error("mstatus should be readable in M")
	}
	if ReadableIn(Mstatus, priv.Supervisor) {
		t.Error("mstatus should not be readable in S")
	}
	if ReadableIn(Mstatus, priv.User) {
		t.Error("mstatus should not be readable in U")
	}
}

func TestReadOnlyCSRsRejectWrites(t *testing.T) {
	// Cycle (0xC00) has bits 11:10 == 0b11 and is readable from U.
	if WriteableIn(Cycle, priv.Machine) {
		t.Error("cycle should be read-only even from M")
	}
	f := New()
	if err := f.Write(Cycle, 1, priv.Machine); err == nil {
		t.Error("expected IllegalInstruction writing a read-only CSR")
	}
}

func TestSstatusView(t *testing.T) {
	f := New()
	if err := f.Write(Mstatus, address.Address(0xFFFFFFFF), priv.Machine); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := f.Read(Sstatus, priv.Machine)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != SSTATUSMask {
		t.Errorf("read(sstatus) = %#x, want %#x", got, SSTATUSMask)
	}

	if err := f.Write(Sstatus, 0, priv.Machine); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mstatus := f.ForceRead(Mstatus)
	if mstatus&SSTATUSMask != 0 {
		t.Errorf("writing sstatus=0 should clear the masked bits of mstatus, got %#x", mstatus)
	}
	if mstatus&^SSTATUSMask != address.Address(0xFFFFFFFF)&^SSTATUSMask {
		t.Errorf("writing sstatus should not disturb unmasked mstatus bits, got %#x", mstatus)
	}
}

func TestSieSipDelegationMask(t *testing.T) {
	f := New()
	f.ForceWrite(Mideleg, 0x0F)
	f.ForceWrite(Mie, 0xFF)
	if got := f.ForceRead(Sie); got != 0x0F {
		t.Errorf("sie view should be mie & mideleg, got %#x", got)
	}
	if err := f.Write(Sie, 0, priv.Machine); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.ForceRead(Mie); got != 0xF0 {
		t.Errorf("writing sie=0 should only clear delegated bits of mie, got %#x", got)
	}
}

func TestSatpTrapsUnderTVM(t *testing.T) {
	f := New()
	f.ForceWrite(Mstatus, address.Address(1<<20))
	if _, err := f.Read(Satp, priv.Supervisor); err == nil {
		t.Error("expected IllegalInstruction reading satp under TVM in S-mode")
	}
	if _, err := f.Read(Satp, priv.Machine); err != nil {
		t.Error("TVM should not restrict M-mode access to satp")
	}
}
