package address

import "testing"

func TestWrappingArithmetic(t *testing.T) {
	tests := []struct {
		name string
		a, b Address
		want Address
		op   func(a, b Address) Address
	}{
		{"add wraps", 0xFFFFFFFF, 1, 0, Address.Add},
		{"sub wraps", 0, 1, 0xFFFFFFFF, Address.Sub},
		{"mul wraps", 0x80000000, 2, 0, Address.Mul},
		{"and", 0xFF00FF00, 0x0F0F0F0F, 0x0F000F00, Address.And},
		{"or", 0xF0F0F0F0, 0x0F0F0F0F, 0xFFFFFFFF, Address.Or},
		{"xor", 0xFFFFFFFF, 0x0F0F0F0F, 0xF0F0F0F0, Address.Xor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op(tt.a, tt.b); got != tt.want {
				t.Errorf("got %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestShifts(t *testing.T) {
	a := Address(0x80000000)
	if got := a.Shr(4); got != 0x08000000 {
		t.Errorf("Shr: got %#x", got)
	}
	if got := a.Sar(4); got != 0xF8000000 {
		t.Errorf("Sar: got %#x", got)
	}
	if got := Address(1).Shl(31); got != 0x80000000 {
		t.Errorf("Shl: got %#x", got)
	}
}

func TestGetSetBits(t *testing.T) {
	a := Address(0xABCD1234)
	if got := a.GetBits(8, 16); got != 0x12 {
		t.Errorf("GetBits: got %#x, want 0x12", got)
	}
	got := a.SetBits(8, 16, 0xFF)
	if want := Address(0xABCDFF34); got != want {
		t.Errorf("SetBits: got %#x, want %#x", got, want)
	}
}

func TestSetBitsPanicsOnOverflow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-range value")
		}
	}()
	Address(0).SetBits(0, 4, 0x10)
}

func TestSignedUnsigned(t *testing.T) {
	a := Address(0xFFFFFFFF)
	if got := a.Signed(); got != -1 {
		t.Errorf("Signed: got %d, want -1", got)
	}
	if got := a.Unsigned(); got != 0xFFFFFFFF {
		t.Errorf("Unsigned: got %#x", got)
	}
	// sign(sign(v)) == sign(v): reinterpreting twice is a no-op.
	if FromUint32(uint32(a.Signed())) != a {
		t.Errorf("sign idempotence broken")
	}
}

func TestAssociativity(t *testing.T) {
	a, b, c := Address(0x12345678), Address(0x9ABCDEF0), Address(0x1)
	left := a.Add(b).Add(c)
	right := a.Add(b.Add(c))
	if left != right {
		t.Errorf("wrapping add not associative: %#x != %#x", left, right)
	}
}
