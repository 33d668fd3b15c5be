package hart

import "spear/internal/address"

// registerFile holds the 32 general-purpose registers. x0 is wired to zero:
// reads always return zero and writes are silently discarded.
type registerFile struct {
	x [32]address.Address
}

func (r *registerFile) read(idx uint8) address.Address {
	if idx == 0 {
		return address.Zero
	}
	return r.x[idx]
}

func (r *registerFile) write(idx uint8, v address.Address) {
	if idx == 0 {
		return
	}
	r.x[idx] = v
}
