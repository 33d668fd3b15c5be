// Package interrupt implements the pending-interrupt selector: global xIE
// gating by current privilege, then fixed-priority selection over mie & mip.
package interrupt

import (
	"spear/internal/csr"
	"spear/internal/priv"
	"spear/internal/trap"
)

const (
	mstatusMIE = 3
	mstatusSIE = 1
)

// priorityOrder lists the nine interrupt causes from highest to lowest
// priority: MEI, MSI, MTI, SEI, SSI, STI, then the unprivileged U-mode
// causes (lowest priority, listed for completeness — this hart never
// delegates to U).
var priorityOrder = [...]trap.Interrupt{
	trap.MachineExternal,
	trap.MachineSoftware,
	trap.MachineTimer,
	trap.SupervisorExternal,
	trap.SupervisorSoftware,
	trap.SupervisorTimer,
	trap.UserExternal,
	trap.UserSoftware,
	trap.UserTimer,
}

// globallyEnabled reports whether interrupts are enabled for mode at all.
// U-mode always allows delivery of any interrupt (there is nothing lower
// to mask it from).
func globallyEnabled(f *csr.File, mode priv.Mode) bool {
	switch mode {
	case priv.Machine:
		return f.ForceRead(csr.Mstatus).GetBit(mstatusMIE)
	case priv.Supervisor:
		return f.ForceRead(csr.Mstatus).GetBit(mstatusSIE)
	default:
		return true
	}
}

// Pending returns the highest-priority interrupt that is both set in
// mie & mip and currently enabled for mode, if any.
//
// Selection does not mutate mip, and neither does the hart driver that
// calls it: the bit stays set until software clears it.
func Pending(f *csr.File, mode priv.Mode) (trap.Interrupt, bool) {
	if !globallyEnabled(f, mode) {
		return 0, false
	}
	pending := f.ForceRead(csr.Mip) & f.ForceRead(csr.Mie)
	for _, i := range priorityOrder {
		if pending.GetBit(i.Bit()) {
			return i, true
		}
	}
	return 0, false
}
