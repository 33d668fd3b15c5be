// Package trap implements the exception and interrupt taxonomy: cause
// encoding, trap-value derivation, and the informational trap-kind tag.
// It is pure data — delivery (the CSR/PC/mode mutation) lives in the hart
// package, which is the only place privilege, CSRs, and PC all meet.
package trap

import "spear/internal/address"

// Interrupt is one of the nine asynchronous interrupt causes.
type Interrupt uint8

const (
	UserSoftware Interrupt = iota
	SupervisorSoftware
	MachineSoftware
	UserTimer
	SupervisorTimer
	MachineTimer
	UserExternal
	SupervisorExternal
	MachineExternal
)

// causeBit is the interrupt cause number before the high "is interrupt" bit
// is set.
func (i Interrupt) causeBit() uint32 {
	switch i {
	case UserSoftware:
		return 0
	case SupervisorSoftware:
		return 1
	case MachineSoftware:
		return 3
	case UserTimer:
		return 4
	case SupervisorTimer:
		return 5
	case MachineTimer:
		return 7
	case UserExternal:
		return 8
	case SupervisorExternal:
		return 9
	case MachineExternal:
		return 11
	default:
		panic("trap: unknown interrupt")
	}
}

// Cause returns the full xCAUSE encoding: the causeBit with the top bit of
// the register set to mark it as an interrupt rather than an exception.
func (i Interrupt) Cause() address.Address {
	return address.Address(i.causeBit()).SetBit(31, true)
}

// Bit returns the bit position of this interrupt within mip/mie — the same
// number as causeBit, exposed for the interrupt selector.
func (i Interrupt) Bit() uint {
	return uint(i.causeBit())
}

// Kind classifies how fatal an exception is to the HTIF-driven test harness.
// It is informational only — delivery happens unconditionally for every
// exception regardless of Kind.
type Kind uint8

const (
	// KindFatal exceptions are delivered, then the test harness is
	// expected to observe them as unrecoverable (access faults, misaligned
	// accesses).
	KindFatal Kind = iota
	// KindRequested exceptions are a deliberate guest request (ecalls).
	KindRequested
	// KindInvisible exceptions are routine control flow from the guest's
	// perspective (illegal instructions under test, page faults serviced
	// by a handler).
	KindInvisible
)

// Exception is one of the fourteen synchronous exception causes.
type Exception struct {
	kind exceptionKind
	val  address.Address // misaligned address / raw instruction word, meaning depends on kind
}

type exceptionKind uint8

const (
	excInstructionAddressMisaligned exceptionKind = iota
	excInstructionAccessFault
	excIllegalInstruction
	excBreakpoint
	excLoadAddressMisaligned
	excStoreAddressMisaligned
	excLoadAccessFault
	excStoreAccessFault
	excUserEcall
	excSupervisorEcall
	excMachineEcall
	excInstructionPageFault
	excLoadPageFault
	excStorePageFault
)

func InstructionAddressMisaligned(a address.Address) Exception {
	return Exception{kind: excInstructionAddressMisaligned, val: a}
}
func InstructionAccessFault() Exception { return Exception{kind: excInstructionAccessFault} }
func IllegalInstruction(raw address.Address) Exception {
	return Exception{kind: excIllegalInstruction, val: raw}
}
func Breakpoint() Exception { return Exception{kind: excBreakpoint} }
func LoadAddressMisaligned(a address.Address) Exception {
	return Exception{kind: excLoadAddressMisaligned, val: a}
}
func StoreAddressMisaligned(a address.Address) Exception {
	return Exception{kind: excStoreAddressMisaligned, val: a}
}
func LoadAccessFault() Exception  { return Exception{kind: excLoadAccessFault} }
func StoreAccessFault() Exception { return Exception{kind: excStoreAccessFault} }
func UserEcall() Exception        { return Exception{kind: excUserEcall} }
func SupervisorEcall() Exception  { return Exception{kind: excSupervisorEcall} }
func MachineEcall() Exception     { return Exception{kind: excMachineEcall} }
func InstructionPageFault(a address.Address) Exception {
	return Exception{kind: excInstructionPageFault, val: a}
}
func LoadPageFault(a address.Address) Exception {
	return Exception{kind: excLoadPageFault, val: a}
}
func StorePageFault(a address.Address) Exception {
	return Exception{kind: excStorePageFault, val: a}
}

// Cause returns the xCAUSE encoding for this exception. The top bit is
// always 0 for exceptions.
func (e Exception) Cause() address.Address {
	switch e.kind {
	case excInstructionAddressMisaligned:
		return 0
	case excInstructionAccessFault:
		return 1
	case excIllegalInstruction:
		return 2
	case excBreakpoint:
		return 3
	case excLoadAddressMisaligned:
		return 4
	case excLoadAccessFault:
		return 5
	case excStoreAddressMisaligned:
		return 6
	case excStoreAccessFault:
		return 7
	case excUserEcall:
		return 8
	case excSupervisorEcall:
		return 9
	case excMachineEcall:
		return 11
	case excInstructionPageFault:
		return 12
	case excLoadPageFault:
		return 13
	case excStorePageFault:
		return 15
	default:
		panic("trap: unknown exception")
	}
}

// TrapValue derives mtval/stval for this exception, given the PC of the
// faulting instruction.
func (e Exception) TrapValue(pc address.Address) address.Address {
	switch e.kind {
	case excInstructionAccessFault, excBreakpoint, excLoadAccessFault, excStoreAccessFault:
		return pc
	case excInstructionAddressMisaligned, excLoadAddressMisaligned, excStoreAddressMisaligned,
		excInstructionPageFault, excLoadPageFault, excStorePageFault, excIllegalInstruction:
		return e.val
	default:
		return address.Zero
	}
}

// Kind classifies the fatality of this exception.
func (e Exception) Kind() Kind {
	switch e.kind {
	case excInstructionAccessFault, excLoadAccessFault, excStoreAccessFault,
		excInstructionAddressMisaligned, excLoadAddressMisaligned, excStoreAddressMisaligned:
		return KindFatal
	case excUserEcall, excSupervisorEcall, excMachineEcall:
		return KindRequested
	default:
		return KindInvisible
	}
}

// String names the exception for log messages and test failure output.
func (e Exception) String() string {
	names := [...]string{
		"InstructionAddressMisaligned", "InstructionAccessFault", "IllegalInstruction",
		"Breakpoint", "LoadAddressMisaligned", "StoreAddressMisaligned", "LoadAccessFault",
		"StoreAccessFault", "UserEcall", "SupervisorEcall", "MachineEcall",
		"InstructionPageFault", "LoadPageFault", "StorePageFault",
	}
	return names[e.kind]
}

// Error satisfies the error interface so Exception can be returned directly
// from bus/mmu/csr operations as an ordinary Go error value rather than
// crashing the host process.
func (e Exception) Error() string { return e.String() }
