package csr

// Address is a 12-bit CSR number. Bits 8-9 encode the lowest privilege mode
// that may access the register; bits 10-11 encode read-only when both set.
type Address uint16

// CSR numbers actually implemented by this hart. Unlisted numbers in
// [0,CSRCount) still decode their privilege/read-only bits correctly (so
// ReadableIn/WriteableIn stay total functions over the 4096-entry space)
// and behave as plain storage: they read back zero after reset and
// afterwards whatever value was last written.
const (
	Ustatus Address = 0x000
	Uie     Address = 0x004
	Utvec   Address = 0x005

	Uscratch Address = 0x040
	Uepc     Address = 0x041
	Ucause   Address = 0x042
	Utval    Address = 0x043
	Uip      Address = 0x044

	Fflags Address = 0x001
	Frm    Address = 0x002
	Fcsr   Address = 0x003

	Cycle   Address = 0xC00
	Time    Address = 0xC01
	Instret Address = 0xC02

	Sstatus    Address = 0x100
	Sedeleg    Address = 0x102
	Sideleg    Address = 0x103
	Sie        Address = 0x104
	Stvec      Address = 0x105
	Scounteren Address = 0x106

	Sscratch Address = 0x140
	Sepc     Address = 0x141
	Scause   Address = 0x142
	Stval    Address = 0x143
	Sip      Address = 0x144

	Satp Address = 0x180

	Mvendorid Address = 0xF11
	Marchid   Address = 0xF12
	Mimpid    Address = 0xF13
	Mhartid   Address = 0xF14

	Mstatus    Address = 0x300
	Misa       Address = 0x301
	Medeleg    Address = 0x302
	Mideleg    Address = 0x303
	Mie        Address = 0x304
	Mtvec      Address = 0x305
	Mcounteren Address = 0x306

	Mscratch Address = 0x340
	Mepc     Address = 0x341
	Mcause   Address = 0x342
	Mtval    Address = 0x343
	Mip      Address = 0x344

	Pmpcfg0 Address = 0x3A0
	Pmpcfg1 Address = 0x3A1
	Pmpcfg2 Address = 0x3A2
	Pmpcfg3 Address = 0x3A3

	Pmpaddr0  Address = 0x3B0
	Pmpaddr15 Address = 0x3BF
)

// CSRCount is the size of the dense CSR storage array.
const CSRCount = 4096
