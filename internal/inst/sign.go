package inst

// SignExtendI reconstructs the signed 12-bit I-type/S-type immediate from
// its raw bits: `(val << 20) >> 20`.
func SignExtendI(val uint32) int32 {
	return int32(val<<20) >> 20
}

// SignExtendB reconstructs the signed 13-bit (bit 0 implicitly zero)
// B-type immediate: `(val << 19) >> 19`.
func SignExtendB(val uint32) int32 {
	return int32(val<<19) >> 19
}

// SignExtendJ reconstructs the signed 21-bit (bit 0 implicitly zero)
// J-type immediate: `(val << 11) >> 11`.
func SignExtendJ(val uint32) int32 {
	return int32(val<<11) >> 11
}

// ImmU returns the U-type immediate: the raw bits placed directly at bits
// 12-31, no shift required on read.
func ImmU(val uint32) int32 {
	return int32(val)
}

// Shamt returns the shift amount carried in an I-type immediate. RV32 only
// consults the low 5 bits; bit 5 being set is caught separately by the
// executor as an illegal instruction.
func Shamt(val uint32) uint32 {
	return val & 0x3F
}
