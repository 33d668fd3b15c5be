package bus

// RAM is a flat byte-addressed memory device.
type RAM struct {
	bytes []byte
}

// NewRAM returns a zero-filled RAM device of the given size in bytes.
func NewRAM(size uint32) *RAM {
	return &RAM{bytes: make([]byte, size)}
}

// NewRAMFromBytes wraps an existing byte slice as a RAM device, used by the
// ELF loader to seed a segment's initial contents directly.
func NewRAMFromBytes(b []byte) *RAM {
	return &RAM{bytes: b}
}

// Size reports the number of bytes this device covers.
func (r *RAM) Size() uint32 { return uint32(len(r.bytes)) }

// Load fills buf from offset.
func (r *RAM) Load(offset uint32, buf []byte) bool {
	end := uint64(offset) + uint64(len(buf))
	if end > uint64(len(r.bytes)) {
		return false
	}
	copy(buf, r.bytes[offset:end])
	return true
}

// Store writes buf at offset.
func (r *RAM) Store(offset uint32, buf []byte) bool {
	end := uint64(offset) + uint64(len(buf))
	if end > uint64(len(r.bytes)) {
		return false
	}
	copy(r.bytes[offset:end], buf)
	return true
}
