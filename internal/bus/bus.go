// Package bus implements the memory bus: a sparse address-to-device map
// with alignment checks and little-endian sized accessors.
package bus

import (
	"encoding/binary"

	"spear/internal/address"
	"spear/internal/trap"
)

// Device is anything that can be mapped onto the bus: RAM, ROM, or an MMIO
// peripheral. offset is relative to the device's base address, not the
// global address space.
type Device interface {
	// Size reports how many bytes this device covers from its base.
	Size() uint32
	// Load fills buf with the bytes at offset. Reports false if the
	// access runs past the end of the device; Bus checks only that the
	// first byte is in range and turns a false return into an access fault.
	Load(offset uint32, buf []byte) bool
	// Store writes buf's contents at offset. Same bounds contract as Load.
	Store(offset uint32, buf []byte) bool
}

type mapping struct {
	base address.Address
	size uint32
	dev  Device
}

// Bus routes reads and writes to the device whose range contains the
// address, enforcing natural alignment per access width.
type Bus struct {
	mappings []mapping
}

// New returns an empty bus with no devices registered.
func New() *Bus {
	return &Bus{}
}

// AddDevice registers dev at the given base address. It rejects ranges
// that overlap an already-registered device.
func (b *Bus) AddDevice(base address.Address, dev Device) error {
	size := dev.Size()
	for _, m := range b.mappings {
		if rangesOverlap(base.Uint32(), size, m.base.Uint32(), m.size) {
			return errOverlap{base}
		}
	}
	b.mappings = append(b.mappings, mapping{base: base, size: size, dev: dev})
	return nil
}

type errOverlap struct{ base address.Address }

func (e errOverlap) Error() string {
	return "bus: device range overlaps an existing device at base " + e.base.String()
}

func rangesOverlap(baseA, sizeA, baseB, sizeB uint32) bool {
	endA := baseA + sizeA
	endB := baseB + sizeB
	return baseA < endB && baseB < endA
}

func (b *Bus) find(addr address.Address) (offset uint32, dev Device, ok bool) {
	a := addr.Uint32()
	for _, m := range b.mappings {
		base := m.base.Uint32()
		end := base + m.size
		if a >= base && a < end {
			return a - base, m.dev, true
		}
	}
	return 0, nil, false
}

func (b *Bus) readBytes(addr address.Address, width uint32) ([]byte, error) {
	if addr.Uint32()&(width-1) != 0 {
		return nil, trap.LoadAddressMisaligned(addr)
	}
	offset, dev, ok := b.find(addr)
	if !ok {
		return nil, trap.LoadAccessFault()
	}
	buf := make([]byte, width)
	if !dev.Load(offset, buf) {
		return nil, trap.LoadAccessFault()
	}
	return buf, nil
}

func (b *Bus) writeBytes(addr address.Address, width uint32, buf []byte) error {
	if addr.Uint32()&(width-1) != 0 {
		return trap.StoreAddressMisaligned(addr)
	}
	offset, dev, ok := b.find(addr)
	if !ok {
		return trap.StoreAccessFault()
	}
	if !dev.Store(offset, buf) {
		return trap.StoreAccessFault()
	}
	return nil
}

// ReadByte reads one unaligned-safe byte.
func (b *Bus) ReadByte(addr address.Address) (uint8, error) {
	buf, err := b.readBytes(addr, 1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadHalf reads a 16-bit little-endian half-word; addr must be 2-aligned.
func (b *Bus) ReadHalf(addr address.Address) (uint16, error) {
	buf, err := b.readBytes(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// ReadWord reads a 32-bit little-endian word; addr must be 4-aligned.
func (b *Bus) ReadWord(addr address.Address) (uint32, error) {
	buf, err := b.readBytes(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadDouble reads a 64-bit little-endian double-word; addr must be
// 8-aligned. RV32I itself has no 64-bit load, and the hart never issues
// one: the HTIF tohost word is accessed with WriteWord/ReadWord.
func (b *Bus) ReadDouble(addr address.Address) (uint64, error) {
	buf, err := b.readBytes(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// WriteByte writes one byte.
func (b *Bus) WriteByte(addr address.Address, v uint8) error {
	return b.writeBytes(addr, 1, []byte{v})
}

// WriteHalf writes a 16-bit little-endian half-word.
func (b *Bus) WriteHalf(addr address.Address, v uint16) error {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, v)
	return b.writeBytes(addr, 2, buf)
}

// WriteWord writes a 32-bit little-endian word.
func (b *Bus) WriteWord(addr address.Address, v uint32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return b.writeBytes(addr, 4, buf)
}

// WriteDouble writes a 64-bit little-endian double-word.
func (b *Bus) WriteDouble(addr address.Address, v uint64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return b.writeBytes(addr, 8, buf)
}
