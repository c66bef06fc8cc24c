package rom

import (
	"fmt"

	"github.com/retroenv/snespatch/internal/address"
)

// index returns the buffer index of the given cartridge offset after
// validating that width bytes can be accessed.
func (img *Image) index(pc address.PCAddress, width int) (int, error) {
	if img.data == nil {
		return 0, ErrClosed
	}

	start := uint64(img.headerSize) + uint64(pc)
	if width < 0 || start+uint64(width) > uint64(len(img.data)) {
		return 0, &RangeError{
			Address: pc,
			Width:   width,
			Size:    img.Size(),
		}
	}
	return int(start), nil
}

// ReadU8 reads a byte at the given cartridge offset.
func (img *Image) ReadU8(pc address.PCAddress) (uint8, error) {
	i, err := img.index(pc, 1)
	if err != nil {
		return 0, err
	}
	return img.data[i], nil
}

// ReadU16 reads a little endian word at the given cartridge offset.
func (img *Image) ReadU16(pc address.PCAddress) (uint16, error) {
	i, err := img.index(pc, 2)
	if err != nil {
		return 0, err
	}
	return uint16(img.data[i]) | uint16(img.data[i+1])<<8, nil
}

// ReadU24 reads a little endian 3 byte value at the given cartridge offset.
func (img *Image) ReadU24(pc address.PCAddress) (uint32, error) {
	i, err := img.index(pc, 3)
	if err != nil {
		return 0, err
	}
	return uint32(img.data[i]) | uint32(img.data[i+1])<<8 | uint32(img.data[i+2])<<16, nil
}

// ReadBlock returns a copy of length bytes at the given cartridge offset.
func (img *Image) ReadBlock(pc address.PCAddress, length int) ([]byte, error) {
	b, err := img.Slice(pc, length)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// Slice returns the buffer region of length bytes at the given cartridge
// offset. The slice aliases the image buffer and is only valid until the
// image is saved.
func (img *Image) Slice(pc address.PCAddress, length int) ([]byte, error) {
	i, err := img.index(pc, length)
	if err != nil {
		return nil, err
	}
	return img.data[i : i+length : i+length], nil
}

// WriteU8 writes a byte at the given cartridge offset.
func (img *Image) WriteU8(pc address.PCAddress, value uint8) error {
	i, err := img.index(pc, 1)
	if err != nil {
		return err
	}
	img.data[i] = value
	return nil
}

// WriteBlock copies data to the given cartridge offset.
func (img *Image) WriteBlock(pc address.PCAddress, data []byte) error {
	i, err := img.index(pc, len(data))
	if err != nil {
		return err
	}
	copy(img.data[i:], data)
	return nil
}

func (img *Image) resolve(snes address.SNESAddress) (address.PCAddress, error) {
	pc, ok := img.SNESToPC(snes)
	if !ok {
		return 0, fmt.Errorf("resolving %s as %s: %w", snes, img.mapper, ErrUnmapped)
	}
	return pc, nil
}

// ReadU8SNES reads a byte at the given SNES address.
func (img *Image) ReadU8SNES(snes address.SNESAddress) (uint8, error) {
	pc, err := img.resolve(snes)
	if err != nil {
		return 0, err
	}
	return img.ReadU8(pc)
}

// SliceSNES returns the buffer region of length bytes at the given SNES
// address. The region is contiguous in the file, it is not split at bank
// boundaries.
func (img *Image) SliceSNES(snes address.SNESAddress, length int) ([]byte, error) {
	pc, err := img.resolve(snes)
	if err != nil {
		return nil, err
	}
	return img.Slice(pc, length)
}

// PointerAt reads the 3 byte pointer stored at the given SNES address and
// merges the given bank into its bank byte.
func (img *Image) PointerAt(snes address.SNESAddress, bank uint8) (address.Pointer, error) {
	pc, err := img.resolve(snes)
	if err != nil {
		return 0, err
	}
	value, err := img.ReadU24(pc)
	if err != nil {
		return 0, err
	}
	return address.Pointer(value | uint32(bank)<<16), nil
}
