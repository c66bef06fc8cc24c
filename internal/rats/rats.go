// Package rats implements detection and encoding of RATS tags, the 8 byte
// markers that protect reserved blocks inside a ROM from being reused.
//
// A tag consists of the ASCII text "STAR", the little endian block size minus
// one and its little endian complement as checksum. It directly precedes the
// reserved payload.
package rats

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/retroenv/snespatch/internal/address"
)

// TagSize is the size of a RATS tag in bytes.
const TagSize = 8

// MaxBlockSize is the largest block size that a tag can describe.
const MaxBlockSize = 0x10000

var identifier = []byte("STAR")

// ErrInvalidSize is returned when encoding a tag for an unsupported block size.
var ErrInvalidSize = errors.New("invalid rats block size")

// Reader provides access to the ROM bytes that precede a block.
type Reader interface {
	ReadBlock(pc address.PCAddress, length int) ([]byte, error)
}

// Writer provides write access to the ROM bytes of a block.
type Writer interface {
	Reader
	WriteBlock(pc address.PCAddress, data []byte) error
}

// TryParse checks whether a valid tag ends directly before the given cartridge
// offset and returns the length of the reserved block. A missing tag, a tag
// with a bad checksum and a tag that can not be read are all reported as
// absent.
func TryParse(rom Reader, pc address.PCAddress) (int, bool) {
	if pc < TagSize {
		return 0, false
	}

	tag, err := rom.ReadBlock(pc-TagSize, TagSize)
	if err != nil {
		return 0, false
	}
	return Decode(tag)
}

// Decode returns the reserved block length described by the given tag bytes.
func Decode(tag []byte) (int, bool) {
	if len(tag) < TagSize || !bytes.Equal(tag[:len(identifier)], identifier) {
		return 0, false
	}

	size := uint16(tag[4]) | uint16(tag[5])<<8
	checksum := uint16(tag[6]) | uint16(tag[7])<<8
	if size^0xFFFF != checksum {
		return 0, false
	}
	return int(size) + 1, true
}

// Encode returns the tag protecting a block of the given length.
func Encode(length int) ([TagSize]byte, error) {
	var tag [TagSize]byte
	if length < 1 || length > MaxBlockSize {
		return tag, fmt.Errorf("encoding block of %d bytes: %w", length, ErrInvalidSize)
	}

	size := uint16(length - 1)
	checksum := size ^ 0xFFFF
	copy(tag[:], identifier)
	tag[4], tag[5] = byte(size), byte(size>>8)
	tag[6], tag[7] = byte(checksum), byte(checksum>>8)
	return tag, nil
}

// Protect writes a tag for a block of the given length so that the block
// starts at the given cartridge offset.
func Protect(rom Writer, pc address.PCAddress, length int) error {
	if pc < TagSize {
		return fmt.Errorf("protecting block at %s: no room for tag", pc)
	}

	tag, err := Encode(length)
	if err != nil {
		return err
	}
	if err := rom.WriteBlock(pc-TagSize, tag[:]); err != nil {
		return fmt.Errorf("writing tag: %w", err)
	}
	return nil
}

// Release frees the block starting at the given cartridge offset by clearing
// its tag and payload, returning the released payload length. Nothing is
// modified if no valid tag precedes the block.
func Release(rom Writer, pc address.PCAddress) (int, bool, error) {
	length, ok := TryParse(rom, pc)
	if !ok {
		return 0, false, nil
	}

	if err := rom.WriteBlock(pc-TagSize, make([]byte, TagSize+length)); err != nil {
		return 0, false, fmt.Errorf("clearing block at %s: %w", pc, err)
	}
	return length, true, nil
}
