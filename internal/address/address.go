// Package address translates between linear ROM offsets and 24 bit SNES bus
// addresses for the supported cartridge mapping schemes.
package address

import (
	"fmt"
	"strings"
)

// Mapper defines the bank switching scheme of a cartridge.
type Mapper uint8

// supported mappers.
const (
	LoROM Mapper = iota
	SA1ROM
	FullSA1ROM
)

var mapperNames = map[Mapper]string{
	LoROM:      "lorom",
	SA1ROM:     "sa1rom",
	FullSA1ROM: "fullsa1rom",
}

func (m Mapper) String() string {
	if name, ok := mapperNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mapper(%d)", uint8(m))
}

// ParseMapper returns the mapper matching the given case insensitive name.
func ParseMapper(s string) (Mapper, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range mapperNames {
		if name == s {
			return m, nil
		}
	}
	return LoROM, fmt.Errorf("unsupported mapper '%s'", s)
}

// PCAddress is a linear offset into the cartridge data, never including a
// copier header.
type PCAddress uint32

// SNESAddress is a 24 bit address as seen by the CPU, including the bank byte.
type SNESAddress uint32

// Pointer is a 24 bit value as stored in a 3 byte little endian pointer table.
type Pointer uint32

func (a PCAddress) String() string {
	return fmt.Sprintf("0x%06X", uint32(a))
}

func (a SNESAddress) String() string {
	return fmt.Sprintf("$%02X:%04X", a.Bank(), uint32(a)&0xFFFF)
}

// Bank returns the bank byte of the address.
func (a SNESAddress) Bank() uint8 {
	return uint8(a >> 16)
}

// Pointer returns the pointer value referencing the address.
func (a SNESAddress) Pointer() Pointer {
	return Pointer(a & 0xFFFFFF)
}

// PointerFromBytes decodes a little endian 3 byte pointer table entry.
func PointerFromBytes(low, high, bank byte) Pointer {
	return Pointer(uint32(low) | uint32(high)<<8 | uint32(bank)<<16)
}

// Bytes returns the little endian 3 byte form of the pointer.
func (p Pointer) Bytes() [3]byte {
	return [3]byte{byte(p), byte(p >> 8), byte(p >> 16)}
}

// Bank returns the bank byte of the pointer.
func (p Pointer) Bank() uint8 {
	return uint8(p >> 16)
}

// Addr returns the SNES address the pointer references.
func (p Pointer) Addr() SNESAddress {
	return SNESAddress(p & 0xFFFFFF)
}

func (p Pointer) String() string {
	return p.Addr().String()
}
