package address

// sa1Unmapped marks a bank select slot that has no ROM mapped into it.
const sa1Unmapped = -1

// sa1Banks contains the ROM base offsets for the 8 SA-1 bank select slots,
// indexed in the layout of the Super MMC bank registers. Slots that are not
// mapped by default are marked as unmapped.
var sa1Banks = [8]int32{
	0 << 20, 1 << 20, sa1Unmapped, sa1Unmapped,
	2 << 20, 3 << 20, sa1Unmapped, sa1Unmapped,
}

const (
	loROMMaxSize = 0x400000
	sa1MaxSize   = 0x800000
)

// PCToSNES converts a linear cartridge offset to a SNES address. The returned
// flag is false if the offset has no address under the given mapper.
func PCToSNES(pc PCAddress, mapper Mapper) (SNESAddress, bool) {
	addr := uint32(pc)

	switch mapper {
	case LoROM:
		if addr >= loROMMaxSize {
			return 0, false
		}
		snes := (addr<<1)&0x7F0000 | addr&0x7FFF | 0x8000
		// banks $7E/$7F are shadowed by WRAM, use the $FE/$FF mirror
		if snes&0xFE0000 == 0x7E0000 {
			snes |= 0x800000
		}
		return SNESAddress(snes), true

	case SA1ROM:
		if addr >= sa1MaxSize {
			return 0, false
		}
		for i, base := range sa1Banks {
			if base == int32(addr&0x700000) {
				snes := 0x008000 | uint32(i)<<21 | (addr&0x0F8000)<<1 | addr&0x7FFF
				return SNESAddress(snes), true
			}
		}
		return 0, false

	case FullSA1ROM:
		if addr >= sa1MaxSize {
			return 0, false
		}
		switch {
		case addr&0x400000 == 0x400000:
			return SNESAddress(addr | 0xC00000), true
		case addr&0x600000 == 0x000000:
			return SNESAddress((addr<<1)&0x3F0000 | 0x8000 | addr&0x7FFF), true
		case addr&0x600000 == 0x200000:
			return SNESAddress(0x800000 | (addr<<1)&0x3F0000 | 0x8000 | addr&0x7FFF), true
		}
	}

	return 0, false
}

// SNESToPC converts a SNES address to a linear cartridge offset. The returned
// flag is false if the address is not backed by ROM under the given mapper.
func SNESToPC(snes SNESAddress, mapper Mapper) (PCAddress, bool) {
	addr := uint32(snes) & 0xFFFFFF

	switch mapper {
	case LoROM:
		if addr&0xFE0000 == 0x7E0000 || addr&0x408000 == 0x000000 || addr&0x708000 == 0x700000 {
			return 0, false
		}
		return PCAddress((addr&0x7F0000)>>1 | addr&0x7FFF), true

	case SA1ROM:
		var base int32
		var offset uint32
		switch {
		case addr&0x408000 == 0x008000:
			base = sa1Banks[(addr&0xE00000)>>21]
			offset = (addr&0x1F0000)>>1 | addr&0x007FFF
		case addr&0xC00000 == 0xC00000:
			base = sa1Banks[(addr&0x100000)>>20|(addr&0x200000)>>19]
			offset = addr & 0x0FFFFF
		default:
			return 0, false
		}
		if base == sa1Unmapped {
			return 0, false
		}
		return PCAddress(uint32(base) | offset), true

	case FullSA1ROM:
		switch addr & 0xC00000 {
		case 0xC00000:
			return PCAddress(addr&0x3FFFFF | 0x400000), true
		case 0x000000, 0x800000:
			if addr&0x008000 == 0 {
				return 0, false
			}
			return PCAddress((addr&0x800000)>>2 | (addr&0x3F0000)>>1 | addr&0x7FFF), true
		}
	}

	return 0, false
}

// Space binds a mapper to the copier header size of a ROM file, allowing
// translation of raw file offsets.
type Space struct {
	Mapper     Mapper
	HeaderSize uint32
}

// PCToSNES converts a cartridge offset using the mapper of the space.
func (s Space) PCToSNES(pc PCAddress) (SNESAddress, bool) {
	return PCToSNES(pc, s.Mapper)
}

// SNESToPC converts a SNES address using the mapper of the space.
func (s Space) SNESToPC(snes SNESAddress) (PCAddress, bool) {
	return SNESToPC(snes, s.Mapper)
}

// FileOffset returns the position of the cartridge offset inside the file.
func (s Space) FileOffset(pc PCAddress) uint32 {
	return uint32(pc) + s.HeaderSize
}

// FromFileOffset strips the copier header from a file position. Positions
// inside the header have no cartridge offset.
func (s Space) FromFileOffset(offset uint32) (PCAddress, bool) {
	if offset < s.HeaderSize {
		return 0, false
	}
	return PCAddress(offset - s.HeaderSize), true
}

// FileOffsetToSNES converts a file position including the copier header to a
// SNES address.
func (s Space) FileOffsetToSNES(offset uint32) (SNESAddress, bool) {
	pc, ok := s.FromFileOffset(offset)
	if !ok {
		return 0, false
	}
	return s.PCToSNES(pc)
}

// SNESToFileOffset converts a SNES address to a file position including the
// copier header.
func (s Space) SNESToFileOffset(snes SNESAddress) (uint32, bool) {
	pc, ok := s.SNESToPC(snes)
	if !ok {
		return 0, false
	}
	return s.FileOffset(pc), true
}
