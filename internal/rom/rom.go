// Package rom implements a SNES ROM image container that owns the file
// buffer and provides bounds checked access keyed by address types.
package rom

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/snespatch/internal/address"
)

// MaxSize is the largest supported cartridge size, excluding a copier header.
const MaxSize = 16 * 1024 * 1024

const (
	// copier headers are always smaller than the ROM size granularity
	headerGranularity = 0x8000

	mapModeOffset  = 0x7FD5
	chipsetOffset  = 0x7FD7
	sa1MapMode     = 0x23
	fullSA1Chipset = 0x0D

	titleAddress = address.SNESAddress(0x00FFC0)
	titleLength  = 21

	lmVersionAddress = address.SNESAddress(0x0FF0B4)
	lmExLevelVersion = 253
)

var (
	// ErrOutOfRange is returned when an access exceeds the image bounds.
	ErrOutOfRange = errors.New("address out of range")
	// ErrTooLarge is returned when a file exceeds the maximum supported size.
	ErrTooLarge = errors.New("rom exceeds maximum supported size")
	// ErrTooSmall is returned when a file can not contain a cartridge header.
	ErrTooSmall = errors.New("rom too small to contain a cartridge header")
	// ErrClosed is returned when accessing an image after it was saved.
	ErrClosed = errors.New("rom image is closed")
	// ErrUnmapped is returned when a SNES address is not backed by ROM.
	ErrUnmapped = errors.New("address is not mapped to rom")
)

// RangeError describes an access that exceeds the image bounds.
type RangeError struct {
	Address address.PCAddress
	Width   int
	Size    int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("accessing %d bytes at %s: rom size is 0x%X: %s",
		e.Width, e.Address, e.Size, ErrOutOfRange)
}

func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}

// Image is a loaded ROM file. The buffer contains the optional copier header
// followed by the cartridge data, all PC addresses are relative to the end of
// the header.
type Image struct {
	path       string
	data       []byte
	headerSize uint32
	mapper     address.Mapper
}

// Open reads the whole ROM file and detects its header size and mapper.
func Open(path string) (*Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening rom file '%s': %w", path, err)
	}
	headerSize := info.Size() & (headerGranularity - 1)
	if info.Size()-headerSize > MaxSize {
		return nil, fmt.Errorf("opening rom file '%s': %w", path, ErrTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rom file '%s': %w", path, err)
	}
	return Load(path, data)
}

// Load creates an image from an in memory file buffer, which is owned by the
// image afterwards. The path is used as default save destination.
func Load(path string, data []byte) (*Image, error) {
	headerSize := uint32(len(data) & (headerGranularity - 1))
	size := len(data) - int(headerSize)
	if size > MaxSize {
		return nil, ErrTooLarge
	}
	if size < headerGranularity {
		return nil, ErrTooSmall
	}

	img := &Image{
		path:       path,
		data:       data,
		headerSize: headerSize,
	}
	img.mapper = detectMapper(data[headerSize:])
	return img, nil
}

// detectMapper probes the map mode and chipset bytes of the cartridge header.
// The probe uses fixed offsets as the mapper is not known yet.
func detectMapper(cart []byte) address.Mapper {
	if cart[mapModeOffset] != sa1MapMode {
		return address.LoROM
	}
	if cart[chipsetOffset] == fullSA1Chipset {
		return address.FullSA1ROM
	}
	return address.SA1ROM
}

// Path returns the file path the image was loaded from.
func (img *Image) Path() string {
	return img.path
}

// HeaderSize returns the size of the copier header.
func (img *Image) HeaderSize() uint32 {
	return img.headerSize
}

// Size returns the cartridge data size without the copier header.
func (img *Image) Size() int {
	if img.data == nil {
		return 0
	}
	return len(img.data) - int(img.headerSize)
}

// Mapper returns the detected mapper of the image.
func (img *Image) Mapper() address.Mapper {
	return img.mapper
}

// SetMapper overrides the detected mapper.
func (img *Image) SetMapper(mapper address.Mapper) {
	img.mapper = mapper
}

// Space returns the address space of the image.
func (img *Image) Space() address.Space {
	return address.Space{
		Mapper:     img.mapper,
		HeaderSize: img.headerSize,
	}
}

// Raw returns the complete file buffer including the copier header.
func (img *Image) Raw() []byte {
	return img.data
}

// Closed returns whether the buffer of the image has been released.
func (img *Image) Closed() bool {
	return img.data == nil
}

// PCToSNES converts a cartridge offset using the mapper of the image.
func (img *Image) PCToSNES(pc address.PCAddress) (address.SNESAddress, bool) {
	return address.PCToSNES(pc, img.mapper)
}

// SNESToPC converts a SNES address using the mapper of the image.
func (img *Image) SNESToPC(snes address.SNESAddress) (address.PCAddress, bool) {
	return address.SNESToPC(snes, img.mapper)
}

// Save writes the header and cartridge data to the given path and releases
// the buffer. On failure the buffer is kept so that no data is lost.
func (img *Image) Save(path string) error {
	if img.data == nil {
		return ErrClosed
	}
	if path == "" {
		path = img.path
	}

	if err := os.WriteFile(path, img.data, 0644); err != nil {
		return fmt.Errorf("writing rom file '%s': %w", path, err)
	}
	img.data = nil
	return nil
}

// Title returns the internal cartridge title.
func (img *Image) Title() (string, error) {
	b, err := img.SliceSNES(titleAddress, titleLength)
	if err != nil {
		return "", fmt.Errorf("reading title: %w", err)
	}
	return strings.TrimRight(string(b), " \x00"), nil
}

// LMVersion returns the Lunar Magic version that last saved the ROM, as
// major*100 + minor*10 + patch. The dot of the version string is skipped.
func (img *Image) LMVersion() (int, error) {
	major, err := img.ReadU8SNES(lmVersionAddress)
	if err != nil {
		return 0, fmt.Errorf("reading lunar magic version: %w", err)
	}
	minor, err := img.ReadU8SNES(lmVersionAddress + 2)
	if err != nil {
		return 0, fmt.Errorf("reading lunar magic version: %w", err)
	}
	patch, err := img.ReadU8SNES(lmVersionAddress + 3)
	if err != nil {
		return 0, fmt.Errorf("reading lunar magic version: %w", err)
	}
	return int(major)*100 + int(minor)*10 + int(patch), nil
}

// IsExLevel returns whether the ROM was saved by a Lunar Magic version that
// supports extended level sizes.
func (img *Image) IsExLevel() (bool, error) {
	version, err := img.LMVersion()
	if err != nil {
		return false, err
	}
	return version > lmExLevelVersion, nil
}
