// Package hijack redirects existing ROM code to a new routine by overwriting
// it with a long jump.
package hijack

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alttpo/snes/asm"
	"github.com/retroenv/snespatch/internal/address"
	"github.com/retroenv/snespatch/internal/rom"
)

const (
	jslSize   = 4
	opcodeJSL = 0x22
	opcodeNOP = 0xEA
)

// ErrTooShort is returned when a hook does not have room for the jump.
var ErrTooShort = errors.New("hook length is shorter than a long jump")

// Hook describes a code location that is replaced by a jump.
type Hook struct {
	At     address.SNESAddress // code location to overwrite
	Target address.SNESAddress // routine to jump to
	Length int                 // number of bytes to overwrite, padded with NOP
}

// ParseHook parses a hook in the format at:target:length, addresses and
// length are hexadecimal with an optional $ or 0x prefix.
func ParseHook(s string) (Hook, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Hook{}, fmt.Errorf("invalid hook '%s', expected at:target:length", s)
	}

	var values [3]uint64
	for i, part := range parts {
		v, err := ParseHex(part)
		if err != nil {
			return Hook{}, fmt.Errorf("invalid hook '%s': %w", s, err)
		}
		values[i] = v
	}

	return Hook{
		At:     address.SNESAddress(values[0]),
		Target: address.SNESAddress(values[1]),
		Length: int(values[2]),
	}, nil
}

// ParseHex parses a hexadecimal number with an optional $ or 0x prefix.
func ParseHex(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 24)
	if err != nil {
		return 0, fmt.Errorf("parsing hex value '%s': %w", s, err)
	}
	return v, nil
}

// Apply overwrites the code at the hook location with a JSL to the hook
// target followed by NOP padding. The assembly listing of the written code is
// written to w. The original bytes of the overwritten code are returned.
func Apply(img *rom.Image, hook Hook, w io.Writer) ([]byte, error) {
	if hook.Length < jslSize {
		return nil, fmt.Errorf("hook at %s with %d bytes: %w", hook.At, hook.Length, ErrTooShort)
	}

	code, err := img.SliceSNES(hook.At, hook.Length)
	if err != nil {
		return nil, fmt.Errorf("hook at %s: %w", hook.At, err)
	}
	original := make([]byte, len(code))
	copy(original, code)

	a := asm.NewEmitter(code, true)
	a.SetBase(uint32(hook.At))
	a.Comment(fmt.Sprintf("hook %s -> %s", hook.At, hook.Target))
	a.JSL(uint32(hook.Target))
	for i := jslSize; i < hook.Length; i++ {
		a.NOP()
	}
	a.Finalize()
	a.WriteTextTo(w)

	if a.Len() != hook.Length {
		return nil, fmt.Errorf("assembler produced %d bytes instead of %d", a.Len(), hook.Length)
	}
	return original, nil
}

// IsHooked returns whether the code at the given address already starts with
// a JSL.
func IsHooked(img *rom.Image, at address.SNESAddress) (bool, error) {
	opcode, err := img.ReadU8SNES(at)
	if err != nil {
		return false, err
	}
	return opcode == opcodeJSL, nil
}

// WriteRestore writes an assembly patch to w that restores the given original
// code at the hook location.
func WriteRestore(w io.Writer, hook Hook, original []byte) error {
	var b strings.Builder
	fmt.Fprintf(&b, "org $%06X\n", uint32(hook.At))
	for i, value := range original {
		if i%8 == 0 {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString("db ")
		} else {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "$%02X", value)
	}
	b.WriteByte('\n')

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing restore patch: %w", err)
	}
	return nil
}
