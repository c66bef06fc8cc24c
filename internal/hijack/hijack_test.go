package hijack

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/snespatch/internal/address"
	"github.com/retroenv/snespatch/internal/rom"
)

func newTestImage(t *testing.T) *rom.Image {
	t.Helper()
	data := make([]byte, 0x10000)
	for i := range data {
		data[i] = 0x60
	}
	img, err := rom.Load("test.smc", data)
	assert.NoError(t, err)
	assert.Equal(t, address.LoROM, img.Mapper())
	return img
}

func TestApply(t *testing.T) {
	img := newTestImage(t)
	hook := Hook{At: 0x00802F, Target: 0x1BB1D7, Length: 6}

	var listing bytes.Buffer
	original, err := Apply(img, hook, &listing)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x60, 0x60, 0x60, 0x60, 0x60}, original)

	code, err := img.ReadBlock(0x2F, 7)
	assert.NoError(t, err)
	assert.Equal(t, []byte{opcodeJSL, 0xD7, 0xB1, 0x1B, opcodeNOP, opcodeNOP, 0x60}, code)
	assert.True(t, listing.Len() > 0)

	hooked, err := IsHooked(img, hook.At)
	assert.NoError(t, err)
	assert.True(t, hooked)
}

func TestApplyErrors(t *testing.T) {
	img := newTestImage(t)

	_, err := Apply(img, Hook{At: 0x008000, Target: 0x108000, Length: 3}, &bytes.Buffer{})
	assert.True(t, errors.Is(err, ErrTooShort))

	_, err = Apply(img, Hook{At: 0x7E0000, Target: 0x108000, Length: 4}, &bytes.Buffer{})
	assert.True(t, errors.Is(err, rom.ErrUnmapped))

	_, err = Apply(img, Hook{At: 0x01FFFE, Target: 0x108000, Length: 4}, &bytes.Buffer{})
	assert.True(t, errors.Is(err, rom.ErrOutOfRange))

	hooked, err := IsHooked(img, 0x008000)
	assert.NoError(t, err)
	assert.False(t, hooked)
}

func TestParseHook(t *testing.T) {
	tests := []struct {
		input    string
		expected Hook
		err      bool
	}{
		{input: "$00802F:$1BB1D7:5", expected: Hook{At: 0x00802F, Target: 0x1BB1D7, Length: 5}},
		{input: "0x008056:108000:4", expected: Hook{At: 0x008056, Target: 0x108000, Length: 4}},
		{input: "008056:108000", err: true},
		{input: "008056:zz:4", err: true},
		{input: "1000000:108000:4", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			hook, err := ParseHook(tt.input)
			if tt.err {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, hook)
		})
	}
}

func TestWriteRestore(t *testing.T) {
	var buf strings.Builder
	original := []byte{0xA9, 0x81, 0x8D, 0x00, 0x42, 0xEA, 0xEA, 0xEA, 0x6B}
	assert.NoError(t, WriteRestore(&buf, Hook{At: 0x00802F}, original))

	expected := "org $00802F\n" +
		"db $A9,$81,$8D,$00,$42,$EA,$EA,$EA\n" +
		"db $6B\n"
	assert.Equal(t, expected, buf.String())
}
