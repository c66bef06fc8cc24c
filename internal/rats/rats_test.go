package rats

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/snespatch/internal/address"
	"github.com/retroenv/snespatch/internal/rom"
)

func newTestImage(t *testing.T) *rom.Image {
	t.Helper()
	img, err := rom.Load("test.smc", make([]byte, 0x8000+512))
	assert.NoError(t, err)
	return img
}

func TestTryParse(t *testing.T) {
	img := newTestImage(t)
	tag := []byte{'S', 'T', 'A', 'R', 0x10, 0x00, 0xEF, 0xFF}
	assert.NoError(t, img.WriteBlock(0x1000-TagSize, tag))

	length, ok := TryParse(img, 0x1000)
	assert.True(t, ok)
	assert.Equal(t, 17, length)
}

func TestTryParseChecksumBitFlips(t *testing.T) {
	img := newTestImage(t)

	for bit := 0; bit < 16; bit++ {
		checksum := uint16(0xFFEF) ^ 1<<bit
		tag := []byte{'S', 'T', 'A', 'R', 0x10, 0x00, byte(checksum), byte(checksum >> 8)}
		assert.NoError(t, img.WriteBlock(0x1000-TagSize, tag))

		_, ok := TryParse(img, 0x1000)
		assert.False(t, ok)
	}
}

func TestTryParseAbsent(t *testing.T) {
	img := newTestImage(t)

	tests := []struct {
		name string
		tag  []byte
		pc   address.PCAddress
	}{
		{name: "zero bytes", tag: make([]byte, TagSize), pc: 0x1000},
		{name: "lowercase identifier", tag: []byte{'s', 'T', 'A', 'R', 0x10, 0x00, 0xEF, 0xFF}, pc: 0x2000},
		{name: "reversed identifier", tag: []byte{'R', 'A', 'T', 'S', 0x10, 0x00, 0xEF, 0xFF}, pc: 0x3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, img.WriteBlock(tt.pc-TagSize, tt.tag))
			_, ok := TryParse(img, tt.pc)
			assert.False(t, ok)
		})
	}

	// no room for a tag before the start of the cartridge data
	_, ok := TryParse(img, 4)
	assert.False(t, ok)

	// beyond the end of the image
	_, ok = TryParse(img, 0x9000)
	assert.False(t, ok)
}

func TestEncode(t *testing.T) {
	tag, err := Encode(17)
	assert.NoError(t, err)
	assert.Equal(t, [TagSize]byte{'S', 'T', 'A', 'R', 0x10, 0x00, 0xEF, 0xFF}, tag)

	for _, length := range []int{1, 2, 0x100, 0x8000, MaxBlockSize} {
		tag, err := Encode(length)
		assert.NoError(t, err)

		decoded, ok := Decode(tag[:])
		assert.True(t, ok)
		assert.Equal(t, length, decoded)
	}

	_, err = Encode(0)
	assert.True(t, errors.Is(err, ErrInvalidSize))
	_, err = Encode(MaxBlockSize + 1)
	assert.True(t, errors.Is(err, ErrInvalidSize))
}

func TestProtectAndRelease(t *testing.T) {
	img := newTestImage(t)
	payload := []byte{0xA9, 0x01, 0x6B}
	assert.NoError(t, img.WriteBlock(0x2000, payload))
	assert.NoError(t, Protect(img, 0x2000, len(payload)))

	length, ok := TryParse(img, 0x2000)
	assert.True(t, ok)
	assert.Equal(t, len(payload), length)

	released, ok, err := Release(img, 0x2000)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, len(payload), released)

	cleared, err := img.ReadBlock(0x2000-TagSize, TagSize+len(payload))
	assert.NoError(t, err)
	assert.Equal(t, make([]byte, TagSize+len(payload)), cleared)

	_, ok, err = Release(img, 0x2000)
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.Error(t, Protect(img, 2, 1))
}
