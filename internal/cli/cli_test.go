package cli

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/snespatch/internal/options"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want options.Program
	}{
		{
			name: "default flags",
			args: []string{"rom.smc"},
			want: options.Program{Parameters: options.Parameters{Input: "rom.smc", Asar: "asar"}},
		},
		{
			name: "translation flags",
			args: []string{"-pc", "7FD5", "-snes", "$00FFD5", "-rats", "108000", "rom.smc"},
			want: options.Program{Parameters: options.Parameters{
				Input: "rom.smc", Asar: "asar", PC: "7FD5", SNES: "$00FFD5", RATS: "108000",
			}},
		},
		{
			name: "keep flags",
			args: []string{"-keep", "-keep-meimei=false", "rom.smc"},
			want: options.Program{
				Parameters:      options.Parameters{Input: "rom.smc", Asar: "asar"},
				Flags:           options.Flags{KeepInserter: true},
				KeepInserterSet: true,
				KeepMeiMeiSet:   true,
			},
		},
		{
			name: "mapper normalized",
			args: []string{"-mapper", "SA1ROM", "-asar", "/opt/asar", "rom.smc"},
			want: options.Program{Parameters: options.Parameters{Input: "rom.smc", Asar: "/opt/asar", Mapper: "sa1rom"}},
		},
		{
			name: "patch and hook",
			args: []string{"-q", "-patch", "main.asm", "-hook", "00802F:1BB1D7:5", "rom.smc"},
			want: options.Program{
				Parameters: options.Parameters{Input: "rom.smc", Asar: "asar", Patch: "main.asm", Hook: "00802F:1BB1D7:5"},
				Flags:      options.Flags{Quiet: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFlags("snespatch", tt.args)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFlagsUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no rom file", args: nil},
		{name: "unknown flag", args: []string{"-unknown", "rom.smc"}},
		{name: "flag after rom file", args: []string{"rom.smc", "-keep"}},
		{name: "multiple rom files", args: []string{"a.smc", "b.smc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFlags("snespatch", tt.args)
			var usageErr *UsageError
			assert.True(t, errors.As(err, &usageErr))
			assert.True(t, usageErr.Error() != "")
		})
	}
}

func TestParseFlagsInvalidMapper(t *testing.T) {
	_, err := ParseFlags("snespatch", []string{"-mapper", "hirom", "rom.smc"})
	assert.ErrorContains(t, err, "unsupported mapper")

	var usageErr *UsageError
	assert.False(t, errors.As(err, &usageErr))
}
