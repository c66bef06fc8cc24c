// Package assembler applies staged patch content to a ROM file using an
// assembler.
package assembler

import (
	"context"
	"errors"

	"github.com/retroenv/snespatch/internal/patch"
)

// Asar is the name of the default external assembler.
const Asar = "asar"

// ErrNotInstalled is returned when the external assembler can not be found.
var ErrNotInstalled = errors.New("assembler is not installed")

// Assembler applies the content of a closed patch buffer to a ROM file.
type Assembler interface {
	Assemble(ctx context.Context, view patch.View, romPath string) error
}

// Func is an adapter to use an ordinary function as Assembler.
type Func func(ctx context.Context, view patch.View, romPath string) error

// Assemble calls f(ctx, view, romPath).
func (f Func) Assemble(ctx context.Context, view patch.View, romPath string) error {
	return f(ctx, view, romPath)
}
