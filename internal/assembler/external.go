package assembler

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/snespatch/internal/patch"
)

// External runs an external assembler binary that patches the ROM file in
// place, like asar.
type External struct {
	logger *log.Logger
	binary string
	args   []string
}

// NewExternal returns an assembler calling the given binary. Extra arguments
// are passed before the patch and ROM file names.
func NewExternal(logger *log.Logger, binary string, args ...string) *External {
	if binary == "" {
		binary = Asar
	}
	return &External{
		logger: logger,
		binary: binary,
		args:   args,
	}
}

// Assemble writes the view content to a temporary file and calls the
// external assembler with it and the ROM file.
func (e *External) Assemble(ctx context.Context, view patch.View, romPath string) error {
	binary := e.binary
	if runtime.GOOS == "windows" && filepath.Ext(binary) == "" {
		binary += ".exe"
	}

	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("%s: %w", binary, ErrNotInstalled)
	}

	name := filepath.Base(view.Name)
	if name == "." || name == string(filepath.Separator) {
		name = "patch.asm"
	}
	patchFile, err := os.CreateTemp("", "*_"+name)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(patchFile.Name())
	}()

	if _, err := patchFile.Write(view.Data); err != nil {
		_ = patchFile.Close()
		return fmt.Errorf("writing patch file: %w", err)
	}
	if err := patchFile.Close(); err != nil {
		return fmt.Errorf("closing patch file: %w", err)
	}

	args := append(append([]string{}, e.args...), patchFile.Name(), romPath)
	e.logger.Debug("Running assembler", log.String("binary", binary), log.String("patch", view.Name))

	cmd := exec.CommandContext(ctx, binary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("assembling file: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}
