// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/snespatch/internal/address"
	"github.com/retroenv/snespatch/internal/assembler"
	"github.com/retroenv/snespatch/internal/hijack"
	"github.com/retroenv/snespatch/internal/options"
	"github.com/retroenv/snespatch/internal/patch"
	"github.com/retroenv/snespatch/internal/rats"
	"github.com/retroenv/snespatch/internal/rom"
)

// ProcessFile handles the complete ROM processing workflow. Generated patch
// files are created in the given session, the caller tears it down.
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program,
	session *patch.Session, asm assembler.Assembler) error {

	img, err := loadImage(opts)
	if err != nil {
		return fmt.Errorf("loading rom: %w", err)
	}

	PrintInfo(logger, opts, img)

	if err := translate(logger, opts, img); err != nil {
		return err
	}

	if opts.RATS != "" {
		if err := checkRATS(logger, opts.RATS, img); err != nil {
			return err
		}
	}

	modified := false
	if opts.Hook != "" {
		if err := applyHook(logger, opts.Hook, img, session); err != nil {
			return fmt.Errorf("applying hook: %w", err)
		}
		modified = true
	}

	romPath := opts.Input
	if opts.Output != "" {
		romPath = opts.Output
	}
	if modified || romPath != opts.Input {
		if err := img.Save(romPath); err != nil {
			return fmt.Errorf("saving rom: %w", err)
		}
		logger.Info("Saved ROM", log.String("file", romPath))
	}

	if opts.Patch != "" {
		if err := applyPatch(ctx, logger, opts.Patch, img.Mapper(), romPath, session, asm); err != nil {
			return fmt.Errorf("applying patch: %w", err)
		}
		logger.Info("Applied patch", log.String("patch", opts.Patch), log.String("file", romPath))
	}

	return nil
}

func loadImage(opts options.Program) (*rom.Image, error) {
	img, err := rom.Open(opts.Input)
	if err != nil {
		return nil, err
	}

	if opts.Mapper != "" {
		mapper, err := address.ParseMapper(opts.Mapper)
		if err != nil {
			return nil, err
		}
		img.SetMapper(mapper)
	}
	return img, nil
}

// PrintInfo prints the information about the input file and the cartridge.
func PrintInfo(logger *log.Logger, opts options.Program, img *rom.Image) {
	if opts.Quiet {
		return
	}

	title, err := img.Title()
	if err != nil {
		logger.Warn("Reading cartridge title failed", log.Err(err))
	}
	logger.Info("Processing SNES ROM",
		log.String("file", opts.Input),
		log.String("title", title),
		log.Stringer("mapper", img.Mapper()),
		log.Int("size", img.Size()),
		log.Int("header", int(img.HeaderSize())),
	)

	version, err := img.LMVersion()
	if err != nil {
		logger.Debug("Lunar Magic version not available", log.Err(err))
		return
	}
	exLevel, _ := img.IsExLevel()
	logger.Info("Lunar Magic",
		log.Int("version", version),
		log.String("exlevel", fmt.Sprintf("%t", exLevel)),
	)
}

func translate(logger *log.Logger, opts options.Program, img *rom.Image) error {
	if opts.PC != "" {
		value, err := hijack.ParseHex(opts.PC)
		if err != nil {
			return fmt.Errorf("parsing cartridge offset: %w", err)
		}
		pc := address.PCAddress(value)
		snes, ok := img.PCToSNES(pc)
		if !ok {
			return fmt.Errorf("cartridge offset %s is not mapped as %s", pc, img.Mapper())
		}
		logger.Info("Translated address",
			log.Stringer("pc", pc),
			log.Stringer("snes", snes),
			log.Stringer("file", address.PCAddress(img.Space().FileOffset(pc))),
		)
	}

	if opts.SNES != "" {
		value, err := hijack.ParseHex(opts.SNES)
		if err != nil {
			return fmt.Errorf("parsing snes address: %w", err)
		}
		snes := address.SNESAddress(value)
		pc, ok := img.SNESToPC(snes)
		if !ok {
			return fmt.Errorf("snes address %s is not mapped as %s", snes, img.Mapper())
		}
		logger.Info("Translated address",
			log.Stringer("snes", snes),
			log.Stringer("pc", pc),
			log.Stringer("file", address.PCAddress(img.Space().FileOffset(pc))),
		)
	}
	return nil
}

func checkRATS(logger *log.Logger, s string, img *rom.Image) error {
	value, err := hijack.ParseHex(s)
	if err != nil {
		return fmt.Errorf("parsing rats address: %w", err)
	}
	snes := address.SNESAddress(value)
	pc, ok := img.SNESToPC(snes)
	if !ok {
		return fmt.Errorf("rats address %s is not mapped as %s", snes, img.Mapper())
	}

	length, ok := rats.TryParse(img, pc)
	if !ok {
		logger.Info("No RATS tag found", log.Stringer("snes", snes))
		return nil
	}
	logger.Info("RATS tag found",
		log.Stringer("snes", snes),
		log.Stringer("pc", pc),
		log.Int("length", length),
	)
	return nil
}

func applyHook(logger *log.Logger, s string, img *rom.Image, session *patch.Session) error {
	hook, err := hijack.ParseHook(s)
	if err != nil {
		return err
	}

	hooked, err := hijack.IsHooked(img, hook.At)
	if err != nil {
		return err
	}
	if hooked {
		logger.Warn("Hook location already contains a JSL", log.Stringer("at", hook.At))
	}

	listing := session.NewTemp(patch.OriginInserter, patch.Text, ".asm")
	original, err := hijack.Apply(img, hook, listing)
	if err != nil {
		return err
	}
	if err := listing.Close(); err != nil {
		return fmt.Errorf("closing hook listing: %w", err)
	}

	restore := session.NewTemp(patch.OriginMeiMei, patch.Text, ".asm")
	if err := hijack.WriteRestore(restore, hook, original); err != nil {
		return err
	}
	if err := restore.Close(); err != nil {
		return fmt.Errorf("closing restore patch: %w", err)
	}

	logger.Info("Applied hook",
		log.Stringer("at", hook.At),
		log.Stringer("target", hook.Target),
		log.Int("length", hook.Length),
	)
	logger.Debug("Hook patch files",
		log.String("listing", listing.Path()),
		log.String("restore", restore.Path()),
	)
	return nil
}

// applyPatch stages a wrapper that selects the mapper and includes the patch
// file, and runs it through the assembler.
func applyPatch(ctx context.Context, logger *log.Logger, patchFile string, mapper address.Mapper,
	romPath string, session *patch.Session, asm assembler.Assembler) error {

	if _, err := os.Stat(patchFile); err != nil {
		return fmt.Errorf("opening patch file '%s': %w", patchFile, err)
	}
	abs, err := filepath.Abs(patchFile)
	if err != nil {
		return fmt.Errorf("resolving patch file path: %w", err)
	}

	buf := session.NewTemp(patch.OriginInserter, patch.Text, ".asm")
	if err := writeWrapper(buf, mapper, abs); err != nil {
		return err
	}
	if err := buf.Close(); err != nil {
		return fmt.Errorf("closing patch buffer: %w", err)
	}

	view, err := buf.View()
	if err != nil {
		return fmt.Errorf("getting patch content: %w", err)
	}

	logger.Debug("Assembling patch", log.String("file", patchFile), log.Int("size", len(view.Data)))
	if err := asm.Assemble(ctx, view, romPath); err != nil {
		if errors.Is(err, assembler.ErrNotInstalled) {
			return fmt.Errorf("%w, use -asar to set the assembler path", err)
		}
		return err
	}
	return nil
}

func writeWrapper(buf *patch.Buffer, mapper address.Mapper, patchFile string) error {
	if err := buf.Printf("%s\n", mapper); err != nil {
		return err
	}
	if err := buf.Printf("incsrc \"%s\"\n", filepath.ToSlash(patchFile)); err != nil {
		return err
	}
	return nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("snespatch", log.String("version", buildinfo.Version(version, commit, date)))
}
