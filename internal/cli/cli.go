// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/snespatch/internal/address"
	"github.com/retroenv/snespatch/internal/assembler"
	"github.com/retroenv/snespatch/internal/options"
)

// ParseFlags parses the command line arguments without the program name and
// returns the program options.
func ParseFlags(name string, arguments []string) (options.Program, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(&strings.Builder{})
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(arguments)
	args := flags.Args()
	if err != nil || len(args) == 0 {
		msg := ""
		if err != nil && err != flag.ErrHelp {
			msg = err.Error()
		}
		return opts, &UsageError{flags: flags, msg: msg}
	}

	if err := validateArgs(flags, args); err != nil {
		return opts, err
	}
	opts.Input = args[0]

	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "keep":
			opts.KeepInserterSet = true
		case "keep-meimei":
			opts.KeepMeiMeiSet = true
		}
	})

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	if e.msg == "" {
		return "missing ROM file"
	}
	return e.msg
}

// ShowUsage prints the usage and the default values of all flags.
func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: snespatch [options] <ROM file>\n\n")
	if e.flags == nil {
		return
	}
	e.flags.SetOutput(os.Stdout)
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks that the ROM file is the last argument.
func validateArgs(flags *flag.FlagSet, args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				flags: flags,
				msg:   fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	if len(args) > 1 {
		return &UsageError{
			flags: flags,
			msg:   fmt.Sprintf("only one ROM file can be processed, got %d", len(args)),
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	if opts.Asar == "" {
		opts.Asar = assembler.Asar
	}

	if opts.Mapper != "" {
		mapper, err := address.ParseMapper(opts.Mapper)
		if err != nil {
			return fmt.Errorf("%w. Valid options: lorom, sa1rom, fullsa1rom", err)
		}
		opts.Mapper = mapper.String()
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Patch, "patch", "", "asm patch file to apply with the external assembler")
	flags.StringVar(&opts.Output, "o", "", "name of the output ROM file, the input file is overwritten if no name given")
	flags.StringVar(&opts.EnvFile, "env", "", "environment file to read SNESPATCH_KEEP_INSERTER and SNESPATCH_KEEP_MEIMEI from")
	flags.StringVar(&opts.Asar, "asar", assembler.Asar, "external assembler binary used for -patch")
	flags.StringVar(&opts.Mapper, "mapper", "", "override mapper detection (lorom/sa1rom/fullsa1rom)")
	flags.StringVar(&opts.PC, "pc", "", "translate a hex cartridge offset to a SNES address")
	flags.StringVar(&opts.SNES, "snes", "", "translate a hex SNES address to a cartridge offset")
	flags.StringVar(&opts.RATS, "rats", "", "check for a RATS tag before the given hex SNES address")
	flags.StringVar(&opts.Hook, "hook", "", "write a JSL hook in the format at:target:length, for example 00802F:1BB1D7:5")
	flags.BoolVar(&opts.KeepInserter, "keep", false, "keep generated patch files for debugging")
	flags.BoolVar(&opts.KeepMeiMei, "keep-meimei", false, "keep generated restore patch files for debugging")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
