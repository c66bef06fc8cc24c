// Package options contains the program options.
package options

// Parameters contains file path and address options.
type Parameters struct {
	Input   string `usage:"ROM file to process"`
	Patch   string `flag:"patch" usage:"asm patch file to apply with the external assembler"`
	Output  string `flag:"o" usage:"output ROM file (default: overwrite input)"`
	EnvFile string `flag:"env" usage:"environment file with keep settings"`
	Asar    string `flag:"asar" usage:"external assembler binary" default:"asar"`
	Mapper  string `flag:"mapper" usage:"override mapper detection: lorom, sa1rom, fullsa1rom"`

	PC   string `flag:"pc" usage:"translate a hex cartridge offset to a SNES address"`
	SNES string `flag:"snes" usage:"translate a hex SNES address to a cartridge offset"`
	RATS string `flag:"rats" usage:"check the RATS tag before a hex SNES address"`
	Hook string `flag:"hook" usage:"write a JSL hook, format at:target:length in hex"`
}

// Flags contains behavior options.
type Flags struct {
	KeepInserter bool `flag:"keep" usage:"keep generated patch files for debugging"`
	KeepMeiMei   bool `flag:"keep-meimei" usage:"keep generated restore patch files for debugging"`
	Debug        bool `flag:"debug" usage:"enable debug logging"`
	Quiet        bool `flag:"q" usage:"quiet mode"`
}

// Program options of the patcher.
type Program struct {
	Parameters
	Flags

	// explicitly set flags, used to let command line flags override values
	// of the environment file
	KeepInserterSet bool
	KeepMeiMeiSet   bool
}
