// Package config handles application configuration and setup
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/snespatch/internal/options"
	"github.com/retroenv/snespatch/internal/patch"
)

// environment keys controlling the patch file keep policy.
const (
	EnvKeepInserter = "SNESPATCH_KEEP_INSERTER"
	EnvKeepMeiMei   = "SNESPATCH_KEEP_MEIMEI"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// KeepPolicy returns the keep policy for generated patch files. Values are
// read from the process environment, overridden by the environment file if
// one is given, overridden by explicitly passed command line flags.
func KeepPolicy(opts options.Program) (patch.KeepPolicy, error) {
	values := map[string]string{
		EnvKeepInserter: os.Getenv(EnvKeepInserter),
		EnvKeepMeiMei:   os.Getenv(EnvKeepMeiMei),
	}

	if opts.EnvFile != "" {
		env, err := godotenv.Read(opts.EnvFile)
		if err != nil {
			return patch.KeepPolicy{}, fmt.Errorf("reading environment file '%s': %w", opts.EnvFile, err)
		}
		for key := range values {
			if value, ok := env[key]; ok {
				values[key] = value
			}
		}
	}

	var policy patch.KeepPolicy
	var err error
	if policy.Inserter, err = parseBool(EnvKeepInserter, values[EnvKeepInserter]); err != nil {
		return patch.KeepPolicy{}, err
	}
	if policy.MeiMei, err = parseBool(EnvKeepMeiMei, values[EnvKeepMeiMei]); err != nil {
		return patch.KeepPolicy{}, err
	}

	if opts.KeepInserterSet {
		policy.Inserter = opts.KeepInserter
	}
	if opts.KeepMeiMeiSet {
		policy.MeiMei = opts.KeepMeiMei
	}
	return policy, nil
}

func parseBool(key, value string) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid value '%s' for %s: %w", value, key, err)
	}
	return b, nil
}
