// Package main implements a SNES ROM patching tool
package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/snespatch/internal/assembler"
	"github.com/retroenv/snespatch/internal/cli"
	"github.com/retroenv/snespatch/internal/config"
	"github.com/retroenv/snespatch/internal/fileprocessor"
	"github.com/retroenv/snespatch/internal/patch"
	"github.com/tebeka/atexit"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags(os.Args[0], os.Args[1:])
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		}
		logger.Error(err.Error())
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	policy, err := config.KeepPolicy(opts)
	if err != nil {
		logger.Error("Reading configuration failed", log.Err(err))
		os.Exit(1)
	}

	// generated patch files are cleaned up on every exit path from here on
	session := patch.NewSession(logger, policy, filepath.Dir(opts.Input))
	atexit.Register(session.Teardown)

	asm := assembler.NewExternal(logger, opts.Asar)
	if err := fileprocessor.ProcessFile(ctx, logger, opts, session, asm); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
		} else {
			logger.Error("Processing failed", log.Err(err))
		}
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
