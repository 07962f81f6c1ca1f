package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/securedrop/internal/buildinfo"
	"github.com/dmitrijs2005/securedrop/internal/cli"
	"github.com/dmitrijs2005/securedrop/internal/common"
	"github.com/dmitrijs2005/securedrop/internal/config"
	"github.com/dmitrijs2005/securedrop/internal/logging"
)

const usage = `Usage: securedrop [flags] <client-id>

Flags:
  -k <path>     encryption key file (default <data-dir>/encryption.key)
  -d <dir>      data directory (default .)
  -b <backend>  record store backend: json or sqlite (default json)
  -c <file>     JSON configuration file
  -strict       fail on corrupt record stores instead of treating them as empty`

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConfig(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage)
		return 1
	}

	log := logging.New(os.Stderr, cfg.LogLevel)
	if cfg.LogLevel == "debug" {
		buildinfo.PrintBuildData(os.Stderr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, os.Stdin, os.Stdout, log)
	if err != nil {
		log.Error(ctx, "startup failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		if !errors.Is(err, common.ErrUserNotFound) && !errors.Is(err, common.ErrInvalidCredentials) {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}
