package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/maksimkurb/apimanctl/src/internal/commands"
	"github.com/maksimkurb/apimanctl/src/internal/config"
	"github.com/maksimkurb/apimanctl/src/internal/log"
)

var (
	version = "dev"
	commit  = "n/a"
	date    = "n/a"
)

func main() {
	appCtx := &commands.AppContext{}

	flag.StringVar(&appCtx.ConfigPath, "config", "", "Path to settings file (TOML)")
	flag.BoolVar(&appCtx.Verbose, "verbose", false, "Enable debug logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "apiman declarative configuration tool\n")
		fmt.Fprintf(os.Stderr, "Version: %s (Commit: %s, Date: %s)\n\n", version, commit, date)
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <command> [command options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  apply                   Create or update everything the declaration describes\n")
		fmt.Fprintf(os.Stderr, "  validate                Load and validate a declaration without contacting the server\n")
		fmt.Fprintf(os.Stderr, "  render                  Print the resolved declaration\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	// stdout carries the report and rendered documents
	log.SetForceStdErr(true)

	settings, err := config.LoadSettings(appCtx.ConfigPath)
	if err != nil {
		log.Errorf("Failed to load settings: %v", err)
		os.Exit(commands.ExitCode(err))
	}
	appCtx.Settings = settings

	if appCtx.Verbose || settings.Log.Verbose {
		log.SetVerbose(true)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	appCtx.Context = ctx

	cmds := []commands.Runner{
		commands.CreateApplyCommand(),
		commands.CreateValidateCommand(),
		commands.CreateRenderCommand(),
	}

	args := flag.Args()

	if len(args) < 1 {
		flag.Usage()
		os.Exit(commands.ExitUsage)
	}

	subcommand := args[0]
	for _, cmd := range cmds {
		if cmd.Name() == subcommand {
			if err := cmd.Init(args[1:], appCtx); err != nil {
				if errors.Is(err, flag.ErrHelp) {
					os.Exit(commands.ExitOK)
				}
				log.Errorf("Failed to initialize command: %v", err)
				os.Exit(commands.ExitCode(err))
			}

			if err := cmd.Run(); err != nil {
				log.Errorf("Failed to run command: %v", err)
				stop()
				os.Exit(commands.ExitCode(err))
			}

			os.Exit(commands.ExitOK)
		}
	}

	log.Errorf("Unknown subcommand: %s", subcommand)
	os.Exit(commands.ExitUsage)
}
