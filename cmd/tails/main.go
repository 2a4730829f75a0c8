package main

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/hpungsan/tails/internal/config"
	"github.com/hpungsan/tails/internal/log"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   _        _ _
  | |_ __ _(_) |___
  |  _/ _' | | (_-<
   \__\__,_|_|_/__/

  Clipboard history with a paste ring

  Usage: tails <command> [options]
         tails --help

  MCP server mode requires piped input.`)
}

func main() {
	os.Exit(run())
}

func run() int {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return 0
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		return 1
	}
	baseDir := filepath.Join(homeDir, ".tails")

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine working directory: %v\n", err)
		return 1
	}

	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		return 1
	}
	if !log.SetLevel(cfg.LogLevel) {
		log.Warn("unknown log_level %q", cfg.LogLevel)
	}

	env := newAppEnv(baseDir, cwd, cfg)
	defer env.close()

	app := newCLIApp(env)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
