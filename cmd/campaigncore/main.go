// Campaigncore runs a data-driven tactical RPG campaign from a directory of
// Lua definition files.
// Usage: campaigncore [--version] [--plain] [--script <file>] [--trace]
// [--config <file>] [--seed <n>] [--load <slot>] <campaign_directory>
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/nathoo/campaigncore/cli"
	"github.com/nathoo/campaigncore/config"
	"github.com/nathoo/campaigncore/engine"
	"github.com/nathoo/campaigncore/engine/campaign"
	"github.com/nathoo/campaigncore/engine/dice"
	"github.com/nathoo/campaigncore/engine/sim"
	"github.com/nathoo/campaigncore/loader"
	"github.com/nathoo/campaigncore/storage"
	"github.com/nathoo/campaigncore/storage/sqlite"
	"github.com/nathoo/campaigncore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: campaigncore [--version] [--plain] [--script <file>] [--trace] [--config <file>] [--seed <n>] [--load <slot>] <campaign_directory>"

func main() {
	plain := false
	trace := false
	seedSet := false
	var seed int64
	var campaignDir, scriptFile, configFile, resume string

	args := os.Args[1:]
	value := func(i *int, flag string) string {
		if *i+1 >= len(args) {
			fmt.Fprintf(os.Stderr, "%s requires a value\n", flag)
			os.Exit(1)
		}
		*i++
		return args[*i]
	}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("campaigncore %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--script":
			scriptFile = value(&i, "--script")
		case "--config":
			configFile = value(&i, "--config")
		case "--load":
			resume = value(&i, "--load")
		case "--seed":
			n, err := strconv.ParseInt(value(&i, "--seed"), 10, 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "--seed: %v\n", err)
				os.Exit(1)
			}
			seed, seedSet = n, true
		default:
			if campaignDir == "" {
				campaignDir = args[i]
			}
		}
	}

	if campaignDir == "" {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if seedSet {
		cfg.Seed = seed
	}
	if plain {
		cfg.Plain = true
	}

	fullScreen := scriptFile == "" && !cfg.Plain && isTerminal()

	logOut, closeLog, err := openLog(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()
	logger := log.New(logOut, "campaigncore: ", log.LstdFlags)

	// Load and compile the Lua campaign content. The TUI has not taken
	// over the terminal yet, so load warnings may still go to stderr.
	defs, err := loader.Load(campaignDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading campaign: %v\n", err)
		os.Exit(1)
	}

	d, err := newDice(cfg.Seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error seeding dice: %v\n", err)
		os.Exit(1)
	}
	engineLog := log.New(engineLogWriter(logOut, cfg.LogFile, fullScreen), "campaigncore: ", log.LstdFlags)
	c := campaign.New(defs.Manifest.ID, defs, sim.New(d, sim.DefaultRuleset(), engineLog))
	defer c.Close()
	if cfg.Difficulty != "" {
		c.Difficulty = cfg.Difficulty
	}
	eng := engine.New(c)

	store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening saves: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		runCLI(eng, store, f, true, trace, resume)
		return
	}

	// Use plain CLI if --plain or stdout is not a terminal.
	if !fullScreen {
		runCLI(eng, store, os.Stdin, false, trace, resume)
		return
	}

	if err := tui.Run(eng, store, trace, resume); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCLI(eng *engine.Engine, store storage.Store, in io.Reader, echo, trace bool, resume string) {
	c := cli.New(eng, store)
	c.In = in
	c.EchoInput = echo
	c.Session.Trace = trace
	c.Session.Resume = resume
	c.Run()
}

func newDice(seed int64) (*dice.Dice, error) {
	if seed != 0 {
		return dice.New(seed), nil
	}
	return dice.NewRandom()
}

func openStore(cfg config.Config) (storage.Store, error) {
	if cfg.Backend == config.BackendSQLite {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return sqlite.Open(ctx, cfg.DBPath)
	}
	return storage.OpenFile(cfg.SaveDir)
}

func openLog(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// engineLogWriter picks where engine diagnostics go once play starts. The
// full-screen TUI owns stderr's terminal, so without a log file its
// diagnostics are dropped; /trace still shows them through Result.Log.
func engineLogWriter(logOut io.Writer, logFile string, fullScreen bool) io.Writer {
	if fullScreen && logFile == "" {
		return io.Discard
	}
	return logOut
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
