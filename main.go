// Package main provides the entry point for the roilab analysis shell.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"roilab/internal/app"
	"roilab/internal/config"
	"roilab/internal/plugins/roistats"
	"roilab/internal/plugins/spotdetect"
	"roilab/internal/sequence"
	"roilab/internal/version"
)

const appTitle = "roilab"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		headless  bool
		noCache   bool
		noNetwork bool
		noSplash  bool
		noHLExit  bool
		execute   string
		cfgPath   string
	)

	// Long and short spellings bind the same variable.
	flag.BoolVar(&headless, "headless", false, "run without a user interface")
	flag.BoolVar(&headless, "hl", false, "shorthand for -headless")
	flag.BoolVar(&noCache, "nocache", false, "disable the descriptor result cache")
	flag.BoolVar(&noCache, "nc", false, "shorthand for -nocache")
	flag.BoolVar(&noNetwork, "nonetwork", false, "skip anything requiring network access")
	flag.BoolVar(&noNetwork, "nnt", false, "shorthand for -nonetwork")
	flag.BoolVar(&noSplash, "nosplash", false, "suppress the startup banner")
	flag.BoolVar(&noSplash, "ns", false, "shorthand for -nosplash")
	flag.BoolVar(&noHLExit, "noHLexit", false, "stay alive after headless execution")
	flag.BoolVar(&noHLExit, "nhle", false, "shorthand for -noHLexit")
	flag.StringVar(&execute, "execute", "", "plugin to execute, by class or simple name")
	flag.StringVar(&execute, "x", "", "shorthand for -execute")
	flag.StringVar(&cfgPath, "config", "", "configuration file (.yaml/.json/.toml)")
	flag.Parse()

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			return 1
		}
	}
	if noCache {
		cfg.Cache = false
	}
	if noNetwork {
		cfg.Offline = true
	}

	logger := newLogger(cfg.LogLevel)
	if !noSplash {
		banner(logger)
	}

	state := app.NewState(cfg, logger)
	defer state.Close()
	if err := roistats.Register(state.Plugins()); err != nil {
		logger.Error().Err(err).Msg("registering roistats")
		return 1
	}
	if err := spotdetect.Register(state.Plugins()); err != nil {
		logger.Error().Err(err).Msg("registering spotdetect")
		return 1
	}

	// The first positional with a known image extension is the input path;
	// everything else is handed to the plugin.
	imagePath, pluginArgs := splitPositionals(flag.Args())

	if !headless {
		// The interactive surface is not part of this build; fall through
		// to the headless pipeline so scripted use keeps working.
		logger.Warn().Msg("no interactive mode in this build, running headless")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.RunOptions{
		ImagePath:  imagePath,
		Execute:    execute,
		PluginArgs: pluginArgs,
		StayAlive:  noHLExit,
	}
	if err := state.Run(ctx, opts); err != nil {
		logger.Error().Err(err).Msg("session failed")
		return 1
	}
	return 0
}

// splitPositionals extracts the input image path from the positional
// arguments, leaving the rest as plugin arguments.
func splitPositionals(args []string) (string, []string) {
	for i, arg := range args {
		if sequence.IsImagePath(arg) {
			rest := make([]string, 0, len(args)-1)
			rest = append(rest, args[:i]...)
			rest = append(rest, args[i+1:]...)
			return arg, rest
		}
	}
	return "", args
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

func banner(logger zerolog.Logger) {
	logger.Info().
		Str("version", version.Version).
		Str("commit", version.GitCommit).
		Msgf("%s starting", appTitle)
}
