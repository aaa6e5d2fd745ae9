// pks - Process Key Sender
// Sends keystrokes to a target process on configurable timers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pks/internal/config"
	"pks/internal/emit"
	"pks/internal/hotkey"
	"pks/internal/keys"
	"pks/internal/proc"
	"pks/internal/report"
	"pks/internal/session"
)

var (
	version = "0.3.0"

	configPath  = flag.String("config", "", "Path to JSON config file")
	saveConfig  = flag.String("save-config", "", "Write the merged config to a file and exit")
	processName = flag.String("process", "", "Target process name (substring match)")
	key         = flag.String("key", "", "Single key to send, e.g. 'r' or 'ctrl+shift+f5'")
	interval    = flag.String("interval", "", "Interval for -key, e.g. '500ms', '2s' or bare ms")
	sequence    = flag.String("sequence", "", "Key sequence 'key[:interval],key[:interval],...'")
	independent = flag.String("independent-keys", "", "Independent timers 'key[:interval];key[:interval];...'")
	maxRetries  = flag.Int("max-retries", 0, "Max process location attempts")
	pauseHotkey = flag.String("pause-hotkey", "", "Global pause/resume hotkey (empty string disables)")
	loopSeq     = flag.Bool("loop-sequence", true, "Loop the sequence after the last step")
	repeatCount = flag.Int("repeat-count", 0, "Stop after N full passes (0 = unlimited)")
	verbose     = flag.Bool("verbose", false, "Per-key output and debug logging")
	showVer     = flag.Bool("version", false, "Show version")
)

func main() {
	// Optional .env for PKS_CONFIG / PKS_VERBOSE; absence is not an error.
	_ = godotenv.Load()
	flag.Parse()

	if *showVer {
		fmt.Printf("pks version %s\n", version)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fatal(err)
	}

	initLogging(cfg.Verbose)

	if *saveConfig != "" {
		if err := cfg.SaveFile(*saveConfig); err != nil {
			fatal(fmt.Errorf("save config: %w", err))
		}
		fmt.Printf("Config written to %s\n", *saveConfig)
		return
	}

	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	run(cfg)
}

// loadConfig merges defaults, the optional config file and explicit CLI
// flags, in that order. PKS_CONFIG and PKS_VERBOSE fill in when the
// corresponding flag is absent.
func loadConfig() (*config.Config, error) {
	path := *configPath
	if path == "" {
		path = os.Getenv("PKS_CONFIG")
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if os.Getenv("PKS_VERBOSE") != "" {
		cfg.Verbose = true
	}

	o := config.Overrides{}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "process":
			o.Process = processName
		case "key":
			o.Key = key
		case "interval":
			o.Interval = interval
		case "sequence":
			o.Sequence = sequence
		case "independent-keys":
			o.IndependentKeys = independent
		case "max-retries":
			o.MaxRetries = maxRetries
		case "pause-hotkey":
			o.PauseHotkey = pauseHotkey
		case "loop-sequence":
			o.LoopSequence = loopSeq
		case "repeat-count":
			o.RepeatCount = repeatCount
		case "verbose":
			o.Verbose = verbose
		}
	})
	if err := cfg.Apply(o); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func run(cfg *config.Config) {
	console := report.NewConsole(os.Stdout, cfg.Verbose)
	console.Banner(version)
	console.Summary(cfg)

	sess, err := session.New(cfg, proc.New(), emit.New(), console)
	if err != nil {
		fatal(err)
	}

	if cfg.PauseHotkey != "" {
		combo, err := keys.ParseCombo(cfg.PauseHotkey)
		if err != nil {
			fatal(err)
		}
		hk := hotkey.NewManager()
		hk.Bind(combo, sess.TogglePause)
		if err := hk.Start(); err != nil {
			slog.Warn("pause hotkey unavailable", "error", err)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutting down")
		sess.Stop()
	}()

	if err := sess.Run(context.Background()); err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
