// Command stenod turns keyboard chords into steno strokes.
//
// Key events arrive one per line as "down <key>" or "up <key>", from stdin
// or a named pipe filled by a platform key-capture helper. Each finished
// stroke is recorded on the tape and published on the bus together with the
// rolling outline window and its dictionary key.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"stenod/internal/bus"
	"stenod/internal/config"
	"stenod/internal/daemon"
	"stenod/internal/logging"
	"stenod/internal/tape"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type options struct {
	configPath string
	inputPath  string
	sessionID  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "stenod: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "stenod",
		Short: "stenod - steno chord daemon",
		Long: `stenod reads key press and release events, assembles them into steno
strokes, records each stroke on the tape and publishes it on Redis.

Input is one event per line:
  down a
  up a`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: platform data dir)")
	cmd.Flags().StringVarP(&opts.inputPath, "input", "i", "", "Read key events from this file or pipe instead of stdin")
	cmd.Flags().StringVar(&opts.sessionID, "session", "", "Session ID to record under (default: random UUID)")
	return cmd
}

func run(parent context.Context, opts options, stdin io.Reader) error {
	if parent == nil {
		parent = context.Background()
	}

	loader := config.NewLoader(opts.configPath)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	defer loader.Close()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logCfg, err := cfg.Logging.LoggerConfig("stenod")
	if err != nil {
		return err
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Close()
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionID := opts.sessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	ctx = logging.ContextWithSessionID(ctx, sessionID)

	mgr := daemon.NewManager(config.StenodDir())
	if mgr.IsRunning() {
		pid, _ := mgr.ReadPID()
		return fmt.Errorf("stenod is already running (pid %d)", pid)
	}
	if err := mgr.WritePID(); err != nil {
		return err
	}
	defer mgr.Cleanup()

	dopts := daemon.Options{
		SessionID:      sessionID,
		Window:         cfg.Chord.OutlineWindow,
		Logger:         logger,
		PublishTimeout: time.Duration(cfg.Bus.TimeoutMs) * time.Millisecond,
	}
	state := &daemon.State{
		PID:       os.Getpid(),
		StartedAt: time.Now(),
		Version:   version,
		SessionID: sessionID,
	}

	if cfg.Tape.Enabled {
		store, err := tape.Open(cfg.Tape.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		dopts.Tape = store
		state.TapePath = cfg.Tape.Path
	}

	if cfg.Bus.Enabled {
		client, err := bus.NewClient(&redis.Options{
			Addr:     cfg.Bus.Addr,
			Password: cfg.Bus.Password,
			DB:       cfg.Bus.DB,
		}, cfg.Bus.Channel)
		if err != nil {
			return err
		}
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = client.Ping(pingCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("connect to redis at %s: %w", cfg.Bus.Addr, err)
		}
		dopts.Bus = client
		state.Channel = client.Channel()
	}

	if err := mgr.WriteState(state); err != nil {
		return err
	}

	d, err := daemon.New(dopts)
	if err != nil {
		return err
	}

	if err := loader.Watch(); err != nil {
		logger.Warn("config hot-reload disabled", "error", err)
	} else {
		loader.OnChange(func(old, new *config.Config) {
			logger.Info("configuration changed on disk; restart stenod to apply",
				"path", loader.Path(),
				"outline_window", new.Chord.OutlineWindow,
			)
		})
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case err := <-loader.Errors():
					logger.Warn("config reload failed", "error", err)
				}
			}
		}()
	}

	input := stdin
	if opts.inputPath != "" {
		f, err := os.Open(opts.inputPath)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		input = f
	}

	logging.InfoContext(ctx, "stenod started",
		"tape", cfg.Tape.Enabled,
		"bus", cfg.Bus.Enabled,
		"outline_window", cfg.Chord.OutlineWindow,
		"log_level", logging.LevelString(logCfg.Level),
	)
	if err := d.Run(ctx, input); err != nil {
		logging.ErrorContext(ctx, "stroke pipeline failed", "error", err)
		return err
	}
	return nil
}
