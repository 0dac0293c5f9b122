// Command scribe is a terminal client for a meeting transcription backend.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jwulff/scribe/internal/api"
	"github.com/jwulff/scribe/internal/app"
	"github.com/jwulff/scribe/internal/config"
	"github.com/jwulff/scribe/internal/db"
	"github.com/jwulff/scribe/internal/logging"
)

// version is set at build time.
var version = "dev"

// Global flags.
var (
	cfgFile    string
	serverAddr string
	timeout    time.Duration
	debug      bool
)

// deps holds what every command shares once configuration is resolved.
type deps struct {
	cfg     *config.Config
	log     zerolog.Logger
	client  *api.Client
	logFile io.Closer
}

func (r *deps) Close() {
	if r.logFile != nil {
		r.logFile.Close()
	}
}

// setup loads configuration, applies flags, and builds the logger and client.
// Logs go to the configured file unless toStderr is set.
func setup(cmd *cobra.Command, toStderr bool, clientOpts ...api.Option) (*deps, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("server") {
		cfg.ServerURL = serverAddr
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = timeout
	}
	if debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	path := cfg.Log.File
	if toStderr {
		path = "-"
	}
	out, err := logging.OpenFile(path)
	if err != nil {
		return nil, err
	}
	log := logging.New(logging.Config{Level: cfg.Log.Level, JSON: cfg.Log.JSON, Output: out})

	opts := append([]api.Option{
		api.WithTimeout(cfg.Timeout),
		api.WithLongTimeout(cfg.LongTimeout),
		api.WithLogger(log),
	}, clientOpts...)

	return &deps{
		cfg:     cfg,
		log:     log,
		client:  api.New(cfg.ServerURL, opts...),
		logFile: out,
	}, nil
}

// transcribeDefaults maps configured defaults to upload options.
func transcribeDefaults(cfg *config.Config) api.TranscribeOptions {
	return api.TranscribeOptions{
		Language:          cfg.Transcribe.Language,
		EnableDiarization: cfg.Transcribe.Diarization,
		HFToken:           cfg.Transcribe.HFToken,
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

var rootCmd = &cobra.Command{
	Use:   "scribe",
	Short: "Browse, play and chat with meeting transcripts",
	Long: `scribe is a terminal client for a meeting transcription backend.

Run without arguments to open the interactive library. The subcommands
work without the TUI, for scripts and assistants.

Examples:
  scribe --server http://studio.local:7860
  scribe tree
  scribe export 20240105-standup --format md --out standup.md
  scribe ask "What did we decide about the launch?"`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/scribe/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", config.DefaultServerURL, "backend URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", config.DefaultTimeout, "timeout for ordinary requests")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newTreeCommand())
	rootCmd.AddCommand(newMoveCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newAskCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newMCPCommand())
}

func runTUI(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	opts := app.Options{
		Backend:    rt.client,
		BackendURL: rt.client.BaseURL(),
		Logger:     rt.log,
		Transcribe: transcribeDefaults(rt.cfg),
	}
	if rt.cfg.CachePath != "" {
		store, err := db.Open(rt.cfg.CachePath)
		if err != nil {
			rt.log.Warn().Err(err).Str("path", rt.cfg.CachePath).Msg("cache unavailable, continuing without it")
		} else {
			defer store.Close()
			opts.Cache = store
		}
	}

	ctx, cancel := signalContext()
	defer cancel()
	opts.Context = ctx

	rt.log.Info().Str("server", rt.cfg.ServerURL).Str("version", version).Msg("starting tui")
	p := tea.NewProgram(app.New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", api.Detail(err))
		os.Exit(1)
	}
}
