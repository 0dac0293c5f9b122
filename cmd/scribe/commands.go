package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jwulff/scribe/internal/api"
	"github.com/jwulff/scribe/internal/library"
	"github.com/jwulff/scribe/internal/mcpserver"
	"github.com/jwulff/scribe/internal/transcript"
	"github.com/jwulff/scribe/internal/watcher"
)

func newTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the library as an indented tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			data, err := rt.client.Structure(cmd.Context())
			if err != nil {
				return fmt.Errorf("load library: %w", err)
			}
			return library.WriteText(cmd.OutOrStdout(), library.BuildTree(data))
		},
	}
}

func newMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <id> <folder|session|document> [target-folder]",
		Short: "Move an item into a folder, or to the top level",
		Long: `Move a folder, session or document. Without a target folder the item
moves to the top level of the library.

Examples:
  scribe mv 20240105-standup session 3f2c
  scribe mv 3f2c folder`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := library.ParseKind(args[1])
			if !ok {
				return fmt.Errorf("unknown kind %q (want folder, session or document)", args[1])
			}
			target := library.RootSentinel
			if len(args) == 3 {
				target = args[2]
			}
			req, err := library.NewMoveRequest(args[0], kind, target)
			if err != nil {
				return err
			}

			rt, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.client.Move(cmd.Context(), req.ItemID, req.Kind, req.TargetFolderID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s %s to %s\n", req.Kind, req.ItemID, req.TargetFolderID)
			return nil
		},
	}
}

func newExportCommand() *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Write a session transcript as text or markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := transcript.ParseFormat(format)
			if err != nil {
				return err
			}
			rt, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			detail, err := rt.client.Session(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load session: %w", err)
			}
			text, err := transcript.Render(detail.Segments, f)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
				return err
			}
			if err := os.WriteFile(out, []byte(text+"\n"), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d segments to %s\n", len(detail.Segments), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "txt", "output format: txt or md")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newAskCommand() *cobra.Command {
	var sessions []string
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about one or more sessions, or the whole library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			answer, err := rt.client.Chat(cmd.Context(), api.ChatRequest{
				SessionIDs: sessions,
				Question:   strings.Join(args, " "),
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), answer)
			return err
		},
	}
	cmd.Flags().StringSliceVarP(&sessions, "session", "s", nil, "session id to ask about (repeatable)")
	return cmd
}

func newWatchCommand() *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Transcribe audio files as they appear in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := prometheus.NewRegistry()
			rt, err := setup(cmd, true, api.WithMetrics(api.NewMetrics(reg)))
			if err != nil {
				return err
			}
			defer rt.Close()

			w, err := watcher.New(args[0],
				watcher.UploadHandler(rt.client, transcribeDefaults(rt.cfg), rt.log),
				rt.log,
				watcher.Options{
					Extensions:    rt.cfg.Watch.Extensions,
					MaxConcurrent: rt.cfg.Watch.Concurrency,
					Metrics:       watcher.NewMetrics(reg),
				})
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, cancel := signalContext()
			defer cancel()

			if metricsAddr != "" {
				srv := serveMetrics(metricsAddr, reg, rt)
				defer func() {
					shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
					defer done()
					srv.Shutdown(shutdownCtx)
				}()
			}

			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	return cmd
}

func serveMetrics(addr string, reg *prometheus.Registry, rt *deps) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		rt.log.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	return srv
}

func newMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the library to MCP clients over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol, so logs go to stderr.
			rt, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer rt.Close()
			return mcpserver.Serve(mcpserver.New(rt.client, version, rt.log))
		},
	}
}
