// Package watcher uploads audio files dropped into a directory for
// transcription.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Handler processes one new file.
type Handler func(ctx context.Context, path string) error

// Metrics counts watched files by result.
type Metrics struct {
	FilesTotal *prometheus.CounterVec
}

// NewMetrics registers the watcher collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		FilesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "scribe_watch_files_total",
				Help: "Files seen by the watcher by result (uploaded, failed, ignored)",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) inc(result string) {
	if m != nil {
		m.FilesTotal.WithLabelValues(result).Inc()
	}
}

// Options tunes a Watcher.
type Options struct {
	// Extensions are the accepted lower-case suffixes, with the dot.
	Extensions []string
	// MaxConcurrent bounds handlers running at once. Defaults to 2.
	MaxConcurrent int
	// Settle is how long a file's size must stay unchanged before it is
	// handled. Defaults to 500ms.
	Settle  time.Duration
	Metrics *Metrics
}

// Watcher monitors one directory for newly created files.
type Watcher struct {
	dir       string
	handler   Handler
	log       zerolog.Logger
	opts      Options
	exts      map[string]bool
	fs        *fsnotify.Watcher
	semaphore chan struct{}
	wg        sync.WaitGroup
}

// New starts watching dir. Call Run to process events and Close when done.
func New(dir string, handler Handler, log zerolog.Logger, opts Options) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 2
	}
	if opts.Settle <= 0 {
		opts.Settle = 500 * time.Millisecond
	}
	exts := make(map[string]bool, len(opts.Extensions))
	for _, e := range opts.Extensions {
		exts[strings.ToLower(e)] = true
	}

	return &Watcher{
		dir:       dir,
		handler:   handler,
		log:       log.With().Str("component", "watcher").Logger(),
		opts:      opts,
		exts:      exts,
		fs:        fw,
		semaphore: make(chan struct{}, opts.MaxConcurrent),
	}, nil
}

// Run handles create events until ctx is cancelled, then waits for running
// handlers to finish.
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Info().Str("dir", w.dir).Int("max_concurrent", w.opts.MaxConcurrent).Msg("watching for audio")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("waiting for uploads in progress")
			w.wg.Wait()
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				w.wg.Wait()
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !w.accepts(event.Name) {
				w.log.Debug().Str("path", event.Name).Msg("ignoring file")
				w.opts.Metrics.inc("ignored")
				continue
			}
			w.log.Info().Str("path", event.Name).Msg("new audio detected")

			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go func(path string) {
					defer w.wg.Done()
					defer func() { <-w.semaphore }()
					w.process(ctx, path)
				}(event.Name)
			case <-ctx.Done():
				w.wg.Wait()
				return ctx.Err()
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				w.wg.Wait()
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Error().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	if err := waitStable(ctx, path, w.opts.Settle); err != nil {
		w.log.Warn().Err(err).Str("path", path).Msg("file never settled")
		w.opts.Metrics.inc("failed")
		return
	}
	if err := w.handler(ctx, path); err != nil {
		w.log.Error().Err(err).Str("path", path).Msg("upload failed")
		w.opts.Metrics.inc("failed")
		return
	}
	w.opts.Metrics.inc("uploaded")
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) accepts(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if len(w.exts) == 0 {
		return true
	}
	return w.exts[strings.ToLower(filepath.Ext(path))]
}

// waitStable polls until the file's size is unchanged for settle.
func waitStable(ctx context.Context, path string, settle time.Duration) error {
	var last int64 = -1
	for {
		fi, err := os.Stat(path)
		if err != nil {
			return err
		}
		if fi.Size() == last {
			return nil
		}
		last = fi.Size()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(settle):
		}
	}
}
