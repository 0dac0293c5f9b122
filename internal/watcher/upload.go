package watcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jwulff/scribe/internal/api"
)

// Transcriber uploads audio for transcription.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, r io.Reader, opts api.TranscribeOptions) (string, error)
}

// UploadHandler returns a Handler that transcribes each file, titled after its
// name without extension.
func UploadHandler(t Transcriber, opts api.TranscribeOptions, log zerolog.Logger) Handler {
	return func(ctx context.Context, path string) error {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()

		o := opts
		if o.Title == "" {
			base := filepath.Base(path)
			o.Title = strings.TrimSuffix(base, filepath.Ext(base))
		}
		id, err := t.Transcribe(ctx, path, f, o)
		if err != nil {
			return fmt.Errorf("transcribe %s: %w", filepath.Base(path), err)
		}
		log.Info().Str("path", path).Str("session_id", id).Msg("transcribed")
		return nil
	}
}
