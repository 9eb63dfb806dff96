package catalogimport

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"freshmart/internal/model"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for feeds stored under a base directory.
type fileLoader struct {
	baseDir string
	logger  zerolog.Logger
}

// NewFileLoader creates a loader that reads feeds relative to baseDir.
func NewFileLoader(baseDir string, logger zerolog.Logger) Loader {
	return &fileLoader{
		baseDir: baseDir,
		logger:  logger.With().Str("component", "feed-loader").Logger(),
	}
}

// Load reads a gzipped feed. Sources must be relative paths that stay inside the base directory.
func (l *fileLoader) Load(ctx context.Context, source string) ([]model.ProductRequest, error) {
	if !filepath.IsLocal(source) {
		return nil, model.ValidationError("feed source %q must be a relative path", source)
	}
	path := filepath.Join(l.baseDir, source)

	l.logger.Info().Str("file", path).Msg("loading feed file")

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.ValidationError("feed %s not found", source)
		}
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open feed file")
		return nil, fmt.Errorf("failed to open feed file %s: %w", source, err)
	}
	defer file.Close()

	records, err := readFeed(ctx, file, source)
	if err != nil {
		l.logger.Warn().Err(err).Str("file", path).Msg("failed to read feed file")
		return nil, err
	}

	l.logger.Info().
		Str("file", path).
		Int("records", len(records)).
		Msg("feed file loaded")

	return records, nil
}
