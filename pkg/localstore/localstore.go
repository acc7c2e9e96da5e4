package localstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// ErrExists is returned when a document is already stored under the name.
var ErrExists = errors.New("localstore: document already exists")

// Store writes documents under a directory on local disk.
type Store struct {
	dir    string
	logger zerolog.Logger
}

// New creates the directory if needed and returns a store rooted there.
func New(dir string, logger zerolog.Logger) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: abs, logger: logger.With().Str("component", "localstore").Logger()}, nil
}

// Upload writes the file atomically and returns its absolute path. An
// existing file with the same name is never replaced.
func (s *Store) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	target := filepath.Join(s.dir, filepath.Base(name))

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.Link(tmp.Name(), target); err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrExists, filepath.Base(target))
		}
		return "", err
	}

	s.logger.Debug().Str("path", target).Msg("document written")
	return target, nil
}
