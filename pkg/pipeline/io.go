package pipeline

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/edgepunks/edgepunks/pkg/artwork"
	"github.com/edgepunks/edgepunks/pkg/errors"
)

// Source supplies the SVG document of a token.
type Source interface {
	Document(ctx context.Context, tokenID string) (string, error)
}

// Sink persists one rendered output of a token.
type Sink interface {
	Write(ctx context.Context, tokenID string, out artwork.Output) error
}

// DirSource reads "<Dir>/<id>.svg".
type DirSource struct {
	Dir string
}

// Document implements [Source].
func (s DirSource) Document(_ context.Context, tokenID string) (string, error) {
	if err := errors.ValidateTokenID(tokenID); err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, tokenID+".svg"))
	if stderrors.Is(err, fs.ErrNotExist) {
		return "", errors.Wrap(errors.ErrCodeNotFound, err, "no SVG for token %s in %s", tokenID, s.Dir)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DirSink writes "<Dir>/<id>.<format>", creating Dir on first use. Each file
// is replaced atomically.
type DirSink struct {
	Dir string
}

// Path returns the file an output of the given format is written to.
func (s DirSink) Path(tokenID, format string) string {
	return filepath.Join(s.Dir, tokenID+"."+format)
}

// Write implements [Sink].
func (s DirSink) Write(_ context.Context, tokenID string, out artwork.Output) error {
	if err := errors.ValidateTokenID(tokenID); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}

	// Write through a temporary file so an interrupted batch never leaves a
	// truncated image behind.
	tmp, err := os.CreateTemp(s.Dir, ".write-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(out.Data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.Path(tokenID, out.Format)); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

var (
	_ Source = DirSource{}
	_ Sink   = DirSink{}
)
