package artwork

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/edgepunks/edgepunks/pkg/errors"
)

// OverrideSource supplies manually curated transparent images for 1-of-1
// tokens, keyed by token id.
type OverrideSource interface {
	TransparentAssets(ctx context.Context, tokenID string) ([][]byte, error)
}

// DirOverrides reads overrides from a directory of 1px:1px assets:
// "<id>.png" is required and "<id>.gif" is an optional animated companion.
type DirOverrides struct {
	Dir string
}

// TransparentAssets returns the PNG asset followed by the GIF asset, if any.
func (d DirOverrides) TransparentAssets(ctx context.Context, tokenID string) ([][]byte, error) {
	if err := errors.ValidateTokenID(tokenID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	still, err := os.ReadFile(filepath.Join(d.Dir, tokenID+".png"))
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "no transparent asset for token %s", tokenID)
	}
	if err != nil {
		return nil, err
	}
	assets := [][]byte{still}

	anim, err := os.ReadFile(filepath.Join(d.Dir, tokenID+".gif"))
	switch {
	case err == nil:
		assets = append(assets, anim)
	case !stderrors.Is(err, fs.ErrNotExist):
		return nil, err
	}
	return assets, nil
}

var _ OverrideSource = DirOverrides{}
