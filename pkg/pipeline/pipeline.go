// Package pipeline drives many tokens through the artwork renderer and the
// chain client.
//
// # Architecture
//
// A batch is a list of token ids processed by a bounded worker pool:
//
//  1. Generate: read each SVG from a [Source], render it with
//     [artwork.Renderer], and hand every output to a [Sink]
//  2. Pull: fetch each token's metadata from the chain and write the SVG and
//     the image-free metadata JSON to two sinks
//
// Failures are isolated per token. A failed token is logged and recorded in
// the [Report]; its siblings keep running. When any token failed, the batch
// returns the report together with [ErrBatchFailed].
//
// # Usage
//
//	runner := pipeline.NewRunner(artwork.NewRenderer(), logger)
//	report, err := runner.Generate(ctx,
//	    pipeline.DirSource{Dir: "svg"},
//	    pipeline.DirSink{Dir: pipeline.OutputDir(480, false)},
//	    pipeline.GenerateOptions{ImageSize: 480},
//	)
package pipeline

import (
	"fmt"

	"github.com/edgepunks/edgepunks/pkg/artwork"
	"github.com/edgepunks/edgepunks/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultConcurrency is the number of tokens in flight at once.
	DefaultConcurrency = 10

	// DefaultMaxSupply is the EdgePunks collection size. Token ids run from
	// 0 to DefaultMaxSupply-1.
	DefaultMaxSupply = 888

	// DefaultImageSize renders procedural tokens at their native width.
	DefaultImageSize = artwork.DefaultCanonicalWidth
)

// =============================================================================
// Options - Batch Configuration
// =============================================================================

// GenerateOptions configures [Runner.Generate].
type GenerateOptions struct {
	// TokenIDs to render. Empty means every id below MaxSupply.
	TokenIDs []string

	// MaxSupply bounds the default id range.
	MaxSupply int

	// ImageSize is the output width in pixels.
	ImageSize int

	// Transparent omits the background layer and keeps alpha.
	Transparent bool

	// Concurrency caps the number of tokens rendered at once.
	Concurrency int

	// Progress, when set, is called once per finished token from the
	// worker goroutines.
	Progress func(Event)
}

// ValidateAndSetDefaults validates options and fills in defaults.
func (o *GenerateOptions) ValidateAndSetDefaults() error {
	if o.ImageSize == 0 {
		o.ImageSize = DefaultImageSize
	}
	if err := errors.ValidateImageSize(o.ImageSize); err != nil {
		return err
	}
	ids, err := resolveIDs(o.TokenIDs, &o.MaxSupply)
	if err != nil {
		return err
	}
	o.TokenIDs = ids
	o.Concurrency = concurrency(o.Concurrency)
	return nil
}

// PullOptions configures [Runner.Pull].
type PullOptions struct {
	TokenIDs    []string
	MaxSupply   int
	Concurrency int
	Progress    func(Event)
}

// ValidateAndSetDefaults validates options and fills in defaults.
func (o *PullOptions) ValidateAndSetDefaults() error {
	ids, err := resolveIDs(o.TokenIDs, &o.MaxSupply)
	if err != nil {
		return err
	}
	o.TokenIDs = ids
	o.Concurrency = concurrency(o.Concurrency)
	return nil
}

func resolveIDs(ids []string, supply *int) ([]string, error) {
	if *supply <= 0 {
		*supply = DefaultMaxSupply
	}
	if len(ids) == 0 {
		return errors.AllTokenIDs(*supply), nil
	}
	return errors.ParseTokenIDs(ids)
}

func concurrency(n int) int {
	if n <= 0 {
		return DefaultConcurrency
	}
	return n
}

// OutputDir names the directory for one render configuration, for example
// "480x480" or "24x24-transparent".
func OutputDir(size int, transparent bool) string {
	dir := fmt.Sprintf("%dx%d", size, size)
	if transparent {
		dir += "-transparent"
	}
	return dir
}
