package artwork

import (
	"context"
	"slices"

	"github.com/edgepunks/edgepunks/pkg/errors"
	"github.com/edgepunks/edgepunks/pkg/raster"
)

// Pipeline is the raster toolkit the compositor sequences.
// [raster.Codec] is the production implementation.
type Pipeline interface {
	Decode(buf []byte) (*raster.Image, error)
	Composite(base *raster.Image, overlays ...*raster.Image) (*raster.Image, error)
	Resize(img *raster.Image, width int) *raster.Image
	Flatten(img *raster.Image) *raster.Image
	Encode(img *raster.Image, format string) ([]byte, string, error)
}

// Request is the caller's output configuration for one token.
type Request struct {
	// TokenID identifies the token for override lookups and error messages.
	TokenID string

	// ImageSize is the output width in pixels.
	ImageSize int

	// Transparent keeps the alpha channel and omits the background layer.
	Transparent bool
}

// Output is one encoded image.
type Output struct {
	Format string // "png", "gif", ...
	Data   []byte
}

// Compositor renders classified layer stacks.
type Compositor struct {
	// Pipeline performs decode, composite, resize and encode.
	Pipeline Pipeline

	// CanonicalWidth is the native width of procedural composites.
	CanonicalWidth int

	// Overrides supplies curated transparent assets for 1-of-1s.
	// When nil, transparent 1-of-1 requests are rejected.
	Overrides OverrideSource
}

// NewCompositor returns a Compositor using [raster.Codec] and no overrides.
func NewCompositor() *Compositor {
	return &Compositor{Pipeline: raster.Codec{}, CanonicalWidth: DefaultCanonicalWidth}
}

// Render produces the final images for layers as classified by class.
// It returns exactly one output except when an override source supplies
// several transparent assets for a 1-of-1.
func (c *Compositor) Render(ctx context.Context, layers [][]byte, class Classification, req Request) ([]Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := errors.ValidateImageSize(req.ImageSize); err != nil {
		return nil, err
	}
	if len(layers) == 0 {
		return nil, errors.New(errors.ErrCodePreconditionViolation, "no layers to render")
	}

	switch cl := class.(type) {
	case Unique:
		return c.renderUnique(ctx, layers[0], cl.Top, req)
	case Procedural:
		return c.renderProcedural(layers, req)
	default:
		return nil, errors.New(errors.ErrCodeInternal, "unknown classification %T", class)
	}
}

func (c *Compositor) renderUnique(ctx context.Context, top []byte, meta Meta, req Request) ([]Output, error) {
	if req.Transparent {
		return c.renderOverrides(ctx, meta, req)
	}

	p := c.pipeline()
	img, err := p.Decode(top)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "token %s: top layer", req.TokenID)
	}

	format := raster.FormatGIF
	if !img.Animated() {
		img = p.Flatten(img)
		format = raster.FormatPNG
	}
	if req.ImageSize != meta.Width {
		img = p.Resize(img, req.ImageSize)
	}

	out, err := encode(p, img, format)
	if err != nil {
		return nil, err
	}
	return []Output{out}, nil
}

// renderOverrides scales the curated transparent assets of a 1-of-1. The
// assets are drawn at one source pixel per output pixel, so every size is
// derived from them with nearest-neighbor scaling. The animated companion is
// only emitted when the on-chain artwork is itself a GIF.
func (c *Compositor) renderOverrides(ctx context.Context, meta Meta, req Request) ([]Output, error) {
	if c.Overrides == nil {
		return nil, errors.New(errors.ErrCodeUnsupportedTransparentUnique,
			"token %s is a 1-of-1 without a background layer; no transparent override source configured", req.TokenID)
	}

	assets, err := c.Overrides.TransparentAssets(ctx, req.TokenID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupportedTransparentUnique, err, "token %s: transparent override", req.TokenID)
	}
	if len(assets) == 0 {
		return nil, errors.New(errors.ErrCodeUnsupportedTransparentUnique, "token %s: no transparent override assets", req.TokenID)
	}
	if meta.Format != raster.FormatGIF {
		assets = assets[:1]
	}

	p := c.pipeline()
	outputs := make([]Output, 0, len(assets))
	for i, asset := range assets {
		img, err := p.Decode(asset)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "token %s: override asset %d", req.TokenID, i)
		}
		out, err := encode(p, p.Resize(img, req.ImageSize), img.Format)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// renderProcedural composites the stack from the background up. Resizing a
// pipeline that still has pending overlays would scale only the base, so the
// composite is finished before the resize is applied.
func (c *Compositor) renderProcedural(layers [][]byte, req Request) ([]Output, error) {
	work := layers
	if req.Transparent {
		work = layers[:len(layers)-1]
	}
	if len(work) == 0 {
		return nil, errors.New(errors.ErrCodePreconditionViolation,
			"token %s: transparent composite needs a layer above the background", req.TokenID)
	}

	p := c.pipeline()
	decoded := make([]*raster.Image, len(work))
	for i, buf := range work {
		img, err := p.Decode(buf)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "token %s: layer %d", req.TokenID, i)
		}
		decoded[i] = img
	}

	last := len(decoded) - 1
	base := decoded[last]
	overlays := slices.Clone(decoded[:last])
	slices.Reverse(overlays)

	img, err := p.Composite(base, overlays...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "token %s: composite", req.TokenID)
	}
	if req.ImageSize != c.canonicalWidth() {
		img = p.Resize(img, req.ImageSize)
	}
	if !req.Transparent {
		img = p.Flatten(img)
	}

	out, err := encode(p, img, base.Format)
	if err != nil {
		return nil, err
	}
	return []Output{out}, nil
}

func encode(p Pipeline, img *raster.Image, format string) (Output, error) {
	data, written, err := p.Encode(img, format)
	if err != nil {
		return Output{}, errors.Wrap(errors.ErrCodeInternal, err, "encode %s", format)
	}
	return Output{Format: written, Data: data}, nil
}

func (c *Compositor) pipeline() Pipeline {
	if c.Pipeline == nil {
		return raster.Codec{}
	}
	return c.Pipeline
}

func (c *Compositor) canonicalWidth() int {
	if c.CanonicalWidth <= 0 {
		return DefaultCanonicalWidth
	}
	return c.CanonicalWidth
}
