package artwork

import (
	"bytes"

	"github.com/edgepunks/edgepunks/pkg/errors"
	"github.com/edgepunks/edgepunks/pkg/raster"
)

// DefaultCanonicalWidth is the width of every procedural trait layer in the
// EdgePunks collection.
const DefaultCanonicalWidth = 192

// MinClassifiableLayers is the smallest stack the 1-of-1 heuristic accepts.
const MinClassifiableLayers = 3

// Meta describes the top layer of a stack.
type Meta struct {
	Format string
	Width  int
	Height int
}

// Classification is the result of [Classifier.Classify].
// It is implemented only by [Unique] and [Procedural].
type Classification interface {
	// TopLayer returns the decoded header of layer 0.
	TopLayer() Meta
	isClassification()
}

// Unique is a hand-authored 1-of-1 whose image is the top layer.
type Unique struct{ Top Meta }

// Procedural is a composite of independently generated trait layers.
type Procedural struct{ Top Meta }

func (u Unique) TopLayer() Meta     { return u.Top }
func (p Procedural) TopLayer() Meta { return p.Top }

func (Unique) isClassification()     {}
func (Procedural) isClassification() {}

// IsUnique reports whether c classifies a 1-of-1.
func IsUnique(c Classification) bool {
	_, ok := c.(Unique)
	return ok
}

// MetadataDecoder reads image headers.
type MetadataDecoder interface {
	Metadata(buf []byte) (raster.Info, error)
}

// Classifier decides between [Unique] and [Procedural] artwork.
type Classifier struct {
	// CanonicalWidth is the width of procedural trait layers.
	CanonicalWidth int

	// Decoder reads the top layer's header.
	Decoder MetadataDecoder
}

// NewClassifier returns a Classifier for the EdgePunks collection.
func NewClassifier() *Classifier {
	return &Classifier{CanonicalWidth: DefaultCanonicalWidth, Decoder: raster.Codec{}}
}

// Classify inspects layers without modifying them.
//
// A stack is Unique when the top layer is not canonical width, or when every
// layer from index 2 on is byte-identical to layer 1 (the filler padding of a
// hand-drawn piece). Only layer 0 is decoded.
//
// Stacks of fewer than [MinClassifiableLayers] layers are a caller bug and
// fail with PRECONDITION_VIOLATION.
func (c *Classifier) Classify(layers [][]byte) (Classification, error) {
	if len(layers) < MinClassifiableLayers {
		return nil, errors.New(errors.ErrCodePreconditionViolation,
			"classification needs at least %d layers, got %d", MinClassifiableLayers, len(layers))
	}

	info, err := c.decoder().Metadata(layers[0])
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "top layer")
	}
	top := Meta{Format: info.Format, Width: info.Width, Height: info.Height}

	if info.Width != c.canonicalWidth() || fillerPadded(layers[1], layers[2:]) {
		return Unique{Top: top}, nil
	}
	return Procedural{Top: top}, nil
}

func (c *Classifier) decoder() MetadataDecoder {
	if c.Decoder == nil {
		return raster.Codec{}
	}
	return c.Decoder
}

func (c *Classifier) canonicalWidth() int {
	if c.CanonicalWidth <= 0 {
		return DefaultCanonicalWidth
	}
	return c.CanonicalWidth
}

// fillerPadded reports whether every layer in rest equals filler exactly.
func fillerPadded(filler []byte, rest [][]byte) bool {
	for _, l := range rest {
		if !bytes.Equal(filler, l) {
			return false
		}
	}
	return true
}
