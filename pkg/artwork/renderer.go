package artwork

import (
	"context"

	"github.com/edgepunks/edgepunks/pkg/svgdoc"
)

// Renderer runs the full document to image path: extract, classify, render.
type Renderer struct {
	Extractor  svgdoc.Extractor
	Classifier *Classifier
	Compositor *Compositor
}

// Option configures a [Renderer].
type Option func(*Renderer)

// WithOverrides enables transparent rendering of 1-of-1 tokens from src.
func WithOverrides(src OverrideSource) Option {
	return func(r *Renderer) { r.Compositor.Overrides = src }
}

// WithCanonicalWidth sets the procedural layer width for both
// classification and resizing.
func WithCanonicalWidth(width int) Option {
	return func(r *Renderer) {
		r.Classifier.CanonicalWidth = width
		r.Compositor.CanonicalWidth = width
	}
}

// WithPipeline replaces the raster toolkit.
func WithPipeline(p Pipeline) Option {
	return func(r *Renderer) { r.Compositor.Pipeline = p }
}

// WithExtractor replaces the layer extractor.
func WithExtractor(e svgdoc.Extractor) Option {
	return func(r *Renderer) { r.Extractor = e }
}

// NewRenderer returns a Renderer for the EdgePunks collection.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		Extractor:  svgdoc.StyleExtractor{},
		Classifier: NewClassifier(),
		Compositor: NewCompositor(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is everything learned while rendering one document.
type Result struct {
	Classification Classification
	Layers         int
	Outputs        []Output
}

// Inspect extracts and classifies doc without rendering it.
func (r *Renderer) Inspect(doc string) ([][]byte, Classification, error) {
	layers, err := r.Extractor.Extract(doc)
	if err != nil {
		return nil, nil, err
	}
	class, err := r.Classifier.Classify(layers)
	if err != nil {
		return nil, nil, err
	}
	return layers, class, nil
}

// Render converts one SVG document into its final images.
func (r *Renderer) Render(ctx context.Context, doc string, req Request) (*Result, error) {
	layers, class, err := r.Inspect(doc)
	if err != nil {
		return nil, err
	}
	outputs, err := r.Compositor.Render(ctx, layers, class, req)
	if err != nil {
		return nil, err
	}
	return &Result{Classification: class, Layers: len(layers), Outputs: outputs}, nil
}
