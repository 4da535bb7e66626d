// Package artwork turns the layer stack of an EdgePunks SVG into final
// raster images.
//
// # Overview
//
// Every token's SVG embeds an ordered stack of bitmap layers (see package
// svgdoc). Index 0 is the top layer, the last index is the opaque background.
// Two kinds of artwork share this container format:
//
//   - Procedural tokens compose distinct trait layers of the canonical
//     192 px width.
//   - Unique ("1-of-1") tokens are a single hand-drawn image in the top
//     layer. The generator still requires a fixed number of layers, so the
//     remaining slots are padded with copies of one filler layer.
//
// [Classifier.Classify] tells them apart and returns a [Classification],
// which is either [Unique] or [Procedural]. [Compositor.Render] switches on
// that type:
//
//	Unique      top layer only; GIFs stay animated, stills become opaque PNG;
//	            nearest-neighbor resize when the size differs from the source
//	Procedural  background first, then every layer above it in order;
//	            the composite is materialized before any resize; alpha is
//	            dropped unless a transparent image was requested
//
// # Transparent 1-of-1s
//
// Unique tokens have no separate background layer, so a transparent version
// cannot be derived from the SVG. Without an [OverrideSource] such requests
// fail with UNSUPPORTED_TRANSPARENT_UNIQUE. With one (for example
// [DirOverrides] pointing at hand-made 24x24 transparent assets), the assets
// are scaled to the requested size instead.
//
// # Usage
//
//	r := artwork.NewRenderer(artwork.WithOverrides(artwork.DirOverrides{Dir: "24x24-transparent"}))
//	res, err := r.Render(ctx, svg, artwork.Request{TokenID: "7", ImageSize: 480})
//	for _, out := range res.Outputs {
//	    os.WriteFile("7."+out.Format, out.Data, 0o644)
//	}
//
// All operations are synchronous and side-effect free apart from reading
// override assets; a [Renderer] may be shared between goroutines.
package artwork
