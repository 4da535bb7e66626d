// Package pkg provides the libraries behind the EdgePunks rasterizer.
//
// # Overview
//
// Every EdgePunks token stores its artwork on chain as an SVG whose CSS
// background-image property stacks base64 data URLs, one per trait layer.
// The pkg directory turns those documents into ordinary PNG and GIF files:
//
//  1. [chain] - tokenURI calls and metadata parsing
//  2. [svgdoc] and [dataurl] - recover the raw layer bytes from a document
//  3. [artwork] - classify the stack and composite, resize and flatten it
//  4. [raster] - the image toolkit [artwork] is built on
//  5. [pipeline] - batches of tokens over a bounded worker pool
//  6. [server] - single renders over HTTP
//
// # Architecture
//
// The typical data flow:
//
//	tokenURI (chain)
//	     ↓
//	 metadata JSON → svg_image_data
//	     ↓
//	[svgdoc] layers (top-most first)
//	     ↓
//	[artwork] Classifier → Unique | Procedural
//	     ↓
//	[artwork] Compositor → PNG / GIF bytes
//
// # Quick Start
//
//	r := artwork.NewRenderer()
//	res, err := r.Render(ctx, svg, artwork.Request{TokenID: "7", ImageSize: 480})
//	if err != nil {
//	    return err
//	}
//	for _, out := range res.Outputs {
//	    os.WriteFile("7."+out.Format, out.Data, 0o644)
//	}
//
// # Infrastructure
//
// [cache] - tokenURI cache with file, Redis and null backends.
//
// [httputil] - retry with backoff and the shared HTTP client.
//
// [errors] - coded errors and input validation.
//
// [observability] - hooks for render, chain and cache events.
//
// [buildinfo] - version information injected at build time.
//
// [artwork]: https://pkg.go.dev/github.com/edgepunks/edgepunks/pkg/artwork
// [buildinfo]: https://pkg.go.dev/github.com/edgepunks/edgepunks/pkg/buildinfo
// [cache]: https://pkg.go.dev/github.com/edgepunks/edgepunks/pkg/cache
// [chain]: https://pkg.go.dev/github.com/edgepunks/edgepunks/pkg/chain
// [dataurl]: https://pkg.go.dev/github.com/edgepunks/edgepunks/pkg/dataurl
// [errors]: https://pkg.go.dev/github.com/edgepunks/edgepunks/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/edgepunks/edgepunks/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/edgepunks/edgepunks/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/edgepunks/edgepunks/pkg/pipeline
// [raster]: https://pkg.go.dev/github.com/edgepunks/edgepunks/pkg/raster
// [server]: https://pkg.go.dev/github.com/edgepunks/edgepunks/pkg/server
// [svgdoc]: https://pkg.go.dev/github.com/edgepunks/edgepunks/pkg/svgdoc
package pkg
