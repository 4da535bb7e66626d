// Package svgdoc recovers the embedded bitmap layers from an artwork SVG.
//
// The Indelible Labs generator writes every trait as a PNG (or GIF) data URL
// and stacks them as multiple background images on the root element:
//
//	<svg ... style="background-image:url(data:image/png;base64,...),url(data:image/png;base64,...);...">
//
// The first url() is the top (foreground) layer and the last one is the
// background fill. [StyleExtractor] matches exactly that shape; it is not a
// CSS parser. Callers depend on the [Extractor] interface so a stricter
// document parser can replace it later.
package svgdoc

import (
	"regexp"

	"github.com/edgepunks/edgepunks/pkg/dataurl"
	"github.com/edgepunks/edgepunks/pkg/errors"
)

// Extractor turns an SVG document into its ordered layer buffers.
// Index 0 of the result is the top layer.
type Extractor interface {
	Extract(doc string) ([][]byte, error)
}

var (
	// backgroundImageRe matches the single background-image declaration
	// holding the comma-separated url() list.
	backgroundImageRe = regexp.MustCompile(`background-image:(url\([^)]+\)(?:,url\([^)]+\))*);`)

	urlRe = regexp.MustCompile(`url\(([^)]+)\)`)
)

// StyleExtractor reads layers from the root element's background-image
// declaration.
type StyleExtractor struct{}

// Extract returns the decoded layer buffers in declaration order.
// Documents without the declaration, or with an undecodable url() payload,
// fail with [errors.ErrCodeMalformedDocument].
func (StyleExtractor) Extract(doc string) ([][]byte, error) {
	m := backgroundImageRe.FindStringSubmatch(doc)
	if m == nil {
		return nil, errors.New(errors.ErrCodeMalformedDocument, "SVG does not contain a background-image layer declaration")
	}

	urls := urlRe.FindAllStringSubmatch(m[1], -1)
	layers := make([][]byte, 0, len(urls))
	for i, u := range urls {
		data, err := dataurl.Decode(u[1])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "layer %d", i)
		}
		layers = append(layers, data)
	}
	return layers, nil
}

// Extract uses the default [StyleExtractor].
func Extract(doc string) ([][]byte, error) {
	return StyleExtractor{}.Extract(doc)
}

var _ Extractor = StyleExtractor{}
