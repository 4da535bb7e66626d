// Package raster is the image codec, compose and resize toolkit used by the
// artwork compositor.
//
// Still images are held as *image.NRGBA so that alpha is unpremultiplied,
// which keeps "drop the alpha channel" a lossless per-pixel operation on the
// RGB values. GIF sources are decoded with every frame and stay animated
// through [Codec.Resize] and [Codec.Encode].
//
// Every operation returns a new [Image]; inputs are never modified, so a
// composite is always fully materialized before a later resize touches it.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format
	_ "golang.org/x/image/tiff" // Register TIFF format
	_ "golang.org/x/image/webp" // Register WebP format
)

// Format names as reported by the registered decoders.
const (
	FormatPNG  = "png"
	FormatGIF  = "gif"
	FormatJPEG = "jpeg"
	FormatWebP = "webp"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
)

// Info is the decoded header of an image buffer.
type Info struct {
	Format string
	Width  int
	Height int
}

// Image is a decoded raster. Exactly one of Still and Anim is set.
type Image struct {
	// Format is the format the source buffer was decoded from.
	Format string

	// Still holds single-frame images.
	Still *image.NRGBA

	// Anim holds GIF sources, including single-frame GIFs, so that their
	// output format is preserved.
	Anim *gif.GIF
}

// Animated reports whether the image carries GIF frames.
func (m *Image) Animated() bool { return m.Anim != nil }

// Bounds returns the logical canvas size.
func (m *Image) Bounds() image.Rectangle {
	if m.Anim != nil {
		return image.Rect(0, 0, m.Anim.Config.Width, m.Anim.Config.Height)
	}
	return m.Still.Bounds()
}

// Frames returns the number of frames (1 for still images).
func (m *Image) Frames() int {
	if m.Anim != nil {
		return len(m.Anim.Image)
	}
	return 1
}

// Codec implements decode, composite, resize, flatten and encode.
// The zero value is ready to use and safe for concurrent use.
type Codec struct{}

// Metadata decodes only the header of buf.
func (Codec) Metadata(buf []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		return Info{}, fmt.Errorf("decode image header: %w", err)
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Decode decodes buf. GIF buffers keep all frames.
func (Codec) Decode(buf []byte) (*Image, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}

	if format == FormatGIF {
		g, err := gif.DecodeAll(bytes.NewReader(buf))
		if err != nil {
			return nil, fmt.Errorf("decode gif: %w", err)
		}
		return &Image{Format: format, Anim: g}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return &Image{Format: format, Still: imaging.Clone(img)}, nil
}

// Composite stacks overlays on top of base in the given order, each one
// centred on the canvas and alpha blended. Animated inputs contribute their
// first frame. The result has base's format and bounds.
func (c Codec) Composite(base *Image, overlays ...*Image) (*Image, error) {
	if base == nil {
		return nil, fmt.Errorf("composite: nil base image")
	}
	canvas := c.still(base)
	for i, o := range overlays {
		if o == nil {
			return nil, fmt.Errorf("composite: nil overlay %d", i)
		}
		canvas = imaging.OverlayCenter(canvas, c.still(o), 1.0)
	}
	return &Image{Format: base.Format, Still: canvas}, nil
}

// Resize scales img to width pixels using nearest-neighbor sampling,
// keeping the aspect ratio. Frame offsets of animations are scaled too.
func (Codec) Resize(img *Image, width int) *Image {
	b := img.Bounds()
	if width <= 0 || b.Dx() == 0 || width == b.Dx() {
		return img
	}
	height := max(1, (b.Dy()*width+b.Dx()/2)/b.Dx())

	if img.Anim == nil {
		return &Image{
			Format: img.Format,
			Still:  imaging.Resize(img.Still, width, height, imaging.NearestNeighbor),
		}
	}
	return &Image{Format: img.Format, Anim: resizeGIF(img.Anim, width, height)}
}

// Flatten drops the alpha channel of still images: every pixel keeps its
// RGB value and becomes fully opaque. GIF animations are returned unchanged.
func (Codec) Flatten(img *Image) *Image {
	if img.Anim != nil {
		return img
	}
	src := img.Still
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		di := dst.PixOffset(0, y)
		row := dst.Pix[di : di+4*b.Dx()]
		copy(row, src.Pix[si:si+4*b.Dx()])
		for i := 3; i < len(row); i += 4 {
			row[i] = 0xff
		}
	}
	return &Image{Format: img.Format, Still: dst}
}

// Encode serializes img. Animations are always written as GIF. Still images
// are written in format when an encoder exists for it, otherwise as PNG.
// The returned string is the format actually written.
func (Codec) Encode(img *Image, format string) ([]byte, string, error) {
	var buf bytes.Buffer

	if img.Anim != nil {
		if err := gif.EncodeAll(&buf, img.Anim); err != nil {
			return nil, "", fmt.Errorf("encode gif: %w", err)
		}
		return buf.Bytes(), FormatGIF, nil
	}

	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		f, format = imaging.PNG, FormatPNG
	}
	if err := imaging.Encode(&buf, img.Still, f); err != nil {
		return nil, "", fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), formatName(f), nil
}

// still returns an NRGBA view of img, rendering the first frame of animations.
func (Codec) still(img *Image) *image.NRGBA {
	if img.Anim == nil {
		return img.Still
	}
	canvas := image.NewNRGBA(img.Bounds())
	if len(img.Anim.Image) > 0 {
		frame := img.Anim.Image[0]
		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
	}
	return canvas
}

func formatName(f imaging.Format) string {
	switch f {
	case imaging.JPEG:
		return FormatJPEG
	case imaging.GIF:
		return FormatGIF
	case imaging.BMP:
		return FormatBMP
	case imaging.TIFF:
		return FormatTIFF
	default:
		return FormatPNG
	}
}
