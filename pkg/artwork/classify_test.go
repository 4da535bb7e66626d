package artwork

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"slices"
	"testing"

	"github.com/edgepunks/edgepunks/pkg/errors"
)

var (
	red    = color.NRGBA{0xff, 0, 0, 0xff}
	green  = color.NRGBA{0, 0xff, 0, 0xff}
	blue   = color.NRGBA{0, 0, 0xff, 0xff}
	yellow = color.NRGBA{0xff, 0xff, 0, 0xff}
)

// layer returns a transparent w x w canvas with the given rectangles filled.
func layer(w int, fills map[image.Rectangle]color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, w))
	for r, c := range fills {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func encodeGIF(t *testing.T, w, frames int) []byte {
	t.Helper()
	pal := color.Palette{color.RGBA{}, color.RGBA{0xff, 0, 0, 0xff}, color.RGBA{0, 0, 0xff, 0xff}}
	g := &gif.GIF{Config: image.Config{ColorModel: pal, Width: w, Height: w}}
	for i := range frames {
		f := image.NewPaletted(image.Rect(0, 0, w, w), pal)
		for p := range f.Pix {
			f.Pix[p] = uint8(1 + i%2)
		}
		g.Image = append(g.Image, f)
		g.Delay = append(g.Delay, 10)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("gif.EncodeAll: %v", err)
	}
	return buf.Bytes()
}

func TestClassifyRejectsShortStacks(t *testing.T) {
	c := NewClassifier()
	l := encodePNG(t, layer(DefaultCanonicalWidth, nil))

	for _, n := range []int{0, 1, 2} {
		stack := make([][]byte, n)
		for i := range stack {
			stack[i] = l
		}
		_, err := c.Classify(stack)
		if !errors.Is(err, errors.ErrCodePreconditionViolation) {
			t.Errorf("Classify(%d layers) error = %v, want PRECONDITION_VIOLATION", n, err)
		}
	}
}

func TestClassify(t *testing.T) {
	canonical := func(c color.NRGBA) []byte {
		return encodePNG(t, layer(DefaultCanonicalWidth, map[image.Rectangle]color.NRGBA{image.Rect(0, 0, 1, 1): c}))
	}
	top, a, b, c := canonical(red), canonical(green), canonical(blue), canonical(yellow)
	small := encodePNG(t, layer(24, nil))

	oneByteOff := slices.Clone(a)
	oneByteOff[len(oneByteOff)-1] ^= 0x01

	tests := []struct {
		name   string
		layers [][]byte
		unique bool
	}{
		{"distinct canonical layers", [][]byte{top, a, b, c}, false},
		{"filler padded", [][]byte{top, a, a, a}, true},
		{"three layer filler", [][]byte{top, a, a}, true},
		{"non-canonical top", [][]byte{small, a, b, c}, true},
		{"non-canonical top, distinct rest", [][]byte{small, top, b}, true},
		{"one byte differs", [][]byte{top, a, a, oneByteOff}, false},
	}

	cl := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cl.Classify(tt.layers)
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if IsUnique(got) != tt.unique {
				t.Errorf("IsUnique = %v, want %v (%T)", IsUnique(got), tt.unique, got)
			}
		})
	}
}

func TestClassifyTopLayerMeta(t *testing.T) {
	l := encodePNG(t, layer(24, nil))
	got, err := NewClassifier().Classify([][]byte{l, l, l})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if want := (Meta{Format: "png", Width: 24, Height: 24}); got.TopLayer() != want {
		t.Errorf("TopLayer = %+v, want %+v", got.TopLayer(), want)
	}
}

func TestClassifyDoesNotModifyInput(t *testing.T) {
	a := encodePNG(t, layer(DefaultCanonicalWidth, nil))
	b := encodePNG(t, layer(DefaultCanonicalWidth, map[image.Rectangle]color.NRGBA{image.Rect(0, 0, 4, 4): red}))
	stack := [][]byte{a, b, a}
	before := [][]byte{slices.Clone(a), slices.Clone(b), slices.Clone(a)}

	if _, err := NewClassifier().Classify(stack); err != nil {
		t.Fatalf("Classify: %v", err)
	}
	for i := range stack {
		if !bytes.Equal(stack[i], before[i]) {
			t.Errorf("layer %d modified", i)
		}
	}
}

func TestClassifyMalformedTop(t *testing.T) {
	_, err := NewClassifier().Classify([][]byte{[]byte("nope"), {1}, {2}})
	if !errors.Is(err, errors.ErrCodeMalformedDocument) {
		t.Errorf("error = %v, want MALFORMED_DOCUMENT", err)
	}
}

func TestClassifyCustomCanonicalWidth(t *testing.T) {
	a := encodePNG(t, layer(24, nil))
	b := encodePNG(t, layer(24, map[image.Rectangle]color.NRGBA{image.Rect(0, 0, 1, 1): red}))
	c := encodePNG(t, layer(24, map[image.Rectangle]color.NRGBA{image.Rect(1, 1, 2, 2): red}))

	cl := &Classifier{CanonicalWidth: 24}
	got, err := cl.Classify([][]byte{a, b, c})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if IsUnique(got) {
		t.Error("24px stack with canonical width 24 should be procedural")
	}
}
