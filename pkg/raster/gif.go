package raster

import (
	"image"
	"image/gif"

	xdraw "golang.org/x/image/draw"
)

// resizeGIF scales every frame of g onto a width x height logical screen.
// Frames keep their palettes, delays and disposal methods; frame rectangles
// are mapped onto the new screen so partial frames stay aligned.
func resizeGIF(g *gif.GIF, width, height int) *gif.GIF {
	sw, sh := g.Config.Width, g.Config.Height
	if sw == 0 || sh == 0 {
		sw, sh = frameUnion(g)
	}

	out := &gif.GIF{
		Image:           make([]*image.Paletted, len(g.Image)),
		Delay:           append([]int(nil), g.Delay...),
		LoopCount:       g.LoopCount,
		Disposal:        append([]byte(nil), g.Disposal...),
		BackgroundIndex: g.BackgroundIndex,
		Config: image.Config{
			ColorModel: g.Config.ColorModel,
			Width:      width,
			Height:     height,
		},
	}

	for i, frame := range g.Image {
		sr := frame.Bounds()
		dr := image.Rect(
			sr.Min.X*width/sw, sr.Min.Y*height/sh,
			sr.Max.X*width/sw, sr.Max.Y*height/sh,
		)
		if dr.Dx() == 0 {
			dr.Max.X = dr.Min.X + 1
		}
		if dr.Dy() == 0 {
			dr.Max.Y = dr.Min.Y + 1
		}
		dst := image.NewPaletted(dr, frame.Palette)
		xdraw.NearestNeighbor.Scale(dst, dr, frame, sr, xdraw.Src, nil)
		out.Image[i] = dst
	}
	return out
}

// frameUnion returns the extent covered by all frames, for GIFs whose
// logical screen size is missing.
func frameUnion(g *gif.GIF) (int, int) {
	var r image.Rectangle
	for _, f := range g.Image {
		r = r.Union(f.Bounds())
	}
	return max(r.Max.X, 1), max(r.Max.Y, 1)
}
