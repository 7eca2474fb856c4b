package chart

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

// Capture is the outcome of rasterizing one chart frame: either an image
// of the requested canvas size, or the reason the frame was skipped.
type Capture struct {
	Image      *image.RGBA
	SkipReason string
}

// Skipped reports whether this capture carries no image.
func (c Capture) Skipped() bool { return c.Image == nil }

func skip(format string, args ...any) Capture {
	return Capture{SkipReason: fmt.Sprintf(format, args...)}
}

// capture validates the rendered raster geometry and scales it onto a
// canvas of the given size. A raster whose buffer does not match its
// reported (height, width, 4) geometry is skipped.
func capture(src image.Image, canvas image.Point) Capture {
	rgba, ok := src.(*image.RGBA)
	if !ok {
		return skip("unexpected raster type %T", src)
	}
	b := rgba.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return skip("empty raster %dx%d", w, h)
	}
	if want := w * h * 4; len(rgba.Pix) != want || rgba.Stride != w*4 {
		return skip("raster size=%d stride=%d, expected=%d for %dx%d", len(rgba.Pix), rgba.Stride, want, w, h)
	}

	dst := image.NewRGBA(image.Rectangle{Max: canvas})
	xdraw.BiLinear.Scale(dst, dst.Bounds(), rgba, b, xdraw.Src, nil)
	return Capture{Image: dst}
}
