package convert

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Fit scales src to fit inside w x h keeping its aspect ratio and centers it
// on a black canvas.
func Fit(src image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	if sw == 0 || sh == 0 {
		return dst
	}

	// the smaller of the two scale factors, in integer math
	tw, th := w, sh*w/sw
	if th > h {
		tw, th = sw*h/sh, h
	}
	x0 := (w - tw) / 2
	y0 := (h - th) / 2
	r := image.Rect(x0, y0, x0+tw, y0+th)

	if tw == sw && th == sh {
		draw.Draw(dst, r, src, sb.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, r, src, sb, draw.Src, nil)
	return dst
}

// Placeholder renders a frame with one line of text per entry, used when no
// image could be produced.
func Placeholder(w, h int, lines ...string) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{0x20, 0x20, 0x20, 0xFF}), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.NRGBA{0xFF, 0x40, 0x40, 0xFF}),
		Face: face,
	}
	const margin = 8
	lineH := face.Metrics().Height.Ceil() + 2
	for i, l := range lines {
		d.Dot = fixed.P(margin, margin+lineH*(i+1))
		d.DrawString(l)
	}
	return img
}
