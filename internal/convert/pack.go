package convert

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/draw"
)

// Format names a bitmap layout the chip can display.
type Format string

const (
	JPEG      Format = "jpeg"
	RGB565    Format = "rgb565"
	Paletted8 Format = "paletted8"
)

// ramGSize is the size of RAM_G on FT81x/BT81x.
const ramGSize = 1 << 20

// Frame is an image prepared for upload to RAM_G.
type Frame struct {
	Format Format
	Width  int
	Height int
	// Stride is the bitmap line length in bytes. Zero for JPEG, which the
	// coprocessor decodes itself.
	Stride int
	// Data holds the JPEG stream or the raw pixels.
	Data []byte
	// Palette is the ARGB8888 lookup table of a Paletted8 frame, little
	// endian, one word per index.
	Palette []byte
}

// Size is the number of bytes the frame occupies in RAM_G.
func (f *Frame) Size() int {
	return len(f.Data) + len(f.Palette)
}

// Encode converts img into the given format. quality only applies to JPEG.
func Encode(img image.Image, f Format, quality int) (*Frame, error) {
	b := img.Bounds()
	fr := &Frame{Format: f, Width: b.Dx(), Height: b.Dy()}

	switch f {
	case JPEG:
		data, err := EncodeJPEG(img, quality)
		if err != nil {
			return nil, err
		}
		fr.Data = data
	case RGB565:
		fr.Data = PackRGB565(img)
		fr.Stride = 2 * fr.Width
	case Paletted8:
		fr.Data, fr.Palette = PackPaletted8(img)
		fr.Stride = fr.Width
	default:
		return nil, fmt.Errorf("convert: unknown format %q", f)
	}

	if fr.Size() > ramGSize {
		return nil, fmt.Errorf("convert: %dx%d %s frame needs %d bytes, RAM_G holds %d", fr.Width, fr.Height, f, fr.Size(), ramGSize)
	}
	return fr, nil
}

// EncodeJPEG produces a baseline JPEG, the only kind CMD_LOADIMAGE decodes.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("convert: jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}

// PackRGB565 converts img into the chip's RGB565 layout: R in bits 15..11,
// G in 10..5, B in 4..0, each pixel stored little endian.
func PackRGB565(img image.Image) []byte {
	src := toNRGBA(img)
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, 2*w*h)

	// walk Pix directly instead of calling At() per pixel
	for y := 0; y < h; y++ {
		row := y * src.Stride
		for x := 0; x < w; x++ {
			i := row + 4*x
			v := rgb565(src.Pix[i+0], src.Pix[i+1], src.Pix[i+2])
			o := 2 * (y*w + x)
			out[o] = byte(v)
			out[o+1] = byte(v >> 8)
		}
	}
	return out
}

func rgb565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

// PackPaletted8 reduces img to at most 256 colors with a median cut palette
// and Floyd-Steinberg dithering. It returns one index byte per pixel and
// the ARGB8888 lookup table.
func PackPaletted8(img image.Image) (indices, lut []byte) {
	b := img.Bounds()
	q := quantize.MedianCutQuantizer{}
	pal := q.Quantize(make(color.Palette, 0, 256), img)

	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), pal)
	draw.FloydSteinberg.Draw(dst, dst.Bounds(), img, b.Min)

	lut = make([]byte, 4*len(pal))
	for i, c := range pal {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		// ARGB8888 word, little endian: B G R A
		lut[4*i+0] = n.B
		lut[4*i+1] = n.G
		lut[4*i+2] = n.R
		lut[4*i+3] = n.A
	}
	return dst.Pix, lut
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	n := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(n, n.Bounds(), img, b.Min, draw.Src)
	return n
}
