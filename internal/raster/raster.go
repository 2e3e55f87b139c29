// Package raster provides the immutable pixel buffer measured and fed to the
// model, along with decoding, resizing and the model tensor codec.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Size is the edge length of the document canvas in pixels.
const Size = 256

var ErrSizeMismatch = fmt.Errorf("image must be %dx%d pixels", Size, Size)

var ErrEmpty = errors.New("image has no pixels")

// Raster is a read-only NRGBA pixel grid. Values are straight (not
// premultiplied) alpha, matching what a browser canvas reports.
type Raster struct {
	img *image.NRGBA
}

// FromImage copies any image into a fresh Raster anchored at (0,0).
func FromImage(src image.Image) *Raster {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if n, ok := src.(*image.NRGBA); ok {
		// straight copy; going through premultiplied RGBA would round
		// translucent pixels
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+4*b.Dx()], n.Pix[n.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return &Raster{img: dst}
	}
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return &Raster{img: dst}
}

// Filled returns a w x h raster of one color.
func Filled(w, h int, c color.NRGBA) *Raster {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return &Raster{img: img}
}

func (r *Raster) Width() int  { return r.img.Rect.Dx() }
func (r *Raster) Height() int { return r.img.Rect.Dy() }

// Bounds implements image.Image.
func (r *Raster) Bounds() image.Rectangle { return r.img.Rect }

// ColorModel implements image.Image.
func (r *Raster) ColorModel() color.Model { return color.NRGBAModel }

// At implements image.Image.
func (r *Raster) At(x, y int) color.Color { return r.img.NRGBAAt(x, y) }

// NRGBAAt returns the pixel at (x, y); out of range yields the zero color.
func (r *Raster) NRGBAAt(x, y int) color.NRGBA { return r.img.NRGBAAt(x, y) }

// InBounds reports whether (x, y) addresses a pixel.
func (r *Raster) InBounds(x, y int) bool {
	return image.Pt(x, y).In(r.img.Rect)
}

// Clone returns a mutable copy of the pixels.
func (r *Raster) Clone() *image.NRGBA {
	dst := image.NewNRGBA(r.img.Rect)
	copy(dst.Pix, r.img.Pix)
	return dst
}

// Pixels calls fn for every pixel in row-major order.
func (r *Raster) Pixels(fn func(x, y int, c color.NRGBA)) {
	w, h := r.Width(), r.Height()
	for y := 0; y < h; y++ {
		row := r.img.Pix[y*r.img.Stride:]
		for x := 0; x < w; x++ {
			i := x * 4
			fn(x, y, color.NRGBA{R: row[i], G: row[i+1], B: row[i+2], A: row[i+3]})
		}
	}
}

// CheckSize rejects anything that is not Size x Size.
func CheckSize(r *Raster) error {
	if r.Width() != Size || r.Height() != Size {
		return fmt.Errorf("%w: got %dx%d", ErrSizeMismatch, r.Width(), r.Height())
	}
	return nil
}

// Decode reads an image in any registered format.
func Decode(rd io.Reader) (*Raster, string, error) {
	img, format, err := image.Decode(rd)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, format, ErrEmpty
	}
	return FromImage(img), format, nil
}

// DecodeSized decodes and enforces the Size x Size upload contract.
func DecodeSized(rd io.Reader) (*Raster, error) {
	r, _, err := Decode(rd)
	if err != nil {
		return nil, err
	}
	if err := CheckSize(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Load decodes an image file.
func Load(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	r, _, err := Decode(f)
	return r, err
}

// Resize scales src to w x h with bilinear interpolation.
func Resize(src image.Image, w, h int) *Raster {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return &Raster{img: dst}
}

// EncodePNG writes the raster as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.img)
}
