package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// ErrLogo is returned when the logo asset is missing or cannot be decoded
var ErrLogo = errors.New("logo asset error")

// LoadLogo decodes the logo image at path
func LoadLogo(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLogo, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLogo, path, err)
	}
	return img, nil
}

// circleMask is a disc of constant alpha
type circleMask struct {
	size  int
	alpha uint8
}

func (m circleMask) ColorModel() color.Model { return color.AlphaModel }

func (m circleMask) Bounds() image.Rectangle { return image.Rect(0, 0, m.size, m.size) }

func (m circleMask) At(x, y int) color.Color {
	r := float64(m.size) / 2
	dx := float64(x) + 0.5 - r
	dy := float64(y) + 0.5 - r
	if dx*dx+dy*dy <= r*r {
		return color.Alpha{A: m.alpha}
	}
	return color.Alpha{}
}

// fadedCircle scales src to size x size, crops it to a circle and applies
// the opacity (0-255)
func fadedCircle(src image.Image, size int, opacity uint8) *image.RGBA {
	rect := image.Rect(0, 0, size, size)

	scaled := image.NewRGBA(rect)
	xdraw.CatmullRom.Scale(scaled, rect, src, src.Bounds(), xdraw.Over, nil)

	out := image.NewRGBA(rect)
	draw.DrawMask(out, rect, scaled, image.Point{}, circleMask{size: size, alpha: opacity}, image.Point{}, draw.Over)
	return out
}
