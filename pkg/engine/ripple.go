package engine

import (
	"fmt"
	"image"
	"math"

	"github.com/pictools/labrador/pkg/adjust"
	"github.com/pictools/labrador/pkg/lab"
)

// Wavelength in pixels per ripple size preset.
var rippleWavelengths = map[adjust.RippleSize]float64{
	adjust.RippleSmall:  6,
	adjust.RippleMedium: 12,
	adjust.RippleLarge:  24,
}

// ripple displaces each selected plane along both axes with sine waves.
// Amount is a percentage: 100 displaces by a quarter wavelength. Unknown or
// missing size presets resolve to medium.
func (e *Executor) ripple(img *lab.Image, sel lab.Selection, params adjust.ActionParams) error {
	amount, ok := params[adjust.ParamAmount].(int)
	if !ok {
		return fmt.Errorf("ripple: missing integer %q parameter", adjust.ParamAmount)
	}
	if amount < -999 || amount > 999 {
		return fmt.Errorf("ripple: amount %d out of range [-999, 999]", amount)
	}
	size := adjust.RippleMedium
	if v, ok := params[adjust.ParamSize].(adjust.RippleSize); ok {
		size = v
	}
	wavelength, ok := rippleWavelengths[size]
	if !ok {
		wavelength = rippleWavelengths[adjust.RippleMedium]
	}
	amplitude := float64(amount) / 100.0 * wavelength / 4.0
	if amplitude == 0 {
		return nil
	}
	for _, c := range sel.Channels() {
		ripplePlane(img.Plane(c), amplitude, wavelength)
	}
	return nil
}

// ripplePlane resamples the plane through an inverse displacement map with
// bilinear interpolation, clamping at the edges.
func ripplePlane(plane *image.Gray, amplitude, wavelength float64) {
	b := plane.Bounds()
	w, h := b.Dx(), b.Dy()
	src := make([]uint8, len(plane.Pix))
	copy(src, plane.Pix)
	k := 2 * math.Pi / wavelength
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx := float64(x) + amplitude*math.Sin(k*float64(y))
			sy := float64(y) + amplitude*math.Sin(k*float64(x))
			plane.Pix[y*plane.Stride+x] = sampleGrayBilinear(src, plane.Stride, w, h, sx, sy)
		}
	}
}

func sampleGrayBilinear(pix []uint8, stride, w, h int, x, y float64) uint8 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := x0 + 1
	y1 := y0 + 1

	at := func(px, py int) float64 {
		if px < 0 {
			px = 0
		}
		if px >= w {
			px = w - 1
		}
		if py < 0 {
			py = 0
		}
		if py >= h {
			py = h - 1
		}
		return float64(pix[py*stride+px])
	}
	c00 := at(x0, y0)
	c10 := at(x1, y0)
	c01 := at(x0, y1)
	c11 := at(x1, y1)

	xf := x - float64(x0)
	yf := y - float64(y0)
	top := c00*(1-xf) + c10*xf
	bottom := c01*(1-xf) + c11*xf
	v := top*(1-yf) + bottom*yf
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(math.Round(v))
}
