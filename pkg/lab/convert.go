package lab

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

// color conversion: sRGB -> linear -> XYZ (D65) -> Lab and back

func srgbToLinear(c uint8) float64 {
	v := float64(c) / 255.0
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func linearToSrgb(v float64) uint8 {
	if v <= 0.0031308 {
		v = v * 12.92
	} else {
		v = 1.055*math.Pow(v, 1.0/2.4) - 0.055
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return uint8(math.Round(v * 255.0))
}

func linearToXyz(r, g, b float64) (x, y, z float64) {
	// sRGB D65 matrix
	x = 0.4124564*r + 0.3575761*g + 0.1804375*b
	y = 0.2126729*r + 0.7151522*g + 0.0721750*b
	z = 0.0193339*r + 0.1191920*g + 0.9503041*b
	return
}

func xyzToLinear(x, y, z float64) (r, g, b float64) {
	r = 3.2404542*x - 1.5371385*y - 0.4985314*z
	g = -0.9692660*x + 1.8760108*y + 0.0415560*z
	b = 0.0556434*x - 0.2040259*y + 1.0572252*z
	return
}

func xyzToLab(x, y, z float64) (l, a, b float64) {
	// reference white D65
	xr := x / 0.95047
	yr := y / 1.00000
	zr := z / 1.08883
	f := func(t float64) float64 {
		if t > 0.008856 {
			return math.Pow(t, 1.0/3.0)
		}
		return 7.787037*t + 16.0/116.0
	}
	fx := f(xr)
	fy := f(yr)
	fz := f(zr)
	l = 116.0*fy - 16.0
	a = 500.0 * (fx - fy)
	b = 200.0 * (fy - fz)
	return
}

func labToXyz(l, a, b float64) (x, y, z float64) {
	fy := (l + 16.0) / 116.0
	fx := fy + a/500.0
	fz := fy - b/200.0
	finv := func(t float64) float64 {
		if t3 := t * t * t; t3 > 0.008856 {
			return t3
		}
		return (t - 16.0/116.0) / 7.787037
	}
	x = 0.95047 * finv(fx)
	y = 1.00000 * finv(fy)
	z = 1.08883 * finv(fz)
	return
}

func rgbToLab(c color.NRGBA) (l, a, b float64) {
	r := srgbToLinear(c.R)
	g := srgbToLinear(c.G)
	bl := srgbToLinear(c.B)
	x, y, z := linearToXyz(r, g, bl)
	return xyzToLab(x, y, z)
}

func labToRGB(l, a, b float64) (uint8, uint8, uint8) {
	x, y, z := labToXyz(l, a, b)
	r, g, bl := xyzToLinear(x, y, z)
	return linearToSrgb(r), linearToSrgb(g), linearToSrgb(bl)
}

// plane value encoding

func encodeL(l float64) uint8 {
	if l < 0 {
		l = 0
	}
	if l > 100 {
		l = 100
	}
	return uint8(math.Round(l * 255.0 / 100.0))
}

func decodeL(v uint8) float64 { return float64(v) * 100.0 / 255.0 }

func encodeAB(v float64) uint8 {
	if v < -128 {
		v = -128
	}
	if v > 127 {
		v = 127
	}
	return uint8(math.Round(v + 128.0))
}

func decodeAB(v uint8) float64 { return float64(v) - 128.0 }

// FromImage converts src into a Lab image with the composite selection
// active. The source is only read; bounds are normalized so the result's
// minimum point is (0,0). A nil or empty source cannot be converted.
func FromImage(src image.Image) (*Image, error) {
	if src == nil {
		return nil, errors.New("nil source image")
	}
	sb := src.Bounds()
	w, h := sb.Dx(), sb.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty source bounds %v", sb)
	}
	m := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := color.NRGBAModel.Convert(src.At(sb.Min.X+x, sb.Min.Y+y)).(color.NRGBA)
			l, a, b := rgbToLab(px)
			i := m.l.PixOffset(x, y)
			m.l.Pix[i] = encodeL(l)
			m.a.Pix[i] = encodeAB(a)
			m.b.Pix[i] = encodeAB(b)
			m.alpha.Pix[i] = px.A
		}
	}
	return m, nil
}

// ToNRGBA converts the Lab planes back to 8-bit sRGB, restoring the alpha
// captured at conversion time.
func (m *Image) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(m.rect)
	w, h := m.rect.Dx(), m.rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := m.l.PixOffset(x, y)
			l := decodeL(m.l.Pix[i])
			a := decodeAB(m.a.Pix[i])
			b := decodeAB(m.b.Pix[i])
			r, g, bl := labToRGB(l, a, b)
			o := out.PixOffset(x, y)
			out.Pix[o+0] = r
			out.Pix[o+1] = g
			out.Pix[o+2] = bl
			out.Pix[o+3] = m.alpha.Pix[i]
		}
	}
	return out
}
