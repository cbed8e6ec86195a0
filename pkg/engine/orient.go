package engine

import (
	"image"
	"image/draw"
)

// AutoOrient applies an EXIF orientation (1..8) to the pixels so the result
// displays upright with orientation 1. Orientation 1 or anything out of
// range returns the image unchanged.
func AutoOrient(img image.Image, orientation int) image.Image {
	if img == nil {
		return nil
	}
	if orientation <= 1 || orientation > 8 {
		return img
	}
	src := toNRGBA(img)
	switch orientation {
	case 2:
		return flop(src)
	case 3:
		return rotate180(src)
	case 4:
		return flip(src)
	case 5:
		return flop(rotate90CW(src))
	case 6:
		return rotate90CW(src)
	case 7:
		return flop(rotate90CCW(src))
	case 8:
		return rotate90CCW(src)
	}
	return img
}

// remap builds an output image where src's pixel (x, y) lands at mapper(x, y).
func remap(src *image.NRGBA, outW, outH int, mapper func(x, y int) (int, int)) *image.NRGBA {
	b := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, outW, outH))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dx, dy := mapper(x, y)
			si := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			di := out.PixOffset(dx, dy)
			copy(out.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return out
}

func flip(src *image.NRGBA) *image.NRGBA {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	return remap(src, w, h, func(x, y int) (int, int) { return x, h - 1 - y })
}

func flop(src *image.NRGBA) *image.NRGBA {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	return remap(src, w, h, func(x, y int) (int, int) { return w - 1 - x, y })
}

func rotate180(src *image.NRGBA) *image.NRGBA {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	return remap(src, w, h, func(x, y int) (int, int) { return w - 1 - x, h - 1 - y })
}

func rotate90CW(src *image.NRGBA) *image.NRGBA {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	return remap(src, h, w, func(x, y int) (int, int) { return h - 1 - y, x })
}

func rotate90CCW(src *image.NRGBA) *image.NRGBA {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	return remap(src, h, w, func(x, y int) (int, int) { return y, w - 1 - x })
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
