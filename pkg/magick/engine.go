//go:build magick

// Package magick provides an optional filter executor backed by ImageMagick
// through the imagick bindings. Build with -tags magick against a MagickWand
// installation; it registers itself under the name "magick".
package magick

import (
	"fmt"
	"sync"

	"gopkg.in/gographics/imagick.v3/imagick"

	"github.com/pictools/labrador/pkg/adjust"
	"github.com/pictools/labrador/pkg/lab"
)

// Name is the registry name of the ImageMagick executor.
const Name = "magick"

var initOnce sync.Once

func init() {
	adjust.RegisterExecutor(Name, func() (adjust.FilterExecutor, error) {
		// MagickCore environment setup happens once; teardown is left to
		// process exit since executors have no close hook.
		initOnce.Do(imagick.Initialize)
		return &Executor{}, nil
	})
}

// Executor implements adjust.FilterExecutor with one MagickWand round trip
// per selected plane.
type Executor struct{}

func (e *Executor) Blur(img *lab.Image, sel lab.Selection, radius float64) error {
	if radius < 0 {
		return fmt.Errorf("blur: negative radius %v", radius)
	}
	if radius == 0 {
		return nil
	}
	return eachPlane(img, sel, func(mw *imagick.MagickWand, w, h uint) error {
		// radius 0 lets the wand size the kernel for the sigma
		return mw.GaussianBlurImage(0, radius)
	})
}

func (e *Executor) Sharpen(img *lab.Image, sel lab.Selection, amount int, radius float64, threshold int) error {
	if amount < 0 || radius < 0 || threshold < 0 || threshold > 255 {
		return fmt.Errorf("sharpen: parameters out of range (amount %d, radius %v, threshold %d)",
			amount, radius, threshold)
	}
	if amount == 0 || radius == 0 {
		return nil
	}
	return eachPlane(img, sel, func(mw *imagick.MagickWand, w, h uint) error {
		return mw.UnsharpMaskImage(0, radius, float64(amount)/100.0, float64(threshold)/255.0)
	})
}

func (e *Executor) Action(img *lab.Image, sel lab.Selection, name string, params adjust.ActionParams) error {
	switch name {
	case adjust.ActionRipple:
		return e.ripple(img, sel, params)
	default:
		return fmt.Errorf("unknown action %q", name)
	}
}

// Wavelength per preset, matching the built-in executor so engine choice
// does not change the look.
var rippleWavelengths = map[adjust.RippleSize]float64{
	adjust.RippleSmall:  6,
	adjust.RippleMedium: 12,
	adjust.RippleLarge:  24,
}

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
	if amplitude < 0 {
		amplitude = -amplitude
	}
	return eachPlane(img, sel, func(mw *imagick.MagickWand, w, h uint) error {
		if err := mw.WaveImage(amplitude, wavelength, imagick.PIXEL_INTERPOLATE_BILINEAR); err != nil {
			return err
		}
		// wave grows the canvas vertically; crop back to the plane size
		grown := mw.GetImageHeight()
		offY := 0
		if grown > h {
			offY = int(grown-h) / 2
		}
		if err := mw.CropImage(w, h, 0, offY); err != nil {
			return err
		}
		return mw.ResetImagePage("")
	})
}

// eachPlane round-trips every selected plane through a wand: constitute,
// operate, export, copy back.
func eachPlane(img *lab.Image, sel lab.Selection, op func(mw *imagick.MagickWand, w, h uint) error) error {
	for _, c := range sel.Channels() {
		plane := img.Plane(c)
		b := plane.Bounds()
		w, h := uint(b.Dx()), uint(b.Dy())
		err := func() error {
			mw := imagick.NewMagickWand()
			defer mw.Destroy()
			if err := mw.ConstituteImage(w, h, "I", imagick.PIXEL_CHAR, plane.Pix); err != nil {
				return fmt.Errorf("constitute: %w", err)
			}
			if err := op(mw, w, h); err != nil {
				return err
			}
			out, err := mw.ExportImagePixels(0, 0, w, h, "I", imagick.PIXEL_CHAR)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			pix, ok := out.([]uint8)
			if !ok || len(pix) != len(plane.Pix) {
				return fmt.Errorf("export returned unexpected shape %T", out)
			}
			copy(plane.Pix, pix)
			return nil
		}()
		if err != nil {
			return fmt.Errorf("%s plane: %w", c, err)
		}
	}
	return nil
}
