// Package engine provides the built-in filter executor, registered as "std".
// Blur and sharpen go through the gift filter toolkit; the ripple distortion
// uses its own displacement kernel. Every operation works plane by plane on
// the channels in the selection and leaves the rest untouched.
package engine

import (
	"fmt"
	"image"

	"github.com/gohugoio/gift"

	"github.com/pictools/labrador/pkg/adjust"
	"github.com/pictools/labrador/pkg/lab"
)

// Name is the registry name of the built-in executor.
const Name = "std"

func init() {
	adjust.RegisterExecutor(Name, func() (adjust.FilterExecutor, error) {
		return New(), nil
	})
}

// Executor implements adjust.FilterExecutor in pure Go.
type Executor struct{}

// New returns the built-in executor.
func New() *Executor { return &Executor{} }

// Blur applies a gaussian blur to each selected plane. The radius is used as
// the gaussian sigma. A zero radius is a no-op; a negative one is rejected.
func (e *Executor) Blur(img *lab.Image, sel lab.Selection, radius float64) error {
	if radius < 0 {
		return fmt.Errorf("blur: negative radius %v", radius)
	}
	if radius == 0 {
		return nil
	}
	return eachPlane(img, sel, gift.New(gift.GaussianBlur(float32(radius))))
}

// Sharpen applies an unsharp mask to each selected plane. Amount is a
// percentage (125 adds 1.25x the mask), threshold an 8-bit level below which
// differences are left alone; both are mapped onto gift's fractional scale.
func (e *Executor) Sharpen(img *lab.Image, sel lab.Selection, amount int, radius float64, threshold int) error {
	if amount < 0 || radius < 0 || threshold < 0 || threshold > 255 {
		return fmt.Errorf("sharpen: parameters out of range (amount %d, radius %v, threshold %d)",
			amount, radius, threshold)
	}
	if amount == 0 || radius == 0 {
		return nil
	}
	g := gift.New(gift.UnsharpMask(float32(radius), float32(amount)/100.0, float32(threshold)/255.0))
	return eachPlane(img, sel, g)
}

// Action dispatches named distortions; only "ripple" is understood.
func (e *Executor) Action(img *lab.Image, sel lab.Selection, name string, params adjust.ActionParams) error {
	switch name {
	case adjust.ActionRipple:
		return e.ripple(img, sel, params)
	default:
		return fmt.Errorf("unknown action %q", name)
	}
}

// eachPlane runs the filter list over every selected plane in place.
func eachPlane(img *lab.Image, sel lab.Selection, g *gift.GIFT) error {
	for _, c := range sel.Channels() {
		plane := img.Plane(c)
		dst := image.NewGray(plane.Bounds())
		if err := g.Draw(dst, plane); err != nil {
			return fmt.Errorf("%s plane: %w", c, err)
		}
		copy(plane.Pix, dst.Pix)
	}
	return nil
}
