package adjust

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Report summarizes a completed run for presentation. Formatting is fixed:
// dimensions as whole pixels, the scale factor to three decimals, filter
// radii to two. Display rounding only; the underlying values keep full
// precision.
type Report struct {
	Width  float64
	Height float64
	Params Params
}

// NewReport builds the run summary from the document dimensions and the
// derived parameters.
func NewReport(d Dimensions, p Params) Report {
	return Report{Width: d.Width, Height: d.Height, Params: p}
}

func (r Report) String() string {
	mp := r.Width * r.Height / 1e6
	var b strings.Builder
	fmt.Fprintf(&b, "Image: %.0f x %.0f px (%s MP)\n", r.Width, r.Height, humanize.FtoaWithDigits(mp, 1))
	fmt.Fprintf(&b, "Scale factor: %.3f\n", r.Params.Scale)
	fmt.Fprintf(&b, "Gaussian blur (Lightness): %.2f px\n", r.Params.LightnessBlurRadius)
	fmt.Fprintf(&b, "Unsharp radius (Lightness): %.2f px\n", r.Params.LightnessSharpenRadius)
	fmt.Fprintf(&b, "Gaussian blur (a/b): %.2f px\n", r.Params.ChromaBlurRadius)
	fmt.Fprintf(&b, "Unsharp radius (a/b): %.2f px", r.Params.ChromaSharpenRadius)
	return b.String()
}
