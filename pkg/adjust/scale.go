package adjust

import (
	"fmt"
	"math"
)

// ReferenceSize is the long-edge length, in pixels, at which the reference
// filter parameters were tuned.
const ReferenceSize = 2500.0

// Dimensions is the pixel size of the document being adjusted.
type Dimensions struct {
	Width  float64
	Height float64
}

// ComputeScaleFactor returns the ratio of the document's long edge to
// ReferenceSize. The result has no upper bound: very large inputs get
// proportionally large filter radii. Non-positive dimensions are a
// precondition failure.
func ComputeScaleFactor(d Dimensions) (float64, error) {
	if d.Width <= 0 || d.Height <= 0 {
		return 0, &PreconditionError{
			Reason: fmt.Sprintf("invalid document dimensions %gx%g", d.Width, d.Height),
		}
	}
	return math.Max(d.Width, d.Height) / ReferenceSize, nil
}
