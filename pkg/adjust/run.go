// Package adjust implements the resolution-independent Lab adjustment:
// a scale factor computed from the document's long edge, a parameter table
// derived from it, and a fixed channel-scoped filter sequence executed
// against a duplicate of the active layer.
package adjust

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/pictools/labrador/pkg/document"
)

// AdjustedLayerName is the name given to the processed layer on success.
const AdjustedLayerName = "Adjusted"

// Runner executes whole adjustment runs against documents.
type Runner struct {
	exec FilterExecutor
	log  logrus.FieldLogger
}

// NewRunner returns a runner over exec. A nil log disables logging.
func NewRunner(exec FilterExecutor, log logrus.FieldLogger) *Runner {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Runner{exec: exec, log: log}
}

// Run adjusts doc's active layer. On success the document gains a layer
// named "Adjusted" holding the processed pixels, stacked above the source
// layer, which is left byte-identical. The ruler-unit preference is switched
// to pixels for the duration and restored no matter how the run ends.
//
// Exactly one of the return values is meaningful: a filled Report on
// success, or a single error from the run's taxonomy (PreconditionError,
// ConversionError, FilterError).
func (r *Runner) Run(doc *document.Document) (Report, error) {
	if doc == nil || doc.ActiveLayer() == nil {
		return Report{}, &PreconditionError{Reason: "no image open"}
	}
	w, h := doc.Dimensions()
	dims := Dimensions{Width: w, Height: h}
	scale, err := ComputeScaleFactor(dims)
	if err != nil {
		return Report{}, err
	}
	params := DeriveParams(scale)
	r.log.WithFields(logrus.Fields{
		"document": doc.Name(),
		"width":    w,
		"height":   h,
		"scale":    scale,
	}).Info("starting adjustment run")

	err = document.WithRulerUnits(doc, document.UnitPixels, func() error {
		dup, err := doc.DuplicateActiveLayer()
		if err != nil {
			return fmt.Errorf("duplicate active layer: %w", err)
		}
		img, err := NewPipeline(r.exec, r.log).Run(dup.Image(), params)
		if err != nil {
			return err
		}
		dup.SetImage(img.ToNRGBA())
		dup.Rename(AdjustedLayerName)
		return nil
	})
	if err != nil {
		return Report{}, err
	}

	r.log.WithField("layer", AdjustedLayerName).Info("adjustment run complete")
	return NewReport(dims, params), nil
}
