package adjust

import (
	"fmt"

	"github.com/pictools/labrador/pkg/lab"
)

// PreconditionError means a run never started: no image was open or the
// document has no usable dimensions.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string { return e.Reason }

// ConversionError means the working image could not be converted to the
// target color mode. Fatal to the run.
type ConversionError struct {
	Mode string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert to %s: %v", e.Mode, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// FilterError means a filter invocation failed. Everything after the failed
// step is skipped; already-applied stages are not rolled back.
type FilterError struct {
	Step   int // 1-based position in the pipeline sequence
	Filter string
	Sel    lab.Selection
	Err    error
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("step %d: %s on %s: %v", e.Step, e.Filter, e.Sel, e.Err)
}

func (e *FilterError) Unwrap() error { return e.Err }
