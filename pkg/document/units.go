package document

import "fmt"

// Unit is a ruler-unit preference of the editing context.
type Unit int

const (
	UnitPixels Unit = iota
	UnitInches
	UnitCentimeters
	UnitPoints
)

func (u Unit) String() string {
	switch u {
	case UnitPixels:
		return "pixels"
	case UnitInches:
		return "inches"
	case UnitCentimeters:
		return "centimeters"
	case UnitPoints:
		return "points"
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

// Units returns the document's current ruler units.
func (d *Document) Units() Unit { return d.units }

// SetUnits sets the document's ruler units.
func (d *Document) SetUnits(u Unit) { d.units = u }

// WithRulerUnits runs fn with the document's ruler units switched to u and
// restores the previous setting on every exit path, error or not.
func WithRulerUnits(d *Document, u Unit, fn func() error) error {
	prev := d.units
	d.SetUnits(u)
	defer d.SetUnits(prev)
	return fn()
}
