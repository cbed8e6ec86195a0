package document

import (
	"errors"
	"testing"
)

func TestUnitString(t *testing.T) {
	cases := map[Unit]string{
		UnitPixels:      "pixels",
		UnitInches:      "inches",
		UnitCentimeters: "centimeters",
		UnitPoints:      "points",
		Unit(42):        "Unit(42)",
	}
	for u, want := range cases {
		if got := u.String(); got != want {
			t.Fatalf("Unit(%d).String() = %q, want %q", int(u), got, want)
		}
	}
}

func TestWithRulerUnitsRestoresOnSuccess(t *testing.T) {
	d := New("test.png")
	d.SetUnits(UnitCentimeters)
	var seen Unit
	err := WithRulerUnits(d, UnitPixels, func() error {
		seen = d.Units()
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != UnitPixels {
		t.Fatalf("units inside fn = %v, want pixels", seen)
	}
	if d.Units() != UnitCentimeters {
		t.Fatalf("units after fn = %v, want centimeters restored", d.Units())
	}
}

func TestWithRulerUnitsRestoresOnError(t *testing.T) {
	d := New("test.png")
	d.SetUnits(UnitInches)
	boom := errors.New("boom")
	err := WithRulerUnits(d, UnitPixels, func() error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("error not propagated: %v", err)
	}
	if d.Units() != UnitInches {
		t.Fatalf("units after failing fn = %v, want inches restored", d.Units())
	}
}
