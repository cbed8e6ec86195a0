package engine

import (
	"bytes"
	"testing"

	"github.com/pictools/labrador/pkg/adjust"
	"github.com/pictools/labrador/pkg/lab"
)

func rippleParams(amount int, size adjust.RippleSize) adjust.ActionParams {
	return adjust.ActionParams{
		adjust.ParamAmount: amount,
		adjust.ParamSize:   size,
	}
}

func TestRippleDisplacesOnlySelection(t *testing.T) {
	m := lab.New(24, 24)
	p := m.Plane(lab.ChromaB)
	for y := 0; y < 24; y++ {
		p.Pix[p.PixOffset(12, y)] = 255
	}
	lBefore := planeCopy(m, lab.Lightness)
	aBefore := planeCopy(m, lab.ChromaA)

	err := New().Action(m, lab.SelectChromaB, adjust.ActionRipple, rippleParams(175, adjust.RippleMedium))
	if err != nil {
		t.Fatalf("ripple failed: %v", err)
	}

	if !bytes.Equal(m.Plane(lab.Lightness).Pix, lBefore) || !bytes.Equal(m.Plane(lab.ChromaA).Pix, aBefore) {
		t.Fatalf("ripple changed unselected planes")
	}

	// the vertical stripe must bend: some row now has energy off column 12
	moved := false
	for y := 0; y < 24 && !moved; y++ {
		for x := 0; x < 24; x++ {
			if x != 12 && x != 11 && x != 13 && p.Pix[p.PixOffset(x, y)] > 64 {
				moved = true
				break
			}
		}
	}
	if !moved {
		t.Fatalf("stripe did not move under ripple displacement")
	}
}

func TestRippleZeroAmountNoop(t *testing.T) {
	m := makeLabFixture(10, 10)
	before := planeCopy(m, lab.ChromaA)
	err := New().Action(m, lab.SelectChromaA, adjust.ActionRipple, rippleParams(0, adjust.RippleMedium))
	if err != nil {
		t.Fatalf("ripple failed: %v", err)
	}
	if !bytes.Equal(m.Plane(lab.ChromaA).Pix, before) {
		t.Fatalf("zero-amount ripple changed pixels")
	}
}

func TestRippleAmountOutOfRange(t *testing.T) {
	err := New().Action(makeLabFixture(4, 4), lab.SelectChromaA, adjust.ActionRipple,
		rippleParams(1000, adjust.RippleMedium))
	if err == nil {
		t.Fatalf("amount 1000 accepted")
	}
}

func TestRippleMissingAmount(t *testing.T) {
	err := New().Action(makeLabFixture(4, 4), lab.SelectChromaA, adjust.ActionRipple,
		adjust.ActionParams{adjust.ParamSize: adjust.RippleMedium})
	if err == nil {
		t.Fatalf("missing amount accepted")
	}
}

func TestRippleUnknownSizeFallsBackToMedium(t *testing.T) {
	a := makeLabFixture(16, 16)
	b := makeLabFixture(16, 16)
	if err := New().Action(a, lab.SelectChromaA, adjust.ActionRipple, rippleParams(175, adjust.RippleSize(99))); err != nil {
		t.Fatalf("ripple with unknown size failed: %v", err)
	}
	if err := New().Action(b, lab.SelectChromaA, adjust.ActionRipple, rippleParams(175, adjust.RippleMedium)); err != nil {
		t.Fatalf("ripple failed: %v", err)
	}
	if !bytes.Equal(a.Plane(lab.ChromaA).Pix, b.Plane(lab.ChromaA).Pix) {
		t.Fatalf("unknown size did not fall back to medium")
	}
}

func TestRippleDeterministic(t *testing.T) {
	a := makeLabFixture(20, 14)
	b := makeLabFixture(20, 14)
	params := rippleParams(175, adjust.RippleMedium)
	if err := New().Action(a, lab.Composite, adjust.ActionRipple, params); err != nil {
		t.Fatalf("ripple failed: %v", err)
	}
	if err := New().Action(b, lab.Composite, adjust.ActionRipple, params); err != nil {
		t.Fatalf("ripple failed: %v", err)
	}
	for _, c := range []lab.Channel{lab.Lightness, lab.ChromaA, lab.ChromaB} {
		if !bytes.Equal(a.Plane(c).Pix, b.Plane(c).Pix) {
			t.Fatalf("ripple output differs between identical runs on %v", c)
		}
	}
}
