package adjust

import (
	"strings"
	"testing"
)

func reportFor(t *testing.T, w, h float64) string {
	t.Helper()
	dims := Dimensions{Width: w, Height: h}
	scale, err := ComputeScaleFactor(dims)
	if err != nil {
		t.Fatalf("ComputeScaleFactor failed: %v", err)
	}
	return NewReport(dims, DeriveParams(scale)).String()
}

func TestReportReferenceImage(t *testing.T) {
	got := reportFor(t, 2500, 2500)
	for _, want := range []string{
		"Image: 2500 x 2500 px",
		"Scale factor: 1.000",
		"Gaussian blur (Lightness): 0.20 px",
		"Unsharp radius (Lightness): 2.30 px",
		"Gaussian blur (a/b): 4.00 px",
		"Unsharp radius (a/b): 5.10 px",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("report missing %q:\n%s", want, got)
		}
	}
}

func TestReportHalfScale(t *testing.T) {
	got := reportFor(t, 1250, 1250)
	for _, want := range []string{
		"Image: 1250 x 1250 px",
		"Scale factor: 0.500",
		"Gaussian blur (Lightness): 0.10 px",
		"Unsharp radius (Lightness): 1.15 px",
		"Gaussian blur (a/b): 2.00 px",
		"Unsharp radius (a/b): 2.55 px",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("report missing %q:\n%s", want, got)
		}
	}
}

func TestReportPortraitUsesLongEdge(t *testing.T) {
	got := reportFor(t, 1250, 2500)
	if !strings.Contains(got, "Scale factor: 1.000") {
		t.Fatalf("portrait long edge not used:\n%s", got)
	}
	if !strings.Contains(got, "Image: 1250 x 2500 px") {
		t.Fatalf("dimensions misreported:\n%s", got)
	}
}

func TestReportRoundingIsDisplayOnly(t *testing.T) {
	dims := Dimensions{Width: 3333, Height: 100}
	scale, err := ComputeScaleFactor(dims)
	if err != nil {
		t.Fatalf("ComputeScaleFactor failed: %v", err)
	}
	p := DeriveParams(scale)
	rep := NewReport(dims, p)
	if rep.Params.LightnessBlurRadius != 0.2*scale {
		t.Fatalf("report mutated the derived radius")
	}
	if !strings.Contains(rep.String(), "Scale factor: 1.333") {
		t.Fatalf("scale not shown to three decimals:\n%s", rep.String())
	}
}
