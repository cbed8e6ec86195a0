package adjust

import (
	"errors"
	"image"
	"testing"

	"github.com/pictools/labrador/pkg/document"
	"github.com/pictools/labrador/pkg/lab"
)

func makeDoc(t *testing.T, w, h int) *document.Document {
	t.Helper()
	doc := document.New("fixture.png")
	if _, err := doc.AddLayer("Background", smallSrcSized(w, h)); err != nil {
		t.Fatalf("AddLayer failed: %v", err)
	}
	return doc
}

func smallSrcSized(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 31 % 251)
	}
	return img
}

func TestRunNoDocument(t *testing.T) {
	fake := &fakeExecutor{}
	_, err := NewRunner(fake, nil).Run(nil)
	var pe *PreconditionError
	if !errors.As(err, &pe) {
		t.Fatalf("error %T (%v), want *PreconditionError", err, err)
	}
	if pe.Error() != "no image open" {
		t.Fatalf("precondition message = %q, want %q", pe.Error(), "no image open")
	}
	if len(fake.calls) != 0 {
		t.Fatalf("filters invoked with no document")
	}
}

func TestRunEmptyDocument(t *testing.T) {
	fake := &fakeExecutor{}
	doc := document.New("empty.png")
	_, err := NewRunner(fake, nil).Run(doc)
	var pe *PreconditionError
	if !errors.As(err, &pe) {
		t.Fatalf("error %T, want *PreconditionError", err)
	}
	if len(doc.Layers()) != 0 {
		t.Fatalf("layers created despite precondition failure")
	}
	if len(fake.calls) != 0 {
		t.Fatalf("filters invoked despite precondition failure")
	}
}

func TestRunZeroSizeDocument(t *testing.T) {
	fake := &fakeExecutor{}
	doc := document.New("zero.png")
	if _, err := doc.AddLayer("Background", image.NewNRGBA(image.Rect(0, 0, 0, 0))); err != nil {
		t.Fatalf("AddLayer failed: %v", err)
	}
	_, err := NewRunner(fake, nil).Run(doc)
	var pe *PreconditionError
	if !errors.As(err, &pe) {
		t.Fatalf("error %T, want *PreconditionError", err)
	}
	if len(doc.Layers()) != 1 {
		t.Fatalf("layer duplicated despite zero-size document")
	}
	if len(fake.calls) != 0 {
		t.Fatalf("filters invoked despite zero-size document")
	}
}

func TestRunSuccess(t *testing.T) {
	fake := &fakeExecutor{}
	doc := makeDoc(t, 50, 40)
	doc.SetUnits(document.UnitCentimeters)

	base := doc.ActiveLayer()
	before := make([]uint8, len(base.Image().Pix))
	copy(before, base.Image().Pix)

	rep, err := NewRunner(fake, nil).Run(doc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if rep.Params.Scale != 50.0/2500.0 {
		t.Fatalf("report scale = %v, want %v", rep.Params.Scale, 50.0/2500.0)
	}
	if len(fake.calls) != 9 {
		t.Fatalf("executor calls = %d, want 9", len(fake.calls))
	}

	layers := doc.Layers()
	if len(layers) != 2 {
		t.Fatalf("layer count = %d, want 2", len(layers))
	}
	if layers[1].Name() != AdjustedLayerName {
		t.Fatalf("result layer name = %q, want %q", layers[1].Name(), AdjustedLayerName)
	}
	if doc.ActiveLayer() != layers[1] {
		t.Fatalf("result layer is not active")
	}

	// the source layer must be byte-identical to before the run
	after := base.Image().Pix
	if len(after) != len(before) {
		t.Fatalf("source layer resized")
	}
	for i := range before {
		if after[i] != before[i] {
			t.Fatalf("source layer mutated at byte %d", i)
		}
	}

	if doc.Units() != document.UnitCentimeters {
		t.Fatalf("units after run = %v, want centimeters restored", doc.Units())
	}
}

func TestRunFilterFailureRestoresUnits(t *testing.T) {
	sentinel := errors.New("wand broke")
	fake := &fakeExecutor{failAt: 4, failErr: sentinel}
	doc := makeDoc(t, 50, 40)
	doc.SetUnits(document.UnitPoints)

	base := doc.Layers()[0]
	before := make([]uint8, len(base.Image().Pix))
	copy(before, base.Image().Pix)

	_, err := NewRunner(fake, nil).Run(doc)
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
	var fe *FilterError
	if !errors.As(err, &fe) {
		t.Fatalf("error %T, want *FilterError", err)
	}

	if doc.Units() != document.UnitPoints {
		t.Fatalf("units after failed run = %v, want points restored", doc.Units())
	}

	// the duplicate is disposable and may remain; the source must not change
	for i := range before {
		if base.Image().Pix[i] != before[i] {
			t.Fatalf("source layer mutated by failed run at byte %d", i)
		}
	}
	if got := doc.Layers()[0].Name(); got != "Background" {
		t.Fatalf("source layer renamed to %q by failed run", got)
	}
}

func TestRunUnitsPixelsDuringRun(t *testing.T) {
	doc := makeDoc(t, 30, 30)
	doc.SetUnits(document.UnitInches)
	var during document.Unit
	fake := &unitPeekExecutor{doc: doc, seen: &during}
	if _, err := NewRunner(fake, nil).Run(doc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if during != document.UnitPixels {
		t.Fatalf("units during run = %v, want pixels", during)
	}
	if doc.Units() != document.UnitInches {
		t.Fatalf("units after run = %v, want inches", doc.Units())
	}
}

// unitPeekExecutor records the document's ruler units at filter time.
type unitPeekExecutor struct {
	doc  *document.Document
	seen *document.Unit
}

func (u *unitPeekExecutor) peek() { *u.seen = u.doc.Units() }

func (u *unitPeekExecutor) Blur(*lab.Image, lab.Selection, float64) error {
	u.peek()
	return nil
}

func (u *unitPeekExecutor) Sharpen(*lab.Image, lab.Selection, int, float64, int) error {
	u.peek()
	return nil
}

func (u *unitPeekExecutor) Action(*lab.Image, lab.Selection, string, ActionParams) error {
	u.peek()
	return nil
}
