// Package document models the host editing context an adjustment run
// operates in: one open image with named raster layers, an active layer,
// and a ruler-unit preference.
package document

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/clone"
)

// Layer is a named raster layer. Pixel data is owned by the layer; images
// passed in are copied, never retained.
type Layer struct {
	name string
	pix  *image.RGBA
}

// NewLayer copies img into a fresh layer.
func NewLayer(name string, img image.Image) *Layer {
	return &Layer{name: name, pix: clone.AsRGBA(img)}
}

// Name returns the layer name.
func (l *Layer) Name() string { return l.name }

// Rename sets the layer name.
func (l *Layer) Rename(name string) { l.name = name }

// Image returns the layer's backing raster.
func (l *Layer) Image() *image.RGBA { return l.pix }

// SetImage replaces the layer's pixels with a copy of img.
func (l *Layer) SetImage(img image.Image) { l.pix = clone.AsRGBA(img) }

// Clone returns an independent copy of the layer under a new name.
func (l *Layer) Clone(name string) *Layer {
	return &Layer{name: name, pix: clone.AsRGBA(l.pix)}
}

// Document is an open image with a layer stack. The zero layer added is
// the base layer; its bounds define the document dimensions.
type Document struct {
	name   string
	layers []*Layer
	active int
	units  Unit
}

// New creates an empty document. Ruler units default to inches, matching
// a fresh editing environment rather than the pixel units filters want.
func New(name string) *Document {
	return &Document{name: name, active: -1, units: UnitInches}
}

// Name returns the document name.
func (d *Document) Name() string { return d.name }

// AddLayer appends a layer holding a copy of img and makes it active.
func (d *Document) AddLayer(name string, img image.Image) (*Layer, error) {
	if img == nil {
		return nil, errors.New("document: nil image")
	}
	l := NewLayer(name, img)
	d.layers = append(d.layers, l)
	d.active = len(d.layers) - 1
	return l, nil
}

// Layers returns the layer stack, base layer first.
func (d *Document) Layers() []*Layer { return d.layers }

// ActiveLayer returns the active layer, or nil when the document has none.
func (d *Document) ActiveLayer() *Layer {
	if d == nil || d.active < 0 || d.active >= len(d.layers) {
		return nil
	}
	return d.layers[d.active]
}

// Dimensions returns the base layer's size in pixels. Both values are zero
// for a document with no layers.
func (d *Document) Dimensions() (w, h float64) {
	if len(d.layers) == 0 {
		return 0, 0
	}
	b := d.layers[0].Image().Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

// DuplicateActiveLayer clones the active layer as "<name> copy", appends the
// clone above it, and makes the clone active.
func (d *Document) DuplicateActiveLayer() (*Layer, error) {
	src := d.ActiveLayer()
	if src == nil {
		return nil, errors.New("document: no active layer")
	}
	dup := src.Clone(fmt.Sprintf("%s copy", src.name))
	d.layers = append(d.layers, dup)
	d.active = len(d.layers) - 1
	return dup, nil
}
