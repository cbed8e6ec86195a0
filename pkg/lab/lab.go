package lab

import (
	"fmt"
	"image"
	"strings"
)

// Channel identifies one plane of a Lab image.
type Channel int

const (
	Lightness Channel = iota
	ChromaA
	ChromaB
)

func (c Channel) String() string {
	switch c {
	case Lightness:
		return "Lightness"
	case ChromaA:
		return "a"
	case ChromaB:
		return "b"
	}
	return fmt.Sprintf("Channel(%d)", int(c))
}

// Selection is a bitmask of active channels. Channel-scoped operations
// touch only the planes present in the selection.
type Selection uint8

const (
	SelectLightness Selection = 1 << iota
	SelectChromaA
	SelectChromaB

	// Composite selects all three channels.
	Composite = SelectLightness | SelectChromaA | SelectChromaB
)

// Only returns the selection containing just c.
func Only(c Channel) Selection {
	switch c {
	case Lightness:
		return SelectLightness
	case ChromaA:
		return SelectChromaA
	case ChromaB:
		return SelectChromaB
	}
	return 0
}

// Has reports whether c is part of the selection.
func (s Selection) Has(c Channel) bool {
	return s&Only(c) != 0
}

// Channels returns the selected channels in Lightness, a, b order.
func (s Selection) Channels() []Channel {
	var out []Channel
	for _, c := range []Channel{Lightness, ChromaA, ChromaB} {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s Selection) String() string {
	if s == Composite {
		return "composite"
	}
	if s == 0 {
		return "none"
	}
	var parts []string
	for _, c := range s.Channels() {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, "+")
}

// Image is a three-plane Lab raster with 8-bit planes, plus a pass-through
// alpha plane so transparency survives a convert/filter/convert cycle.
//
// Plane encoding follows the common 8-bit Lab convention: L* 0..100 maps to
// 0..255, a* and b* -128..127 map to 0..255 with a +128 bias.
type Image struct {
	rect  image.Rectangle
	l     *image.Gray
	a     *image.Gray
	b     *image.Gray
	alpha *image.Gray
	sel   Selection
}

// New allocates a zeroed Lab image of the given size with the composite
// selection active and opaque alpha.
func New(w, h int) *Image {
	r := image.Rect(0, 0, w, h)
	m := &Image{
		rect:  r,
		l:     image.NewGray(r),
		a:     image.NewGray(r),
		b:     image.NewGray(r),
		alpha: image.NewGray(r),
		sel:   Composite,
	}
	for i := range m.alpha.Pix {
		m.alpha.Pix[i] = 0xFF
	}
	return m
}

// Bounds returns the image rectangle. The minimum point is always (0,0).
func (m *Image) Bounds() image.Rectangle { return m.rect }

// Plane returns the backing gray plane for c. Mutating the returned plane
// mutates the image.
func (m *Image) Plane(c Channel) *image.Gray {
	switch c {
	case Lightness:
		return m.l
	case ChromaA:
		return m.a
	case ChromaB:
		return m.b
	}
	return nil
}

// Select sets the active channel selection.
func (m *Image) Select(s Selection) { m.sel = s }

// Selected returns the active channel selection.
func (m *Image) Selected() Selection { return m.sel }

// Clone returns a deep copy of the image, selection included.
func (m *Image) Clone() *Image {
	cp := &Image{rect: m.rect, sel: m.sel}
	cp.l = cloneGray(m.l)
	cp.a = cloneGray(m.a)
	cp.b = cloneGray(m.b)
	cp.alpha = cloneGray(m.alpha)
	return cp
}

func cloneGray(g *image.Gray) *image.Gray {
	out := image.NewGray(g.Rect)
	copy(out.Pix, g.Pix)
	return out
}
