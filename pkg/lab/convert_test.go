package lab

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func makeTestNRGBA(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i+0] = uint8((x * 37) % 256)
			img.Pix[i+1] = uint8((y * 61) % 256)
			img.Pix[i+2] = uint8((x*13 + y*7) % 256)
			img.Pix[i+3] = 255
		}
	}
	return img
}

func TestFromImageErrors(t *testing.T) {
	if _, err := FromImage(nil); err == nil {
		t.Fatalf("expected error for nil image")
	}
	if _, err := FromImage(image.NewNRGBA(image.Rect(0, 0, 0, 5))); err == nil {
		t.Fatalf("expected error for empty bounds")
	}
}

func TestFromImageKnownColors(t *testing.T) {
	cases := []struct {
		name    string
		in      color.NRGBA
		l, a, b float64
	}{
		{"white", color.NRGBA{255, 255, 255, 255}, 100.0, 0.0, 0.0},
		{"black", color.NRGBA{0, 0, 0, 255}, 0.0, 0.0, 0.0},
		{"red", color.NRGBA{255, 0, 0, 255}, 53.24, 80.09, 67.20},
		{"green", color.NRGBA{0, 255, 0, 255}, 87.73, -86.18, 83.18},
		{"blue", color.NRGBA{0, 0, 255, 255}, 32.30, 79.19, -107.86},
	}
	for _, tc := range cases {
		img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
		img.SetNRGBA(0, 0, tc.in)
		m, err := FromImage(img)
		if err != nil {
			t.Fatalf("%s: FromImage failed: %v", tc.name, err)
		}
		l := decodeL(m.Plane(Lightness).Pix[0])
		a := decodeAB(m.Plane(ChromaA).Pix[0])
		b := decodeAB(m.Plane(ChromaB).Pix[0])
		if math.Abs(l-tc.l) > 0.75 || math.Abs(a-tc.a) > 0.75 || math.Abs(b-tc.b) > 0.75 {
			t.Fatalf("%s: got Lab(%.2f, %.2f, %.2f), want ~(%.2f, %.2f, %.2f)",
				tc.name, l, a, b, tc.l, tc.a, tc.b)
		}
	}
}

func TestFromImageNormalizesBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 20, 14, 23))
	m, err := FromImage(src)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if m.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Fatalf("bounds = %v, want normalized (0,0)-(4,3)", m.Bounds())
	}
}

func TestRoundTripGray(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 1))
	grays := []uint8{20, 60, 100, 128, 160, 200, 220, 235}
	for x, g := range grays {
		img.SetNRGBA(x, 0, color.NRGBA{g, g, g, 255})
	}
	m, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	out := m.ToNRGBA()
	for x, g := range grays {
		i := out.PixOffset(x, 0)
		for c := 0; c < 3; c++ {
			d := int(out.Pix[i+c]) - int(g)
			if d < -2 || d > 2 {
				t.Fatalf("gray %d channel %d drifted to %d", g, c, out.Pix[i+c])
			}
		}
	}
}

func TestRoundTripColors(t *testing.T) {
	img := makeTestNRGBA(16, 16)
	m, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	out := m.ToNRGBA()
	for i := 0; i < len(img.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			d := int(out.Pix[i+c]) - int(img.Pix[i+c])
			if d < -5 || d > 5 {
				t.Fatalf("pixel %d channel %d: %d -> %d exceeds round-trip tolerance",
					i/4, c, img.Pix[i+c], out.Pix[i+c])
			}
		}
	}
}

func TestRoundTripAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{200, 50, 50, 128})
	img.SetNRGBA(1, 0, color.NRGBA{20, 250, 90, 0})
	m, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	out := m.ToNRGBA()
	if out.Pix[3] != 128 || out.Pix[7] != 0 {
		t.Fatalf("alpha not preserved: got %d, %d", out.Pix[3], out.Pix[7])
	}
}

func TestEncodeDecodeBounds(t *testing.T) {
	if encodeL(-5) != 0 || encodeL(200) != 255 {
		t.Fatalf("encodeL does not clamp")
	}
	if encodeAB(-300) != 0 || encodeAB(300) != 255 {
		t.Fatalf("encodeAB does not clamp")
	}
	if got := decodeAB(encodeAB(0)); got != 0 {
		t.Fatalf("a/b zero point: got %v, want 0", got)
	}
}
