package adjust

// ReferenceParams is the baseline filter parameter table, tuned by eye on a
// ReferenceSize-long-edge image. Radii scale with the document; amounts,
// thresholds, and ripple settings do not.
type ReferenceParams struct {
	LightnessBlurRadius    float64
	LightnessSharpenRadius float64
	ChromaBlurRadius       float64
	ChromaSharpenRadius    float64

	LightnessSharpenAmount    int
	LightnessSharpenThreshold int
	ChromaSharpenAmount       int
	ChromaSharpenThreshold    int

	LightnessRippleAmount int
	ChromaRippleAmount    int
	RippleSize            RippleSize
}

// DefaultReference returns the tuned baseline table. The values are
// empirical; treat them as opaque.
func DefaultReference() ReferenceParams {
	return ReferenceParams{
		LightnessBlurRadius:    0.2,
		LightnessSharpenRadius: 2.3,
		ChromaBlurRadius:       4.0,
		ChromaSharpenRadius:    5.1,

		LightnessSharpenAmount:    125,
		LightnessSharpenThreshold: 18,
		ChromaSharpenAmount:       131,
		ChromaSharpenThreshold:    3,

		LightnessRippleAmount: 20,
		ChromaRippleAmount:    175,
		RippleSize:            RippleMedium,
	}
}

// Params is a derived parameter set: the reference radii multiplied by the
// scale factor, constants carried over unchanged. Computed once per run and
// immutable afterwards.
type Params struct {
	Scale float64

	LightnessBlurRadius    float64
	LightnessSharpenRadius float64
	ChromaBlurRadius       float64
	ChromaSharpenRadius    float64

	LightnessSharpenAmount    int
	LightnessSharpenThreshold int
	ChromaSharpenAmount       int
	ChromaSharpenThreshold    int

	LightnessRippleAmount int
	ChromaRippleAmount    int
	RippleSize            RippleSize
}

// Derive multiplies the scale-dependent radii by scale and copies the
// constants. Pure: identical inputs give bit-identical outputs.
func (r ReferenceParams) Derive(scale float64) Params {
	return Params{
		Scale: scale,

		LightnessBlurRadius:    r.LightnessBlurRadius * scale,
		LightnessSharpenRadius: r.LightnessSharpenRadius * scale,
		ChromaBlurRadius:       r.ChromaBlurRadius * scale,
		ChromaSharpenRadius:    r.ChromaSharpenRadius * scale,

		LightnessSharpenAmount:    r.LightnessSharpenAmount,
		LightnessSharpenThreshold: r.LightnessSharpenThreshold,
		ChromaSharpenAmount:       r.ChromaSharpenAmount,
		ChromaSharpenThreshold:    r.ChromaSharpenThreshold,

		LightnessRippleAmount: r.LightnessRippleAmount,
		ChromaRippleAmount:    r.ChromaRippleAmount,
		RippleSize:            r.RippleSize,
	}
}

// DeriveParams derives the run parameters for scale from the default
// reference table.
func DeriveParams(scale float64) Params {
	return DefaultReference().Derive(scale)
}
