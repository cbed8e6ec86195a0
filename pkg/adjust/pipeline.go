package adjust

import (
	"image"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/pictools/labrador/pkg/lab"
)

// Pipeline applies the fixed channel-scoped adjustment sequence to a working
// image through a FilterExecutor. The sequence is fourteen steps: convert to
// Lab, then per channel narrow the selection and run that channel's filter
// group (Lightness: blur, sharpen, ripple; a and b: ripple, blur, sharpen),
// then restore the composite selection. The order matters: sharpening after
// the blur amplifies what the blur left, and the chroma ripple runs before
// the blur so its displacement seams get smoothed away.
type Pipeline struct {
	exec FilterExecutor
	log  logrus.FieldLogger
}

// NewPipeline returns a pipeline over exec. A nil log disables logging.
func NewPipeline(exec FilterExecutor, log logrus.FieldLogger) *Pipeline {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Pipeline{exec: exec, log: log}
}

// Run converts src to Lab and applies the adjustment sequence, returning the
// processed image. The source is only read. On failure the partially
// processed image is abandoned, but its selection is still restored to
// composite before returning.
func (p *Pipeline) Run(src image.Image, params Params) (*lab.Image, error) {
	img, err := lab.FromImage(src)
	if err != nil {
		return nil, &ConversionError{Mode: "Lab", Err: err}
	}
	p.logStep(1, "convert", lab.Composite, logrus.Fields{"mode": "Lab"})

	defer img.Select(lab.Composite)

	if err := p.lightnessGroup(img, params); err != nil {
		return nil, err
	}
	if err := p.chromaGroup(img, lab.ChromaA, 6, params); err != nil {
		return nil, err
	}
	if err := p.chromaGroup(img, lab.ChromaB, 10, params); err != nil {
		return nil, err
	}

	img.Select(lab.Composite)
	p.logStep(14, "select", lab.Composite, nil)
	return img, nil
}

// lightnessGroup is steps 2 through 5: detail work on the L plane plus a
// deliberately subtle ripple.
func (p *Pipeline) lightnessGroup(img *lab.Image, params Params) error {
	sel := lab.Only(lab.Lightness)
	img.Select(sel)
	p.logStep(2, "select", sel, nil)

	if err := p.exec.Blur(img, sel, params.LightnessBlurRadius); err != nil {
		return &FilterError{Step: 3, Filter: "blur", Sel: sel, Err: err}
	}
	p.logStep(3, "blur", sel, logrus.Fields{"radius": params.LightnessBlurRadius})

	if err := p.exec.Sharpen(img, sel, params.LightnessSharpenAmount,
		params.LightnessSharpenRadius, params.LightnessSharpenThreshold); err != nil {
		return &FilterError{Step: 4, Filter: "sharpen", Sel: sel, Err: err}
	}
	p.logStep(4, "sharpen", sel, logrus.Fields{
		"amount":    params.LightnessSharpenAmount,
		"radius":    params.LightnessSharpenRadius,
		"threshold": params.LightnessSharpenThreshold,
	})

	if err := p.ripple(img, sel, params.LightnessRippleAmount, params.RippleSize); err != nil {
		return &FilterError{Step: 5, Filter: "ripple", Sel: sel, Err: err}
	}
	p.logStep(5, "ripple", sel, logrus.Fields{
		"amount": params.LightnessRippleAmount,
		"size":   params.RippleSize.String(),
	})
	return nil
}

// chromaGroup runs the shared a/b treatment starting at the given step
// number: select, ripple, blur, sharpen. Both chroma channels go through
// this one path so their treatment cannot drift apart.
func (p *Pipeline) chromaGroup(img *lab.Image, c lab.Channel, step int, params Params) error {
	sel := lab.Only(c)
	img.Select(sel)
	p.logStep(step, "select", sel, nil)

	if err := p.ripple(img, sel, params.ChromaRippleAmount, params.RippleSize); err != nil {
		return &FilterError{Step: step + 1, Filter: "ripple", Sel: sel, Err: err}
	}
	p.logStep(step+1, "ripple", sel, logrus.Fields{
		"amount": params.ChromaRippleAmount,
		"size":   params.RippleSize.String(),
	})

	if err := p.exec.Blur(img, sel, params.ChromaBlurRadius); err != nil {
		return &FilterError{Step: step + 2, Filter: "blur", Sel: sel, Err: err}
	}
	p.logStep(step+2, "blur", sel, logrus.Fields{"radius": params.ChromaBlurRadius})

	if err := p.exec.Sharpen(img, sel, params.ChromaSharpenAmount,
		params.ChromaSharpenRadius, params.ChromaSharpenThreshold); err != nil {
		return &FilterError{Step: step + 3, Filter: "sharpen", Sel: sel, Err: err}
	}
	p.logStep(step+3, "sharpen", sel, logrus.Fields{
		"amount":    params.ChromaSharpenAmount,
		"radius":    params.ChromaSharpenRadius,
		"threshold": params.ChromaSharpenThreshold,
	})
	return nil
}

// ripple goes through the generic action interface rather than a first-class
// filter call; the size preset travels as a typed value and is mapped to an
// executor-specific constant on the far side.
func (p *Pipeline) ripple(img *lab.Image, sel lab.Selection, amount int, size RippleSize) error {
	return p.exec.Action(img, sel, ActionRipple, ActionParams{
		ParamAmount: amount,
		ParamSize:   size,
	})
}

func (p *Pipeline) logStep(step int, op string, sel lab.Selection, extra logrus.Fields) {
	fields := logrus.Fields{"step": step, "op": op, "channels": sel.String()}
	for k, v := range extra {
		fields[k] = v
	}
	p.log.WithFields(fields).Debug("pipeline step")
}
