package adjust

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pictools/labrador/pkg/lab"
)

// RippleSize enumerates the wavelength presets of the ripple distortion.
type RippleSize int

const (
	RippleSmall RippleSize = iota
	RippleMedium
	RippleLarge
)

func (s RippleSize) String() string {
	switch s {
	case RippleSmall:
		return "small"
	case RippleMedium:
		return "medium"
	case RippleLarge:
		return "large"
	}
	return fmt.Sprintf("RippleSize(%d)", int(s))
}

var rippleSizes = map[string]RippleSize{
	"small":  RippleSmall,
	"medium": RippleMedium,
	"large":  RippleLarge,
}

// ParseRippleSize resolves a size name to its preset. Unrecognized names
// fall back to medium rather than failing.
func ParseRippleSize(name string) RippleSize {
	if s, ok := rippleSizes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return s
	}
	return RippleMedium
}

// ActionParams carries the parameters of a generic named action.
type ActionParams map[string]any

// Action and parameter names understood by executors.
const (
	ActionRipple = "ripple"

	ParamAmount = "amount"
	ParamSize   = "size"
)

// FilterExecutor performs the pixel math for the pipeline. Implementations
// mutate img in place, restricted to the channels in sel, and may reject
// parameters outside their accepted ranges. Blur radius, sharpen amount,
// radius, and threshold follow the conventional image-processing meanings;
// anything less common goes through Action with a named parameter map.
type FilterExecutor interface {
	Blur(img *lab.Image, sel lab.Selection, radius float64) error
	Sharpen(img *lab.Image, sel lab.Selection, amount int, radius float64, threshold int) error
	Action(img *lab.Image, sel lab.Selection, name string, params ActionParams) error
}

var (
	executorsMu sync.RWMutex
	executors   = map[string]func() (FilterExecutor, error){}
)

// RegisterExecutor makes a named executor constructor available to
// NewExecutor. It is intended to be called from an init function, usually
// behind a blank import of the implementing package, the same way image
// codecs register themselves.
func RegisterExecutor(name string, factory func() (FilterExecutor, error)) {
	executorsMu.Lock()
	defer executorsMu.Unlock()
	if factory == nil {
		panic("adjust: RegisterExecutor with nil factory for " + name)
	}
	if _, dup := executors[name]; dup {
		panic("adjust: RegisterExecutor called twice for " + name)
	}
	executors[name] = factory
}

// NewExecutor constructs the named executor.
func NewExecutor(name string) (FilterExecutor, error) {
	executorsMu.RLock()
	factory, ok := executors[name]
	executorsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown executor %q (registered: %s)",
			name, strings.Join(ExecutorNames(), ", "))
	}
	return factory()
}

// ExecutorNames returns the registered executor names, sorted.
func ExecutorNames() []string {
	executorsMu.RLock()
	defer executorsMu.RUnlock()
	names := make([]string, 0, len(executors))
	for name := range executors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
