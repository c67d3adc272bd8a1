// Package chart binds dashboard datasets to a chart rendering library and
// owns the lifecycle of the resulting chart instances.
//
// The rendering library is reached through the Library and Instance
// interfaces. Two backends are provided: GoChart renders static PNG or SVG
// images and ECharts renders an interactive HTML page. Adapter guarantees
// that a canvas never has more than one live instance bound to it.
package chart

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrUnknownKind      = errors.New("unknown chart kind")
	ErrInvalidDataset   = errors.New("invalid dataset")
	ErrHandleDestroyed  = errors.New("chart handle destroyed")
	ErrStructuralChange = errors.New("dataset structure changed")
)

// Kind is the chart type tag passed to the library.
type Kind string

const (
	Bar      Kind = "bar"
	Line     Kind = "line"
	Doughnut Kind = "doughnut"
	Pie      Kind = "pie"
)

// ParseKind validates a chart type tag.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Bar, Line, Doughnut, Pie:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Circular reports whether the kind draws slices rather than axes.
func (k Kind) Circular() bool {
	return k == Doughnut || k == Pie
}

// TooltipMode selects how hovered points are matched.
type TooltipMode string

const (
	TooltipIndex   TooltipMode = "index"
	TooltipNearest TooltipMode = "nearest"
	TooltipPoint   TooltipMode = "point"
)

// Shape holds per-series drawing parameters.
type Shape struct {
	BorderWidth float64 `json:"border_width,omitempty"`
	PointRadius float64 `json:"point_radius,omitempty"`
	Fill        bool    `json:"fill,omitempty"`
}

// Series is one dataset within a chart. Colors, when set, colours each point
// individually (pie and doughnut slices); otherwise Color applies to the
// whole series.
type Series struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
	Color  string    `json:"color,omitempty"`
	Colors []string  `json:"colors,omitempty"`
	Shape  Shape     `json:"shape"`
}

// Dataset is the descriptor consumed by the library.
type Dataset struct {
	Labels []string `json:"labels"`
	Series []Series `json:"datasets"`
}

// Validate checks that every series has one value per label.
func (d Dataset) Validate() error {
	if len(d.Labels) == 0 {
		return fmt.Errorf("%w: no labels", ErrInvalidDataset)
	}
	if len(d.Series) == 0 {
		return fmt.Errorf("%w: no series", ErrInvalidDataset)
	}
	for _, s := range d.Series {
		if len(s.Values) != len(d.Labels) {
			return fmt.Errorf("%w: series %q has %d values for %d labels",
				ErrInvalidDataset, s.Label, len(s.Values), len(d.Labels))
		}
	}
	return nil
}

// SameShape reports whether two datasets share axis length and series count,
// so one can replace the other in place.
func (d Dataset) SameShape(o Dataset) bool {
	return len(d.Labels) == len(o.Labels) && len(d.Series) == len(o.Series)
}

// MaxValue returns the largest value across all series.
func (d Dataset) MaxValue() float64 {
	var m float64
	for _, s := range d.Series {
		for _, v := range s.Values {
			if v > m {
				m = v
			}
		}
	}
	return m
}

// Legend options.
type Legend struct {
	Display bool `json:"display"`
}

// Tooltip options.
type Tooltip struct {
	Mode TooltipMode `json:"mode"`
}

// Axis options.
type Axis struct {
	BeginAtZero bool    `json:"begin_at_zero"`
	Max         float64 `json:"max,omitempty"`
}

// Scales options.
type Scales struct {
	Y Axis `json:"y"`
}

// Config is the enumerated option set passed alongside the dataset. It is
// comparable; any difference between two configs forces a new instance.
type Config struct {
	Kind    Kind    `json:"kind"`
	Title   string  `json:"title,omitempty"`
	Legend  Legend  `json:"legend"`
	Tooltip Tooltip `json:"tooltip"`
	Scales  Scales  `json:"scales"`
	// Cutout is the doughnut hole as a percentage of the radius.
	Cutout float64 `json:"cutout,omitempty"`
}

// Validate checks the kind and numeric ranges.
func (c Config) Validate() error {
	if _, err := ParseKind(string(c.Kind)); err != nil {
		return err
	}
	if c.Cutout < 0 || c.Cutout >= 100 {
		return fmt.Errorf("%w: cutout %v outside [0,100)", ErrInvalidDataset, c.Cutout)
	}
	return nil
}

// yMax picks the value-axis ceiling: the configured maximum, or the data
// maximum with some headroom.
func (c Config) yMax(d Dataset) float64 {
	if c.Scales.Y.Max > 0 {
		return c.Scales.Y.Max
	}
	m := d.MaxValue() * 1.1
	if m < 1 {
		m = 1
	}
	return m
}

// Canvas is the drawing surface a chart is bound to.
type Canvas struct {
	ID     string `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (c Canvas) size() (int, int) {
	w, h := c.Width, c.Height
	if w <= 0 {
		w = 800
	}
	if h <= 0 {
		h = 400
	}
	return w, h
}

// Library creates chart instances.
type Library interface {
	Create(canvas Canvas, cfg Config, data Dataset) (Instance, error)
}

// Instance is a live chart drawn on a canvas.
type Instance interface {
	// Update replaces the values and redraws.
	Update(data Dataset) error
	// Render writes the current drawing.
	Render(w io.Writer) error
	// ContentType is the MIME type Render produces.
	ContentType() string
	// Destroy releases the canvas.
	Destroy() error
}
