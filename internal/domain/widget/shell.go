package widget

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/hms/dashboard/internal/domain/gauge"
	"github.com/hms/dashboard/internal/domain/sample"
	"github.com/hms/dashboard/internal/platform/chart"
)

var (
	ErrUnmounted   = errors.New("widget is not mounted")
	ErrInvalidYear = errors.New("year is not selectable")
)

// State is the observable lifecycle state of a shell.
type State string

const (
	StateIdle         State = "idle"
	StateRegenerating State = "regenerating"
	StateUnmounted    State = "unmounted"
)

// YearOptions returns the selectable years, most recent first.
func YearOptions(now time.Time, n int) []int {
	years := make([]int, n)
	for i := range years {
		years[i] = now.Year() - i
	}
	return years
}

// Shell hosts one mounted widget: its sample data, the year selector and the
// chart handle drawn from them. A Shell has a single writer; callers
// serialize access.
type Shell struct {
	ID        uuid.UUID
	def       Definition
	gen       *sample.Generator
	adapter   *chart.Adapter
	canvas    chart.Canvas
	years     []int
	year      int
	state     State
	mountedAt time.Time

	series  []sample.Series
	split   *sample.AppointmentSplit
	parts   []gauge.Part
	reading *gauge.Reading
	handle  *chart.Handle
}

// NewShell prepares an unmounted shell. years must not be empty; the first
// entry is selected on mount.
func NewShell(def Definition, gen *sample.Generator, adapter *chart.Adapter, width, height int, years []int) *Shell {
	id := uuid.New()
	return &Shell{
		ID:      id,
		def:     def,
		gen:     gen,
		adapter: adapter,
		canvas:  chart.Canvas{ID: id.String(), Width: width, Height: height},
		years:   years,
		state:   StateUnmounted,
	}
}

// Definition returns the catalog entry the shell was built from.
func (s *Shell) Definition() Definition { return s.def }

// State returns the current lifecycle state.
func (s *Shell) State() State { return s.state }

// Mount generates the initial data and binds the chart.
func (s *Shell) Mount(now time.Time) error {
	if len(s.years) == 0 {
		return fmt.Errorf("mount %s: %w", s.def.ID, ErrInvalidYear)
	}
	s.year = s.years[0]
	if err := s.regenerate(); err != nil {
		return err
	}
	h, err := s.adapter.Bind(s.canvas, s.def.Config(), s.Dataset())
	if err != nil {
		return fmt.Errorf("mount %s: %w", s.def.ID, err)
	}
	s.handle = h
	s.mountedAt = now
	s.state = StateIdle
	return nil
}

// SelectYear regenerates the sample data and redraws. The year only labels
// the view; the values are fresh samples whichever year is chosen.
func (s *Shell) SelectYear(year int) error {
	if s.state == StateUnmounted {
		return ErrUnmounted
	}
	if !slices.Contains(s.years, year) {
		return fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}

	s.state = StateRegenerating
	defer func() { s.state = StateIdle }()

	s.year = year
	if err := s.regenerate(); err != nil {
		return err
	}
	h, err := s.adapter.Apply(s.canvas, s.def.Config(), s.Dataset())
	if err != nil {
		// Keep the old handle so Unmount still releases it if it is live.
		return fmt.Errorf("redraw %s: %w", s.def.ID, err)
	}
	s.handle = h
	return nil
}

// Unmount releases the chart. It is safe to call more than once.
func (s *Shell) Unmount() error {
	if s.state == StateUnmounted {
		return nil
	}
	s.state = StateUnmounted
	err := s.adapter.Destroy(s.handle)
	s.handle = nil
	return err
}

// Render writes the current chart and returns its MIME type.
func (s *Shell) Render(w io.Writer) (string, error) {
	if s.state == StateUnmounted {
		return "", ErrUnmounted
	}
	if !s.handle.Live() {
		return "", chart.ErrHandleDestroyed
	}
	ct := s.adapter.ContentType(s.handle)
	return ct, s.adapter.Render(s.handle, w)
}

// RenderWith draws the current data once with lib, on a scratch canvas, and
// releases the drawing afterwards. The bound chart is not touched.
func (s *Shell) RenderWith(lib chart.Library, w io.Writer) (string, error) {
	if s.state == StateUnmounted {
		return "", ErrUnmounted
	}
	canvas := s.canvas
	canvas.ID += "-preview"
	inst, err := lib.Create(canvas, s.def.Config(), s.Dataset())
	if err != nil {
		if inst != nil {
			_ = inst.Destroy()
		}
		return "", fmt.Errorf("render %s: %w", s.def.ID, err)
	}
	defer inst.Destroy()
	if err := inst.Render(w); err != nil {
		return "", err
	}
	return inst.ContentType(), nil
}

func (s *Shell) regenerate() error {
	switch {
	case s.def.IsGauge():
		parts := make([]gauge.Part, len(s.def.Parts))
		for i, p := range s.def.Parts {
			parts[i] = gauge.Part{Name: p.Name, Raw: float64(s.gen.Scalar(p.Max)), Max: float64(p.Max)}
		}
		r, err := gauge.NormalizeParts(parts...)
		if err != nil {
			return fmt.Errorf("normalize %s: %w", s.def.ID, err)
		}
		s.parts, s.reading = parts, &r

	case s.def.Split:
		split := s.gen.Split(s.gen.Scalar(s.def.Max))
		s.split = &split

	case s.def.Chart.Circular():
		slice := make(sample.Series, len(s.def.Series))
		for i := range s.def.Series {
			slice[i] = s.gen.Scalar(s.def.Max)
		}
		s.series = []sample.Series{slice}

	default:
		series := make([]sample.Series, len(s.def.Series))
		for i := range s.def.Series {
			series[i] = s.gen.Monthly(s.def.Max)
		}
		s.series = series
	}
	return nil
}

// Dataset converts the current sample data into a chart descriptor.
func (s *Shell) Dataset() chart.Dataset {
	switch {
	case s.reading != nil:
		filled, remaining := s.reading.Dial()
		return chart.Dataset{
			Labels: []string{s.reading.Band.Label(), "Remaining"},
			Series: []chart.Series{{
				Label:  s.def.Title,
				Values: []float64{filled, remaining},
				Colors: []string{s.reading.Band.Color(), colorTrack},
			}},
		}

	case s.split != nil:
		return chart.Dataset{
			Labels: []string{s.def.Series[0].Name, s.def.Series[1].Name},
			Series: []chart.Series{{
				Label:  s.def.Title,
				Values: []float64{float64(s.split.Concluded), float64(s.split.Canceled)},
				Colors: []string{s.def.Series[0].Color, s.def.Series[1].Color},
			}},
		}

	case s.def.Chart.Circular():
		labels := make([]string, len(s.def.Series))
		colors := make([]string, len(s.def.Series))
		for i, sd := range s.def.Series {
			labels[i], colors[i] = sd.Name, sd.Color
		}
		var values []float64
		if len(s.series) > 0 {
			values = s.series[0].Floats()
		}
		return chart.Dataset{
			Labels: labels,
			Series: []chart.Series{{Label: s.def.Title, Values: values, Colors: colors}},
		}
	}

	out := chart.Dataset{Labels: sample.MonthLabels}
	for i, sd := range s.def.Series {
		var values []float64
		if i < len(s.series) {
			values = s.series[i].Floats()
		}
		out.Series = append(out.Series, chart.Series{
			Label:  sd.Name,
			Values: values,
			Color:  sd.Color,
			Shape:  chart.Shape{BorderWidth: 2, PointRadius: 3, Fill: s.def.Fill},
		})
	}
	return out
}

// SeriesView is the JSON form of one displayed series.
type SeriesView struct {
	Name   string        `json:"name"`
	Color  string        `json:"color"`
	Values sample.Series `json:"values"`
}

// GaugeView is the JSON form of a gauge widget's reading.
type GaugeView struct {
	Reading gauge.Reading `json:"reading"`
	Parts   []gauge.Part  `json:"parts"`
	Label   string        `json:"label"`
	Color   string        `json:"color"`
}

// Snapshot is the externally visible state of a shell.
type Snapshot struct {
	ID         uuid.UUID                `json:"id"`
	Definition string                   `json:"definition"`
	Title      string                   `json:"title"`
	Chart      chart.Kind               `json:"chart"`
	State      State                    `json:"state"`
	Year       int                      `json:"year"`
	Years      []int                    `json:"years"`
	Legend     []SeriesDef              `json:"legend"`
	Labels     []string                 `json:"labels,omitempty"`
	Series     []SeriesView             `json:"series,omitempty"`
	Split      *sample.AppointmentSplit `json:"split,omitempty"`
	Gauge      *GaugeView               `json:"gauge,omitempty"`
	HandleID   *uuid.UUID               `json:"handle_id,omitempty"`
	MountedAt  time.Time                `json:"mounted_at"`
}

// Snapshot copies the shell state for display.
func (s *Shell) Snapshot() Snapshot {
	snap := Snapshot{
		ID:         s.ID,
		Definition: s.def.ID,
		Title:      s.def.Title,
		Chart:      s.def.Chart,
		State:      s.state,
		Year:       s.year,
		Years:      slices.Clone(s.years),
		Legend:     slices.Clone(s.def.Series),
		MountedAt:  s.mountedAt,
	}
	if s.handle.Live() {
		id := s.handle.ID
		snap.HandleID = &id
	}

	switch {
	case s.reading != nil:
		snap.Gauge = &GaugeView{
			Reading: *s.reading,
			Parts:   slices.Clone(s.parts),
			Label:   s.reading.Band.Label(),
			Color:   s.reading.Band.Color(),
		}
	case s.split != nil:
		split := *s.split
		snap.Split = &split
	case s.def.Chart.Circular():
		for i, sd := range s.def.Series {
			if len(s.series) == 0 {
				break
			}
			snap.Series = append(snap.Series, SeriesView{Name: sd.Name, Color: sd.Color, Values: sample.Series{s.series[0][i]}})
		}
	default:
		snap.Labels = sample.MonthLabels
		for i, sd := range s.def.Series {
			if i >= len(s.series) {
				break
			}
			snap.Series = append(snap.Series, SeriesView{Name: sd.Name, Color: sd.Color, Values: slices.Clone(s.series[i])})
		}
	}
	return snap
}
