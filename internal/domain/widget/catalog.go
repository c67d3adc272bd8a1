package widget

import (
	"github.com/hms/dashboard/internal/platform/chart"
)

// SeriesDef is one legend entry of a widget.
type SeriesDef struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// PartDef is one contribution to a gauge widget.
type PartDef struct {
	Name string `json:"name"`
	Max  int    `json:"max"`
}

// Definition describes a dashboard widget: what it draws and the bounds of
// the sample data behind it.
type Definition struct {
	ID      string            `json:"id"`
	Title   string            `json:"title"`
	Chart   chart.Kind        `json:"chart"`
	Max     int               `json:"max"`
	Series  []SeriesDef       `json:"series,omitempty"`
	Parts   []PartDef         `json:"parts,omitempty"`
	Split   bool              `json:"split,omitempty"`
	Legend  bool              `json:"legend"`
	Tooltip chart.TooltipMode `json:"tooltip"`
	Cutout  float64           `json:"cutout,omitempty"`
	Fill    bool              `json:"fill,omitempty"`
}

// IsGauge reports whether the widget shows a normalized dial.
func (d Definition) IsGauge() bool { return len(d.Parts) > 0 }

// Config derives the chart options for the widget.
func (d Definition) Config() chart.Config {
	cfg := chart.Config{
		Kind:    d.Chart,
		Title:   d.Title,
		Legend:  chart.Legend{Display: d.Legend},
		Tooltip: chart.Tooltip{Mode: d.Tooltip},
		Cutout:  d.Cutout,
	}
	if !d.Chart.Circular() {
		cfg.Scales.Y = chart.Axis{BeginAtZero: true, Max: float64(d.Max)}
	}
	return cfg
}

const (
	colorBlue   = "#2563eb"
	colorOrange = "#f97316"
	colorTeal   = "#14b8a6"
	colorPink   = "#ec4899"
	colorGreen  = "#22c55e"
	colorRed    = "#ef4444"
	colorTrack  = "#e5e7eb"
)

// Catalog lists the built-in dashboard widgets in display order.
var Catalog = []Definition{
	{
		ID:      "patient-overview",
		Title:   "Patient Overview",
		Chart:   chart.Line,
		Max:     100,
		Series:  []SeriesDef{{Name: "Admitted", Color: colorBlue}, {Name: "Discharged", Color: colorOrange}},
		Legend:  true,
		Tooltip: chart.TooltipIndex,
		Fill:    true,
	},
	{
		ID:      "revenue",
		Title:   "Revenue",
		Chart:   chart.Bar,
		Max:     1000,
		Series:  []SeriesDef{{Name: "Revenue", Color: colorTeal}},
		Tooltip: chart.TooltipIndex,
	},
	{
		ID:      "department-visits",
		Title:   "Department Visits",
		Chart:   chart.Bar,
		Max:     200,
		Series:  []SeriesDef{{Name: "OPD", Color: colorBlue}, {Name: "IPD", Color: colorPink}},
		Legend:  true,
		Tooltip: chart.TooltipIndex,
	},
	{
		ID:      "patient-demographics",
		Title:   "Patient Demographics",
		Chart:   chart.Pie,
		Max:     600,
		Series:  []SeriesDef{{Name: "Male", Color: colorBlue}, {Name: "Female", Color: colorPink}, {Name: "Child", Color: colorOrange}},
		Legend:  true,
		Tooltip: chart.TooltipPoint,
	},
	{
		ID:      "appointments",
		Title:   "Appointments",
		Chart:   chart.Doughnut,
		Max:     300,
		Series:  []SeriesDef{{Name: "Concluded", Color: colorGreen}, {Name: "Canceled", Color: colorRed}},
		Split:   true,
		Legend:  true,
		Tooltip: chart.TooltipPoint,
		Cutout:  70,
	},
	{
		ID:    "patient-report",
		Title: "Patient Report",
		Chart: chart.Doughnut,
		Max:   100,
		Parts: []PartDef{
			{Name: "today", Max: 150},
			{Name: "thisWeek", Max: 300},
			{Name: "thisMonth", Max: 600},
		},
		Tooltip: chart.TooltipPoint,
		Cutout:  80,
	},
	{
		ID:      "bed-occupancy",
		Title:   "Bed Occupancy",
		Chart:   chart.Doughnut,
		Max:     100,
		Parts:   []PartDef{{Name: "occupied", Max: 100}},
		Tooltip: chart.TooltipPoint,
		Cutout:  80,
	},
}

// Lookup finds a catalog definition by id.
func Lookup(id string) (Definition, bool) {
	for _, d := range Catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}
