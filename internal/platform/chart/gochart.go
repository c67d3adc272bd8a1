package chart

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format is the image encoding produced by the GoChart backend.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

// ParseFormat validates an image format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case SVG, PNG:
		return f, nil
	}
	return "", fmt.Errorf("unknown image format %q", s)
}

// GoChart renders static images with go-chart.
type GoChart struct {
	Format Format
}

// Create draws the chart once onto a fresh surface.
func (g GoChart) Create(canvas Canvas, cfg Config, data Dataset) (Instance, error) {
	format := g.Format
	if format == "" {
		format = SVG
	}
	inst := &goChartInstance{canvas: canvas, cfg: cfg, format: format}
	if err := inst.draw(data); err != nil {
		return nil, err
	}
	return inst, nil
}

type goChartInstance struct {
	canvas    Canvas
	cfg       Config
	format    Format
	surface   bytes.Buffer
	destroyed bool
}

func (i *goChartInstance) Update(data Dataset) error {
	if i.destroyed {
		return ErrHandleDestroyed
	}
	return i.draw(data)
}

func (i *goChartInstance) Render(w io.Writer) error {
	if i.destroyed {
		return ErrHandleDestroyed
	}
	_, err := w.Write(i.surface.Bytes())
	return err
}

func (i *goChartInstance) ContentType() string {
	if i.format == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (i *goChartInstance) Destroy() error {
	i.destroyed = true
	i.surface = bytes.Buffer{}
	return nil
}

func (i *goChartInstance) provider() gochart.RendererProvider {
	if i.format == PNG {
		return gochart.PNG
	}
	return gochart.SVG
}

// draw renders into a scratch buffer and only swaps it in on success, so a
// failed redraw keeps the previous image.
func (i *goChartInstance) draw(data Dataset) error {
	var buf bytes.Buffer
	var err error
	switch i.cfg.Kind {
	case Bar:
		err = i.drawBar(&buf, data)
	case Line:
		err = i.drawLine(&buf, data)
	case Pie, Doughnut:
		err = i.drawCircular(&buf, data)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownKind, i.cfg.Kind)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", i.cfg.Kind, err)
	}
	i.surface = buf
	return nil
}

func (i *goChartInstance) background() gochart.Style {
	return gochart.Style{
		Padding: gochart.Box{Top: 30, Left: 20, Right: 20, Bottom: 20},
	}
}

func (i *goChartInstance) yAxis(data Dataset) gochart.YAxis {
	return gochart.YAxis{
		Range: &gochart.ContinuousRange{Min: 0, Max: i.cfg.yMax(data)},
		ValueFormatter: func(v interface{}) string {
			if f, ok := v.(float64); ok {
				return fmt.Sprintf("%.0f", f)
			}
			return ""
		},
	}
}

func (i *goChartInstance) drawBar(w io.Writer, data Dataset) error {
	width, height := i.canvas.size()

	if len(data.Series) == 1 {
		s := data.Series[0]
		bars := make([]gochart.Value, len(data.Labels))
		for n, label := range data.Labels {
			bars[n] = gochart.Value{
				Label: label,
				Value: s.Values[n],
				Style: fillStyle(pointColor(s, n)),
			}
		}
		graph := gochart.BarChart{
			Title:      i.cfg.Title,
			Width:      width,
			Height:     height,
			BarWidth:   barWidth(width, len(bars)),
			Background: i.background(),
			YAxis:      i.yAxis(data),
			Bars:       bars,
		}
		return graph.Render(i.provider(), w)
	}

	// Several series share each category: stack them.
	stacks := make([]gochart.StackedBar, len(data.Labels))
	for n, label := range data.Labels {
		values := make([]gochart.Value, len(data.Series))
		for k, s := range data.Series {
			values[k] = gochart.Value{
				Label: s.Label,
				Value: s.Values[n],
				Style: fillStyle(s.Color),
			}
		}
		stacks[n] = gochart.StackedBar{Name: label, Values: values}
	}
	graph := gochart.StackedBarChart{
		Title:      i.cfg.Title,
		Width:      width,
		Height:     height,
		Background: i.background(),
		Bars:       stacks,
	}
	return graph.Render(i.provider(), w)
}

func (i *goChartInstance) drawLine(w io.Writer, data Dataset) error {
	width, height := i.canvas.size()

	xValues := make([]float64, len(data.Labels))
	ticks := make([]gochart.Tick, len(data.Labels))
	for n, label := range data.Labels {
		xValues[n] = float64(n)
		ticks[n] = gochart.Tick{Value: float64(n), Label: label}
	}

	series := make([]gochart.Series, 0, len(data.Series))
	for _, s := range data.Series {
		style := gochart.Style{
			StrokeColor: hexColor(s.Color),
			StrokeWidth: s.Shape.BorderWidth,
			DotColor:    hexColor(s.Color),
			DotWidth:    s.Shape.PointRadius,
		}
		if style.StrokeWidth == 0 {
			style.StrokeWidth = 2
		}
		if s.Shape.Fill && s.Color != "" {
			style.FillColor = hexColor(s.Color).WithAlpha(64)
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    s.Label,
			XValues: xValues,
			YValues: s.Values,
			Style:   style,
		})
	}

	graph := &gochart.Chart{
		Title:      i.cfg.Title,
		Width:      width,
		Height:     height,
		Background: i.background(),
		XAxis: gochart.XAxis{
			Ticks:        ticks,
			TickPosition: gochart.TickPositionUnderTick,
		},
		YAxis:  i.yAxis(data),
		Series: series,
	}
	if i.cfg.Legend.Display {
		graph.Elements = []gochart.Renderable{gochart.Legend(graph)}
	}
	return graph.Render(i.provider(), w)
}

func (i *goChartInstance) drawCircular(w io.Writer, data Dataset) error {
	width, height := i.canvas.size()

	s := data.Series[0]
	values := make([]gochart.Value, 0, len(data.Labels))
	var total float64
	for n, label := range data.Labels {
		total += s.Values[n]
		values = append(values, gochart.Value{
			Label: label,
			Value: s.Values[n],
			Style: fillStyle(pointColor(s, n)),
		})
	}
	// go-chart refuses a circle with no positive slice.
	if total <= 0 {
		values = []gochart.Value{{
			Label: "No data",
			Value: 1,
			Style: fillStyle("#e5e7eb"),
		}}
	}

	if i.cfg.Kind == Doughnut {
		graph := gochart.DonutChart{
			Title:      i.cfg.Title,
			Width:      width,
			Height:     height,
			Background: i.background(),
			Values:     values,
		}
		return graph.Render(i.provider(), w)
	}
	graph := gochart.PieChart{
		Title:      i.cfg.Title,
		Width:      width,
		Height:     height,
		Background: i.background(),
		Values:     values,
	}
	return graph.Render(i.provider(), w)
}

func barWidth(width, bars int) int {
	if bars == 0 {
		return 0
	}
	bw := width / (bars * 2)
	if bw < 4 {
		bw = 4
	}
	return bw
}

func pointColor(s Series, n int) string {
	if n < len(s.Colors) && s.Colors[n] != "" {
		return s.Colors[n]
	}
	return s.Color
}

func fillStyle(color string) gochart.Style {
	c := hexColor(color)
	return gochart.Style{FillColor: c, StrokeColor: c}
}

// hexColor returns the zero colour for an empty string, which go-chart
// treats as "use the default palette".
func hexColor(s string) drawing.Color {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return drawing.Color{}
	}
	return drawing.ColorFromHex(s)
}
