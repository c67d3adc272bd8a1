package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ECharts renders an interactive HTML page with go-echarts. Unlike GoChart
// it honours tooltip modes and the doughnut cutout.
type ECharts struct{}

func (ECharts) Create(canvas Canvas, cfg Config, data Dataset) (Instance, error) {
	inst := &echartsInstance{canvas: canvas, cfg: cfg}
	if err := inst.Update(data); err != nil {
		return nil, err
	}
	return inst, nil
}

type pageRenderer interface {
	Render(w io.Writer) error
}

type echartsInstance struct {
	canvas    Canvas
	cfg       Config
	page      pageRenderer
	destroyed bool
}

func (i *echartsInstance) Update(data Dataset) error {
	if i.destroyed {
		return ErrHandleDestroyed
	}
	page, err := i.build(data)
	if err != nil {
		return err
	}
	i.page = page
	return nil
}

func (i *echartsInstance) Render(w io.Writer) error {
	if i.destroyed {
		return ErrHandleDestroyed
	}
	return i.page.Render(w)
}

func (i *echartsInstance) ContentType() string { return "text/html; charset=utf-8" }

func (i *echartsInstance) Destroy() error {
	i.destroyed = true
	i.page = nil
	return nil
}

func (i *echartsInstance) globals() []charts.GlobalOpts {
	width, height := i.canvas.size()
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: i.cfg.Title,
			ChartID:   i.canvas.ID,
			Width:     fmt.Sprintf("%dpx", width),
			Height:    fmt.Sprintf("%dpx", height),
		}),
		charts.WithTitleOpts(opts.Title{Title: i.cfg.Title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(i.cfg.Legend.Display)}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: tooltipTrigger(i.cfg.Kind, i.cfg.Tooltip.Mode),
		}),
	}
}

func (i *echartsInstance) build(data Dataset) (pageRenderer, error) {
	switch i.cfg.Kind {
	case Bar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(append(i.globals(),
			charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: i.cfg.yMax(data)}),
		)...)
		bar.SetXAxis(data.Labels)
		for _, s := range data.Series {
			items := make([]opts.BarData, len(s.Values))
			for n, v := range s.Values {
				items[n] = opts.BarData{Value: v}
			}
			var so []charts.SeriesOpts
			if s.Color != "" {
				so = append(so, charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}))
			}
			bar.AddSeries(s.Label, items, so...)
		}
		return bar, nil

	case Line:
		line := charts.NewLine()
		line.SetGlobalOptions(append(i.globals(),
			charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: i.cfg.yMax(data)}),
		)...)
		line.SetXAxis(data.Labels)
		for _, s := range data.Series {
			items := make([]opts.LineData, len(s.Values))
			for n, v := range s.Values {
				items[n] = opts.LineData{Value: v}
			}
			var so []charts.SeriesOpts
			if s.Color != "" {
				so = append(so,
					charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
					charts.WithLineStyleOpts(opts.LineStyle{Color: s.Color, Width: float32(s.Shape.BorderWidth)}),
				)
			}
			if s.Shape.Fill {
				so = append(so, charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: 0.25}))
			}
			line.AddSeries(s.Label, items, so...)
		}
		return line, nil

	case Pie, Doughnut:
		pie := charts.NewPie()
		pie.SetGlobalOptions(i.globals()...)
		s := data.Series[0]
		items := make([]opts.PieData, len(data.Labels))
		for n, label := range data.Labels {
			items[n] = opts.PieData{Name: label, Value: s.Values[n]}
			if c := pointColor(s, n); c != "" {
				items[n].ItemStyle = &opts.ItemStyle{Color: c}
			}
		}
		radius := []string{"0%", "75%"}
		if i.cfg.Kind == Doughnut {
			cutout := i.cfg.Cutout
			if cutout == 0 {
				cutout = 50
			}
			radius = []string{fmt.Sprintf("%.0f%%", cutout*0.75), "75%"}
		}
		pie.AddSeries(s.Label, items, charts.WithPieChartOpts(opts.PieChart{Radius: radius}))
		return pie, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, i.cfg.Kind)
}

// tooltipTrigger maps tooltip modes onto echarts triggers. Circular charts
// have no category axis so they always trigger per item.
func tooltipTrigger(kind Kind, mode TooltipMode) string {
	if kind.Circular() {
		return "item"
	}
	if mode == TooltipIndex || mode == "" {
		return "axis"
	}
	return "item"
}
