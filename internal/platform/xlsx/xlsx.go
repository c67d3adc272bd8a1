// Package xlsx exports dashboard datasets to an Excel workbook, one sheet per
// widget, with the data table and a native chart of the same kind.
package xlsx

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/hms/dashboard/internal/platform/chart"
)

// ErrNoSheets is returned when there is nothing to export.
var ErrNoSheets = errors.New("no sheets to export")

const maxSheetName = 31

// Sheet is one exported widget.
type Sheet struct {
	Name   string
	Title  string
	Config chart.Config
	Data   chart.Dataset
}

// Write encodes sheets as an xlsx workbook onto w.
func Write(w io.Writer, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return ErrNoSheets
	}

	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool)
	for i, s := range sheets {
		if err := s.Data.Validate(); err != nil {
			return fmt.Errorf("sheet %q: %w", s.Name, err)
		}
		name := uniqueName(sanitizeName(s.Name, i), used)

		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("rename first sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}

		if err := writeTable(f, name, s.Data); err != nil {
			return err
		}
		if err := addChart(f, name, s); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, data chart.Dataset) error {
	header := make([]interface{}, 0, len(data.Series)+1)
	header = append(header, "Category")
	for _, s := range data.Series {
		header = append(header, s.Label)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header on %q: %w", sheet, err)
	}

	for r, label := range data.Labels {
		row := make([]interface{}, 0, len(data.Series)+1)
		row = append(row, label)
		for _, s := range data.Series {
			row = append(row, s.Values[r])
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d on %q: %w", r+2, sheet, err)
		}
	}
	return nil
}

func addChart(f *excelize.File, sheet string, s Sheet) error {
	last := len(s.Data.Labels) + 1
	series := make([]excelize.ChartSeries, 0, len(s.Data.Series))
	for k := range s.Data.Series {
		col, err := excelize.ColumnNumberToName(k + 2)
		if err != nil {
			return err
		}
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!$%s$1", sheet, col),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, last),
			Values:     fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheet, col, col, last),
		})
		// Circular charts plot a single series.
		if s.Config.Kind.Circular() {
			break
		}
	}

	legend := "none"
	if s.Config.Legend.Display {
		legend = "bottom"
	}
	c := &excelize.Chart{
		Type:   chartType(s.Config.Kind),
		Series: series,
		Title:  []excelize.RichTextRun{{Text: s.Title}},
		Legend: excelize.ChartLegend{Position: legend},
	}
	if s.Config.Kind == chart.Doughnut {
		c.HoleSize = int(s.Config.Cutout)
	}

	anchor, err := excelize.CoordinatesToCellName(len(s.Data.Series)+3, 2)
	if err != nil {
		return err
	}
	if err := f.AddChart(sheet, anchor, c); err != nil {
		return fmt.Errorf("add chart on %q: %w", sheet, err)
	}
	return nil
}

func chartType(k chart.Kind) excelize.ChartType {
	switch k {
	case chart.Line:
		return excelize.Line
	case chart.Pie:
		return excelize.Pie
	case chart.Doughnut:
		return excelize.Doughnut
	default:
		return excelize.Col
	}
}

func sanitizeName(name string, i int) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\', '\'':
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = fmt.Sprintf("Widget %d", i+1)
	}
	return truncateRunes(name, maxSheetName)
}

// truncateRunes cuts s to at most n runes; excelize counts sheet names in
// runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func uniqueName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateRunes(name, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
