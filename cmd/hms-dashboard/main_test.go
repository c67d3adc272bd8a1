package main

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/hms/dashboard/internal/domain/widget"
)

func TestNewLogger_Level(t *testing.T) {
	if got := newLogger("production", "debug").GetLevel(); got != zerolog.DebugLevel {
		t.Errorf("expected debug, got %s", got)
	}
	if got := newLogger("production", "loud").GetLevel(); got != zerolog.InfoLevel {
		t.Errorf("expected fallback to info, got %s", got)
	}
	if got := newLogger("production", "").GetLevel(); got != zerolog.InfoLevel {
		t.Errorf("expected info for empty level, got %s", got)
	}
}

func TestRenderWidget_SVG(t *testing.T) {
	var buf bytes.Buffer
	err := renderWidget(&buf, renderOptions{Widget: "revenue", Seed: 7, Format: "svg", Width: 640, Height: 320})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Errorf("expected svg output, got %.60q", buf.String())
	}
}

func TestRenderWidget_Reproducible(t *testing.T) {
	var a, b bytes.Buffer
	opts := renderOptions{Widget: "patient-overview", Seed: 7, Format: "svg", Width: 640, Height: 320}
	if err := renderWidget(&a, opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := renderWidget(&b, opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("expected identical renders for the same seed")
	}
}

func TestRenderWidget_PNGAndHTML(t *testing.T) {
	var png bytes.Buffer
	if err := renderWidget(&png, renderOptions{Widget: "appointments", Seed: 1, Format: "png"}); err != nil {
		t.Fatalf("png: %v", err)
	}
	if ct := http.DetectContentType(png.Bytes()); ct != "image/png" {
		t.Errorf("expected png, got %s", ct)
	}

	var html bytes.Buffer
	if err := renderWidget(&html, renderOptions{Widget: "patient-report", Seed: 1, Format: "html"}); err != nil {
		t.Fatalf("html: %v", err)
	}
	if !strings.Contains(html.String(), "echarts") {
		t.Error("expected an echarts page")
	}
}

func TestRenderWidget_Errors(t *testing.T) {
	var buf bytes.Buffer
	if err := renderWidget(&buf, renderOptions{Widget: "nope", Format: "svg"}); !errors.Is(err, widget.ErrUnknownDefinition) {
		t.Errorf("expected ErrUnknownDefinition, got %v", err)
	}
	if err := renderWidget(&buf, renderOptions{Widget: "revenue", Format: "gif"}); err == nil {
		t.Error("expected error for unknown format")
	}
	if err := renderWidget(&buf, renderOptions{Widget: "revenue", Format: "svg", Year: 1900}); !errors.Is(err, widget.ErrInvalidYear) {
		t.Errorf("expected ErrInvalidYear, got %v", err)
	}
}

func TestExportWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.xlsx")
	w, closeFn, err := openOutput(path, nil)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	if err := exportWorkbook(w, 7, []string{"revenue", "appointments"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	book, err := excelize.OpenReader(f)
	if err != nil {
		t.Fatalf("read workbook: %v", err)
	}
	defer book.Close()
	sheets := book.GetSheetList()
	if len(sheets) != 2 {
		t.Fatalf("expected 2 sheets, got %v", sheets)
	}
}

func TestExportWorkbook_WholeCatalog(t *testing.T) {
	var buf bytes.Buffer
	if err := exportWorkbook(&buf, 3, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	book, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("read workbook: %v", err)
	}
	defer book.Close()
	if got := len(book.GetSheetList()); got != len(widget.Catalog) {
		t.Errorf("expected %d sheets, got %d", len(widget.Catalog), got)
	}
}

func TestOpenOutput_Stdout(t *testing.T) {
	var buf bytes.Buffer
	w, closeFn, err := openOutput("-", &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != &buf {
		t.Error("expected stdout writer for -")
	}
	if err := closeFn(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
}
