package widget

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/dashboard/internal/domain/sample"
	"github.com/hms/dashboard/internal/platform/chart"
	"github.com/hms/dashboard/internal/platform/xlsx"
)

var (
	ErrNotFound          = errors.New("widget not found")
	ErrUnknownDefinition = errors.New("unknown widget definition")
)

// Options configures a Service.
type Options struct {
	Width     int
	Height    int
	YearCount int
	Now       func() time.Time
}

// Service keeps the mounted widgets. All shell access goes through its lock
// so each widget has one writer at a time.
type Service struct {
	mu      sync.Mutex
	adapter *chart.Adapter
	gen     *sample.Generator
	opts    Options
	logger  zerolog.Logger
	widgets map[uuid.UUID]*Shell
	order   []uuid.UUID
}

func NewService(adapter *chart.Adapter, gen *sample.Generator, opts Options, logger zerolog.Logger) *Service {
	if opts.YearCount <= 0 {
		opts.YearCount = 4
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		adapter: adapter,
		gen:     gen,
		opts:    opts,
		logger:  logger.With().Str("component", "widget").Logger(),
		widgets: make(map[uuid.UUID]*Shell),
	}
}

// Catalog returns the widgets that can be mounted.
func (s *Service) Catalog() []Definition {
	return Catalog
}

// Mount creates and mounts a widget from the catalog.
func (s *Service) Mount(definitionID string) (*Snapshot, error) {
	def, ok := Lookup(definitionID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDefinition, definitionID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.Now()
	shell := NewShell(def, s.gen, s.adapter, s.opts.Width, s.opts.Height, YearOptions(now, s.opts.YearCount))
	if err := shell.Mount(now); err != nil {
		return nil, err
	}
	s.widgets[shell.ID] = shell
	s.order = append(s.order, shell.ID)

	s.logger.Info().Str("widget_id", shell.ID.String()).Str("definition", def.ID).Msg("widget mounted")
	snap := shell.Snapshot()
	return &snap, nil
}

// Get returns the snapshot of a mounted widget.
func (s *Service) Get(id uuid.UUID) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shell, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	snap := shell.Snapshot()
	return &snap, nil
}

// List returns mounted widgets in mount order, paginated.
func (s *Service) List(limit, offset int) ([]Snapshot, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.order)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	out := make([]Snapshot, 0, end-offset)
	for _, id := range s.order[offset:end] {
		out = append(out, s.widgets[id].Snapshot())
	}
	return out, total
}

// SelectYear regenerates a widget's data for the chosen year.
func (s *Service) SelectYear(id uuid.UUID, year int) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shell, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := shell.SelectYear(year); err != nil {
		return nil, err
	}
	s.logger.Debug().Str("widget_id", id.String()).Int("year", year).Msg("widget regenerated")
	snap := shell.Snapshot()
	return &snap, nil
}

// Render writes the widget's chart and returns its MIME type.
func (s *Service) Render(id uuid.UUID, w io.Writer) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shell, err := s.lookup(id)
	if err != nil {
		return "", err
	}
	return shell.Render(w)
}

// RenderAs draws the widget once with another chart library.
func (s *Service) RenderAs(id uuid.UUID, lib chart.Library, w io.Writer) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shell, err := s.lookup(id)
	if err != nil {
		return "", err
	}
	return shell.RenderWith(lib, w)
}

// Export writes the given widgets (all mounted widgets when ids is empty) as
// an xlsx workbook.
func (s *Service) Export(w io.Writer, ids ...uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) == 0 {
		ids = s.order
	}
	sheets := make([]xlsx.Sheet, 0, len(ids))
	for _, id := range ids {
		shell, err := s.lookup(id)
		if err != nil {
			return err
		}
		def := shell.Definition()
		sheets = append(sheets, xlsx.Sheet{
			Name:   def.Title,
			Title:  def.Title,
			Config: def.Config(),
			Data:   shell.Dataset(),
		})
	}
	return xlsx.Write(w, sheets...)
}

// Unmount releases a widget's chart and forgets it.
func (s *Service) Unmount(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shell, err := s.lookup(id)
	if err != nil {
		return err
	}
	delete(s.widgets, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.logger.Info().Str("widget_id", id.String()).Msg("widget unmounted")
	return shell.Unmount()
}

// Close unmounts every widget.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, id := range s.order {
		if err := s.widgets[id].Unmount(); err != nil {
			errs = append(errs, err)
		}
		delete(s.widgets, id)
	}
	s.order = nil
	return errors.Join(errs...)
}

func (s *Service) lookup(id uuid.UUID) (*Shell, error) {
	shell, ok := s.widgets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return shell, nil
}
