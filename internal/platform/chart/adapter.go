package chart

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Handle is the owner's reference to a live instance.
type Handle struct {
	ID     uuid.UUID
	Canvas Canvas
	Config Config

	inst Instance
	data Dataset
	live bool
}

// Live reports whether the handle still owns its canvas.
func (h *Handle) Live() bool { return h != nil && h.live }

// Adapter maps datasets onto library instances, keeping at most one live
// instance per canvas id.
type Adapter struct {
	mu     sync.Mutex
	lib    Library
	logger zerolog.Logger
	live   map[string]*Handle
}

func NewAdapter(lib Library, logger zerolog.Logger) *Adapter {
	return &Adapter{
		lib:    lib,
		logger: logger.With().Str("component", "chart").Logger(),
		live:   make(map[string]*Handle),
	}
}

// Bind creates a new instance on canvas. Any instance already bound to the
// canvas is destroyed first; if creation then fails the canvas is left empty.
func (a *Adapter) Bind(canvas Canvas, cfg Config, data Dataset) (*Handle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bindLocked(canvas, cfg, data)
}

func (a *Adapter) bindLocked(canvas Canvas, cfg Config, data Dataset) (*Handle, error) {
	if prev, ok := a.live[canvas.ID]; ok {
		a.releaseLocked(prev)
	}

	inst, err := a.lib.Create(canvas, cfg, data)
	if err != nil {
		if inst != nil {
			_ = inst.Destroy()
		}
		a.logger.Warn().Err(err).Str("canvas", canvas.ID).Str("kind", string(cfg.Kind)).Msg("chart creation failed")
		return nil, fmt.Errorf("create %s chart on %q: %w", cfg.Kind, canvas.ID, err)
	}

	h := &Handle{
		ID:     uuid.New(),
		Canvas: canvas,
		Config: cfg,
		inst:   inst,
		data:   data,
		live:   true,
	}
	a.live[canvas.ID] = h
	a.logger.Debug().Str("handle", h.ID.String()).Str("canvas", canvas.ID).Str("kind", string(cfg.Kind)).Msg("chart bound")
	return h, nil
}

// Rebind updates the values of a live instance in place. It refuses a
// dataset whose axis length or series count differs from the bound one.
func (a *Adapter) Rebind(h *Handle, data Dataset) error {
	if err := data.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rebindLocked(h, data)
}

func (a *Adapter) rebindLocked(h *Handle, data Dataset) error {
	if !h.Live() {
		return ErrHandleDestroyed
	}
	if !h.data.SameShape(data) {
		return fmt.Errorf("%w: %d×%d to %d×%d", ErrStructuralChange,
			len(h.data.Series), len(h.data.Labels), len(data.Series), len(data.Labels))
	}
	if err := h.inst.Update(data); err != nil {
		return fmt.Errorf("update chart %s: %w", h.ID, err)
	}
	h.data = data
	return nil
}

// Apply binds data to canvas using the cheapest correct path: an in-place
// update when only values changed, destroy and recreate otherwise or when the
// in-place update fails.
func (a *Adapter) Apply(canvas Canvas, cfg Config, data Dataset) (*Handle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if h, ok := a.live[canvas.ID]; ok && h.Config == cfg && h.Canvas == canvas && h.data.SameShape(data) {
		err := a.rebindLocked(h, data)
		if err == nil {
			return h, nil
		}
		// bindLocked releases h before creating its replacement.
		a.logger.Warn().Err(err).Str("handle", h.ID.String()).Msg("in-place update failed, recreating chart")
	}
	return a.bindLocked(canvas, cfg, data)
}

// Destroy releases the handle's canvas. Destroying a dead handle is a no-op.
func (a *Adapter) Destroy(h *Handle) error {
	if h == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.releaseLocked(h)
}

func (a *Adapter) releaseLocked(h *Handle) error {
	if !h.live {
		return nil
	}
	h.live = false
	if cur, ok := a.live[h.Canvas.ID]; ok && cur == h {
		delete(a.live, h.Canvas.ID)
	}
	err := h.inst.Destroy()
	h.inst = nil
	if err != nil {
		a.logger.Warn().Err(err).Str("handle", h.ID.String()).Msg("chart destroy failed")
		return fmt.Errorf("destroy chart %s: %w", h.ID, err)
	}
	a.logger.Debug().Str("handle", h.ID.String()).Str("canvas", h.Canvas.ID).Msg("chart destroyed")
	return nil
}

// Live returns the number of live instances on the canvas (0 or 1).
func (a *Adapter) Live(canvasID string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.live[canvasID]; ok {
		return 1
	}
	return 0
}

// Render writes the handle's current drawing.
func (a *Adapter) Render(h *Handle, w io.Writer) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !h.Live() {
		return ErrHandleDestroyed
	}
	return h.inst.Render(w)
}

// ContentType returns the MIME type of the handle's drawing.
func (a *Adapter) ContentType(h *Handle) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !h.Live() {
		return ""
	}
	return h.inst.ContentType()
}
