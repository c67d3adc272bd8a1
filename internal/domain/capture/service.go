package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrNotFound = errors.New("capture session not found")

// Session is the externally visible state of one capture widget.
type Session struct {
	ID         uuid.UUID  `json:"id"`
	State      State      `json:"state"`
	HasFrame   bool       `json:"has_frame"`
	Image      string     `json:"image,omitempty"`
	CapturedAt *time.Time `json:"captured_at,omitempty"`
	OpenedAt   time.Time  `json:"opened_at"`
}

type session struct {
	id       uuid.UUID
	buffer   *FrameBuffer
	widget   *Widget
	openedAt time.Time
}

func (s *session) view() Session {
	v := Session{
		ID:       s.id,
		State:    s.widget.State(),
		HasFrame: !s.buffer.Updated().IsZero(),
		Image:    s.widget.Image(),
		OpenedAt: s.openedAt,
	}
	if t := s.widget.CapturedAt(); !t.IsZero() {
		v.CapturedAt = &t
	}
	return v
}

// Service keeps the open capture sessions, each backed by its own frame
// buffer.
type Service struct {
	mu       sync.Mutex
	logger   zerolog.Logger
	sessions map[uuid.UUID]*session
}

func NewService(logger zerolog.Logger) *Service {
	return &Service{
		logger:   logger.With().Str("component", "capture").Logger(),
		sessions: make(map[uuid.UUID]*session),
	}
}

// Open starts a new live session with an empty frame buffer.
func (s *Service) Open() Session {
	buf := NewFrameBuffer()
	sess := &session{
		id:       uuid.New(),
		buffer:   buf,
		widget:   NewWidget(buf),
		openedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logger.Info().Str("session_id", sess.id.String()).Msg("capture session opened")
	return sess.view()
}

func (s *Service) Get(id uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	v := sess.view()
	return &v, nil
}

// PushFrame feeds the session's live preview.
func (s *Service) PushFrame(id uuid.UUID, frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	return sess.buffer.Push(frame)
}

func (s *Service) Capture(ctx context.Context, id uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if _, err := sess.widget.Capture(ctx); err != nil {
		return nil, err
	}
	s.logger.Debug().Str("session_id", id.String()).Msg("image captured")
	v := sess.view()
	return &v, nil
}

func (s *Service) Retake(id uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.widget.Retake()
	v := sess.view()
	return &v, nil
}

// Close ends the session and drops any frame or image it held.
func (s *Service) Close(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	sess.widget.Retake()
	sess.buffer.Reset()
	delete(s.sessions, id)
	s.logger.Info().Str("session_id", id.String()).Msg("capture session closed")
	return nil
}

// CloseAll ends every session.
func (s *Service) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.widget.Retake()
		sess.buffer.Reset()
		delete(s.sessions, id)
	}
}

// Len returns the number of open sessions.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Service) lookup(id uuid.UUID) (*session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, nil
}
