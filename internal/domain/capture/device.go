package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	// Decoders for the frame formats browsers produce.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

var (
	ErrEmptyFrame   = errors.New("frame is empty")
	ErrInvalidFrame = errors.New("frame is not a decodable image")
)

// MaxFramePixels bounds the declared size of a frame. Decoding allocates
// the whole bitmap up front, so the header is checked before any decode.
const MaxFramePixels = 4096 * 4096

// checkFrame reads the image header and rejects frames that do not decode
// or declare more than MaxFramePixels.
func checkFrame(frame []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(frame))
	if err != nil {
		return errors.Join(ErrInvalidFrame, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxFramePixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidFrame, cfg.Width, cfg.Height, MaxFramePixels)
	}
	return nil
}

// Device is a source of still frames. Frame returns nil, nil while the
// device has nothing to show yet.
type Device interface {
	Frame(ctx context.Context) ([]byte, error)
}

// FrameBuffer is a Device fed by the client: it holds the most recent frame
// pushed to it.
type FrameBuffer struct {
	mu      sync.Mutex
	frame   []byte
	updated time.Time
}

func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Push replaces the held frame. The frame must decode as JPEG, PNG or WebP
// and stay within MaxFramePixels.
func (b *FrameBuffer) Push(frame []byte) error {
	if len(frame) == 0 {
		return ErrEmptyFrame
	}
	if err := checkFrame(frame); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.frame = bytes.Clone(frame)
	b.updated = time.Now()
	return nil
}

// Frame returns a copy of the held frame, or nil if none was pushed.
func (b *FrameBuffer) Frame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frame == nil {
		return nil, nil
	}
	return bytes.Clone(b.frame), nil
}

// Updated returns when the last frame arrived; zero if none has.
func (b *FrameBuffer) Updated() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.updated
}

// Reset drops the held frame.
func (b *FrameBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frame = nil
	b.updated = time.Time{}
}
