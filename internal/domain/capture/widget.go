// Package capture implements the webcam capture widget: a live preview that
// can be frozen into a still image and retaken.
package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"time"
)

var (
	ErrDeviceNotReady  = errors.New("capture device has no frame")
	ErrAlreadyCaptured = errors.New("image already captured")
)

// JPEGQuality matches the default quality browsers use for image/jpeg
// screenshots.
const JPEGQuality = 92

const dataURLPrefix = "data:image/jpeg;base64,"

type State string

const (
	StateLive     State = "live"
	StateCaptured State = "captured"
)

// Widget is the capture state machine. It is not safe for concurrent use.
type Widget struct {
	device     Device
	state      State
	image      string
	capturedAt time.Time
}

func NewWidget(device Device) *Widget {
	return &Widget{device: device, state: StateLive}
}

func (w *Widget) State() State { return w.state }

// Image returns the captured data URL, or "" while live.
func (w *Widget) Image() string { return w.image }

func (w *Widget) CapturedAt() time.Time { return w.capturedAt }

// Capture grabs one frame from the device and holds it as a JPEG data URL.
func (w *Widget) Capture(ctx context.Context) (string, error) {
	if w.state == StateCaptured {
		return "", ErrAlreadyCaptured
	}
	frame, err := w.device.Frame(ctx)
	if err != nil {
		return "", fmt.Errorf("read frame: %w", err)
	}
	if len(frame) == 0 {
		return "", ErrDeviceNotReady
	}

	encoded, err := encodeJPEG(frame)
	if err != nil {
		return "", err
	}
	w.image = dataURLPrefix + base64.StdEncoding.EncodeToString(encoded)
	w.capturedAt = time.Now()
	w.state = StateCaptured
	return w.image, nil
}

// Retake discards the captured image and returns to the live preview.
func (w *Widget) Retake() {
	w.image = ""
	w.capturedAt = time.Time{}
	w.state = StateLive
}

// encodeJPEG passes JPEG frames through and re-encodes anything else.
func encodeJPEG(frame []byte) ([]byte, error) {
	if http.DetectContentType(frame) == "image/jpeg" {
		return frame, nil
	}
	if err := checkFrame(frame); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, errors.Join(ErrInvalidFrame, err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
