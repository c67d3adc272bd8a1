package capture

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// DefaultMaxFrameBytes bounds a pushed frame.
const DefaultMaxFrameBytes = 5 << 20

type Handler struct {
	svc           *Service
	maxFrameBytes int64
}

func NewHandler(svc *Service, maxFrameBytes int64) *Handler {
	if maxFrameBytes <= 0 {
		maxFrameBytes = DefaultMaxFrameBytes
	}
	return &Handler{svc: svc, maxFrameBytes: maxFrameBytes}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/capture", h.OpenSession)
	api.GET("/capture/:id", h.GetSession)
	api.PUT("/capture/:id/frame", h.PushFrame)
	api.POST("/capture/:id/capture", h.Capture)
	api.POST("/capture/:id/retake", h.Retake)
	api.DELETE("/capture/:id", h.CloseSession)
}

func (h *Handler) OpenSession(c echo.Context) error {
	return c.JSON(http.StatusCreated, h.svc.Open())
}

func (h *Handler) GetSession(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	sess, err := h.svc.Get(id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *Handler) PushFrame(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	frame, err := io.ReadAll(io.LimitReader(c.Request().Body, h.maxFrameBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read frame")
	}
	if int64(len(frame)) > h.maxFrameBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "frame too large")
	}
	if err := h.svc.PushFrame(id, frame); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Capture(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	sess, err := h.svc.Capture(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *Handler) Retake(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	sess, err := h.svc.Retake(id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *Handler) CloseSession(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Close(id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func sessionID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid session id")
	}
	return id, nil
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrEmptyFrame), errors.Is(err, ErrInvalidFrame):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDeviceNotReady), errors.Is(err, ErrAlreadyCaptured):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "capture failed")
}
