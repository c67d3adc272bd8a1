package staff

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	presenter Presenter
}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/staff/modal", h.RenderModal)
}

type modalRequest struct {
	Visible bool         `json:"visible"`
	Staff   *StaffRecord `json:"staff"`
}

// RenderModal returns the modal view, or 204 when the modal is hidden.
func (h *Handler) RenderModal(c echo.Context) error {
	var req modalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	view := h.presenter.Render(req.Visible, req.Staff, nil)
	if view == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, view)
}
