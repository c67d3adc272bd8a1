package appinit

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	app *App
}

func NewHandler(app *App) *Handler {
	return &Handler{app: app}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/app-config", h.GetConfig)
}

// GetConfig publishes the client configuration to the front-end.
func (h *Handler) GetConfig(c echo.Context) error {
	if h.app == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, ErrNotInitialized.Error())
	}
	cfg := h.app.Config()
	if !cfg.Complete() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "app config is incomplete")
	}
	return c.JSON(http.StatusOK, cfg)
}
