package widget

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/dashboard/internal/domain/gauge"
	"github.com/hms/dashboard/internal/platform/chart"
	"github.com/hms/dashboard/internal/platform/middleware"
	"github.com/hms/dashboard/internal/platform/xlsx"
	"github.com/hms/dashboard/pkg/pagination"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/widgets/catalog", h.ListCatalog)
	api.GET("/widgets", h.ListWidgets)
	api.POST("/widgets", h.MountWidget)
	api.GET("/widgets/export", h.ExportAll)
	api.GET("/widgets/:id", h.GetWidget)
	api.PUT("/widgets/:id/year", h.SelectYear)
	api.GET("/widgets/:id/chart", h.RenderChart, middleware.ETag())
	api.GET("/widgets/:id/export", h.ExportWidget)
	api.DELETE("/widgets/:id", h.UnmountWidget)

	api.GET("/gauge", h.Normalize)
}

type mountRequest struct {
	Definition string `json:"definition"`
}

type yearRequest struct {
	Year int `json:"year"`
}

func (h *Handler) ListCatalog(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Catalog())
}

func (h *Handler) ListWidgets(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total := h.svc.List(pg.Limit, pg.Offset)
	resp := pagination.NewResponse(items, total, pg.Limit, pg.Offset).
		WithLinks(c.Request().URL.Path, c.QueryParams())
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) MountWidget(c echo.Context) error {
	var req mountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Definition == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "definition is required")
	}
	snap, err := h.svc.Mount(req.Definition)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, snap)
}

func (h *Handler) GetWidget(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	snap, err := h.svc.Get(id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, snap)
}

func (h *Handler) SelectYear(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req yearRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	snap, err := h.svc.SelectYear(id, req.Year)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, snap)
}

func (h *Handler) RenderChart(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var buf bytes.Buffer
	var ct string
	if format := c.QueryParam("format"); format != "" {
		lib, ok := formatLibrary(format)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "format must be svg, png or html")
		}
		ct, err = h.svc.RenderAs(id, lib, &buf)
	} else {
		ct, err = h.svc.Render(id, &buf)
	}
	if err != nil {
		return httpError(err)
	}
	return c.Blob(http.StatusOK, ct, buf.Bytes())
}

// formatLibrary picks the backend for an explicit ?format= override.
func formatLibrary(format string) (chart.Library, bool) {
	switch format {
	case "svg":
		return chart.GoChart{Format: chart.SVG}, true
	case "png":
		return chart.GoChart{Format: chart.PNG}, true
	case "html":
		return chart.ECharts{}, true
	}
	return nil, false
}

func (h *Handler) ExportWidget(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return h.export(c, "widget-"+id.String()+".xlsx", id)
}

func (h *Handler) ExportAll(c echo.Context) error {
	return h.export(c, "dashboard.xlsx")
}

func (h *Handler) export(c echo.Context, filename string, ids ...uuid.UUID) error {
	var buf bytes.Buffer
	if err := h.svc.Export(&buf, ids...); err != nil {
		return httpError(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}

func (h *Handler) UnmountWidget(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Unmount(id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Normalize is the stateless gauge endpoint: GET /gauge?raw=..&max=..
func (h *Handler) Normalize(c echo.Context) error {
	raw, err := strconv.ParseFloat(c.QueryParam("raw"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "raw must be a number")
	}
	max, err := strconv.ParseFloat(c.QueryParam("max"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "max must be a number")
	}
	r, err := gauge.Normalize(raw, max)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, GaugeView{
		Reading: r,
		Parts:   []gauge.Part{{Name: "value", Raw: raw, Max: max}},
		Label:   r.Band.Label(),
		Color:   r.Band.Color(),
	})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrUnknownDefinition),
		errors.Is(err, ErrInvalidYear),
		errors.Is(err, gauge.ErrInvalidArgument):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, xlsx.ErrNoSheets):
		return echo.NewHTTPError(http.StatusNotFound, "no widgets mounted")
	case errors.Is(err, ErrUnmounted):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
