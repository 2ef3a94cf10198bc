package progressreport

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/eldercare/eldercare/internal/platform/auth"
	"github.com/eldercare/eldercare/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	reports := api.Group("/progress-reports")

	read := reports.Group("", auth.RequirePrivilege(auth.PrivilegeViewer))
	read.GET("", h.ListReports)
	read.GET("/:id", h.GetReport)
	read.GET("/patient/:patient_id", h.ListByPatient)
	read.GET("/caregiver/:caregiver_id", h.ListByCaregiver)
	read.GET("/range", h.ListBetween)
	read.GET("/search", h.Search)
	read.GET("/latest", h.Latest)

	write := reports.Group("", auth.RequirePrivilege(auth.PrivilegeEditor))
	write.POST("", h.CreateReport)
	write.DELETE("/:id", h.DeleteReport)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrPatientNotFound) || errors.Is(err, ErrCaregiverNotFound)
}

func httpError(err error) error {
	if isNotFound(err) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func serverError(err error) error {
	if isNotFound(err) {
		return httpError(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func respond(c echo.Context, pg pagination.Params, items []*ProgressReport, total int) error {
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CreateReport(c echo.Context) error {
	var r ProgressReport
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateReport(c.Request().Context(), &r); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) GetReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.svc.GetReport(c.Request().Context(), id)
	if err != nil {
		return serverError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteReport(c.Request().Context(), id); err != nil {
		return serverError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListReports(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListReports(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return serverError(err)
	}
	return respond(c, pg, items, total)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return serverError(err)
	}
	return respond(c, pg, items, total)
}

func (h *Handler) ListByCaregiver(c echo.Context) error {
	id, err := uuid.Parse(c.Param("caregiver_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid caregiver_id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByCaregiver(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return serverError(err)
	}
	return respond(c, pg, items, total)
}

func (h *Handler) ListBetween(c echo.Context) error {
	var start, end time.Time
	if err := echo.QueryParamsBinder(c).
		MustTime("start", &start, time.RFC3339).
		MustTime("end", &end, time.RFC3339).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start and end must be RFC3339 timestamps")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListBetween(c.Request().Context(), start, end, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return respond(c, pg, items, total)
}

func (h *Handler) Search(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.Search(c.Request().Context(), c.QueryParam("keyword"), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return respond(c, pg, items, total)
}

func (h *Handler) Latest(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.Latest(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return serverError(err)
	}
	return respond(c, pg, items, total)
}
