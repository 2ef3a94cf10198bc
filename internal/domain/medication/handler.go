package medication

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

// RegisterRoutes mounts /medications. Every route is limited to staff roles
// on top of its privilege tier.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	meds := api.Group("/medications", auth.RequireRoleCluster("staff", auth.Staff))

	editor := meds.Group("", auth.RequirePrivilege(auth.PrivilegeEditor))
	editor.POST("", h.AddMedication)
	editor.GET("/record/:record_id", h.ListByRecord)
	editor.GET("/record/:record_id/range", h.ListByRecordStartRange)
	editor.DELETE("/:id", h.DeleteMedication)
	editor.GET("/expiring", h.ExpiringSoon)

	sup := meds.Group("", auth.RequirePrivilege(auth.PrivilegeSupervisor))
	sup.GET("", h.ListMedications)
	sup.GET("/active", h.ListActive)
	sup.GET("/search", h.SearchByName)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrRecordNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

// serverError keeps not-found errors as 404 and reports anything else as 500.
func serverError(err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrRecordNotFound) {
		return httpError(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func respond(c echo.Context, pg pagination.Params, items []*Medication, total int) error {
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) AddMedication(c echo.Context) error {
	var m Medication
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AddMedication(c.Request().Context(), &m); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) ListMedications(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListMedications(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return serverError(err)
	}
	return respond(c, pg, items, total)
}

func (h *Handler) ListByRecord(c echo.Context) error {
	recordID, err := uuid.Parse(c.Param("record_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record_id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByRecord(c.Request().Context(), recordID, pg.Limit, pg.Offset)
	if err != nil {
		return serverError(err)
	}
	return respond(c, pg, items, total)
}

func (h *Handler) ListByRecordStartRange(c echo.Context) error {
	recordID, err := uuid.Parse(c.Param("record_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record_id")
	}
	var from, to time.Time
	if err := echo.QueryParamsBinder(c).
		MustTime("start_date", &from, "2006-01-02").
		MustTime("end_date", &to, "2006-01-02").
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start_date and end_date must be dates (YYYY-MM-DD)")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByRecordStartRange(c.Request().Context(), recordID, from, to, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return respond(c, pg, items, total)
}

func (h *Handler) DeleteMedication(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteMedication(c.Request().Context(), id); err != nil {
		return serverError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListActive(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListActive(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return serverError(err)
	}
	return respond(c, pg, items, total)
}

func (h *Handler) SearchByName(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.SearchByName(c.Request().Context(), c.QueryParam("name"), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return respond(c, pg, items, total)
}

func (h *Handler) ExpiringSoon(c echo.Context) error {
	var days int
	if err := echo.QueryParamsBinder(c).Int("days", &days).BindError(); err != nil || days < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "days must be a non-negative integer")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ExpiringSoon(c.Request().Context(), days, pg.Limit, pg.Offset)
	if err != nil {
		return serverError(err)
	}
	return respond(c, pg, items, total)
}
