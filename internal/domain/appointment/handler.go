package appointment

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
	appts := api.Group("/appointments")

	read := appts.Group("", auth.RequirePrivilege(auth.PrivilegeViewer))
	read.GET("/:id", h.GetAppointment)
	read.GET("/doctor/:doctor_id", h.ListByDoctor)
	read.GET("/doctor/:doctor_id/overlapping", h.ListOverlapping)
	read.GET("/patient/:patient_id", h.ListByPatient)
	read.GET("/location", h.ListByLocation)
	read.GET("/status", h.ListByStatus)
	read.GET("/date-range", h.ListBetween)
	read.GET("/upcoming", h.ListUpcoming)

	write := appts.Group("", auth.RequirePrivilege(auth.PrivilegeEditor))
	write.POST("", h.CreateAppointment)
	write.DELETE("/:id", h.DeleteAppointment)
	write.PUT("/:id/status", h.UpdateStatus)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrDoctorNotFound), errors.Is(err, ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// window reads the RFC3339 start and end query parameters.
func window(c echo.Context) (start, end time.Time, err error) {
	if err := echo.QueryParamsBinder(c).
		MustTime("start", &start, time.RFC3339).
		MustTime("end", &end, time.RFC3339).
		BindError(); err != nil {
		return start, end, echo.NewHTTPError(http.StatusBadRequest, "start and end must be RFC3339 timestamps")
	}
	return start, end, nil
}

func page(c echo.Context, pg pagination.Params, items []*Appointment, total int, err error) error {
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateAppointment(c.Request().Context(), &a); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httpError(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteAppointment(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return httpError(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	a, err := h.svc.UpdateStatus(c.Request().Context(), id, c.QueryParam("status"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListByDoctor(c echo.Context) error {
	id, err := uuidParam(c, "doctor_id")
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByDoctor(c.Request().Context(), id, c.QueryParam("status"), pg.Limit, pg.Offset)
	return page(c, pg, items, total, err)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	id, err := uuidParam(c, "patient_id")
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), id, c.QueryParam("status"), pg.Limit, pg.Offset)
	return page(c, pg, items, total, err)
}

func (h *Handler) ListByLocation(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByLocation(c.Request().Context(), c.QueryParam("location"), pg.Limit, pg.Offset)
	return page(c, pg, items, total, err)
}

func (h *Handler) ListByStatus(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByStatus(c.Request().Context(), c.QueryParam("status"), pg.Limit, pg.Offset)
	return page(c, pg, items, total, err)
}

func (h *Handler) ListBetween(c echo.Context) error {
	start, end, err := window(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListBetween(c.Request().Context(), start, end, pg.Limit, pg.Offset)
	return page(c, pg, items, total, err)
}

func (h *Handler) ListUpcoming(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListUpcoming(c.Request().Context(), pg.Limit, pg.Offset)
	return page(c, pg, items, total, err)
}

func (h *Handler) ListOverlapping(c echo.Context) error {
	id, err := uuidParam(c, "doctor_id")
	if err != nil {
		return err
	}
	start, end, err := window(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListOverlapping(c.Request().Context(), id, start, end, pg.Limit, pg.Offset)
	return page(c, pg, items, total, err)
}
