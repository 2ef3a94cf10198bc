package prescription

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
	rx := api.Group("/prescriptions")

	read := rx.Group("", auth.RequirePrivilege(auth.PrivilegeViewer))
	read.GET("", h.ListPrescriptions)
	read.GET("/:id", h.GetPrescription)
	read.GET("/medical-record/:record_id", h.ListByRecord)
	read.GET("/doctor/:doctor_id", h.ListByDoctor)
	read.GET("/medication/:medication_id", h.ListByMedication)
	read.GET("/active", h.ListActive)
	read.GET("/date-range", h.ListIssuedBetween)
	read.GET("/patient/:patient_id", h.ListByPatient)

	write := rx.Group("", auth.RequirePrivilege(auth.PrivilegeEditor))
	write.POST("", h.CreatePrescription)
	write.DELETE("/:id", h.DeletePrescription)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrRecordNotFound) ||
		errors.Is(err, ErrMedicationNotFound) || errors.Is(err, ErrDoctorNotFound)
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

type listFunc func(pg pagination.Params) ([]*Prescription, int, error)

func (h *Handler) paged(c echo.Context, fn listFunc) error {
	pg := pagination.FromContext(c)
	items, total, err := fn(pg)
	if err != nil {
		return serverError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// pagedBy parses the uuid path parameter name and pages fn over it.
func (h *Handler) pagedBy(c echo.Context, name string, fn func(id uuid.UUID, pg pagination.Params) ([]*Prescription, int, error)) error {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return h.paged(c, func(pg pagination.Params) ([]*Prescription, int, error) {
		return fn(id, pg)
	})
}

func (h *Handler) CreatePrescription(c echo.Context) error {
	var p Prescription
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreatePrescription(c.Request().Context(), &p); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPrescription(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetPrescription(c.Request().Context(), id)
	if err != nil {
		return serverError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePrescription(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeletePrescription(c.Request().Context(), id); err != nil {
		return serverError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListPrescriptions(c echo.Context) error {
	return h.paged(c, func(pg pagination.Params) ([]*Prescription, int, error) {
		return h.svc.ListPrescriptions(c.Request().Context(), pg.Limit, pg.Offset)
	})
}

func (h *Handler) ListByRecord(c echo.Context) error {
	return h.pagedBy(c, "record_id", func(id uuid.UUID, pg pagination.Params) ([]*Prescription, int, error) {
		return h.svc.ListByRecord(c.Request().Context(), id, pg.Limit, pg.Offset)
	})
}

func (h *Handler) ListByDoctor(c echo.Context) error {
	return h.pagedBy(c, "doctor_id", func(id uuid.UUID, pg pagination.Params) ([]*Prescription, int, error) {
		return h.svc.ListByDoctor(c.Request().Context(), id, pg.Limit, pg.Offset)
	})
}

func (h *Handler) ListByMedication(c echo.Context) error {
	return h.pagedBy(c, "medication_id", func(id uuid.UUID, pg pagination.Params) ([]*Prescription, int, error) {
		return h.svc.ListByMedication(c.Request().Context(), id, pg.Limit, pg.Offset)
	})
}

func (h *Handler) ListByPatient(c echo.Context) error {
	return h.pagedBy(c, "patient_id", func(id uuid.UUID, pg pagination.Params) ([]*Prescription, int, error) {
		return h.svc.ListByPatient(c.Request().Context(), id, pg.Limit, pg.Offset)
	})
}

func (h *Handler) ListActive(c echo.Context) error {
	return h.paged(c, func(pg pagination.Params) ([]*Prescription, int, error) {
		return h.svc.ListActive(c.Request().Context(), pg.Limit, pg.Offset)
	})
}

func (h *Handler) ListIssuedBetween(c echo.Context) error {
	var from, to time.Time
	if err := echo.QueryParamsBinder(c).
		MustTime("start_date", &from, "2006-01-02").
		MustTime("end_date", &to, "2006-01-02").
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start_date and end_date must be dates (YYYY-MM-DD)")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListIssuedBetween(c.Request().Context(), from, to, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
