package medicalrecord

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/eldercare/eldercare/internal/platform/auth"
	"github.com/eldercare/eldercare/pkg/pagination"
)

const dateLayout = "2006-01-02"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	records := api.Group("/medical-records")

	read := records.Group("", auth.RequirePrivilege(auth.PrivilegeViewer))
	read.GET("", h.ListRecords)
	read.GET("/:id", h.GetRecord)
	read.GET("/patient/:patient_id", h.ListByPatient)
	read.GET("/doctor/:doctor_id", h.ListByDoctor)
	read.GET("/patient/:patient_id/doctor/:doctor_id", h.ListByPatientAndDoctor)
	read.GET("/location", h.ListByLocation)
	read.GET("/date-range", h.ListByDateRange)
	read.POST("/search", h.Search)

	records.POST("", h.AddRecord, auth.RequirePrivilege(auth.PrivilegeEditor))
	records.DELETE("/:id", h.DeleteRecord, auth.RequirePrivilege(auth.PrivilegeSupervisor))
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPatientNotFound), errors.Is(err, ErrDoctorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

func internalOr404(err error) error {
	if errors.Is(err, ErrNotFound) {
		return httpError(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

type listFunc func(pg pagination.Params) ([]*MedicalRecord, int, error)

func (h *Handler) paged(c echo.Context, fn listFunc) error {
	pg := pagination.FromContext(c)
	items, total, err := fn(pg)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) AddRecord(c echo.Context) error {
	var m MedicalRecord
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AddRecord(c.Request().Context(), &m); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) GetRecord(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	m, err := h.svc.GetRecord(c.Request().Context(), id)
	if err != nil {
		return internalOr404(err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteRecord(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteRecord(c.Request().Context(), id); err != nil {
		return internalOr404(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListRecords(c echo.Context) error {
	return h.paged(c, func(pg pagination.Params) ([]*MedicalRecord, int, error) {
		return h.svc.ListRecords(c.Request().Context(), pg.Limit, pg.Offset)
	})
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuidParam(c, "patient_id")
	if err != nil {
		return err
	}
	return h.paged(c, func(pg pagination.Params) ([]*MedicalRecord, int, error) {
		return h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	})
}

func (h *Handler) ListByDoctor(c echo.Context) error {
	doctorID, err := uuidParam(c, "doctor_id")
	if err != nil {
		return err
	}
	return h.paged(c, func(pg pagination.Params) ([]*MedicalRecord, int, error) {
		return h.svc.ListByDoctor(c.Request().Context(), doctorID, pg.Limit, pg.Offset)
	})
}

func (h *Handler) ListByPatientAndDoctor(c echo.Context) error {
	patientID, err := uuidParam(c, "patient_id")
	if err != nil {
		return err
	}
	doctorID, err := uuidParam(c, "doctor_id")
	if err != nil {
		return err
	}
	return h.paged(c, func(pg pagination.Params) ([]*MedicalRecord, int, error) {
		return h.svc.ListByPatientAndDoctor(c.Request().Context(), patientID, doctorID, pg.Limit, pg.Offset)
	})
}

func (h *Handler) ListByLocation(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByLocation(c.Request().Context(), c.QueryParam("location"), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByDateRange(c echo.Context) error {
	var start, end time.Time
	if err := echo.QueryParamsBinder(c).
		MustTime("start_date", &start, dateLayout).
		MustTime("end_date", &end, dateLayout).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start_date and end_date must be dates (YYYY-MM-DD)")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByDateRange(c.Request().Context(), start, end, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Search(c echo.Context) error {
	var criteria SearchCriteria
	if err := c.Bind(&criteria); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.Search(c.Request().Context(), &criteria, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
