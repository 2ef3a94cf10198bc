package patient

import (
	"errors"
	"net/http"

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
	patients := api.Group("/patients")
	patients.GET("/me", h.Me, auth.Authenticated())

	edit := patients.Group("", auth.RequirePrivilege(auth.PrivilegeEditor))
	edit.POST("", h.CreatePatient)
	edit.GET("", h.ListPatients)
	edit.GET("/:id", h.GetPatient)
	edit.PUT("/:id", h.UpdatePatient)

	sup := patients.Group("", auth.RequirePrivilege(auth.PrivilegeSupervisor))
	sup.DELETE("/:id", h.DeletePatient)
	sup.GET("/search/lastname", h.SearchByLastName)
	sup.GET("/search/keyword", h.SearchByKeyword)
	sup.GET("/search/age-range", h.SearchByAgeRange)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
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

func (h *Handler) CreatePatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreatePatient(c.Request().Context(), &p); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return internalOr404(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPatients(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdatePatient(c.Request().Context(), id, &p); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		return internalOr404(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Me(c echo.Context) error {
	p, err := h.svc.Me(c.Request().Context(), auth.UsernameFromContext(c.Request().Context()))
	if err != nil {
		return internalOr404(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) SearchByLastName(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.SearchByLastName(c.Request().Context(), c.QueryParam("last_name"), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) SearchByKeyword(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.SearchByKeyword(c.Request().Context(), c.QueryParam("keyword"), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) SearchByAgeRange(c echo.Context) error {
	var minAge, maxAge int
	if err := echo.QueryParamsBinder(c).
		MustInt("min_age", &minAge).
		MustInt("max_age", &maxAge).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "min_age and max_age must be integers")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.SearchByAgeRange(c.Request().Context(), minAge, maxAge, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
