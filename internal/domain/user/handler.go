package user

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
	users := api.Group("/users")

	// Authenticated through the request body.
	users.POST("/register", h.Register)
	users.POST("/login", h.Login)
	users.DELETE("/delete", h.DeleteAccount)

	read := users.Group("", auth.RequirePrivilege(auth.PrivilegeViewer))
	read.GET("/:id", h.GetUser)
	read.GET("/:id/validate", h.ValidateAccess)
	read.GET("/username/:username", h.GetByUsername)
	read.GET("/role/:role", h.ListByRole)
	read.GET("/role/:role/privileges/:privileges", h.ListByRoleAndPrivileges)
	read.GET("/privileges/:privileges", h.ListByPrivileges)
	read.GET("/email/:email", h.ListByEmail)
	read.GET("/primary-location/:location", h.ListByPrimaryLocation)
	read.GET("/secondary-location/:location", h.ListBySecondaryLocation)
	read.GET("/search/:term", h.Search)

	admin := users.Group("", auth.RequirePrivilege(auth.PrivilegeAdmin))
	admin.PUT("/:id", h.UpdateUser)
}

// httpError maps service errors onto status codes. Unrecognised errors are
// validation failures.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrUnknownUsername), errors.Is(err, ErrInvalidPassword):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrAccessDenied):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.Register(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) Login(c echo.Context) error {
	var creds Credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.svc.Login(c.Request().Context(), &creds)
	if err != nil {
		if errors.Is(err, ErrUnknownUsername) || errors.Is(err, ErrInvalidPassword) {
			return httpError(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) DeleteAccount(c echo.Context) error {
	var creds Credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if creds.Username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username is required")
	}
	if err := h.svc.DeleteAccount(c.Request().Context(), &creds); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) UpdateUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.UpdateUser(c.Request().Context(), id, &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	u, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httpError(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) GetByUsername(c echo.Context) error {
	u, err := h.svc.GetByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httpError(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) ValidateAccess(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	required := c.QueryParam("required_access")
	if required == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "required_access is required")
	}
	if err := h.svc.ValidateAccess(c.Request().Context(), id, required); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAccessDenied) {
			return httpError(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "access granted"})
}

type listFunc func(pg pagination.Params) ([]*User, int, error)

func (h *Handler) paged(c echo.Context, fn listFunc) error {
	pg := pagination.FromContext(c)
	items, total, err := fn(pg)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByRole(c echo.Context) error {
	return h.paged(c, func(pg pagination.Params) ([]*User, int, error) {
		return h.svc.ListByRole(c.Request().Context(), c.Param("role"), pg.Limit, pg.Offset)
	})
}

func (h *Handler) ListByPrivileges(c echo.Context) error {
	return h.paged(c, func(pg pagination.Params) ([]*User, int, error) {
		return h.svc.ListByPrivileges(c.Request().Context(), c.Param("privileges"), pg.Limit, pg.Offset)
	})
}

func (h *Handler) ListByRoleAndPrivileges(c echo.Context) error {
	return h.paged(c, func(pg pagination.Params) ([]*User, int, error) {
		return h.svc.ListByRoleAndPrivileges(c.Request().Context(), c.Param("role"), c.Param("privileges"), pg.Limit, pg.Offset)
	})
}

func (h *Handler) ListByEmail(c echo.Context) error {
	return h.paged(c, func(pg pagination.Params) ([]*User, int, error) {
		return h.svc.ListByEmail(c.Request().Context(), c.Param("email"), pg.Limit, pg.Offset)
	})
}

func (h *Handler) ListByPrimaryLocation(c echo.Context) error {
	return h.paged(c, func(pg pagination.Params) ([]*User, int, error) {
		return h.svc.ListByPrimaryLocation(c.Request().Context(), c.Param("location"), pg.Limit, pg.Offset)
	})
}

func (h *Handler) ListBySecondaryLocation(c echo.Context) error {
	return h.paged(c, func(pg pagination.Params) ([]*User, int, error) {
		return h.svc.ListBySecondaryLocation(c.Request().Context(), c.Param("location"), pg.Limit, pg.Offset)
	})
}

func (h *Handler) Search(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.Search(c.Request().Context(), c.Param("term"), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
