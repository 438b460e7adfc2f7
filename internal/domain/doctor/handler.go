package doctor

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mediconsult/mediconsult/internal/platform/auth"
	"github.com/mediconsult/mediconsult/internal/platform/httperr"
	"github.com/mediconsult/mediconsult/internal/platform/validation"
	"github.com/mediconsult/mediconsult/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/doctors", h.ListDoctors)
	api.GET("/doctors/:id", h.GetDoctor)
	api.GET("/video-consult-doctors", h.ListVideoConsultDoctors)
	api.GET("/search/suggestions", h.Suggestions)

	admin := api.Group("/admin/doctors", auth.RequireRole(auth.RoleAdmin))
	admin.GET("", h.AdminListDoctors)
	admin.GET("/:id", h.GetDoctor)
	admin.POST("", h.CreateDoctor)
	admin.PUT("/:id", h.UpdateDoctor)
	admin.PATCH("/:id", h.UpdateDoctor)
	admin.DELETE("/:id", h.DeleteDoctor)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	f, err := FilterFromQuery(c)
	if err != nil {
		return filterError(err)
	}
	items, err := h.svc.ListDoctors(c.Request().Context(), f)
	if err != nil {
		return httperr.Internal(c, err, "Failed to fetch doctors")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListVideoConsultDoctors(c echo.Context) error {
	f, err := FilterFromQuery(c)
	if err != nil {
		return filterError(err)
	}
	items, err := h.svc.ListVideoConsultDoctors(c.Request().Context(), f)
	if err != nil {
		return httperr.Internal(c, err, "Failed to fetch video consultation doctors")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return err
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return h.mapError(c, err, "Failed to fetch doctor")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Suggestions(c echo.Context) error {
	items, err := h.svc.Suggestions(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return httperr.Internal(c, err, "Failed to fetch suggestions")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) AdminListDoctors(c echo.Context) error {
	f, err := FilterFromQuery(c)
	if err != nil {
		return filterError(err)
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.SearchDoctors(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return httperr.Internal(c, err, "Failed to fetch doctors")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var req CreateDoctorRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	d, err := h.svc.CreateDoctor(c.Request().Context(), &req)
	if err != nil {
		return h.mapError(c, err, "Failed to create doctor")
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateDoctorRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	d, err := h.svc.UpdateDoctor(c.Request().Context(), id, &req)
	if err != nil {
		return h.mapError(c, err, "Failed to update doctor")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteDoctor(c.Request().Context(), id); err != nil {
		return h.mapError(c, err, "Failed to delete doctor")
	}
	return c.NoContent(http.StatusNoContent)
}

func filterError(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, strings.TrimPrefix(err.Error(), ErrInvalidFilter.Error()+": "))
}

func (h *Handler) mapError(c echo.Context, err error, msg string) error {
	switch {
	case errors.Is(err, ErrDoctorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDoctorInUse), errors.Is(err, ErrDoctorUserTaken):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidReference):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return httperr.Internal(c, err, msg)
}
