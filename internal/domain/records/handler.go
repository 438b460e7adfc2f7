package records

import (
	"errors"
	"net/http"
	"strconv"

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
	requireAuth := auth.RequireAuth()
	api.GET("/medical-records", h.ListRecords, requireAuth)
	api.GET("/lab-bookings", h.ListLabBookings, requireAuth)
	api.POST("/lab-bookings", h.BookLabTest, requireAuth)

	records := api.Group("/admin/medical-records", auth.RequireRole(auth.RoleAdmin))
	records.POST("", h.CreateRecord)
	records.DELETE("/:id", h.DeleteRecord)

	bookings := api.Group("/admin/lab-bookings", auth.RequireRole(auth.RoleAdmin))
	bookings.GET("", h.SearchLabBookings)
	bookings.GET("/:id", h.GetLabBooking)
	bookings.PUT("/:id", h.UpdateLabBooking)
	bookings.PATCH("/:id", h.UpdateLabBooking)
	bookings.DELETE("/:id", h.DeleteLabBooking)
}

func (h *Handler) ListRecords(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.svc.ListRecords(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return httperr.Internal(c, err, "Failed to fetch medical records")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateRecord(c echo.Context) error {
	var req CreateRecordRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	m, err := h.svc.CreateRecord(c.Request().Context(), &req)
	if err != nil {
		return h.mapError(c, err, "Failed to create medical record")
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) DeleteRecord(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteRecord(c.Request().Context(), id); err != nil {
		return h.mapError(c, err, "Failed to delete medical record")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) BookLabTest(c echo.Context) error {
	var req CreateLabBookingRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	b, err := h.svc.BookLabTest(ctx, auth.UserIDFromContext(ctx), &req)
	if err != nil {
		return h.mapError(c, err, "Failed to book lab test")
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) ListLabBookings(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.svc.ListLabBookings(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return httperr.Internal(c, err, "Failed to fetch lab bookings")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) SearchLabBookings(c echo.Context) error {
	f := LabBookingFilter{Status: c.QueryParam("status")}
	if f.Status != "" && !validLabStatuses[f.Status] {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status: "+f.Status)
	}
	if raw := c.QueryParam("userId"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid userId")
		}
		f.UserID = v
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.SearchLabBookings(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return httperr.Internal(c, err, "Failed to fetch lab bookings")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) GetLabBooking(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return err
	}
	b, err := h.svc.GetLabBooking(c.Request().Context(), id)
	if err != nil {
		return h.mapError(c, err, "Failed to fetch lab booking")
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) UpdateLabBooking(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateLabBookingRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	b, err := h.svc.UpdateLabBooking(c.Request().Context(), id, &req)
	if err != nil {
		return h.mapError(c, err, "Failed to update lab booking")
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) DeleteLabBooking(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteLabBooking(c.Request().Context(), id); err != nil {
		return h.mapError(c, err, "Failed to delete lab booking")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) mapError(c echo.Context, err error, msg string) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Message)
	case errors.Is(err, ErrInvalidReference):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrLabTestNotFound), errors.Is(err, ErrLabBookingNotFound), errors.Is(err, ErrRecordNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return httperr.Internal(c, err, msg)
}
