package billing

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mediconsult/mediconsult/internal/platform/auth"
	"github.com/mediconsult/mediconsult/internal/platform/httperr"
	"github.com/mediconsult/mediconsult/internal/platform/validation"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/payment-methods", h.CheckoutMethods)

	admin := api.Group("/admin/payment-methods", auth.RequireRole(auth.RoleAdmin))
	admin.GET("", h.ListMethods)
	admin.GET("/:id", h.GetMethod)
	admin.POST("", h.CreateMethod)
	admin.PUT("/:id", h.UpdateMethod)
	admin.PATCH("/:id", h.UpdateMethod)
	admin.DELETE("/:id", h.DeleteMethod)
}

func (h *Handler) CheckoutMethods(c echo.Context) error {
	items, err := h.svc.CheckoutMethods(c.Request().Context())
	if err != nil {
		return httperr.Internal(c, err, "Failed to fetch payment methods")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListMethods(c echo.Context) error {
	items, err := h.svc.ListMethods(c.Request().Context())
	if err != nil {
		return httperr.Internal(c, err, "Failed to fetch payment methods")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetMethod(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return err
	}
	m, err := h.svc.GetMethod(c.Request().Context(), id)
	if err != nil {
		return h.mapError(c, err, "Failed to fetch payment method")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) CreateMethod(c echo.Context) error {
	var req CreatePaymentMethodRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	m, err := h.svc.CreateMethod(c.Request().Context(), &req)
	if err != nil {
		return httperr.Internal(c, err, "Failed to create payment method")
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) UpdateMethod(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return err
	}
	var req UpdatePaymentMethodRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	m, err := h.svc.UpdateMethod(c.Request().Context(), id, &req)
	if err != nil {
		return h.mapError(c, err, "Failed to update payment method")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteMethod(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteMethod(c.Request().Context(), id); err != nil {
		return h.mapError(c, err, "Failed to delete payment method")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) mapError(c echo.Context, err error, msg string) error {
	if errors.Is(err, ErrPaymentMethodNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return httperr.Internal(c, err, msg)
}
