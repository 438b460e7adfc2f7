package notification

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mediconsult/mediconsult/internal/platform/validation"
)

// AppLinkHandler serves POST /api/send-app-link.
type AppLinkHandler struct {
	notifier *Notifier
}

func NewAppLinkHandler(n *Notifier) *AppLinkHandler {
	return &AppLinkHandler{notifier: n}
}

func (h *AppLinkHandler) RegisterRoutes(api *echo.Group) {
	api.POST("/send-app-link", h.SendAppLink)
}

type appLinkRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,min=10,max=20"`
}

func (h *AppLinkHandler) SendAppLink(c echo.Context) error {
	var req appLinkRequest
	if err := validation.Bind(c, &req); err != nil {
		if validation.FailedField(err) == "phoneNumber" {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid phone number")
		}
		return err
	}
	phone := strings.TrimSpace(req.PhoneNumber)

	if err := h.notifier.SendAppLink(c.Request().Context(), phone); err != nil {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("send app link")
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to send app link")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "App link sent successfully"})
}
