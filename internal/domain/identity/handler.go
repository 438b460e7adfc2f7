package identity

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mediconsult/mediconsult/internal/platform/auth"
	"github.com/mediconsult/mediconsult/internal/platform/httperr"
	"github.com/mediconsult/mediconsult/internal/platform/session"
	"github.com/mediconsult/mediconsult/internal/platform/validation"
)

type Handler struct {
	svc      *Service
	sessions *session.Manager
}

func NewHandler(svc *Service, sessions *session.Manager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout)

	user := api.Group("/user", auth.RequireAuth())
	user.GET("", h.GetUser)
	user.PUT("", h.UpdateUser)
	user.POST("/password", h.ChangePassword)
}

func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	u, err := h.svc.Register(c.Request().Context(), &req)
	if err != nil {
		return h.mapError(c, err, "Registration failed")
	}
	if _, err := h.sessions.Start(c, u.ID, u.Role); err != nil {
		return httperr.Internal(c, err, "Registration failed")
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	u, err := h.svc.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return h.mapError(c, err, "Login failed")
	}
	if _, err := h.sessions.Start(c, u.ID, u.Role); err != nil {
		return httperr.Internal(c, err, "Login failed")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) Logout(c echo.Context) error {
	if err := h.sessions.End(c); err != nil {
		return httperr.Internal(c, err, "Logout failed")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *Handler) GetUser(c echo.Context) error {
	u, err := h.svc.GetUser(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return h.mapError(c, err, "Failed to load user")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateUser(c echo.Context) error {
	var req UpdateProfileRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	u, err := h.svc.UpdateProfile(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), &req)
	if err != nil {
		return h.mapError(c, err, "Failed to update profile")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) ChangePassword(c echo.Context) error {
	var req ChangePasswordRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.ChangePassword(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), &req); err != nil {
		return h.mapError(c, err, "Failed to change password")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password updated"})
}

func (h *Handler) mapError(c echo.Context, err error, msg string) error {
	switch {
	case errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrEmailTaken), errors.Is(err, ErrWrongPassword):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrUserNotFound):
		// The session outlived its account.
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return httperr.Internal(c, err, msg)
}
