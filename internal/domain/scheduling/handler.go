package scheduling

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mediconsult/mediconsult/internal/platform/auth"
	"github.com/mediconsult/mediconsult/internal/platform/httperr"
	"github.com/mediconsult/mediconsult/internal/platform/validation"
	"github.com/mediconsult/mediconsult/pkg/civil"
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

	// Video consultations
	api.GET("/video-consult/doctor/:id/slots", h.Availability)
	api.POST("/video-consult/book", h.BookVideo, requireAuth)
	api.GET("/video-consult/appointments", h.ListVideoAppointments, requireAuth)
	api.POST("/video-consult/join", h.Join, requireAuth)

	// Clinic visits
	api.GET("/appointments", h.ListAppointments, requireAuth)
	api.POST("/appointments", h.BookInPerson, requireAuth)

	admin := api.Group("/admin/appointments", auth.RequireRole(auth.RoleAdmin))
	h.registerAdmin(admin, "")

	offline := api.Group("/admin/offline-appointments", auth.RequireRole(auth.RoleAdmin))
	h.registerAdmin(offline, TypeInPerson)
}

// registerAdmin mounts CRUD for appointments. A non-empty onlyType scopes
// every operation to that appointment type.
func (h *Handler) registerAdmin(g *echo.Group, onlyType string) {
	g.GET("", func(c echo.Context) error { return h.adminList(c, onlyType) })
	g.GET("/:id", func(c echo.Context) error { return h.adminGet(c, onlyType) })
	g.POST("", func(c echo.Context) error { return h.adminCreate(c, onlyType) })
	update := func(c echo.Context) error { return h.adminUpdate(c, onlyType) }
	g.PUT("/:id", update)
	g.PATCH("/:id", update)
	g.DELETE("/:id", func(c echo.Context) error { return h.adminDelete(c, onlyType) })
}

// -- Patient endpoints --

func (h *Handler) Availability(c echo.Context) error {
	doctorID, err := httperr.ParamID(c, "id")
	if err != nil {
		return err
	}
	raw := strings.TrimSpace(c.QueryParam("date"))
	if raw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date query parameter is required")
	}
	date, err := civil.Parse(raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be in YYYY-MM-DD format")
	}
	slots, err := h.svc.Availability(c.Request().Context(), doctorID, date)
	if err != nil {
		return h.mapError(c, err, "Failed to fetch available slots")
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *Handler) BookVideo(c echo.Context) error {
	var req BookVideoRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	a, err := h.svc.BookVideo(ctx, auth.UserIDFromContext(ctx), &req)
	if err != nil {
		return h.mapError(c, err, "Failed to book appointment")
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) BookInPerson(c echo.Context) error {
	var req BookInPersonRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	a, err := h.svc.BookInPerson(ctx, auth.UserIDFromContext(ctx), &req)
	if err != nil {
		return h.mapError(c, err, "Failed to book appointment")
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListVideoAppointments(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.svc.ListForUser(ctx, auth.UserIDFromContext(ctx), TypeVideo)
	if err != nil {
		return httperr.Internal(c, err, "Failed to fetch appointments")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.svc.ListForUser(ctx, auth.UserIDFromContext(ctx), "")
	if err != nil {
		return httperr.Internal(c, err, "Failed to fetch appointments")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Join(c echo.Context) error {
	var req JoinRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	res, err := h.svc.Join(ctx, auth.UserIDFromContext(ctx), req.AppointmentID)
	if err != nil {
		return h.mapError(c, err, "Failed to join consultation")
	}
	return c.JSON(http.StatusOK, res)
}

// -- Admin endpoints --

func (h *Handler) adminList(c echo.Context, onlyType string) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	if onlyType != "" {
		f.Type = onlyType
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.AdminList(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return httperr.Internal(c, err, "Failed to fetch appointments")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) adminGet(c echo.Context, onlyType string) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.svc.AdminGet(c.Request().Context(), id, onlyType)
	if err != nil {
		return h.mapError(c, err, "Failed to fetch appointment")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) adminCreate(c echo.Context, onlyType string) error {
	var req AdminCreateRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	a, err := h.svc.AdminCreate(c.Request().Context(), &req, onlyType)
	if err != nil {
		return h.mapError(c, err, "Failed to create appointment")
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) adminUpdate(c echo.Context, onlyType string) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return err
	}
	var req AdminUpdateRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	a, err := h.svc.AdminUpdate(c.Request().Context(), id, &req, onlyType)
	if err != nil {
		return h.mapError(c, err, "Failed to update appointment")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) adminDelete(c echo.Context, onlyType string) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.AdminDelete(c.Request().Context(), id, onlyType); err != nil {
		return h.mapError(c, err, "Failed to delete appointment")
	}
	return c.NoContent(http.StatusNoContent)
}

func filterFromQuery(c echo.Context) (Filter, error) {
	f := Filter{
		Status: c.QueryParam("status"),
		Type:   c.QueryParam("type"),
	}
	if f.Status != "" && !validStatuses[f.Status] {
		return Filter{}, echo.NewHTTPError(http.StatusBadRequest, "invalid status: "+f.Status)
	}
	if f.Type != "" && !validTypes[f.Type] {
		return Filter{}, echo.NewHTTPError(http.StatusBadRequest, "invalid type: "+f.Type)
	}
	for name, dst := range map[string]*int64{"doctorId": &f.DoctorID, "userId": &f.UserID} {
		if raw := c.QueryParam(name); raw != "" {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || v <= 0 {
				return Filter{}, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
			}
			*dst = v
		}
	}
	if raw := c.QueryParam("date"); raw != "" {
		d, err := civil.Parse(raw)
		if err != nil {
			return Filter{}, echo.NewHTTPError(http.StatusBadRequest, "date must be in YYYY-MM-DD format")
		}
		f.Date = d
	}
	return f, nil
}

func (h *Handler) mapError(c echo.Context, err error, msg string) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Message)
	case errors.Is(err, ErrInvalidReference):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotParticipant):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrDoctorNotFound), errors.Is(err, ErrAppointmentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSlotTaken), errors.Is(err, ErrAppointmentClosed):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return httperr.Internal(c, err, msg)
}
