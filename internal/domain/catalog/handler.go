package catalog

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
	// Public catalog reads
	api.GET("/specialists", h.ListSpecialists)
	api.GET("/clinic-specialties", h.ListClinicSpecialties)
	api.GET("/articles", h.ListArticles)
	api.GET("/articles/related/:id", h.RelatedArticles)
	api.GET("/articles/:id", h.GetArticle)
	api.GET("/surgeries", h.ListSurgeries)
	api.GET("/testimonials", h.ListTestimonials)
	api.GET("/lab-tests", h.ListLabTests)
	api.GET("/lab-tests/:id", h.GetLabTest)

	admin := api.Group("/admin/lab-tests", auth.RequireRole(auth.RoleAdmin))
	admin.GET("", h.ListLabTests)
	admin.GET("/:id", h.GetLabTest)
	admin.POST("", h.CreateLabTest)
	admin.PUT("/:id", h.UpdateLabTest)
	admin.PATCH("/:id", h.UpdateLabTest)
	admin.DELETE("/:id", h.DeleteLabTest)
}

func (h *Handler) ListSpecialists(c echo.Context) error {
	items, err := h.svc.ListSpecialists(c.Request().Context())
	if err != nil {
		return httperr.Internal(c, err, "Failed to fetch specialists")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListClinicSpecialties(c echo.Context) error {
	items, err := h.svc.ListClinicSpecialties(c.Request().Context())
	if err != nil {
		return httperr.Internal(c, err, "Failed to fetch clinic specialties")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListArticles(c echo.Context) error {
	items, err := h.svc.ListArticles(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return httperr.Internal(c, err, "Failed to fetch articles")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetArticle(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.svc.GetArticle(c.Request().Context(), id)
	if err != nil {
		return h.mapError(c, err, "Failed to fetch article")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) RelatedArticles(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.svc.RelatedArticles(c.Request().Context(), id)
	if err != nil {
		return h.mapError(c, err, "Failed to fetch related articles")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListSurgeries(c echo.Context) error {
	items, err := h.svc.ListSurgeries(c.Request().Context())
	if err != nil {
		return httperr.Internal(c, err, "Failed to fetch surgeries")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListTestimonials(c echo.Context) error {
	items, err := h.svc.ListTestimonials(c.Request().Context())
	if err != nil {
		return httperr.Internal(c, err, "Failed to fetch testimonials")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListLabTests(c echo.Context) error {
	items, err := h.svc.ListLabTests(c.Request().Context())
	if err != nil {
		return httperr.Internal(c, err, "Failed to fetch lab tests")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetLabTest(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return err
	}
	t, err := h.svc.GetLabTest(c.Request().Context(), id)
	if err != nil {
		return h.mapError(c, err, "Failed to fetch lab test")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) CreateLabTest(c echo.Context) error {
	var req CreateLabTestRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	t, err := h.svc.CreateLabTest(c.Request().Context(), &req)
	if err != nil {
		return h.mapError(c, err, "Failed to create lab test")
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateLabTest(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateLabTestRequest
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	t, err := h.svc.UpdateLabTest(c.Request().Context(), id, &req)
	if err != nil {
		return h.mapError(c, err, "Failed to update lab test")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteLabTest(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteLabTest(c.Request().Context(), id); err != nil {
		return h.mapError(c, err, "Failed to delete lab test")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) mapError(c echo.Context, err error, msg string) error {
	switch {
	case errors.Is(err, ErrArticleNotFound), errors.Is(err, ErrLabTestNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrLabTestInUse):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return httperr.Internal(c, err, msg)
}
