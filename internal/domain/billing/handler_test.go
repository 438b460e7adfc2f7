package billing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mediconsult/mediconsult/internal/platform/auth"
	"github.com/mediconsult/mediconsult/internal/platform/validation"
)

func newTestServer(t *testing.T, role string) (*echo.Echo, *mockMethodRepo) {
	t.Helper()
	repo := newMockMethodRepo()
	svc := NewService(repo, ProviderPayPal)
	seedMethods(t, svc)
	e := echo.New()
	e.Validator = validation.New()
	if role != "" {
		e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				req := c.Request()
				c.SetRequest(req.WithContext(auth.WithIdentity(req.Context(), 1, role)))
				return next(c)
			}
		})
	}
	NewHandler(svc).RegisterRoutes(e.Group("/api"))
	return e, repo
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_PublicPaymentMethods(t *testing.T) {
	e, _ := newTestServer(t, "")
	rec := serve(e, http.MethodGet, "/api/payment-methods", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var items []PaymentMethod
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 || items[0].Provider != ProviderPayPal || items[1].Provider != ProviderCash {
		t.Errorf("unexpected methods %+v", items)
	}
}

func TestRoutes_Admin_Forbidden(t *testing.T) {
	e, _ := newTestServer(t, auth.RolePatient)
	if rec := serve(e, http.MethodPost, "/api/admin/payment-methods", `{"name":"x","provider":"cash"}`); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestRoutes_Admin_CRUD(t *testing.T) {
	e, repo := newTestServer(t, auth.RoleAdmin)

	rec := serve(e, http.MethodPost, "/api/admin/payment-methods", `{"name":"UPI","provider":"phonepe","displayOrder":5}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec = serve(e, http.MethodPost, "/api/admin/payment-methods", `{"name":"Crypto","provider":"bitcoin"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown provider, got %d", rec.Code)
	}

	rec = serve(e, http.MethodPatch, "/api/admin/payment-methods/5", `{"enabled":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if repo.methods[5].Enabled {
		t.Error("expected method to be disabled")
	}

	if rec = serve(e, http.MethodDelete, "/api/admin/payment-methods/5", ""); rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec = serve(e, http.MethodGet, "/api/admin/payment-methods/5", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	rec = serve(e, http.MethodGet, "/api/admin/payment-methods", "")
	var all []PaymentMethod
	json.Unmarshal(rec.Body.Bytes(), &all)
	if len(all) != 4 {
		t.Errorf("expected 4 methods, got %d", len(all))
	}
}
