package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func timeoutMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return body["message"]
}

func TestRequestTimeout_BookingWithinDeadline(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/video-consult/appointments", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var deadline time.Time
	h := RequestTimeout(30 * time.Second)(func(c echo.Context) error {
		deadline, _ = c.Request().Context().Deadline()
		return c.JSON(http.StatusCreated, map[string]int{"id": 1})
	})

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if deadline.IsZero() || time.Until(deadline) > 30*time.Second {
		t.Errorf("expected a deadline within 30s, got %v", deadline)
	}
}

// A store call that honours the deadline returns the context error; the
// client sees 504 rather than a 500 built from that error.
func TestRequestTimeout_StoreCallCancelled(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/slots?doctorId=7&date=2025-06-01", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequestTimeout(20 * time.Millisecond)(func(c echo.Context) error {
		<-c.Request().Context().Done()
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load slots")
	})

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("expected 504, got %d", rec.Code)
	}
	if msg := timeoutMessage(t, rec); msg != "Request timed out" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestRequestTimeout_KeepsCommittedResponse(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequestTimeout(10 * time.Millisecond)(func(c echo.Context) error {
		if err := c.JSON(http.StatusOK, []string{}); err != nil {
			return err
		}
		<-c.Request().Context().Done()
		return nil
	})

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected the written 200 to stand, got %d", rec.Code)
	}
}

func TestRequestTimeout_PropagatesHandlerError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/doctors/123", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequestTimeout(5 * time.Second)(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "Doctor not found")
	})

	var httpErr *echo.HTTPError
	if err := h(c); !errors.As(err, &httpErr) {
		t.Fatalf("expected echo.HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", httpErr.Code)
	}
}

func TestRequestTimeout_ClientGoneIsNotATimeout(t *testing.T) {
	e := echo.New()
	parent, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil).WithContext(parent)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequestTimeout(5 * time.Second)(func(c echo.Context) error {
		cancel()
		<-c.Request().Context().Done()
		return c.Request().Context().Err()
	})

	if err := h(c); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if rec.Code == http.StatusGatewayTimeout {
		t.Error("expected no 504 for a cancelled client")
	}
}

// Runs the chain the server installs: a panicking handler behind the
// deadline must still end in a 500 from Recovery.
func TestRequestTimeout_PanicReachesRecovery(t *testing.T) {
	e := echo.New()
	e.Use(Recovery(zerolog.New(io.Discard)))
	e.Use(RequestTimeout(30 * time.Second))
	e.GET("/api/appointments/:id/join", func(c echo.Context) error {
		panic("nil room")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/appointments/5/join", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
}
