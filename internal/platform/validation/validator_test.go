package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type bookRequest struct {
	DoctorID int64  `json:"doctorId" validate:"required,gt=0"`
	Slot     string `json:"slot" validate:"required"`
	Date     string `json:"date" validate:"required"`
	Notes    string `json:"patientNotes,omitempty" validate:"max=20"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=patient doctor"`
}

func TestValidate_MessagesUseJSONNames(t *testing.T) {
	v := New()
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"missing doctor", bookRequest{Slot: "9:00 AM", Date: "2025-06-01"}, "doctorId is required"},
		{"missing slot", bookRequest{DoctorID: 7, Date: "2025-06-01"}, "slot is required"},
		{"notes too long", bookRequest{DoctorID: 7, Slot: "9:00 AM", Date: "2025-06-01", Notes: strings.Repeat("n", 21)}, "patientNotes must be at most 20 characters"},
		{"short username", registerRequest{Username: "ab", Email: "a@b.test", Password: "secret"}, "username must be at least 3 characters"},
		{"bad email", registerRequest{Username: "alice", Email: "nope", Password: "secret"}, "email must be a valid email address"},
		{"bad role", registerRequest{Username: "alice", Email: "a@b.test", Password: "secret", Role: "root"}, "role must be one of: patient, doctor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FieldError, got %v", err)
			}
			if fe.Message != tt.want {
				t.Errorf("got %q, want %q", fe.Message, tt.want)
			}
		})
	}
}

func TestValidate_Valid(t *testing.T) {
	v := New()
	if err := v.Validate(bookRequest{DoctorID: 7, Slot: "9:00 AM", Date: "2025-06-01"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBind(t *testing.T) {
	e := echo.New()
	e.Validator = New()

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantMsg  string
		field    string
	}{
		{"valid", `{"doctorId":7,"slot":"9:00 AM","date":"2025-06-01"}`, 0, "", ""},
		{"malformed json", `{"doctorId":`, http.StatusBadRequest, "Invalid request body", ""},
		{"missing date", `{"doctorId":7,"slot":"9:00 AM"}`, http.StatusBadRequest, "date is required", "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/video-consult/book", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			c := e.NewContext(req, httptest.NewRecorder())

			var dst bookRequest
			err := Bind(c, &dst)
			if tt.wantCode == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if dst.DoctorID != 7 {
					t.Errorf("expected doctorId 7, got %d", dst.DoctorID)
				}
				return
			}
			httpErr, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("expected echo.HTTPError, got %T", err)
			}
			if httpErr.Code != tt.wantCode || httpErr.Message != tt.wantMsg {
				t.Errorf("got %d %v, want %d %s", httpErr.Code, httpErr.Message, tt.wantCode, tt.wantMsg)
			}
			if got := FailedField(err); got != tt.field {
				t.Errorf("FailedField = %q, want %q", got, tt.field)
			}
		})
	}
}
