package notification

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mediconsult/mediconsult/internal/platform/validation"
)

func TestTemplateEngine_BuiltInTemplates(t *testing.T) {
	e := NewTemplateEngine()
	for _, id := range []string{TemplateAppLink, TemplateAppointmentBooked, TemplateLabBookingReceived} {
		if _, _, err := e.Render(id, nil); err != nil {
			t.Errorf("built-in template %q: %v", id, err)
		}
	}
}

func TestTemplateEngine_RenderWithData(t *testing.T) {
	e := NewTemplateEngine()
	subject, body, err := e.Render(TemplateAppointmentBooked, map[string]string{
		"patient": "Asha",
		"doctor":  "Dr. Rao",
		"type":    "video",
		"date":    "2025-06-01",
		"slot":    "9:00 AM",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != "Your appointment with Dr. Rao is confirmed" {
		t.Errorf("unexpected subject %q", subject)
	}
	if !strings.Contains(body, "booked for 2025-06-01 at 9:00 AM") {
		t.Errorf("unexpected body %q", body)
	}
	if !strings.Contains(body, "{{join_hint}}") {
		t.Error("expected missing key to be left as-is")
	}
}

func TestTemplateEngine_RenderMissing(t *testing.T) {
	if _, _, err := NewTemplateEngine().Render("nope", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestTemplateEngine_RegisterTemplate(t *testing.T) {
	e := NewTemplateEngine()
	e.RegisterTemplate(Template{ID: TemplateAppLink, Body: "Download: {{link}}"})
	_, body, _ := e.Render(TemplateAppLink, map[string]string{"link": "https://x.test"})
	if body != "Download: https://x.test" {
		t.Errorf("expected override, got %q", body)
	}
}

func TestNotifier_SendAppLink(t *testing.T) {
	sms := &Outbox{}
	n := NewNotifier(&Outbox{}, sms, NewTemplateEngine(), "https://mediconsult.test/app")

	if err := n.SendAppLink(context.Background(), "+919876543210"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calls := sms.Sent()
	if len(calls) != 1 {
		t.Fatalf("expected 1 sms, got %d", len(calls))
	}
	if calls[0].Channel != ChannelSMS || calls[0].To != "+919876543210" || !strings.Contains(calls[0].Body, "https://mediconsult.test/app") {
		t.Errorf("unexpected sms %+v", calls[0])
	}
}

func TestNotifier_EmailRequiresRecipient(t *testing.T) {
	email := &Outbox{}
	n := NewNotifier(email, &Outbox{}, NewTemplateEngine(), "")
	if err := n.Email(context.Background(), "", TemplateLabBookingReceived, nil); err == nil {
		t.Error("expected error for empty recipient")
	}
	if len(email.Sent()) != 0 {
		t.Error("expected no email to be sent")
	}
}

func TestLogSender_NeverFails(t *testing.T) {
	s := NewLogSender(zerolog.Nop())
	if err := s.SendSMS(context.Background(), "+15550000000", "hi"); err != nil {
		t.Errorf("SendSMS: %v", err)
	}
	if err := s.SendEmail(context.Background(), "a@b.test", "subj", "body"); err != nil {
		t.Errorf("SendEmail: %v", err)
	}
}

func TestSMTPSender_Message(t *testing.T) {
	s := NewSMTPSender("smtp.test", 587, "user", "pass", "noreply@mediconsult.test")
	m := s.message("asha@example.test", "Hello", "Body")
	if got := m.GetHeader("From"); len(got) != 1 || got[0] != "noreply@mediconsult.test" {
		t.Errorf("unexpected From %v", got)
	}
	if got := m.GetHeader("To"); len(got) != 1 || got[0] != "asha@example.test" {
		t.Errorf("unexpected To %v", got)
	}
}

func newAppLinkContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = validation.New()
	req := httptest.NewRequest(http.MethodPost, "/api/send-app-link", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAppLinkHandler_ShortPhone(t *testing.T) {
	sms := &Outbox{}
	h := NewAppLinkHandler(NewNotifier(&Outbox{}, sms, NewTemplateEngine(), "https://x.test"))

	c, _ := newAppLinkContext(`{"phoneNumber":"12345"}`)
	err := h.SendAppLink(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest || httpErr.Message != "Invalid phone number" {
		t.Errorf("got %d %v", httpErr.Code, httpErr.Message)
	}
	if len(sms.Sent()) != 0 {
		t.Error("expected no sms for invalid phone")
	}
}

func TestAppLinkHandler_RequestErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing phone", `{}`, "Invalid phone number"},
		{"too long", `{"phoneNumber":"123456789012345678901"}`, "Invalid phone number"},
		{"malformed body", `{"phoneNumber":`, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sms := &Outbox{}
			h := NewAppLinkHandler(NewNotifier(&Outbox{}, sms, NewTemplateEngine(), "https://x.test"))

			c, _ := newAppLinkContext(tt.body)
			httpErr, ok := h.SendAppLink(c).(*echo.HTTPError)
			if !ok {
				t.Fatal("expected echo.HTTPError")
			}
			if httpErr.Code != http.StatusBadRequest || httpErr.Message != tt.want {
				t.Errorf("got %d %v, want 400 %q", httpErr.Code, httpErr.Message, tt.want)
			}
			if len(sms.Sent()) != 0 {
				t.Error("expected no sms")
			}
		})
	}
}

func TestAppLinkHandler_Success(t *testing.T) {
	sms := &Outbox{}
	h := NewAppLinkHandler(NewNotifier(&Outbox{}, sms, NewTemplateEngine(), "https://x.test"))

	c, rec := newAppLinkContext(`{"phoneNumber":"9876543210"}`)
	if err := h.SendAppLink(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if len(sms.Sent()) != 1 {
		t.Errorf("expected 1 sms, got %d", len(sms.Sent()))
	}
}

func TestAppLinkHandler_ProviderFailure(t *testing.T) {
	sms := &Outbox{Err: errors.New("twilio down")}
	h := NewAppLinkHandler(NewNotifier(&Outbox{}, sms, NewTemplateEngine(), "https://x.test"))

	c, _ := newAppLinkContext(`{"phoneNumber":"9876543210"}`)
	err := h.SendAppLink(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %v", err)
	}
}

func TestOutbox_RecordsFailedSends(t *testing.T) {
	box := &Outbox{Err: errors.New("relay down")}
	n := NewNotifier(box, box, NewTemplateEngine(), "https://x.test")

	if err := n.Email(context.Background(), "asha@example.com", TemplateLabBookingReceived, map[string]string{"test": "Lipid Profile"}); err == nil {
		t.Fatal("expected the send error")
	}
	if err := n.SendAppLink(context.Background(), "+919876543210"); err == nil {
		t.Fatal("expected the send error")
	}
	sent := box.Sent()
	if len(sent) != 2 || sent[0].Channel != ChannelEmail || sent[1].Channel != ChannelSMS {
		t.Fatalf("unexpected outbox %+v", sent)
	}
	if sent[0].Subject != "Lab test booking received: Lipid Profile" {
		t.Errorf("unexpected subject %q", sent[0].Subject)
	}
}
