// Package notification delivers SMS and email messages rendered from
// built-in templates. Delivery is best effort: callers log failures and
// carry on, nothing is queued or retried.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// EmailSender is the interface for sending email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender is the interface for sending SMS messages.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Template IDs.
const (
	TemplateAppLink            = "app-link"
	TemplateAppointmentBooked  = "appointment-booked"
	TemplateLabBookingReceived = "lab-booking-received"
)

// Template is a message with {{key}} placeholders. SMS templates leave
// Subject empty.
type Template struct {
	ID      string
	Subject string
	Body    string
}

var builtinTemplates = []Template{
	{
		ID:   TemplateAppLink,
		Body: "Get the MediConsult app to book consultations and lab tests on the go: {{link}}",
	},
	{
		ID:      TemplateAppointmentBooked,
		Subject: "Your appointment with {{doctor}} is confirmed",
		Body: "Hi {{patient}},\n\nYour {{type}} appointment with {{doctor}} is booked for {{date}} at {{slot}}.\n" +
			"{{join_hint}}\n\nMediConsult",
	},
	{
		ID:      TemplateLabBookingReceived,
		Subject: "Lab test booking received: {{test}}",
		Body:    "Hi {{patient}},\n\nWe have received your booking for {{test}} on {{date}}. We will confirm the collection shortly.\n\nMediConsult",
	},
}

// TemplateEngine holds the message templates by ID.
type TemplateEngine struct {
	mu   sync.RWMutex
	byID map[string]Template
}

// NewTemplateEngine returns an engine loaded with the app link, booking
// confirmation and lab receipt templates.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{byID: make(map[string]Template, len(builtinTemplates))}
	for _, t := range builtinTemplates {
		e.byID[t.ID] = t
	}
	return e
}

// RegisterTemplate adds t, replacing any template with the same ID.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	e.byID[t.ID] = t
	e.mu.Unlock()
}

// Render fills the placeholders of templateID from data. Placeholders with
// no entry in data stay in the output.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.byID[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	r := strings.NewReplacer(pairs...)
	return r.Replace(t.Subject), r.Replace(t.Body), nil
}

// Notifier sends templated messages through the configured senders.
type Notifier struct {
	email   EmailSender
	sms     SMSSender
	tpl     *TemplateEngine
	appLink string
}

func NewNotifier(email EmailSender, sms SMSSender, tpl *TemplateEngine, appLink string) *Notifier {
	return &Notifier{email: email, sms: sms, tpl: tpl, appLink: appLink}
}

// SendAppLink texts the app download link to phone.
func (n *Notifier) SendAppLink(ctx context.Context, phone string) error {
	_, body, err := n.tpl.Render(TemplateAppLink, map[string]string{"link": n.appLink})
	if err != nil {
		return err
	}
	return n.sms.SendSMS(ctx, phone, body)
}

// Email renders templateID with data and mails it to to.
func (n *Notifier) Email(ctx context.Context, to, templateID string, data map[string]string) error {
	if to == "" {
		return errors.New("no recipient address")
	}
	subject, body, err := n.tpl.Render(templateID, data)
	if err != nil {
		return err
	}
	return n.email.SendEmail(ctx, to, subject, body)
}
