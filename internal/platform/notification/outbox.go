package notification

import (
	"context"
	"sync"
)

// Channels a Message can go out on.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Message is one send recorded by an Outbox.
type Message struct {
	Channel string
	To      string
	Subject string
	Body    string
}

// Outbox records messages instead of delivering them. It serves as either
// sender in tests. When Err is set every send is recorded and then fails
// with Err.
type Outbox struct {
	mu   sync.Mutex
	sent []Message
	Err  error
}

func (o *Outbox) SendEmail(_ context.Context, to, subject, body string) error {
	return o.record(Message{Channel: ChannelEmail, To: to, Subject: subject, Body: body})
}

func (o *Outbox) SendSMS(_ context.Context, to, body string) error {
	return o.record(Message{Channel: ChannelSMS, To: to, Body: body})
}

func (o *Outbox) record(m Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, m)
	return o.Err
}

// Sent returns a copy of the recorded messages in send order.
func (o *Outbox) Sent() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Message(nil), o.sent...)
}
