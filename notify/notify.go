// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/danielhkuo/safeweb/models"
)

// idleClose is how long the SMTP connection stays open without mail.
const idleClose = 30 * time.Second

// Dialer opens an SMTP session. *gomail.Dialer satisfies it.
type Dialer interface {
	Dial() (gomail.SendCloser, error)
}

// Mailer queues anomaly alert emails and delivers them from a single
// goroutine that keeps the SMTP connection open between messages.
type Mailer struct {
	dialer Dialer
	from   string
	to     string
	queue  chan *gomail.Message
}

// NewMailer dials host with optional credentials. Relays that accept mail
// without authentication leave username empty, so from is given separately.
func NewMailer(host string, port int, username, password, from, to string) (*Mailer, error) {
	if from == "" {
		return nil, errors.New("alert email sender address is required")
	}
	if to == "" {
		return nil, errors.New("alert email recipient is required")
	}
	return NewMailerWithDialer(gomail.NewDialer(host, port, username, password), from, to), nil
}

func NewMailerWithDialer(d Dialer, from, to string) *Mailer {
	return &Mailer{
		dialer: d,
		from:   from,
		to:     to,
		queue:  make(chan *gomail.Message, 64),
	}
}

// Compose builds the alert email for a flagged reading.
func (m *Mailer) Compose(r models.Reading, alertID int64, message string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to)
	msg.SetHeader("Subject", fmt.Sprintf("Sensor anomaly on %s", r.DeviceID))
	msg.SetBody("text/plain", fmt.Sprintf("Alert #%d at %s\n\n%s\n",
		alertID, r.Timestamp.UTC().Format(time.RFC3339), message))
	return msg
}

// Notify enqueues an alert email. It never blocks; when the queue is full
// the email is dropped and logged.
func (m *Mailer) Notify(r models.Reading, alertID int64, message string) {
	select {
	case m.queue <- m.Compose(r, alertID, message):
	default:
		slog.Warn("alert email dropped, queue full", "alert_id", alertID)
	}
}

// Run delivers queued mail until ctx is done.
func (m *Mailer) Run(ctx context.Context) {
	var s gomail.SendCloser
	open := false

	closeConn := func() {
		if open {
			if err := s.Close(); err != nil {
				slog.Warn("smtp close failed", "error", err)
			}
			open = false
		}
	}
	defer closeConn()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-m.queue:
			if !open {
				var err error
				if s, err = m.dialer.Dial(); err != nil {
					slog.Error("smtp dial failed", "error", err)
					continue
				}
				open = true
			}
			if err := gomail.Send(s, msg); err != nil {
				slog.Error("alert email failed", "error", err)
				closeConn()
			}
		case <-time.After(idleClose):
			closeConn()
		}
	}
}
