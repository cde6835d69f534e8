// Package notify renders notification messages and hands them to a transport.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/gymkeeper-server/internal/logger"
	"github.com/dtroode/gymkeeper-server/internal/model"
)

// ErrNoRecipient is returned for messages without a recipient.
var ErrNoRecipient = errors.New("message has no recipient")

// Envelope is a rendered message ready for delivery.
type Envelope struct {
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	HTML    string    `json:"html"`
	Text    string    `json:"text"`
	SentAt  time.Time `json:"sent_at"`
}

// Transport delivers rendered envelopes.
type Transport interface {
	Deliver(ctx context.Context, env Envelope) error
}

// Mailer implements model.Notifier on top of a Transport.
type Mailer struct {
	transport Transport
	logger    *logger.Logger
	now       func() time.Time
}

var _ model.Notifier = (*Mailer)(nil)

func NewMailer(transport Transport, logger *logger.Logger) *Mailer {
	return &Mailer{transport: transport, logger: logger, now: time.Now}
}

// Send renders msg and delivers it.
func (m *Mailer) Send(ctx context.Context, msg model.Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	env, err := Render(msg)
	if err != nil {
		return err
	}
	env.SentAt = m.now().UTC()

	if err := m.transport.Deliver(ctx, env); err != nil {
		m.logger.Error("Mailer: delivery failed",
			"to", msg.To,
			"subject", msg.Subject,
			"error", err.Error())
		return fmt.Errorf("failed to deliver message: %w", err)
	}

	m.logger.Debug("Mailer: message delivered",
		"to", msg.To,
		"subject", msg.Subject)

	return nil
}
