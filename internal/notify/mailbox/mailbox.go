// Package mailbox drops rendered notifications into object storage
// so they can be inspected without a mail server.
package mailbox

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/gymkeeper-server/internal/model"
	"github.com/dtroode/gymkeeper-server/internal/notify"
)

const contentType = "text/html; charset=utf-8"

var _ notify.Transport = (*Mailbox)(nil)

// Mailbox is a notify.Transport writing each envelope as an HTML object
// keyed <recipient>/<timestamp>-<uuid>.html.
type Mailbox struct {
	storage model.Storage
}

func New(storage model.Storage) *Mailbox {
	return &Mailbox{storage: storage}
}

func (m *Mailbox) Deliver(ctx context.Context, env notify.Envelope) error {
	key := Key(env)
	if err := m.storage.Upload(ctx, key, strings.NewReader(env.HTML), int64(len(env.HTML)), contentType); err != nil {
		return fmt.Errorf("failed to store message %s: %w", key, err)
	}
	return nil
}

// Key returns a unique object key grouping messages by recipient.
func Key(env notify.Envelope) string {
	return fmt.Sprintf("%s/%s-%s.html", env.To, env.SentAt.UTC().Format("20060102T150405Z"), uuid.NewString())
}
