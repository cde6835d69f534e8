package notify

import (
	"context"

	"github.com/dtroode/gymkeeper-server/internal/logger"
)

// LogTransport writes envelope metadata to the logger instead of sending it.
// Bodies are not logged since they carry access codes and links.
type LogTransport struct {
	logger *logger.Logger
}

func NewLogTransport(logger *logger.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Deliver(_ context.Context, env Envelope) error {
	t.logger.Info("Notification",
		"to", env.To,
		"subject", env.Subject,
		"html_bytes", len(env.HTML),
		"sent_at", env.SentAt)
	return nil
}
