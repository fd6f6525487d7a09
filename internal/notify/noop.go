package notify

import (
	"context"

	"go.uber.org/zap"
)

// NoopPublisher logs notifications instead of delivering them.
// Used when no message broker is configured.
type NoopPublisher struct {
	logger *zap.Logger
}

// NewNoopPublisher creates a NoopPublisher backed by logger.
func NewNoopPublisher(logger *zap.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

// Publish logs the subject and returns nil.
func (n *NoopPublisher) Publish(_ context.Context, subject string, payload any) error {
	n.logger.Debug("notification (noop, not sent)",
		zap.String("subject", subject),
		zap.Any("payload", payload),
	)
	return nil
}

// Close is a no-op.
func (n *NoopPublisher) Close() error { return nil }
