// Package notify contains Notifier implementations. Delivery is
// fire-and-forget everywhere; callers log failures and move on.
package notify

import (
	"context"

	"go.uber.org/zap"
)

// Console logs notifications through zap.
type Console struct {
	logger *zap.Logger
}

// NewConsole returns a Console notifier.
func NewConsole(logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{logger: logger}
}

// Notify writes the message to the log.
func (c *Console) Notify(_ context.Context, message string) error {
	c.logger.Info("notification", zap.String("message", message))
	return nil
}
