// Package notify is the fire-and-forget toast sink: every state-changing
// outcome of the synchronized stores pushes exactly one toast here. Delivery
// failures are logged and never propagate back into store state.
package notify

import (
	"context"

	"github.com/devenirpromoteur/realify-api/internal/logger"
)

// Severity of a toast.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Toast is a user-facing notification.
type Toast struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// Notifier accepts toasts. Implementations must not block store operations on
// delivery and must swallow their own delivery errors.
type Notifier interface {
	Push(ctx context.Context, t Toast)
}

// LogNotifier writes toasts to the structured log. It is the fallback sink
// when the broker is disabled, and the default in tests.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier creates a log-backed Notifier.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Push logs the toast at a level matching its severity.
func (n *LogNotifier) Push(_ context.Context, t Toast) {
	fields := map[string]interface{}{
		"title":       t.Title,
		"description": t.Description,
	}
	if t.Severity == SeverityError {
		n.log.Warn("Toast", fields)
		return
	}
	n.log.Info("Toast", fields)
}
