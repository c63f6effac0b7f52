// Package notify carries user-facing messages out of the core. The core
// never renders anything itself; it hands messages to a sink owned by the
// collaborator (the server logs them, a UI would toast them).
package notify

import "log/slog"

// Level classifies a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier receives user-facing messages.
type Notifier interface {
	Notify(message string, level Level)
}

// SlogNotifier routes notifications to a structured logger.
type SlogNotifier struct {
	logger *slog.Logger
}

// NewSlogNotifier wraps a logger as a notification sink.
func NewSlogNotifier(logger *slog.Logger) *SlogNotifier {
	return &SlogNotifier{logger: logger}
}

func (n *SlogNotifier) Notify(message string, level Level) {
	switch level {
	case LevelWarning:
		n.logger.Warn(message)
	case LevelError:
		n.logger.Error(message)
	default:
		n.logger.Info(message, "level", string(level))
	}
}

// Discard drops all notifications.
type Discard struct{}

func (Discard) Notify(string, Level) {}
