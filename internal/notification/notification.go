package notification

import (
	"context"
	"log/slog"
)

const (
	// KindTokenIssued indicates a session token was minted after OTP verification.
	KindTokenIssued = "token_issued"
	// KindPinSet indicates a PIN credential was enrolled.
	KindPinSet = "pin_set"
	// KindPinLogin indicates a successful PIN login.
	KindPinLogin = "pin_login"
	// KindPinLoginDenied indicates a PIN login rejected on credential mismatch.
	KindPinLoginDenied = "pin_login_denied"
)

// Event describes an auth lifecycle event.
type Event struct {
	Kind string
	UID  string
}

// Notifier delivers auth events to downstream systems.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// LoggerNotifier is a stub implementation that writes events to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Notify writes the event to the structured logger.
func (n *LoggerNotifier) Notify(_ context.Context, event Event) {
	if n == nil || n.logger == nil {
		return
	}
	n.logger.Info("auth event", "kind", event.Kind, "uid", event.UID)
}
