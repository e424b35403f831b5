package notifications

// Notifier defines the interface for notification services. Delivery is
// best-effort: a failed send is logged by the caller and never fails the
// tick that produced it.
type Notifier interface {
	// SendAlert sends an alert with the specified level and message
	SendAlert(level, message string) error
}

// NopNotifier discards all alerts. Used when no channel is configured.
type NopNotifier struct{}

func (NopNotifier) SendAlert(level, message string) error { return nil }
