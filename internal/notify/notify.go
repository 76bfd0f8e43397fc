// Package notify raises desktop notifications for long-running queries.
package notify

import (
	"fmt"
	"time"

	"github.com/mbrcli/mbr/internal/config"
	"github.com/mbrcli/mbr/internal/utils"
)

// Notifier defines the interface for query completion notifications.
type Notifier interface {
	// QueryFinished notifies that a query completed, when it ran long
	// enough to matter.
	QueryFinished(question string, rows int, elapsed time.Duration) error
	// QueryFailed notifies that a query failed after running long
	// enough to matter.
	QueryFailed(question string, elapsed time.Duration, cause error) error
}

// Option configures a Notifier.
type Option func(*notifier)

// WithBackend sets a custom notification backend (for testing).
func WithBackend(backend Backend) Option {
	return func(n *notifier) {
		n.backend = backend
	}
}

// notifier sends desktop notifications using the system notification service.
type notifier struct {
	enabled   bool
	threshold time.Duration
	backend   Backend
}

// QueryFinished implements Notifier. Queries faster than the threshold
// stay silent.
func (n *notifier) QueryFinished(question string, rows int, elapsed time.Duration) error {
	if !n.enabled || elapsed < n.threshold {
		return nil
	}

	title := "mbr: Query Finished"
	message := fmt.Sprintf("'%s' finished in %s.\nRows: %s", question, utils.FormatDuration(elapsed), utils.FormatCount(rows))

	return n.backend.Notify(title, message, "")
}

// QueryFailed implements Notifier. Queries faster than the threshold
// stay silent.
func (n *notifier) QueryFailed(question string, elapsed time.Duration, cause error) error {
	if !n.enabled || elapsed < n.threshold {
		return nil
	}

	title := "mbr: Query Failed"
	message := fmt.Sprintf("'%s' failed after %s.\nError: %v", question, utils.FormatDuration(elapsed), cause)

	return n.backend.Alert(title, message, "")
}

// New creates a new Notifier based on the configuration.
func New(cfg config.NotificationConfig, opts ...Option) Notifier {
	n := &notifier{
		enabled:   cfg.Enabled,
		threshold: cfg.Threshold(),
		backend:   newDesktopBackend(),
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}
