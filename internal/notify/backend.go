package notify

import "github.com/gen2brain/beeep"

// Backend abstracts the desktop notification service.
type Backend interface {
	// Notify raises an informational notification.
	Notify(title, message, iconPath string) error
	// Alert raises a notification with an audible cue.
	Alert(title, message, iconPath string) error
}

// desktopBackend delivers notifications through beeep.
type desktopBackend struct{}

// Notify implements Backend.
func (desktopBackend) Notify(title, message, iconPath string) error {
	return beeep.Notify(title, message, iconPath)
}

// Alert implements Backend.
func (desktopBackend) Alert(title, message, iconPath string) error {
	return beeep.Alert(title, message, iconPath)
}

// newDesktopBackend returns a Backend backed by the system service.
func newDesktopBackend() Backend {
	return desktopBackend{}
}
