// Package notify schedules client-side reminder notifications against
// wall-clock time. The platform notification capability is a dependency the
// scheduler consumes, not something it implements; when the capability is
// unavailable the feature degrades silently.
package notify

import (
	"errors"
	"sync"

	"github.com/gen2brain/beeep"
)

// Permission is the tri-state notification permission.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// ErrCapabilityUnavailable is returned when a notification cannot be posted
// because permission was denied or no capability is configured.
var ErrCapabilityUnavailable = errors.New("notification capability unavailable")

// Sender is the platform notification capability: query/request permission
// and post a titled notification.
type Sender interface {
	Permission() Permission
	RequestPermission() Permission
	Send(title, body string) error
}

// Desktop posts system notifications via beeep. Permission starts in the
// default state (denied when notifications are disabled in config) and is
// granted on request.
type Desktop struct {
	mu   sync.Mutex
	perm Permission
}

var _ Sender = (*Desktop)(nil)

// NewDesktop builds the desktop capability. enabled=false pins permission
// to denied.
func NewDesktop(enabled bool) *Desktop {
	perm := PermissionDefault
	if !enabled {
		perm = PermissionDenied
	}
	return &Desktop{perm: perm}
}

func (d *Desktop) Permission() Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.perm
}

func (d *Desktop) RequestPermission() Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.perm == PermissionDefault {
		d.perm = PermissionGranted
	}
	return d.perm
}

func (d *Desktop) Send(title, body string) error {
	if d.Permission() != PermissionGranted {
		return ErrCapabilityUnavailable
	}
	return beeep.Notify(title, body, "")
}

// Noop is a Sender that grants permission and discards notifications.
// Useful for headless runs and tests.
type Noop struct{}

var _ Sender = Noop{}

func (Noop) Permission() Permission        { return PermissionGranted }
func (Noop) RequestPermission() Permission { return PermissionGranted }
func (Noop) Send(title, body string) error { return nil }
