package service

import (
	"context"

	"github.com/Freeeeeet/center_scheduler/internal/model"
)

// Notifier receives appointment events after the change is committed.
// Failures are logged by the caller and never undo the change.
type Notifier interface {
	Notify(ctx context.Context, event model.AppointmentEvent) error
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, model.AppointmentEvent) error { return nil }
