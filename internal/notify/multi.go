package notify

import (
	"context"
	"errors"

	"github.com/Freeeeeet/center_scheduler/internal/model"
)

type Notifier interface {
	Notify(ctx context.Context, event model.AppointmentEvent) error
}

// Multi delivers an event to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event model.AppointmentEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
