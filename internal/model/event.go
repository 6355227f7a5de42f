package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentEventType string

const (
	EventAppointmentBooked   AppointmentEventType = "appointment.booked"
	EventAppointmentCanceled AppointmentEventType = "appointment.canceled"
)

// AppointmentEvent is emitted after an appointment is committed or removed.
type AppointmentEvent struct {
	ID          uuid.UUID            `json:"event_id"`
	Type        AppointmentEventType `json:"type"`
	Appointment Appointment          `json:"-"`
	OccurredAt  time.Time            `json:"occurred_at"`

	// Для уведомлений учителю
	TeacherChatID *int64 `json:"-"`
	StudentName   string `json:"-"`
}

func NewAppointmentEvent(typ AppointmentEventType, appt Appointment, now time.Time) AppointmentEvent {
	return AppointmentEvent{
		ID:          uuid.New(),
		Type:        typ,
		Appointment: appt,
		OccurredAt:  now.UTC(),
	}
}
