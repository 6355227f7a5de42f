package notify

import (
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/google/uuid"
)

// appointmentMessage is the JSON body published for every appointment event.
type appointmentMessage struct {
	EventID         uuid.UUID                  `json:"event_id"`
	Type            model.AppointmentEventType `json:"type"`
	AppointmentID   int64                      `json:"appointment_id"`
	UserID          int64                      `json:"user_id"`
	TeacherID       *int64                     `json:"teacher_id"`
	CenterID        int64                      `json:"center_id"`
	SubjectID       *int64                     `json:"subject_id"`
	LessonID        *int64                     `json:"lesson_id"`
	Day             string                     `json:"day"`
	Time            string                     `json:"time"`
	DurationSeconds int64                      `json:"duration_seconds"`
	OccurredAt      time.Time                  `json:"occurred_at"`
}

func newAppointmentMessage(e model.AppointmentEvent) appointmentMessage {
	a := e.Appointment
	return appointmentMessage{
		EventID:         e.ID,
		Type:            e.Type,
		AppointmentID:   a.ID,
		UserID:          a.UserID,
		TeacherID:       a.TeacherID,
		CenterID:        a.CenterID,
		SubjectID:       a.SubjectID,
		LessonID:        a.LessonID,
		Day:             a.Day.Format(time.DateOnly),
		Time:            a.SlotTime.String(),
		DurationSeconds: int64(a.Duration / time.Second),
		OccurredAt:      e.OccurredAt,
	}
}
