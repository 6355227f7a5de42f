package model

import "time"

// Appointment books one user into one teacher's time on one day.
type Appointment struct {
	ID         int64         `json:"id"`
	UserID     int64         `json:"user_id"`
	TeacherID  *int64        `json:"teacher_id"`
	CenterID   int64         `json:"center_id"`
	SubjectID  *int64        `json:"subject_id"`
	LessonID   *int64        `json:"lesson_id"`
	TimeSlotID int64         `json:"time_slot_id"`
	Day        time.Time     `json:"day"`
	Duration   time.Duration `json:"-"`
	CreatedAt  time.Time     `json:"created_at"`

	// Дополнительные поля для удобства (не из таблицы appointments)
	SlotTime    TimeOfDay `json:"time"`
	UserName    string    `json:"user_name,omitempty"`
	TeacherName string    `json:"teacher_name,omitempty"`
}

// Interval is the time range the appointment occupies on its day.
func (a *Appointment) Interval() Interval {
	return IntervalAt(a.SlotTime, a.Duration)
}

type AppointmentFilter struct {
	UserID    *int64
	TeacherID *int64
	CenterID  *int64
	SubjectID *int64
	Day       *time.Time
}
