package model

import "time"

// Lesson is a recurring offering: teachers, subjects and slots bound to a date
// range with a remaining capacity.
type Lesson struct {
	ID           int64         `json:"id"`
	CenterID     int64         `json:"center_id"`
	Weekday      *time.Weekday `json:"weekday,omitempty"`
	StartDate    time.Time     `json:"start_date"`
	EndDate      time.Time     `json:"end_date"`
	DurationDays int           `json:"duration_days"`
	MaxStudents  int           `json:"max_students"` // оставшиеся места, уменьшается при каждой записи
	DurationID   *int64        `json:"duration_id,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`

	TeacherIDs []int64 `json:"teacher_ids"`
	SubjectIDs []int64 `json:"subject_ids"`
	SlotIDs    []int64 `json:"slot_ids"`
}

// DaysUntilEnd counts whole days from today to creation date + DurationDays.
// It never goes below zero.
func (l *Lesson) DaysUntilEnd(today time.Time) int {
	end := NormalizeDay(l.CreatedAt).AddDate(0, 0, l.DurationDays)
	days := int(end.Sub(NormalizeDay(today)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// DaysBetween returns the number of calendar days from start to end.
func DaysBetween(start, end time.Time) int {
	return int(NormalizeDay(end).Sub(NormalizeDay(start)).Hours() / 24)
}

type LessonFilter struct {
	CenterID  *int64
	SubjectID *int64
	TeacherID *int64
}
