package model

// Attendee is a user booked into a schedule slot.
type Attendee struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ScheduledSlot struct {
	Time      string     `json:"time"`
	Start     TimeOfDay  `json:"start"`
	End       TimeOfDay  `json:"end"` // конец самой длинной записи в слоте
	Attendees []Attendee `json:"attendees"`
}

// TeacherSchedule is one teacher's bookings for a day.
type TeacherSchedule struct {
	TeacherID int64           `json:"id"`
	Teacher   string          `json:"teacher"`
	Slots     []ScheduledSlot `json:"slots"`
}
