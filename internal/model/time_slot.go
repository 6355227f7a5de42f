package model

import "time"

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
)

// TimeSlot is a reusable time of day, independent of any date or teacher.
type TimeSlot struct {
	ID        int64     `json:"id"`
	Time      TimeOfDay `json:"time"`
	CreatedAt time.Time `json:"created_at"`
}

// SlotAvailability is a derived view of a slot for one teacher on one day.
// It is computed from appointments and never stored.
type SlotAvailability struct {
	Slot   *TimeSlot  `json:"slot"`
	Status SlotStatus `json:"status"`
}

// Duration is a named, reusable length of time.
type Duration struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Length    time.Duration `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
}
