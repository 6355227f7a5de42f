package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time without a date, stored as seconds since midnight.
type TimeOfDay int

const secondsPerDay = 24 * 60 * 60

// NewTimeOfDay builds a TimeOfDay from hour, minute and second.
func NewTimeOfDay(hour, minute, second int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return 0, fmt.Errorf("invalid time of day %02d:%02d:%02d", hour, minute, second)
	}
	return TimeOfDay(hour*3600 + minute*60 + second), nil
}

// ParseTimeOfDay accepts "15:04" and "15:04:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return NewTimeOfDay(t.Hour(), t.Minute(), t.Second())
		}
	}
	return 0, fmt.Errorf("parse time of day %q: expected HH:MM or HH:MM:SS", s)
}

func (t TimeOfDay) Hour() int { return int(t) / 3600 }

func (t TimeOfDay) Minute() int { return int(t) % 3600 / 60 }

func (t TimeOfDay) Second() int { return int(t) % 60 }

// Offset is the distance from midnight.
func (t TimeOfDay) Offset() time.Duration { return time.Duration(t) * time.Second }

// On combines the time of day with a calendar day.
func (t TimeOfDay) On(day time.Time) time.Time {
	d := NormalizeDay(day)
	return d.Add(t.Offset())
}

func (t TimeOfDay) String() string {
	if t.Second() != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
	}
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Clock12 formats the time the way schedules show it, e.g. "09:00 AM".
func (t TimeOfDay) Clock12() string {
	return t.On(time.Time{}).Format("03:04 PM")
}

func (t TimeOfDay) Valid() bool { return t >= 0 && t < secondsPerDay }

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time of day must be a string: %w", err)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// NormalizeDay truncates a timestamp to midnight UTC of its calendar date.
func NormalizeDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD calendar date.
func ParseDay(s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}

// ParseLength accepts Go duration strings ("30m", "1h15m") and clock
// notation ("00:30:00").
func ParseLength(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	var h, m, sec int
	if n, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err == nil && n == 3 {
		if m < 0 || m > 59 || sec < 0 || sec > 59 || h < 0 {
			return 0, fmt.Errorf("parse duration %q: out of range", s)
		}
		return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
	}
	return 0, fmt.Errorf("parse duration %q: expected e.g. 30m or HH:MM:SS", s)
}
