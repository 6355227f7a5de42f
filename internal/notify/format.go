package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/model"
)

var weekdayNames = [...]string{
	"Воскресенье",
	"Понедельник",
	"Вторник",
	"Среда",
	"Четверг",
	"Пятница",
	"Суббота",
}

// formatDay форматирует дату с днём недели, например "Понедельник, 01.07.2024"
func formatDay(t time.Time) string {
	return fmt.Sprintf("%s, %s", weekdayNames[t.Weekday()], t.Format("02.01.2006"))
}

// formatDuration форматирует длительность в часах и минутах
func formatDuration(d time.Duration) string {
	minutes := int(d / time.Minute)
	if minutes < 60 {
		return fmt.Sprintf("%d мин", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%d ч", hours)
	}
	return fmt.Sprintf("%d ч %d мин", hours, mins)
}

func formatEvent(event model.AppointmentEvent) string {
	a := event.Appointment

	var sb strings.Builder
	switch event.Type {
	case model.EventAppointmentBooked:
		sb.WriteString("✅ Новая запись\n")
	case model.EventAppointmentCanceled:
		sb.WriteString("❌ Запись отменена\n")
	default:
		sb.WriteString(string(event.Type) + "\n")
	}

	name := event.StudentName
	if name == "" {
		name = a.UserName
	}
	if name != "" {
		sb.WriteString("👤 " + name + "\n")
	}
	fmt.Fprintf(&sb, "📅 %s %s\n", formatDay(a.Day), a.SlotTime.String())
	fmt.Fprintf(&sb, "⏱ %s", formatDuration(a.Duration))

	return sb.String()
}
