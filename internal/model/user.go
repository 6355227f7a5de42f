package model

import "time"

type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	IsStaff        bool      `json:"is_staff"`
	TelegramChatID *int64    `json:"telegram_chat_id,omitempty"` // куда слать уведомления, может быть nil
	CreatedAt      time.Time `json:"created_at"`
}

// Role is the capacity in which a user sees the schedule.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleCenter  Role = "center"
)
