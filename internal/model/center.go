package model

import "time"

// Center is an organizational tenant owning teachers, students, courses and lessons.
type Center struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	OwnerUserID *int64    `json:"owner_user_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Teacher struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	CenterID  *int64    `json:"center_id"` // nil пока учитель не привязан к центру
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`

	// Не из таблицы teachers, подтягивается из users
	Name string `json:"name"`
}

// BelongsTo reports whether the teacher is assigned to the given center.
func (t *Teacher) BelongsTo(centerID int64) bool {
	return t.CenterID != nil && *t.CenterID == centerID
}

type Student struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	CenterID  int64     `json:"center_id"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`

	Name string `json:"name"`
}
