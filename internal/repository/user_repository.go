package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/Freeeeeet/center_scheduler/internal/repository/base"
)

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(db base.DBTX) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(db)}
}

// Create создаёт нового пользователя
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (email, name, is_staff, telegram_chat_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.DB().QueryRow(
		ctx, query,
		user.Email,
		user.Name,
		user.IsStaff,
		user.TelegramChatID,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create user: %w", ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, email, name, is_staff, telegram_chat_id, created_at
		FROM users
		WHERE id = $1
	`

	var user model.User
	err := r.DB().QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.IsStaff,
		&user.TelegramChatID,
		&user.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return &user, nil
}
