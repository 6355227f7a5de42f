package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/Freeeeeet/center_scheduler/internal/repository/base"
)

type StudentRepository struct {
	*base.Repository
}

func NewStudentRepository(db base.DBTX) *StudentRepository {
	return &StudentRepository{Repository: base.NewRepository(db)}
}

func (r *StudentRepository) Create(ctx context.Context, student *model.Student) error {
	query := `
		INSERT INTO students (user_id, center_id, phone)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.DB().QueryRow(ctx, query, student.UserID, student.CenterID, student.Phone).
		Scan(&student.ID, &student.CreatedAt)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create student: %w", ErrConflict)
		}
		return fmt.Errorf("create student: %w", err)
	}

	return nil
}

func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	return r.getOne(ctx, "s.id", id)
}

func (r *StudentRepository) GetByUserID(ctx context.Context, userID int64) (*model.Student, error) {
	return r.getOne(ctx, "s.user_id", userID)
}

func (r *StudentRepository) getOne(ctx context.Context, column string, value int64) (*model.Student, error) {
	query := fmt.Sprintf(`
		SELECT s.id, s.user_id, s.center_id, s.phone, s.created_at, u.name
		FROM students s
		JOIN users u ON u.id = s.user_id
		WHERE %s = $1
	`, column)

	var student model.Student
	err := r.DB().QueryRow(ctx, query, value).Scan(
		&student.ID,
		&student.UserID,
		&student.CenterID,
		&student.Phone,
		&student.CreatedAt,
		&student.Name,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student by %s: %w", column, err)
	}

	return &student, nil
}
