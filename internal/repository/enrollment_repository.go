package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/Freeeeeet/center_scheduler/internal/repository/base"
)

type EnrollmentRepository struct {
	*base.Repository
}

func NewEnrollmentRepository(db base.DBTX) *EnrollmentRepository {
	return &EnrollmentRepository{Repository: base.NewRepository(db)}
}

// Create записывает студента на предмет. Повторная запись даёт ErrConflict.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *model.Enrollment) error {
	query := `
		INSERT INTO enrollments (student_id, course_id)
		VALUES ($1, $2)
		RETURNING id, enrolled_at
	`

	err := r.DB().QueryRow(ctx, query, enrollment.StudentID, enrollment.CourseID).
		Scan(&enrollment.ID, &enrollment.EnrolledAt)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create enrollment: %w", ErrConflict)
		}
		return fmt.Errorf("create enrollment: %w", err)
	}

	return nil
}

func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM enrollments
			WHERE student_id = $1 AND course_id = $2
		)
	`

	var exists bool
	if err := r.DB().QueryRow(ctx, query, studentID, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check enrollment exists: %w", err)
	}

	return exists, nil
}
