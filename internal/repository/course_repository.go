package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/Freeeeeet/center_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type CourseRepository struct {
	*base.Repository
}

func NewCourseRepository(db base.DBTX) *CourseRepository {
	return &CourseRepository{Repository: base.NewRepository(db)}
}

// Create создаёт новый предмет
func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	query := `
		INSERT INTO courses (center_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.DB().QueryRow(ctx, query, course.CenterID, course.Title, course.Description).
		Scan(&course.ID, &course.CreatedAt)
	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	return nil
}

// GetByID получает предмет по ID
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*model.Course, error) {
	query := `
		SELECT id, center_id, title, description, created_at
		FROM courses
		WHERE id = $1
	`

	course, err := scanCourse(r.DB().QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get course by id: %w", err)
	}

	return course, nil
}

// ListByTeacher получает все предметы учителя
func (r *CourseRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]*model.Course, error) {
	query := `
		SELECT c.id, c.center_id, c.title, c.description, c.created_at
		FROM course_teachers ct
		JOIN courses c ON c.id = ct.course_id
		WHERE ct.teacher_id = $1
		ORDER BY c.id
	`

	rows, err := r.DB().Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list courses by teacher: %w", err)
	}
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}

	return courses, nil
}

func scanCourse(row pgx.Row) (*model.Course, error) {
	var course model.Course
	if err := row.Scan(&course.ID, &course.CenterID, &course.Title, &course.Description, &course.CreatedAt); err != nil {
		return nil, err
	}
	return &course, nil
}
