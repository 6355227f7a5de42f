package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/Freeeeeet/center_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type TeacherRepository struct {
	*base.Repository
}

func NewTeacherRepository(db base.DBTX) *TeacherRepository {
	return &TeacherRepository{Repository: base.NewRepository(db)}
}

const teacherColumns = `t.id, t.user_id, t.center_id, t.bio, t.created_at, u.name`

func (r *TeacherRepository) Create(ctx context.Context, teacher *model.Teacher) error {
	query := `
		INSERT INTO teachers (user_id, center_id, bio)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.DB().QueryRow(ctx, query, teacher.UserID, teacher.CenterID, teacher.Bio).
		Scan(&teacher.ID, &teacher.CreatedAt)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create teacher: %w", ErrConflict)
		}
		return fmt.Errorf("create teacher: %w", err)
	}

	return nil
}

// GetByID получает учителя по ID
func (r *TeacherRepository) GetByID(ctx context.Context, id int64) (*model.Teacher, error) {
	query := `SELECT ` + teacherColumns + `
		FROM teachers t
		JOIN users u ON u.id = t.user_id
		WHERE t.id = $1
	`

	teacher, err := scanTeacher(r.DB().QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get teacher by id: %w", err)
	}

	return teacher, nil
}

// GetByUserID получает учителя по ID пользователя
func (r *TeacherRepository) GetByUserID(ctx context.Context, userID int64) (*model.Teacher, error) {
	query := `SELECT ` + teacherColumns + `
		FROM teachers t
		JOIN users u ON u.id = t.user_id
		WHERE t.user_id = $1
	`

	teacher, err := scanTeacher(r.DB().QueryRow(ctx, query, userID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get teacher by user id: %w", err)
	}

	return teacher, nil
}

// LockForUpdate takes a row lock on the teacher until the surrounding
// transaction ends. Returns false when the teacher does not exist.
func (r *TeacherRepository) LockForUpdate(ctx context.Context, id int64) (bool, error) {
	var locked int64
	err := r.DB().QueryRow(ctx, `SELECT id FROM teachers WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if base.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("lock teacher: %w", err)
	}
	return true, nil
}

// ListByCenter получает всех учителей центра
func (r *TeacherRepository) ListByCenter(ctx context.Context, centerID int64) ([]*model.Teacher, error) {
	query := `SELECT ` + teacherColumns + `
		FROM teachers t
		JOIN users u ON u.id = t.user_id
		WHERE t.center_id = $1
		ORDER BY t.id
	`

	rows, err := r.DB().Query(ctx, query, centerID)
	if err != nil {
		return nil, fmt.Errorf("list teachers by center: %w", err)
	}
	return collectTeachers(rows)
}

// ListByCourse получает учителей, которые ведут предмет
func (r *TeacherRepository) ListByCourse(ctx context.Context, courseID int64) ([]*model.Teacher, error) {
	query := `SELECT ` + teacherColumns + `
		FROM course_teachers ct
		JOIN teachers t ON t.id = ct.teacher_id
		JOIN users u ON u.id = t.user_id
		WHERE ct.course_id = $1
		ORDER BY t.id
	`

	rows, err := r.DB().Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("list teachers by course: %w", err)
	}
	return collectTeachers(rows)
}

// AddCourse links a teacher and a course. Returns false when the link
// already existed.
func (r *TeacherRepository) AddCourse(ctx context.Context, courseID, teacherID int64) (bool, error) {
	affected, err := r.ExecAffected(ctx, `
		INSERT INTO course_teachers (course_id, teacher_id)
		VALUES ($1, $2)
		ON CONFLICT (course_id, teacher_id) DO NOTHING
	`, courseID, teacherID)
	if err != nil {
		return false, fmt.Errorf("add course teacher: %w", err)
	}
	return affected == 1, nil
}

func scanTeacher(row pgx.Row) (*model.Teacher, error) {
	var teacher model.Teacher
	err := row.Scan(
		&teacher.ID,
		&teacher.UserID,
		&teacher.CenterID,
		&teacher.Bio,
		&teacher.CreatedAt,
		&teacher.Name,
	)
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func collectTeachers(rows pgx.Rows) ([]*model.Teacher, error) {
	defer rows.Close()

	var teachers []*model.Teacher
	for rows.Next() {
		teacher, err := scanTeacher(rows)
		if err != nil {
			return nil, fmt.Errorf("scan teacher: %w", err)
		}
		teachers = append(teachers, teacher)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teachers: %w", err)
	}

	return teachers, nil
}
