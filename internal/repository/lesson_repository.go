package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/Freeeeeet/center_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type LessonRepository struct {
	*base.Repository
}

func NewLessonRepository(db base.DBTX) *LessonRepository {
	return &LessonRepository{Repository: base.NewRepository(db)}
}

const lessonColumns = `
	l.id, l.center_id, l.weekday, l.start_date, l.end_date, l.duration_days,
	l.max_students, l.duration_id, l.created_at,
	ARRAY(SELECT lt.teacher_id FROM lesson_teachers lt WHERE lt.lesson_id = l.id ORDER BY lt.teacher_id),
	ARRAY(SELECT ls.course_id FROM lesson_subjects ls WHERE ls.lesson_id = l.id ORDER BY ls.course_id),
	ARRAY(SELECT lsl.time_slot_id FROM lesson_slots lsl WHERE lsl.lesson_id = l.id ORDER BY lsl.time_slot_id)
`

// Create сохраняет урок вместе со списками учителей, предметов и слотов.
// Вызывать внутри транзакции.
func (r *LessonRepository) Create(ctx context.Context, lesson *model.Lesson) error {
	query := `
		INSERT INTO lessons (center_id, weekday, start_date, end_date, duration_days, max_students, duration_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.DB().QueryRow(ctx, query,
		lesson.CenterID,
		weekdayToPG(lesson.Weekday),
		lesson.StartDate,
		lesson.EndDate,
		lesson.DurationDays,
		lesson.MaxStudents,
		lesson.DurationID,
	).Scan(&lesson.ID, &lesson.CreatedAt)
	if err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}

	return r.insertLinks(ctx, lesson)
}

// Update перезаписывает поля урока и его списки. Возвращает false, если урока нет.
// Вызывать внутри транзакции.
func (r *LessonRepository) Update(ctx context.Context, lesson *model.Lesson) (bool, error) {
	query := `
		UPDATE lessons
		SET center_id = $2, weekday = $3, start_date = $4, end_date = $5,
		    duration_days = $6, max_students = $7, duration_id = $8
		WHERE id = $1
		RETURNING created_at
	`

	err := r.DB().QueryRow(ctx, query,
		lesson.ID,
		lesson.CenterID,
		weekdayToPG(lesson.Weekday),
		lesson.StartDate,
		lesson.EndDate,
		lesson.DurationDays,
		lesson.MaxStudents,
		lesson.DurationID,
	).Scan(&lesson.CreatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("update lesson: %w", err)
	}

	for _, table := range []string{"lesson_teachers", "lesson_subjects", "lesson_slots"} {
		if _, err := r.DB().Exec(ctx, `DELETE FROM `+table+` WHERE lesson_id = $1`, lesson.ID); err != nil {
			return false, fmt.Errorf("clear lesson %s: %w", table, err)
		}
	}

	if err := r.insertLinks(ctx, lesson); err != nil {
		return false, err
	}
	return true, nil
}

func (r *LessonRepository) insertLinks(ctx context.Context, lesson *model.Lesson) error {
	links := []struct {
		table  string
		column string
		ids    []int64
	}{
		{"lesson_teachers", "teacher_id", lesson.TeacherIDs},
		{"lesson_subjects", "course_id", lesson.SubjectIDs},
		{"lesson_slots", "time_slot_id", lesson.SlotIDs},
	}
	for _, link := range links {
		if len(link.ids) == 0 {
			continue
		}
		q := fmt.Sprintf(`
			INSERT INTO %s (lesson_id, %s)
			SELECT $1, unnest($2::bigint[])
			ON CONFLICT DO NOTHING
		`, link.table, link.column)
		if _, err := r.DB().Exec(ctx, q, lesson.ID, link.ids); err != nil {
			return fmt.Errorf("link lesson %s: %w", link.table, err)
		}
	}

	return nil
}

// GetByID получает урок по ID
func (r *LessonRepository) GetByID(ctx context.Context, id int64) (*model.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons l WHERE l.id = $1`

	lesson, err := scanLesson(r.DB().QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lesson by id: %w", err)
	}

	return lesson, nil
}

// List получает уроки по фильтру
func (r *LessonRepository) List(ctx context.Context, filter model.LessonFilter) ([]*model.Lesson, error) {
	var (
		conds []string
		args  []any
	)
	if filter.CenterID != nil {
		args = append(args, *filter.CenterID)
		conds = append(conds, fmt.Sprintf("l.center_id = $%d", len(args)))
	}
	if filter.SubjectID != nil {
		args = append(args, *filter.SubjectID)
		conds = append(conds, fmt.Sprintf("EXISTS (SELECT 1 FROM lesson_subjects x WHERE x.lesson_id = l.id AND x.course_id = $%d)", len(args)))
	}
	if filter.TeacherID != nil {
		args = append(args, *filter.TeacherID)
		conds = append(conds, fmt.Sprintf("EXISTS (SELECT 1 FROM lesson_teachers x WHERE x.lesson_id = l.id AND x.teacher_id = $%d)", len(args)))
	}

	query := `SELECT ` + lessonColumns + ` FROM lessons l`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY l.start_date, l.id"

	rows, err := r.DB().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	var lessons []*model.Lesson
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}

	return lessons, nil
}

// Delete удаляет урок. Записи на урок остаются, lesson_id у них обнуляется.
func (r *LessonRepository) Delete(ctx context.Context, id int64) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete lesson: %w", err)
	}
	return affected == 1, nil
}

// DecrementCapacity takes one seat. It returns false without changing anything
// when no seats are left or the lesson does not exist.
func (r *LessonRepository) DecrementCapacity(ctx context.Context, id int64) (bool, error) {
	affected, err := r.ExecAffected(ctx, `
		UPDATE lessons
		SET max_students = max_students - 1
		WHERE id = $1 AND max_students > 0
	`, id)
	if err != nil {
		return false, fmt.Errorf("decrement lesson capacity: %w", err)
	}
	return affected == 1, nil
}

// IncrementCapacity возвращает место в уроке
func (r *LessonRepository) IncrementCapacity(ctx context.Context, id int64) (bool, error) {
	affected, err := r.ExecAffected(ctx, `
		UPDATE lessons
		SET max_students = max_students + 1
		WHERE id = $1
	`, id)
	if err != nil {
		return false, fmt.Errorf("increment lesson capacity: %w", err)
	}
	return affected == 1, nil
}

// ListWeekdaysBySubject returns the distinct weekdays of lessons that have
// appointments for the subject.
func (r *LessonRepository) ListWeekdaysBySubject(ctx context.Context, subjectID int64) ([]time.Weekday, error) {
	rows, err := r.DB().Query(ctx, `
		SELECT DISTINCT l.weekday
		FROM appointments a
		JOIN lessons l ON l.id = a.lesson_id
		WHERE a.subject_id = $1 AND l.weekday IS NOT NULL
		ORDER BY l.weekday
	`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list lesson weekdays: %w", err)
	}
	defer rows.Close()

	var days []time.Weekday
	for rows.Next() {
		var d int16
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan weekday: %w", err)
		}
		days = append(days, time.Weekday(d))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weekdays: %w", err)
	}

	return days, nil
}

func scanLesson(row pgx.Row) (*model.Lesson, error) {
	var (
		lesson  model.Lesson
		weekday *int16
	)
	err := row.Scan(
		&lesson.ID,
		&lesson.CenterID,
		&weekday,
		&lesson.StartDate,
		&lesson.EndDate,
		&lesson.DurationDays,
		&lesson.MaxStudents,
		&lesson.DurationID,
		&lesson.CreatedAt,
		&lesson.TeacherIDs,
		&lesson.SubjectIDs,
		&lesson.SlotIDs,
	)
	if err != nil {
		return nil, err
	}
	if weekday != nil {
		wd := time.Weekday(*weekday)
		lesson.Weekday = &wd
	}
	return &lesson, nil
}

func weekdayToPG(wd *time.Weekday) *int16 {
	if wd == nil {
		return nil
	}
	v := int16(*wd)
	return &v
}
