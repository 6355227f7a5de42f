package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/Freeeeeet/center_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type AppointmentRepository struct {
	*base.Repository
}

func NewAppointmentRepository(db base.DBTX) *AppointmentRepository {
	return &AppointmentRepository{Repository: base.NewRepository(db)}
}

const appointmentSelect = `
	SELECT a.id, a.user_id, a.teacher_id, a.center_id, a.subject_id, a.lesson_id,
	       a.time_slot_id, a.day, a.duration_seconds, a.created_at,
	       ts.time_of_day, u.name, COALESCE(tu.name, '')
	FROM appointments a
	JOIN time_slots ts ON ts.id = a.time_slot_id
	JOIN users u ON u.id = a.user_id
	LEFT JOIN teachers t ON t.id = a.teacher_id
	LEFT JOIN users tu ON tu.id = t.user_id
`

// Create создаёт новую запись. Нарушение уникальности (teacher, day, slot) даёт ErrConflict.
func (r *AppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	query := `
		INSERT INTO appointments (user_id, teacher_id, center_id, subject_id, lesson_id, time_slot_id, day, duration_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.DB().QueryRow(
		ctx, query,
		appt.UserID,
		appt.TeacherID,
		appt.CenterID,
		appt.SubjectID,
		appt.LessonID,
		appt.TimeSlotID,
		model.NormalizeDay(appt.Day),
		int64(appt.Duration/time.Second),
	).Scan(&appt.ID, &appt.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create appointment: %w", ErrConflict)
		}
		return fmt.Errorf("create appointment: %w", err)
	}

	return nil
}

// GetByID получает запись по ID
func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*model.Appointment, error) {
	appt, err := scanAppointment(r.DB().QueryRow(ctx, appointmentSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}

	return appt, nil
}

// Delete удаляет запись
func (r *AppointmentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete appointment: %w", err)
	}
	return affected == 1, nil
}

// List получает записи по фильтру, упорядоченные по дню и времени
func (r *AppointmentRepository) List(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.UserID != nil {
		add("a.user_id = $%d", *filter.UserID)
	}
	if filter.TeacherID != nil {
		add("a.teacher_id = $%d", *filter.TeacherID)
	}
	if filter.CenterID != nil {
		add("a.center_id = $%d", *filter.CenterID)
	}
	if filter.SubjectID != nil {
		add("a.subject_id = $%d", *filter.SubjectID)
	}
	if filter.Day != nil {
		add("a.day = $%d", model.NormalizeDay(*filter.Day))
	}

	query := appointmentSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY a.day, ts.time_of_day, a.id"

	rows, err := r.DB().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var appointments []*model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}

	return appointments, nil
}

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var (
		appt    model.Appointment
		seconds int64
		tod     pgtype.Time
	)
	err := row.Scan(
		&appt.ID,
		&appt.UserID,
		&appt.TeacherID,
		&appt.CenterID,
		&appt.SubjectID,
		&appt.LessonID,
		&appt.TimeSlotID,
		&appt.Day,
		&seconds,
		&appt.CreatedAt,
		&tod,
		&appt.UserName,
		&appt.TeacherName,
	)
	if err != nil {
		return nil, err
	}
	appt.Duration = time.Duration(seconds) * time.Second
	appt.SlotTime = timeFromPG(tod)
	return &appt, nil
}
