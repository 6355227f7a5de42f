package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/Freeeeeet/center_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(db base.DBTX) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(db)}
}

// Upsert создаёт слот или возвращает уже существующий с тем же временем
func (r *SlotRepository) Upsert(ctx context.Context, slot *model.TimeSlot) error {
	query := `
		INSERT INTO time_slots (time_of_day)
		VALUES ($1)
		ON CONFLICT (time_of_day) DO UPDATE SET time_of_day = EXCLUDED.time_of_day
		RETURNING id, created_at
	`

	err := r.DB().QueryRow(ctx, query, timeToPG(slot.Time)).Scan(&slot.ID, &slot.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert slot: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*model.TimeSlot, error) {
	query := `
		SELECT id, time_of_day, created_at
		FROM time_slots
		WHERE id = $1
	`

	slot, err := scanSlot(r.DB().QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// List получает все слоты по возрастанию времени
func (r *SlotRepository) List(ctx context.Context) ([]*model.TimeSlot, error) {
	rows, err := r.DB().Query(ctx, `
		SELECT id, time_of_day, created_at
		FROM time_slots
		ORDER BY time_of_day
	`)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.TimeSlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}

	return slots, nil
}

func scanSlot(row pgx.Row) (*model.TimeSlot, error) {
	var (
		slot model.TimeSlot
		tod  pgtype.Time
	)
	if err := row.Scan(&slot.ID, &tod, &slot.CreatedAt); err != nil {
		return nil, err
	}
	slot.Time = timeFromPG(tod)
	return &slot, nil
}

func timeToPG(t model.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: int64(t.Offset() / time.Microsecond), Valid: true}
}

func timeFromPG(t pgtype.Time) model.TimeOfDay {
	return model.TimeOfDay(t.Microseconds / int64(time.Second/time.Microsecond))
}
