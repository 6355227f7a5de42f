package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/Freeeeeet/center_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type DurationRepository struct {
	*base.Repository
}

func NewDurationRepository(db base.DBTX) *DurationRepository {
	return &DurationRepository{Repository: base.NewRepository(db)}
}

func (r *DurationRepository) Create(ctx context.Context, d *model.Duration) error {
	query := `
		INSERT INTO durations (name, length_seconds)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.DB().QueryRow(ctx, query, d.Name, int64(d.Length/time.Second)).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("create duration: %w", err)
	}

	return nil
}

func (r *DurationRepository) GetByID(ctx context.Context, id int64) (*model.Duration, error) {
	query := `
		SELECT id, name, length_seconds, created_at
		FROM durations
		WHERE id = $1
	`

	d, err := scanDuration(r.DB().QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get duration by id: %w", err)
	}

	return d, nil
}

func (r *DurationRepository) List(ctx context.Context) ([]*model.Duration, error) {
	rows, err := r.DB().Query(ctx, `
		SELECT id, name, length_seconds, created_at
		FROM durations
		ORDER BY length_seconds, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list durations: %w", err)
	}
	defer rows.Close()

	var durations []*model.Duration
	for rows.Next() {
		d, err := scanDuration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan duration: %w", err)
		}
		durations = append(durations, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate durations: %w", err)
	}

	return durations, nil
}

func scanDuration(row pgx.Row) (*model.Duration, error) {
	var (
		d       model.Duration
		seconds int64
	)
	if err := row.Scan(&d.ID, &d.Name, &seconds, &d.CreatedAt); err != nil {
		return nil, err
	}
	d.Length = time.Duration(seconds) * time.Second
	return &d, nil
}
