package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/Freeeeeet/center_scheduler/internal/repository/base"
)

type CenterRepository struct {
	*base.Repository
}

func NewCenterRepository(db base.DBTX) *CenterRepository {
	return &CenterRepository{Repository: base.NewRepository(db)}
}

func (r *CenterRepository) Create(ctx context.Context, center *model.Center) error {
	query := `
		INSERT INTO centers (name, address, phone, owner_user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.DB().QueryRow(ctx, query,
		center.Name,
		center.Address,
		center.Phone,
		center.OwnerUserID,
	).Scan(&center.ID, &center.CreatedAt)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create center: %w", ErrConflict)
		}
		return fmt.Errorf("create center: %w", err)
	}

	return nil
}

func (r *CenterRepository) GetByID(ctx context.Context, id int64) (*model.Center, error) {
	return r.getOne(ctx, "id", id)
}

// GetByOwner получает центр, которым управляет пользователь
func (r *CenterRepository) GetByOwner(ctx context.Context, userID int64) (*model.Center, error) {
	return r.getOne(ctx, "owner_user_id", userID)
}

func (r *CenterRepository) getOne(ctx context.Context, column string, value int64) (*model.Center, error) {
	query := fmt.Sprintf(`
		SELECT id, name, address, phone, owner_user_id, created_at
		FROM centers
		WHERE %s = $1
	`, column)

	var center model.Center
	err := r.DB().QueryRow(ctx, query, value).Scan(
		&center.ID,
		&center.Name,
		&center.Address,
		&center.Phone,
		&center.OwnerUserID,
		&center.CreatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get center by %s: %w", column, err)
	}

	return &center, nil
}
