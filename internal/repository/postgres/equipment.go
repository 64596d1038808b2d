package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/repository"
)

type equipmentRepository struct {
	db *sql.DB
}

func NewEquipmentRepository(db *sql.DB) repository.EquipmentRepository {
	return &equipmentRepository{db: db}
}

func (r *equipmentRepository) GetByID(ctx context.Context, id string) (*domain.Equipment, error) {
	eq := &domain.Equipment{}
	query := `SELECT id, name, category, location, status, current_borrower_id, created_on, updated_on
	          FROM equipment WHERE id = $1`
	err := withRetry(ctx, "equipment.GetByID", func() error {
		return r.db.QueryRowContext(ctx, query, id).Scan(&eq.ID, &eq.Name, &eq.Category, &eq.Location,
			&eq.Status, &eq.CurrentBorrowerID, &eq.CreatedOn, &eq.UpdatedOn)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("equipment", id)
	}
	if err != nil {
		return nil, err
	}
	return eq, nil
}

func (r *equipmentRepository) Update(ctx context.Context, eq *domain.Equipment) error {
	query := `UPDATE equipment SET status=$1, current_borrower_id=$2, updated_on=$3 WHERE id=$4`
	return withRetry(ctx, "equipment.Update", func() error {
		res, err := r.db.ExecContext(ctx, query, eq.Status, eq.CurrentBorrowerID, time.Now(), eq.ID)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.NewNotFoundError("equipment", eq.ID)
		}
		return nil
	})
}

func (r *equipmentRepository) ListByCategory(ctx context.Context, category string) ([]domain.Equipment, error) {
	query := `SELECT id, name, category, location, status, current_borrower_id, created_on, updated_on
	          FROM equipment WHERE category = $1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Equipment
	for rows.Next() {
		var eq domain.Equipment
		if err := rows.Scan(&eq.ID, &eq.Name, &eq.Category, &eq.Location, &eq.Status,
			&eq.CurrentBorrowerID, &eq.CreatedOn, &eq.UpdatedOn); err != nil {
			return nil, err
		}
		items = append(items, eq)
	}
	return items, rows.Err()
}
