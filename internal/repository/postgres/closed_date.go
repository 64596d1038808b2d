package postgres

import (
	"context"
	"database/sql"
	"errors"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/repository"

	"github.com/google/uuid"
)

type closedDateRepository struct {
	db *sql.DB
}

func NewClosedDateRepository(db *sql.DB) repository.ClosedDateRepository {
	return &closedDateRepository{db: db}
}

func (r *closedDateRepository) Create(ctx context.Context, cd *domain.ClosedDate) error {
	if cd.ID == "" {
		cd.ID = uuid.NewString()
	}
	query := `INSERT INTO closed_dates (id, date, reason, is_recurring, recurring_pattern, created_by, created_at)
	          VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)`
	return withRetry(ctx, "closedDate.Create", func() error {
		_, err := r.db.ExecContext(ctx, query, cd.ID, cd.Date, cd.Reason, cd.IsRecurring,
			cd.RecurringPattern, cd.CreatedBy, cd.CreatedAt)
		return err
	})
}

func (r *closedDateRepository) GetByID(ctx context.Context, id string) (*domain.ClosedDate, error) {
	cd := &domain.ClosedDate{}
	var pattern sql.NullString
	query := `SELECT id, date, reason, is_recurring, recurring_pattern, created_by, created_at
	          FROM closed_dates WHERE id = $1`
	err := withRetry(ctx, "closedDate.GetByID", func() error {
		return r.db.QueryRowContext(ctx, query, id).Scan(&cd.ID, &cd.Date, &cd.Reason,
			&cd.IsRecurring, &pattern, &cd.CreatedBy, &cd.CreatedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("closed date", id)
	}
	if err != nil {
		return nil, err
	}
	cd.RecurringPattern = pattern.String
	return cd, nil
}

func (r *closedDateRepository) Delete(ctx context.Context, id string) error {
	return withRetry(ctx, "closedDate.Delete", func() error {
		res, err := r.db.ExecContext(ctx, `DELETE FROM closed_dates WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.NewNotFoundError("closed date", id)
		}
		return nil
	})
}

// List returns entries ascending by date.
func (r *closedDateRepository) List(ctx context.Context) ([]domain.ClosedDate, error) {
	query := `SELECT id, date, reason, is_recurring, recurring_pattern, created_by, created_at
	          FROM closed_dates ORDER BY date ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []domain.ClosedDate
	for rows.Next() {
		var cd domain.ClosedDate
		var pattern sql.NullString
		if err := rows.Scan(&cd.ID, &cd.Date, &cd.Reason, &cd.IsRecurring, &pattern,
			&cd.CreatedBy, &cd.CreatedAt); err != nil {
			return nil, err
		}
		cd.RecurringPattern = pattern.String
		dates = append(dates, cd)
	}
	return dates, rows.Err()
}
