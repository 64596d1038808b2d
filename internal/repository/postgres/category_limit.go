package postgres

import (
	"context"
	"database/sql"
	"errors"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/repository"
)

type categoryLimitRepository struct {
	db *sql.DB
}

func NewCategoryLimitRepository(db *sql.DB) repository.CategoryLimitRepository {
	return &categoryLimitRepository{db: db}
}

func (r *categoryLimitRepository) Get(ctx context.Context, categoryID string) (*domain.CategoryLimit, error) {
	cl := &domain.CategoryLimit{}
	query := `SELECT category_id, category_name, max_items, updated_by, updated_at
	          FROM category_limits WHERE category_id = $1`
	err := withRetry(ctx, "categoryLimit.Get", func() error {
		return r.db.QueryRowContext(ctx, query, categoryID).Scan(&cl.CategoryID, &cl.CategoryName,
			&cl.Limit, &cl.UpdatedBy, &cl.UpdatedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("category limit", categoryID)
	}
	if err != nil {
		return nil, err
	}
	return cl, nil
}

func (r *categoryLimitRepository) Put(ctx context.Context, cl *domain.CategoryLimit) error {
	query := `INSERT INTO category_limits (category_id, category_name, max_items, updated_by, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (category_id) DO UPDATE SET category_name = EXCLUDED.category_name,
	          max_items = EXCLUDED.max_items, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	return withRetry(ctx, "categoryLimit.Put", func() error {
		_, err := r.db.ExecContext(ctx, query, cl.CategoryID, cl.CategoryName, cl.Limit, cl.UpdatedBy, cl.UpdatedAt)
		return err
	})
}

func (r *categoryLimitRepository) Delete(ctx context.Context, categoryID string) error {
	return withRetry(ctx, "categoryLimit.Delete", func() error {
		res, err := r.db.ExecContext(ctx, `DELETE FROM category_limits WHERE category_id = $1`, categoryID)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.NewNotFoundError("category limit", categoryID)
		}
		return nil
	})
}

func (r *categoryLimitRepository) List(ctx context.Context) ([]domain.CategoryLimit, error) {
	query := `SELECT category_id, category_name, max_items, updated_by, updated_at
	          FROM category_limits ORDER BY category_name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var limits []domain.CategoryLimit
	for rows.Next() {
		var cl domain.CategoryLimit
		if err := rows.Scan(&cl.CategoryID, &cl.CategoryName, &cl.Limit, &cl.UpdatedBy, &cl.UpdatedAt); err != nil {
			return nil, err
		}
		limits = append(limits, cl)
	}
	return limits, rows.Err()
}
