package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/repository"

	"github.com/google/uuid"
)

type backupRepository struct {
	db *sql.DB
}

func NewBackupRepository(db *sql.DB) repository.BackupRepository {
	return &backupRepository{db: db}
}

func (r *backupRepository) Create(ctx context.Context, backup *domain.SettingsBackup) error {
	if backup.ID == "" {
		backup.ID = uuid.NewString()
	}
	data, err := json.Marshal(backup.Data)
	if err != nil {
		return err
	}
	query := `INSERT INTO settings_backups (id, name, created_by, created_at, data)
	          VALUES ($1, $2, $3, $4, $5)`
	return withRetry(ctx, "backup.Create", func() error {
		_, err := r.db.ExecContext(ctx, query, backup.ID, backup.Name, backup.CreatedBy, backup.CreatedAt, data)
		return err
	})
}

func (r *backupRepository) GetByID(ctx context.Context, id string) (*domain.SettingsBackup, error) {
	b := &domain.SettingsBackup{}
	var data []byte
	query := `SELECT id, name, created_by, created_at, data FROM settings_backups WHERE id = $1`
	err := withRetry(ctx, "backup.GetByID", func() error {
		return r.db.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.Name, &b.CreatedBy, &b.CreatedAt, &data)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("settings backup", id)
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &b.Data); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *backupRepository) List(ctx context.Context) ([]domain.SettingsBackup, error) {
	query := `SELECT id, name, created_by, created_at, data FROM settings_backups ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var backups []domain.SettingsBackup
	for rows.Next() {
		var b domain.SettingsBackup
		var data []byte
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedBy, &b.CreatedAt, &data); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &b.Data); err != nil {
			return nil, err
		}
		backups = append(backups, b)
	}
	return backups, rows.Err()
}
