package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/repository"
)

// The settings singleton is stored as a single JSON document row keyed by
// a fixed id.
const settingsRowID = "global"

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (*domain.SystemSettings, error) {
	var doc []byte
	err := withRetry(ctx, "settings.Get", func() error {
		return r.db.QueryRowContext(ctx,
			`SELECT doc FROM system_settings WHERE id = $1`, settingsRowID).Scan(&doc)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("system settings", settingsRowID)
	}
	if err != nil {
		return nil, err
	}
	settings := &domain.SystemSettings{}
	if err := json.Unmarshal(doc, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *settingsRepository) Put(ctx context.Context, settings *domain.SystemSettings) error {
	doc, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	query := `INSERT INTO system_settings (id, doc, updated_on) VALUES ($1, $2, $3)
	          ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_on = EXCLUDED.updated_on`
	return withRetry(ctx, "settings.Put", func() error {
		_, err := r.db.ExecContext(ctx, query, settingsRowID, doc, time.Now())
		return err
	})
}
