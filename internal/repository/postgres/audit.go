package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/repository"

	"github.com/google/uuid"
)

type auditLogRepository struct {
	db *sql.DB
}

func NewAuditLogRepository(db *sql.DB) repository.AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Append only ever inserts. There is no update or delete path.
func (r *auditLogRepository) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	oldVal, err := json.Marshal(entry.OldValue)
	if err != nil {
		return err
	}
	newVal, err := json.Marshal(entry.NewValue)
	if err != nil {
		return err
	}
	query := `INSERT INTO settings_audit_log (id, timestamp, admin_id, admin_name, action, setting_type,
	          setting_path, old_value, new_value, reason, ip_address, user_agent)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	return withRetry(ctx, "audit.Append", func() error {
		_, err := r.db.ExecContext(ctx, query, entry.ID, entry.Timestamp, entry.AdminID, entry.AdminName,
			entry.Action, entry.SettingType, entry.SettingPath, oldVal, newVal,
			entry.Reason, entry.IPAddress, entry.UserAgent)
		return err
	})
}

func (r *auditLogRepository) List(ctx context.Context, settingType string, page, pageSize int32) ([]domain.AuditLogEntry, int32, error) {
	query := `SELECT id, timestamp, admin_id, admin_name, action, setting_type, setting_path,
	          old_value, new_value, reason, ip_address, user_agent FROM settings_audit_log WHERE 1=1`
	var args []any
	if settingType != "" {
		query += fmt.Sprintf(" AND setting_type = $%d", len(args)+1)
		args = append(args, settingType)
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []domain.AuditLogEntry
	for rows.Next() {
		var e domain.AuditLogEntry
		var oldVal, newVal []byte
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.AdminID, &e.AdminName, &e.Action, &e.SettingType,
			&e.SettingPath, &oldVal, &newVal, &e.Reason, &e.IPAddress, &e.UserAgent); err != nil {
			return nil, 0, err
		}
		if len(oldVal) > 0 {
			_ = json.Unmarshal(oldVal, &e.OldValue)
		}
		if len(newVal) > 0 {
			_ = json.Unmarshal(newVal, &e.NewValue)
		}
		entries = append(entries, e)
	}
	return entries, count, rows.Err()
}

type activityLogRepository struct {
	db *sql.DB
}

func NewActivityLogRepository(db *sql.DB) repository.ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Append(ctx context.Context, entry *domain.ActivityLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	query := `INSERT INTO activity_log (id, timestamp, actor_id, actor_name, action, loan_id, detail)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	return withRetry(ctx, "activity.Append", func() error {
		_, err := r.db.ExecContext(ctx, query, entry.ID, entry.Timestamp, entry.ActorID, entry.ActorName,
			entry.Action, entry.LoanID, entry.Detail)
		return err
	})
}

func (r *activityLogRepository) ListByLoan(ctx context.Context, loanID string) ([]domain.ActivityLogEntry, error) {
	query := `SELECT id, timestamp, actor_id, actor_name, action, loan_id, detail
	          FROM activity_log WHERE loan_id = $1 ORDER BY timestamp ASC`
	rows, err := r.db.QueryContext(ctx, query, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.ActivityLogEntry
	for rows.Next() {
		var e domain.ActivityLogEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.ActorID, &e.ActorName, &e.Action, &e.LoanID, &e.Detail); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
