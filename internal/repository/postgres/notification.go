package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.SystemNotification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	// Store an empty array rather than jsonb null so AddResponse can
	// concatenate onto it.
	if n.Responses == nil {
		n.Responses = []domain.NotificationResponse{}
	}
	responses, err := json.Marshal(n.Responses)
	if err != nil {
		return err
	}
	query := `INSERT INTO system_notifications (id, title, content, type, priority, created_by, created_at,
	          expires_at, sent_to, read_by, responses)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	return withRetry(ctx, "notification.Create", func() error {
		_, err := r.db.ExecContext(ctx, query, n.ID, n.Title, n.Content, n.Type, n.Priority,
			n.CreatedBy, n.CreatedAt, n.ExpiresAt, pq.Array(n.SentTo), pq.Array(n.ReadBy), responses)
		return err
	})
}

func scanNotification(row interface{ Scan(...any) error }) (*domain.SystemNotification, error) {
	n := &domain.SystemNotification{}
	var responses []byte
	err := row.Scan(&n.ID, &n.Title, &n.Content, &n.Type, &n.Priority, &n.CreatedBy, &n.CreatedAt,
		&n.ExpiresAt, pq.Array(&n.SentTo), pq.Array(&n.ReadBy), &responses)
	if err != nil {
		return nil, err
	}
	if len(responses) > 0 {
		if err := json.Unmarshal(responses, &n.Responses); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*domain.SystemNotification, error) {
	query := `SELECT id, title, content, type, priority, created_by, created_at, expires_at, sent_to, read_by, responses
	          FROM system_notifications WHERE id = $1`
	var n *domain.SystemNotification
	err := withRetry(ctx, "notification.GetByID", func() error {
		var scanErr error
		n, scanErr = scanNotification(r.db.QueryRowContext(ctx, query, id))
		return scanErr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("notification", id)
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID string, page, pageSize int32) ([]domain.SystemNotification, int32, error) {
	base := `FROM system_notifications WHERE $1 = ANY(sent_to)`

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) "+base, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT id, title, content, type, priority, created_by, created_at, expires_at, sent_to, read_by, responses ` +
		base + ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notes []domain.SystemNotification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		notes = append(notes, *n)
	}
	return notes, count, rows.Err()
}

// MarkRead grows read_by monotonically; marking twice is a no-op.
func (r *notificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	query := `UPDATE system_notifications SET read_by = array_append(read_by, $1)
	          WHERE id = $2 AND $1 = ANY(sent_to) AND NOT ($1 = ANY(read_by))`
	return withRetry(ctx, "notification.MarkRead", func() error {
		_, err := r.db.ExecContext(ctx, query, userID, id)
		return err
	})
}

func (r *notificationRepository) AddResponse(ctx context.Context, id string, response domain.NotificationResponse) error {
	entry, err := json.Marshal(response)
	if err != nil {
		return err
	}
	query := `UPDATE system_notifications SET responses = COALESCE(responses, '[]'::jsonb) || $1::jsonb WHERE id = $2`
	return withRetry(ctx, "notification.AddResponse", func() error {
		res, err := r.db.ExecContext(ctx, query, entry, id)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.NewNotFoundError("notification", id)
		}
		return nil
	})
}

func (r *notificationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var deleted int64
	err := withRetry(ctx, "notification.DeleteExpired", func() error {
		res, err := r.db.ExecContext(ctx,
			`DELETE FROM system_notifications WHERE expires_at IS NOT NULL AND expires_at < $1`, now)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	return deleted, err
}
