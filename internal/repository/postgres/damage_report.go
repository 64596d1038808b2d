package postgres

import (
	"context"
	"database/sql"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/repository"

	"github.com/google/uuid"
)

type damageReportRepository struct {
	db *sql.DB
}

func NewDamageReportRepository(db *sql.DB) repository.DamageReportRepository {
	return &damageReportRepository{db: db}
}

func (r *damageReportRepository) Create(ctx context.Context, report *domain.DamageReport) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	query := `INSERT INTO damage_reports (id, loan_id, equipment_id, reported_by, condition, notes, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	return withRetry(ctx, "damageReport.Create", func() error {
		_, err := r.db.ExecContext(ctx, query, report.ID, report.LoanID, report.EquipmentID,
			report.ReportedBy, report.Condition, report.Notes, report.CreatedOn)
		return err
	})
}

func (r *damageReportRepository) List(ctx context.Context, page, pageSize int32) ([]domain.DamageReport, int32, error) {
	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM damage_reports`).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT id, loan_id, equipment_id, reported_by, condition, notes, created_on
	          FROM damage_reports ORDER BY created_on DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reports []domain.DamageReport
	for rows.Next() {
		var d domain.DamageReport
		if err := rows.Scan(&d.ID, &d.LoanID, &d.EquipmentID, &d.ReportedBy, &d.Condition,
			&d.Notes, &d.CreatedOn); err != nil {
			return nil, 0, err
		}
		reports = append(reports, d)
	}
	return reports, count, rows.Err()
}
