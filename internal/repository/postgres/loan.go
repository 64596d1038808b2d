package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/repository"

	"github.com/google/uuid"
)

type loanRepository struct {
	db *sql.DB
}

func NewLoanRepository(db *sql.DB) repository.LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `id, equipment_id, requester_id, status, requested_at, borrow_date, expected_return_date,
	actual_return_date, purpose, notes, approved_by, approved_at, rejection_reason, picked_up_by, picked_up_at,
	returned_by, returned_at, return_condition, overdue_marked_at, equipment_snapshot, user_snapshot, created_on, updated_on`

func (r *loanRepository) Create(ctx context.Context, loan *domain.LoanRequest) error {
	if loan.ID == "" {
		loan.ID = uuid.NewString()
	}
	eqSnap, err := json.Marshal(loan.EquipmentSnapshot)
	if err != nil {
		return err
	}
	userSnap, err := json.Marshal(loan.UserSnapshot)
	if err != nil {
		return err
	}
	query := `INSERT INTO loan_requests (id, equipment_id, requester_id, status, requested_at, borrow_date,
	          expected_return_date, purpose, notes, equipment_snapshot, user_snapshot, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`
	return withRetry(ctx, "loan.Create", func() error {
		_, err := r.db.ExecContext(ctx, query, loan.ID, loan.EquipmentID, loan.RequesterID, loan.Status,
			loan.RequestedAt, loan.BorrowDate, loan.ExpectedReturnDate, loan.Purpose, loan.Notes,
			eqSnap, userSnap, time.Now())
		return err
	})
}

func scanLoan(row interface{ Scan(...any) error }) (*domain.LoanRequest, error) {
	loan := &domain.LoanRequest{}
	var eqSnap, userSnap []byte
	var condition sql.NullString
	err := row.Scan(&loan.ID, &loan.EquipmentID, &loan.RequesterID, &loan.Status, &loan.RequestedAt,
		&loan.BorrowDate, &loan.ExpectedReturnDate, &loan.ActualReturnDate, &loan.Purpose, &loan.Notes,
		&loan.ApprovedBy, &loan.ApprovedAt, &loan.RejectionReason, &loan.PickedUpBy, &loan.PickedUpAt,
		&loan.ReturnedBy, &loan.ReturnedAt, &condition, &loan.OverdueMarkedAt,
		&eqSnap, &userSnap, &loan.CreatedOn, &loan.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if condition.Valid {
		loan.ReturnCondition = domain.ReturnCondition(condition.String)
	}
	if len(eqSnap) > 0 {
		if err := json.Unmarshal(eqSnap, &loan.EquipmentSnapshot); err != nil {
			return nil, err
		}
	}
	if len(userSnap) > 0 {
		if err := json.Unmarshal(userSnap, &loan.UserSnapshot); err != nil {
			return nil, err
		}
	}
	return loan, nil
}

func (r *loanRepository) GetByID(ctx context.Context, id string) (*domain.LoanRequest, error) {
	query := `SELECT ` + loanColumns + ` FROM loan_requests WHERE id = $1`
	var loan *domain.LoanRequest
	err := withRetry(ctx, "loan.GetByID", func() error {
		var scanErr error
		loan, scanErr = scanLoan(r.db.QueryRowContext(ctx, query, id))
		return scanErr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("loan request", id)
	}
	if err != nil {
		return nil, err
	}
	return loan, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.LoanRequest) error {
	query := `UPDATE loan_requests SET status=$1, actual_return_date=$2, notes=$3, approved_by=$4, approved_at=$5,
	          rejection_reason=$6, picked_up_by=$7, picked_up_at=$8, returned_by=$9, returned_at=$10,
	          return_condition=NULLIF($11, ''), overdue_marked_at=$12, updated_on=$13 WHERE id=$14`
	return withRetry(ctx, "loan.Update", func() error {
		res, err := r.db.ExecContext(ctx, query, loan.Status, loan.ActualReturnDate, loan.Notes,
			loan.ApprovedBy, loan.ApprovedAt, loan.RejectionReason, loan.PickedUpBy, loan.PickedUpAt,
			loan.ReturnedBy, loan.ReturnedAt, string(loan.ReturnCondition), loan.OverdueMarkedAt,
			time.Now(), loan.ID)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.NewNotFoundError("loan request", loan.ID)
		}
		return nil
	})
}

func (r *loanRepository) Delete(ctx context.Context, id string) error {
	return withRetry(ctx, "loan.Delete", func() error {
		res, err := r.db.ExecContext(ctx, `DELETE FROM loan_requests WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.NewNotFoundError("loan request", id)
		}
		return nil
	})
}

func (r *loanRepository) listWhere(ctx context.Context, where string, args []any, status string, page, pageSize int32) ([]domain.LoanRequest, int32, error) {
	query := `SELECT ` + loanColumns + ` FROM loan_requests ` + where
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, status)
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query += fmt.Sprintf(" ORDER BY requested_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var loans []domain.LoanRequest
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, 0, err
		}
		loans = append(loans, *loan)
	}
	return loans, count, rows.Err()
}

func (r *loanRepository) ListByRequester(ctx context.Context, requesterID string, status string, page, pageSize int32) ([]domain.LoanRequest, int32, error) {
	return r.listWhere(ctx, "WHERE requester_id = $1", []any{requesterID}, status, page, pageSize)
}

func (r *loanRepository) List(ctx context.Context, status string, page, pageSize int32) ([]domain.LoanRequest, int32, error) {
	return r.listWhere(ctx, "WHERE 1=1", nil, status, page, pageSize)
}

func (r *loanRepository) HasPendingForEquipment(ctx context.Context, requesterID, equipmentID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM loan_requests WHERE requester_id = $1 AND equipment_id = $2 AND status = $3)`
	var exists bool
	err := withRetry(ctx, "loan.HasPendingForEquipment", func() error {
		return r.db.QueryRowContext(ctx, query, requesterID, equipmentID, domain.LoanStatusPending).Scan(&exists)
	})
	return exists, err
}

func (r *loanRepository) CountBorrowedInCategory(ctx context.Context, requesterID, category string) (int, error) {
	query := `SELECT count(*) FROM loan_requests
	          WHERE requester_id = $1 AND status IN ($2, $3) AND equipment_snapshot->>'category' = $4`
	var count int
	err := withRetry(ctx, "loan.CountBorrowedInCategory", func() error {
		return r.db.QueryRowContext(ctx, query, requesterID,
			domain.LoanStatusBorrowed, domain.LoanStatusOverdue, category).Scan(&count)
	})
	return count, err
}

func (r *loanRepository) ListOverdueCandidates(ctx context.Context, cutoff time.Time) ([]domain.LoanRequest, error) {
	query := `SELECT ` + loanColumns + ` FROM loan_requests WHERE status = $1 AND expected_return_date < $2`
	rows, err := r.db.QueryContext(ctx, query, domain.LoanStatusBorrowed, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []domain.LoanRequest
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *loan)
	}
	return loans, rows.Err()
}

func (r *loanRepository) MarkOverdue(ctx context.Context, id string, markedAt time.Time) (bool, error) {
	// The status guard makes the sweep safe against a return committing
	// between listing and marking; such rows are simply skipped.
	query := `UPDATE loan_requests SET status=$1, overdue_marked_at=$2, updated_on=$2
	          WHERE id=$3 AND status=$4`
	var marked bool
	err := withRetry(ctx, "loan.MarkOverdue", func() error {
		res, err := r.db.ExecContext(ctx, query, domain.LoanStatusOverdue, markedAt, id, domain.LoanStatusBorrowed)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		marked = rows > 0
		return nil
	})
	return marked, err
}

// BorrowTx is the only operation that changes equipment availability to
// "taken". Both UPDATEs are guarded by the expected current status so two
// concurrent pickups of the same equipment cannot both commit.
func (r *loanRepository) BorrowTx(ctx context.Context, loan *domain.LoanRequest, equipmentID, borrowerID string) error {
	return withRetry(ctx, "loan.BorrowTx", func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		res, err := tx.ExecContext(ctx,
			`UPDATE loan_requests SET status=$1, picked_up_by=$2, picked_up_at=$3, updated_on=$3
			 WHERE id=$4 AND status=$5`,
			domain.LoanStatusBorrowed, loan.PickedUpBy, loan.PickedUpAt, loan.ID, domain.LoanStatusApproved)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.NewInvalidTransitionError("loan request", loan.Status, domain.LoanStatusBorrowed)
		}

		res, err = tx.ExecContext(ctx,
			`UPDATE equipment SET status=$1, current_borrower_id=$2, updated_on=$3
			 WHERE id=$4 AND status=$5`,
			domain.EquipmentStatusBorrowed, borrowerID, time.Now(), equipmentID, domain.EquipmentStatusAvailable)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &domain.InvalidStateTransitionError{
				Entity: "equipment",
				From:   string(domain.EquipmentStatusAvailable),
				To:     string(domain.EquipmentStatusBorrowed),
			}
		}

		if err := tx.Commit(); err != nil {
			return err
		}
		loan.Status = domain.LoanStatusBorrowed
		return nil
	})
}

func (r *loanRepository) ReturnTx(ctx context.Context, loan *domain.LoanRequest, equipmentID string, equipmentStatus domain.EquipmentStatus) error {
	return withRetry(ctx, "loan.ReturnTx", func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		res, err := tx.ExecContext(ctx,
			`UPDATE loan_requests SET status=$1, actual_return_date=$2, returned_by=$3, returned_at=$2,
			 return_condition=NULLIF($4, ''), notes=$5, updated_on=$2
			 WHERE id=$6 AND status IN ($7, $8)`,
			domain.LoanStatusReturned, loan.ReturnedAt, loan.ReturnedBy, string(loan.ReturnCondition),
			loan.Notes, loan.ID, domain.LoanStatusBorrowed, domain.LoanStatusOverdue)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.NewInvalidTransitionError("loan request", loan.Status, domain.LoanStatusReturned)
		}

		res, err = tx.ExecContext(ctx,
			`UPDATE equipment SET status=$1, current_borrower_id=NULL, updated_on=$2
			 WHERE id=$3 AND status=$4`,
			equipmentStatus, time.Now(), equipmentID, domain.EquipmentStatusBorrowed)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &domain.InvalidStateTransitionError{
				Entity: "equipment",
				From:   string(domain.EquipmentStatusBorrowed),
				To:     string(equipmentStatus),
			}
		}

		if err := tx.Commit(); err != nil {
			return err
		}
		loan.Status = domain.LoanStatusReturned
		return nil
	})
}
