package postgres

import (
	"context"
	"testing"
	"time"

	"equipshare-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*loanRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &loanRepository{db: db}, mock
}

func approvedLoan() *domain.LoanRequest {
	staff := "staff-1"
	pickedUpAt := time.Now()
	return &domain.LoanRequest{
		ID:          "loan-1",
		EquipmentID: "eq-1",
		RequesterID: "user-1",
		Status:      domain.LoanStatusApproved,
		PickedUpBy:  &staff,
		PickedUpAt:  &pickedUpAt,
	}
}

func TestLoanRepository_BorrowTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Both guards pass and the transaction commits", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		loan := approvedLoan()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE loan_requests SET status=\$1`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE equipment SET status=\$1`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.BorrowTx(ctx, loan, "eq-1", "user-1")
		assert.NoError(t, err)
		assert.Equal(t, domain.LoanStatusBorrowed, loan.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Stale loan status rolls back", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		loan := approvedLoan()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE loan_requests SET status=\$1`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.BorrowTx(ctx, loan, "eq-1", "user-1")
		var transitionErr *domain.InvalidStateTransitionError
		assert.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, domain.LoanStatusApproved, loan.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Equipment already handed out rolls back both updates", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		loan := approvedLoan()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE loan_requests SET status=\$1`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE equipment SET status=\$1`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.BorrowTx(ctx, loan, "eq-1", "user-1")
		var transitionErr *domain.InvalidStateTransitionError
		assert.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, "equipment", transitionErr.Entity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLoanRepository_ReturnTx(t *testing.T) {
	ctx := context.Background()

	returnedLoan := func() *domain.LoanRequest {
		staff := "staff-1"
		returnedAt := time.Now()
		return &domain.LoanRequest{
			ID:              "loan-1",
			EquipmentID:     "eq-1",
			Status:          domain.LoanStatusBorrowed,
			ReturnedBy:      &staff,
			ReturnedAt:      &returnedAt,
			ReturnCondition: domain.ReturnConditionGood,
		}
	}

	t.Run("Commits loan and equipment together", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE loan_requests SET status=\$1`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE equipment SET status=\$1`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		loan := returnedLoan()
		err := repo.ReturnTx(ctx, loan, "eq-1", domain.EquipmentStatusAvailable)
		assert.NoError(t, err)
		assert.Equal(t, domain.LoanStatusReturned, loan.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already returned loan fails the guard", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE loan_requests SET status=\$1`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.ReturnTx(ctx, returnedLoan(), "eq-1", domain.EquipmentStatusAvailable)
		var transitionErr *domain.InvalidStateTransitionError
		assert.ErrorAs(t, err, &transitionErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLoanRepository_MarkOverdue(t *testing.T) {
	ctx := context.Background()
	markedAt := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)

	t.Run("Still borrowed loan is promoted", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`UPDATE loan_requests SET status=\$1, overdue_marked_at=\$2, updated_on=\$2 WHERE id=\$3 AND status=\$4`).
			WithArgs(domain.LoanStatusOverdue, markedAt, "loan-1", domain.LoanStatusBorrowed).
			WillReturnResult(sqlmock.NewResult(0, 1))

		marked, err := repo.MarkOverdue(ctx, "loan-1", markedAt)
		assert.NoError(t, err)
		assert.True(t, marked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Loan returned since listing fails the guard", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`UPDATE loan_requests SET status=\$1, overdue_marked_at=\$2, updated_on=\$2 WHERE id=\$3 AND status=\$4`).
			WithArgs(domain.LoanStatusOverdue, markedAt, "loan-1", domain.LoanStatusBorrowed).
			WillReturnResult(sqlmock.NewResult(0, 0))

		marked, err := repo.MarkOverdue(ctx, "loan-1", markedAt)
		assert.NoError(t, err)
		assert.False(t, marked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLoanRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT .+ FROM loan_requests WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestLoanRepository_Update_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`UPDATE loan_requests SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.LoanRequest{ID: "missing"})
	assert.True(t, domain.IsNotFound(err))
}
