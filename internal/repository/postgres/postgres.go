package postgres

import (
	"database/sql"

	"equipshare-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.LoanRepository
	repository.EquipmentRepository
	repository.UserRepository
	repository.SettingsRepository
	repository.ClosedDateRepository
	repository.CategoryLimitRepository
	repository.AuditLogRepository
	repository.ActivityLogRepository
	repository.NotificationRepository
	repository.DamageReportRepository
	repository.BackupRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                      db,
		LoanRepository:          NewLoanRepository(db),
		EquipmentRepository:     NewEquipmentRepository(db),
		UserRepository:          NewUserRepository(db),
		SettingsRepository:      NewSettingsRepository(db),
		ClosedDateRepository:    NewClosedDateRepository(db),
		CategoryLimitRepository: NewCategoryLimitRepository(db),
		AuditLogRepository:      NewAuditLogRepository(db),
		ActivityLogRepository:   NewActivityLogRepository(db),
		NotificationRepository:  NewNotificationRepository(db),
		DamageReportRepository:  NewDamageReportRepository(db),
		BackupRepository:        NewBackupRepository(db),
	}
}
