package domain

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionExport AuditAction = "export"
	AuditActionImport AuditAction = "import"
	AuditActionBackup AuditAction = "backup"
)

type SettingType string

const (
	SettingTypeSystem        SettingType = "systemSettings"
	SettingTypeClosedDate    SettingType = "closedDate"
	SettingTypeCategoryLimit SettingType = "categoryLimit"
)

// AuditLogEntry is an immutable, append-only record of a single policy
// mutation. Entries are never updated or deleted by normal operation.
type AuditLogEntry struct {
	ID          string      `json:"id"`
	Timestamp   time.Time   `json:"timestamp"`
	AdminID     string      `json:"adminId"`
	AdminName   string      `json:"adminName"`
	Action      AuditAction `json:"action"`
	SettingType SettingType `json:"settingType"`
	SettingPath string      `json:"settingPath"`
	OldValue    any         `json:"oldValue"`
	NewValue    any         `json:"newValue"`
	Reason      string      `json:"reason,omitempty"`
	IPAddress   string      `json:"ipAddress,omitempty"`
	UserAgent   string      `json:"userAgent,omitempty"`
}

// ActivityLogEntry records staff-performed loan actions (approve, pickup,
// return, …). It is separate from the settings audit log.
type ActivityLogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actorId"`
	ActorName string    `json:"actorName"`
	Action    string    `json:"action"`
	LoanID    string    `json:"loanId"`
	Detail    string    `json:"detail,omitempty"`
}
