package domain

import "time"

const ExportVersion = "1.0"

// ExportMetadata describes who produced a settings snapshot and whether
// sensitive values were included.
type ExportMetadata struct {
	ExportDate       time.Time `json:"exportDate"`
	ExportedBy       string    `json:"exportedBy"`
	ExportedByUserID string    `json:"exportedByUserId"`
	Version          string    `json:"version"`
	IncludeSensitive bool      `json:"includeSensitive"`
}

// SettingsExport is the export/import JSON envelope.
type SettingsExport struct {
	Metadata       ExportMetadata  `json:"metadata"`
	Settings       SystemSettings  `json:"settings"`
	ClosedDates    []ClosedDate    `json:"closedDates"`
	CategoryLimits []CategoryLimit `json:"categoryLimits"`
}

// SettingsBackup is a full sensitive-inclusive export persisted as a named
// snapshot, taken on demand or automatically before an import is applied.
type SettingsBackup struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	CreatedBy string         `json:"createdBy"`
	CreatedAt time.Time      `json:"createdAt"`
	Data      SettingsExport `json:"data"`
}

// ImportStats collects per-item results of an import. Item failures are
// recorded here instead of aborting the whole import.
type ImportStats struct {
	SettingsApplied       int      `json:"settingsApplied"`
	ClosedDatesImported   int      `json:"closedDatesImported"`
	CategoryLimitsApplied int      `json:"categoryLimitsApplied"`
	Errors                []string `json:"errors,omitempty"`
	BackupID              string   `json:"backupId"`
}
