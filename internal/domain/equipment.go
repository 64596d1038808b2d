package domain

import "time"

type EquipmentStatus string

const (
	EquipmentStatusAvailable   EquipmentStatus = "AVAILABLE"
	EquipmentStatusBorrowed    EquipmentStatus = "BORROWED"
	EquipmentStatusMaintenance EquipmentStatus = "MAINTENANCE"
	EquipmentStatusRetired     EquipmentStatus = "RETIRED"
)

// Equipment is the single source of truth for whether an item is lendable
// right now. The loan lifecycle only ever moves it between AVAILABLE,
// BORROWED and MAINTENANCE; RETIRED is set by inventory management.
type Equipment struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Location          string          `json:"location,omitempty"`
	Status            EquipmentStatus `json:"status"`
	CurrentBorrowerID *string         `json:"currentBorrowerId,omitempty"`
	CreatedOn         time.Time       `json:"createdOn"`
	UpdatedOn         time.Time       `json:"updatedOn"`
}
