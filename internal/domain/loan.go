package domain

import "time"

type LoanStatus string

const (
	LoanStatusPending  LoanStatus = "PENDING"
	LoanStatusApproved LoanStatus = "APPROVED"
	LoanStatusRejected LoanStatus = "REJECTED"
	LoanStatusBorrowed LoanStatus = "BORROWED"
	LoanStatusReturned LoanStatus = "RETURNED"
	LoanStatusOverdue  LoanStatus = "OVERDUE"
)

// loanTransitions is the full transition table. A status not present as a
// key is terminal.
var loanTransitions = map[LoanStatus][]LoanStatus{
	LoanStatusPending:  {LoanStatusApproved, LoanStatusRejected},
	LoanStatusApproved: {LoanStatusBorrowed},
	LoanStatusBorrowed: {LoanStatusReturned, LoanStatusOverdue},
	LoanStatusOverdue:  {LoanStatusReturned},
}

// CanTransition reports whether from → to is a legal status edge.
func CanTransition(from, to LoanStatus) bool {
	for _, next := range loanTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type ReturnCondition string

const (
	ReturnConditionGood         ReturnCondition = "good"
	ReturnConditionDamaged      ReturnCondition = "damaged"
	ReturnConditionMissingParts ReturnCondition = "missing_parts"
)

// NeedsMaintenance reports whether equipment returned in this condition
// goes to MAINTENANCE instead of back to AVAILABLE.
func (c ReturnCondition) NeedsMaintenance() bool {
	return c == ReturnConditionDamaged || c == ReturnConditionMissingParts
}

// EquipmentSnapshot is captured from the equipment record at loan creation
// time. Reports fall back to it when the live record changes or is deleted.
type EquipmentSnapshot struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Location string `json:"location,omitempty"`
}

// UserSnapshot is captured from the requester at loan creation time.
type UserSnapshot struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Department  string `json:"department,omitempty"`
}

type LoanRequest struct {
	ID                 string            `json:"id"`
	EquipmentID        string            `json:"equipmentId"`
	RequesterID        string            `json:"userId"`
	Status             LoanStatus        `json:"status"`
	RequestedAt        time.Time         `json:"requestedAt"`
	BorrowDate         time.Time         `json:"borrowDate"`
	ExpectedReturnDate time.Time         `json:"expectedReturnDate"`
	ActualReturnDate   *time.Time        `json:"actualReturnDate,omitempty"`
	Purpose            string            `json:"purpose"`
	Notes              string            `json:"notes,omitempty"`
	ApprovedBy         *string           `json:"approvedBy,omitempty"`
	ApprovedAt         *time.Time        `json:"approvedAt,omitempty"`
	RejectionReason    *string           `json:"rejectionReason,omitempty"`
	PickedUpBy         *string           `json:"pickedUpBy,omitempty"`
	PickedUpAt         *time.Time        `json:"pickedUpAt,omitempty"`
	ReturnedBy         *string           `json:"returnedBy,omitempty"`
	ReturnedAt         *time.Time        `json:"returnedAt,omitempty"`
	ReturnCondition    ReturnCondition   `json:"returnCondition,omitempty"`
	OverdueMarkedAt    *time.Time        `json:"overdueMarkedAt,omitempty"`
	EquipmentSnapshot  EquipmentSnapshot `json:"equipmentSnapshot"`
	UserSnapshot       UserSnapshot      `json:"userSnapshot"`
	CreatedOn          time.Time         `json:"createdOn"`
	UpdatedOn          time.Time         `json:"updatedOn"`
}

// DamageReport is filed when equipment comes back damaged or with missing
// parts, and escalated to administrators.
type DamageReport struct {
	ID          string          `json:"id"`
	LoanID      string          `json:"loanId"`
	EquipmentID string          `json:"equipmentId"`
	ReportedBy  string          `json:"reportedBy"`
	Condition   ReturnCondition `json:"condition"`
	Notes       string          `json:"notes"`
	CreatedOn   time.Time       `json:"createdOn"`
}
