package domain

import "time"

type Role string

const (
	RoleMember Role = "member"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

// CanManageLoans reports whether the role may approve, hand out or take
// back equipment.
func (r Role) CanManageLoans() bool {
	return r == RoleStaff || r == RoleAdmin
}

// User is the given identity acting on the system. Authentication happens
// upstream; the backend only consumes id + role.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	Department  string    `json:"department,omitempty"`
	CreatedOn   time.Time `json:"createdOn"`
}
