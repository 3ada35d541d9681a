package models

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleStaff UserRole = "staff"
)

func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleStaff
}

// User is an account as listed by the backend's admin endpoints.
type User struct {
	ID       int      `json:"id" validate:"required,gt=0"`
	Username string   `json:"username" validate:"required"`
	Role     UserRole `json:"role" validate:"omitempty,oneof=admin staff"`
}

// Owner identifies whose view a refresh cycle serves.
type Owner struct {
	SessionID string
	Username  string
}
