package users

import "time"

// Role is the account role. Authentication happens upstream; the role
// arrives with the request and gates seller/admin operations here.
type Role string

const (
	RoleUser   Role = "USER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	EcoScore  int       `json:"eco_score"`
	Banned    bool      `json:"banned"`
	CreatedAt time.Time `json:"created_at"`
}
