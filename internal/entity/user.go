package entity

import "time"

type Role string

const (
	RoleGuest   Role = "GUEST"
	RolePending Role = "PENDING"
	RoleClient  Role = "CLIENT"
	RoleAdmin   Role = "ADMIN"
)

// User is a storefront account. Accounts start as PENDING and become CLIENT
// once an admin approves them; approval and role move together.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Balance   float64   `json:"balance"` // store credit, adjusted by admins
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"created_at"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Password  string    `json:"-"` // bcrypt hash
}
