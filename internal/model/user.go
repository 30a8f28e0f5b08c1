package model

import "time"

// Application roles.  The role travels in the JWT "role" claim and is
// enforced by middleware on privileged routes.
const (
	RoleClient        = "cliente"
	RoleEmployee      = "empleado"
	RoleAdministrator = "administrador"
)

// User represents an authentication account.  The password hash never
// leaves the service.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"nombre"`
	LastName     string    `json:"apellido"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
