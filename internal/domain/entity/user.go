package entity

import "time"

// User representa una cuenta del sistema (Admin o Farmer).
// RoleID es el rol primario desnormalizado; Roles es la relación autoritativa (user_roles).
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	RoleID       int64
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole indica si el usuario tiene asignado el rol (por nombre).
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// Summary campos públicos del usuario (se anidan en cada registro de stock).
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserSummary proyección pública del usuario dueño de un registro.
type UserSummary struct {
	ID    int64
	Name  string
	Email string
}
