package entity

// Roles sembrados una sola vez (ids fijos).
const (
	RoleAdmin  = "Admin"
	RoleFarmer = "Farmer"

	RoleAdminID  int64 = 1
	RoleFarmerID int64 = 2
)

// Role grupo de permisos con nombre.
type Role struct {
	ID   int64
	Name string
}
