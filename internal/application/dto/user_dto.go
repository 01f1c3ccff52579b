package dto

import "time"

// RegisterRequest entrada para registro público y para alta de farmer por un admin.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateFarmerRequest actualización parcial de una cuenta (solo los campos enviados).
type UpdateFarmerRequest struct {
	Name     *string `json:"name" validate:"omitnil,min=1,max=255"`
	Email    *string `json:"email" validate:"omitnil,email,max=255"`
	Password *string `json:"password" validate:"omitnil,min=6"`
	RoleID   *int64  `json:"role_id" validate:"omitnil,oneof=1 2"`
}

// AssignRoleRequest asignación de un rol por nombre.
type AssignRoleRequest struct {
	UserID   int64  `json:"user_id" validate:"required,min=1"`
	RoleName string `json:"role_name" validate:"required"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	RoleID    int64      `json:"role_id"`
	Role      string     `json:"role,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// LoginUser identidad devuelta en login con los nombres de sus roles.
type LoginUser struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	RoleID int64    `json:"role_id"`
	Roles  []string `json:"roles"`
}

// LoginResponse salida con token Bearer.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        LoginUser `json:"user"`
}

// AssignRoleResponse resultado de asignar rol.
type AssignRoleResponse struct {
	UserID       int64  `json:"user_id"`
	AssignedRole string `json:"assigned_role"`
}

// UserRolesResponse roles de un usuario.
type UserRolesResponse struct {
	UserID int64    `json:"user_id"`
	Roles  []string `json:"roles"`
}

// RoleResponse rol del catálogo.
type RoleResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
