// Package authz decide si una identidad puede ejecutar una acción.
//
// Reglas:
//   - anónimo: solo register y login.
//   - create-stock, list-stocks: Farmer o Admin.
//   - read/update/delete-stock: dueño del registro o Admin.
//   - list-all-stocks, create-farmer, get-user-roles, list-farmers, list-roles, delete-user: solo Admin.
//   - update-farmer: Admin o Farmer, sin verificar a quién se modifica (comportamiento heredado).
//   - assign-role: Admin y además id == admin inicial.
package authz

import (
	"github.com/jhoicas/beanstock-api/internal/domain"
	"github.com/jhoicas/beanstock-api/internal/domain/entity"
)

// Action etiqueta de operación.
type Action string

const (
	ActionRegister      Action = "register"
	ActionLogin         Action = "login"
	ActionLogout        Action = "logout"
	ActionCreateStock   Action = "create-stock"
	ActionReadStock     Action = "read-stock"
	ActionUpdateStock   Action = "update-stock"
	ActionDeleteStock   Action = "delete-stock"
	ActionListStocks    Action = "list-stocks"
	ActionListAllStocks Action = "list-all-stocks"
	ActionCreateFarmer  Action = "create-farmer"
	ActionAssignRole    Action = "assign-role"
	ActionGetUserRoles  Action = "get-user-roles"
	ActionUpdateFarmer  Action = "update-farmer"
	ActionListFarmers   Action = "list-farmers"
	ActionListRoles     Action = "list-roles"
	ActionDeleteUser    Action = "delete-user"
)

// Identity principal autenticado de la petición. nil = anónimo.
type Identity struct {
	UserID int64
	Name   string
	Email  string
	RoleID int64
	Roles  []string
}

// NewIdentity construye la identidad a partir del usuario cargado de la base.
func NewIdentity(u *entity.User) *Identity {
	return &Identity{UserID: u.ID, Name: u.Name, Email: u.Email, RoleID: u.RoleID, Roles: u.Roles}
}

// HasRole indica si la identidad tiene el rol.
func (i *Identity) HasRole(name string) bool {
	if i == nil {
		return false
	}
	for _, r := range i.Roles {
		if r == name {
			return true
		}
	}
	return false
}

func (i *Identity) IsAdmin() bool  { return i.HasRole(entity.RoleAdmin) }
func (i *Identity) IsFarmer() bool { return i.HasRole(entity.RoleFarmer) }

// Guard evalúa permisos. Sin estado aparte del id del administrador inicial.
type Guard struct {
	bootstrapAdminID int64
}

// NewGuard construye el guard; bootstrapAdminID es el único id que puede asignar roles.
func NewGuard(bootstrapAdminID int64) *Guard {
	return &Guard{bootstrapAdminID: bootstrapAdminID}
}

// BootstrapAdminID id del administrador inicial.
func (g *Guard) BootstrapAdminID() int64 { return g.bootstrapAdminID }

// CanAccess decide allow/deny. ownerID solo aplica a acciones sobre un registro concreto.
func (g *Guard) CanAccess(id *Identity, action Action, ownerID *int64) bool {
	if id == nil {
		return action == ActionRegister || action == ActionLogin
	}

	switch action {
	case ActionRegister, ActionLogin, ActionLogout:
		return true
	case ActionCreateStock, ActionListStocks:
		return id.IsFarmer() || id.IsAdmin()
	case ActionReadStock, ActionUpdateStock, ActionDeleteStock:
		if id.IsAdmin() {
			return true
		}
		return ownerID != nil && *ownerID == id.UserID
	case ActionListAllStocks, ActionCreateFarmer, ActionGetUserRoles,
		ActionListFarmers, ActionListRoles, ActionDeleteUser:
		return id.IsAdmin()
	case ActionUpdateFarmer:
		return id.IsAdmin() || id.IsFarmer()
	case ActionAssignRole:
		return id.IsAdmin() && id.UserID == g.bootstrapAdminID
	default:
		return false
	}
}

// Authorize igual que CanAccess pero devuelve el error de la política de denegación.
func (g *Guard) Authorize(id *Identity, action Action, ownerID *int64, policy DenyPolicy) error {
	if g.CanAccess(id, action, ownerID) {
		return nil
	}
	return policy.Err()
}

// DenyPolicy cómo se reporta una denegación sobre un recurso: algunos endpoints
// responden 404 en vez de 403 para no revelar que el registro existe.
type DenyPolicy int

const (
	DenyAsForbidden DenyPolicy = iota
	DenyAsNotFound
)

// Err error de dominio correspondiente a la política.
func (p DenyPolicy) Err() error {
	if p == DenyAsNotFound {
		return domain.ErrNotFound
	}
	return domain.ErrForbidden
}
