package admin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/beanstock-api/internal/application/admin"
	"github.com/jhoicas/beanstock-api/internal/application/auth"
	"github.com/jhoicas/beanstock-api/internal/application/dto"
	"github.com/jhoicas/beanstock-api/internal/domain"
	"github.com/jhoicas/beanstock-api/internal/domain/authz"
	"github.com/jhoicas/beanstock-api/internal/domain/entity"
	"github.com/jhoicas/beanstock-api/internal/testutil"
	"github.com/jhoicas/beanstock-api/pkg/logger"
	"github.com/jhoicas/beanstock-api/pkg/validator"
)

type fixture struct {
	store  *testutil.Store
	uc     *admin.AdminUseCase
	admin  *authz.Identity
	farmer *authz.Identity
}

func setup(t *testing.T) *fixture {
	t.Helper()
	s := testutil.NewStore()
	a := testutil.SeedAdmin(t, s)
	f := testutil.SeedFarmer(t, s, "Farmer A", "a@example.com")
	v := validator.New()
	reg := auth.NewFarmerRegistrar(s.Users(), s.TxRunner(), v)
	uc := admin.NewAdminUseCase(s.Users(), s.Roles(), s.TxRunner(), reg, authz.NewGuard(a.ID), v, logger.Nop())
	return &fixture{store: s, uc: uc, admin: testutil.Identity(a), farmer: testutil.Identity(f)}
}

func TestCreateFarmer(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	out, err := f.uc.CreateFarmer(ctx, f.admin, dto.RegisterRequest{Name: "Nuevo", Email: "nuevo@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleFarmerID, out.RoleID)

	farmers, err := f.uc.ListFarmers(ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, farmers, 2)
	assert.Equal(t, "nuevo@example.com", farmers[1].Email)
	assert.Equal(t, entity.RoleFarmerID, farmers[1].RoleID)
	assert.NotNil(t, farmers[1].CreatedAt)

	_, err = f.uc.CreateFarmer(ctx, f.farmer, dto.RegisterRequest{Name: "X", Email: "x@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAssignRole_EscribeRelacionYRoleID(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	out, err := f.uc.AssignRole(ctx, f.admin, dto.AssignRoleRequest{UserID: f.farmer.UserID, RoleName: entity.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, out.AssignedRole)

	u, err := f.store.Users().GetByID(ctx, f.farmer.UserID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdminID, u.RoleID)
	assert.ElementsMatch(t, []string{entity.RoleAdmin, entity.RoleFarmer}, u.Roles)
}

func TestAssignRole_SoloAdminInicial(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	other := testutil.SeedUser(t, f.store, "Otro Admin", "otro@example.com", "password", entity.RoleAdminID)

	_, err := f.uc.AssignRole(ctx, testutil.Identity(other), dto.AssignRoleRequest{UserID: f.farmer.UserID, RoleName: entity.RoleAdmin})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.AssignRole(ctx, f.farmer, dto.AssignRoleRequest{UserID: f.farmer.UserID, RoleName: entity.RoleAdmin})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAssignRole_Validacion(t *testing.T) {
	f := setup(t)
	_, err := f.uc.AssignRole(context.Background(), f.admin, dto.AssignRoleRequest{UserID: 999, RoleName: "Owner"})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "user_id")
	assert.Contains(t, verr.Fields, "role_name")
}

func TestAssignRole_Rollback(t *testing.T) {
	f := setup(t)
	f.store.FailAssign = errors.New("boom")
	ctx := context.Background()

	_, err := f.uc.AssignRole(ctx, f.admin, dto.AssignRoleRequest{UserID: f.farmer.UserID, RoleName: entity.RoleAdmin})
	require.Error(t, err)

	u, err := f.store.Users().GetByID(ctx, f.farmer.UserID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleFarmerID, u.RoleID)
	assert.Equal(t, []string{entity.RoleFarmer}, u.Roles)
}

func TestUpdateFarmer(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	name := "Renombrado"
	roleID := entity.RoleAdminID

	out, err := f.uc.UpdateFarmer(ctx, f.admin, f.farmer.UserID, dto.UpdateFarmerRequest{Name: &name, RoleID: &roleID})
	require.NoError(t, err)
	assert.Equal(t, "Renombrado", out.Name)
	assert.Equal(t, entity.RoleAdminID, out.RoleID)

	u, err := f.store.Users().GetByID(ctx, f.farmer.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{entity.RoleAdmin}, u.Roles)
	assert.Equal(t, entity.RoleAdminID, u.RoleID)
}

func TestUpdateFarmer_SinVerificarDueno(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	other := testutil.SeedFarmer(t, f.store, "Farmer B", "b@example.com")
	name := "Cambiado por A"

	out, err := f.uc.UpdateFarmer(ctx, f.farmer, other.ID, dto.UpdateFarmerRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, out.Name)
}

func TestUpdateFarmer_Errores(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	email := "admin@ganza.com"

	_, err := f.uc.UpdateFarmer(ctx, f.admin, f.farmer.UserID, dto.UpdateFarmerRequest{Email: &email})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "email")

	bad := int64(7)
	_, err = f.uc.UpdateFarmer(ctx, f.admin, f.farmer.UserID, dto.UpdateFarmerRequest{RoleID: &bad})
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "role_id")

	_, err = f.uc.UpdateFarmer(ctx, f.admin, 999, dto.UpdateFarmerRequest{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = f.uc.UpdateFarmer(ctx, &authz.Identity{UserID: 50}, f.farmer.UserID, dto.UpdateFarmerRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestGetUserRolesYListRoles(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	out, err := f.uc.GetUserRoles(ctx, f.admin, f.farmer.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{entity.RoleFarmer}, out.Roles)

	_, err = f.uc.GetUserRoles(ctx, f.admin, 999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = f.uc.GetUserRoles(ctx, f.farmer, f.farmer.UserID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	roles, err := f.uc.ListRoles(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, []dto.RoleResponse{{ID: 1, Name: "Admin"}, {ID: 2, Name: "Farmer"}}, roles)
}

func TestDeleteUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.uc.DeleteUser(ctx, f.admin, f.admin.UserID), domain.ErrForbidden)
	assert.ErrorIs(t, f.uc.DeleteUser(ctx, f.farmer, f.farmer.UserID), domain.ErrForbidden)
	assert.ErrorIs(t, f.uc.DeleteUser(ctx, f.admin, 999), domain.ErrUserNotFound)

	require.NoError(t, f.uc.DeleteUser(ctx, f.admin, f.farmer.UserID))
	farmers, err := f.uc.ListFarmers(ctx, f.admin)
	require.NoError(t, err)
	assert.Empty(t, farmers)
}
