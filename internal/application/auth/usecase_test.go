package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/beanstock-api/internal/application/auth"
	"github.com/jhoicas/beanstock-api/internal/application/dto"
	"github.com/jhoicas/beanstock-api/internal/domain"
	"github.com/jhoicas/beanstock-api/internal/domain/entity"
	"github.com/jhoicas/beanstock-api/internal/testutil"
	"github.com/jhoicas/beanstock-api/pkg/logger"
	"github.com/jhoicas/beanstock-api/pkg/validator"
)

type fakeLimiter struct {
	allow  bool
	err    error
	resets int
}

func (f *fakeLimiter) Allow(context.Context, string) (bool, error) { return f.allow, f.err }
func (f *fakeLimiter) Reset(context.Context, string) error        { f.resets++; return nil }

func newAuth(s *testutil.Store, limiter auth.AttemptLimiter) *auth.AuthUseCase {
	v := validator.New()
	reg := auth.NewFarmerRegistrar(s.Users(), s.TxRunner(), v)
	return auth.NewAuthUseCase(s.Users(), s.Tokens(), reg, limiter, v,
		auth.JWTConfig{Secret: testutil.JWTSecret, ExpMinutes: 60, Issuer: "beanstock-test"}, logger.Nop())
}

func validationFields(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "se esperaba ValidationError, fue %v", err)
	return verr.Fields
}

func TestRegister_CreaFarmer(t *testing.T) {
	s := testutil.NewStore()
	uc := newAuth(s, nil)
	ctx := context.Background()

	out, err := uc.Register(ctx, dto.RegisterRequest{Name: " Ana ", Email: "Ana@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", out.Name)
	assert.Equal(t, "ana@example.com", out.Email)
	assert.Equal(t, entity.RoleFarmerID, out.RoleID)

	farmers, err := s.Users().ListByRole(ctx, entity.RoleFarmer)
	require.NoError(t, err)
	require.Len(t, farmers, 1)
	assert.Equal(t, out.ID, farmers[0].ID)
	assert.Equal(t, entity.RoleFarmerID, farmers[0].RoleID)
	assert.NotEqual(t, "secret1", farmers[0].PasswordHash)
}

func TestRegister_EmailDuplicado(t *testing.T) {
	s := testutil.NewStore()
	testutil.SeedFarmer(t, s, "Ana", "ana@example.com")
	uc := newAuth(s, nil)

	_, err := uc.Register(context.Background(), dto.RegisterRequest{Name: "Otra", Email: "ana@example.com", Password: "secret1"})
	fields := validationFields(t, err)
	assert.Equal(t, []string{"el email ya está registrado"}, fields["email"])
}

func TestRegister_EntradaInvalida(t *testing.T) {
	uc := newAuth(testutil.NewStore(), nil)

	_, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "no-es-email", Password: "123"})
	fields := validationFields(t, err)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestRegister_RollbackSiFallaAsignarRol(t *testing.T) {
	s := testutil.NewStore()
	s.FailAssign = errors.New("boom")
	uc := newAuth(s, nil)
	ctx := context.Background()

	_, err := uc.Register(ctx, dto.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.Error(t, err)

	u, err := s.Users().GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestLogin_PasswordIncorrecto(t *testing.T) {
	s := testutil.NewStore()
	testutil.SeedFarmer(t, s, "Ana", "ana@example.com")
	uc := newAuth(s, nil)

	_, err := uc.Login(context.Background(), dto.LoginRequest{Email: "ana@example.com", Password: "wrong"})
	fields := validationFields(t, err)
	assert.Equal(t, []string{domain.ErrInvalidCredentials.Error()}, fields["email"])
	assert.False(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_UsuarioInexistente(t *testing.T) {
	uc := newAuth(testutil.NewStore(), nil)
	_, err := uc.Login(context.Background(), dto.LoginRequest{Email: "nadie@example.com", Password: "x"})
	assert.Contains(t, validationFields(t, err), "email")
}

func TestLogin_AuthenticateYLogout(t *testing.T) {
	s := testutil.NewStore()
	admin := testutil.SeedAdmin(t, s)
	lim := &fakeLimiter{allow: true}
	uc := newAuth(s, lim)
	ctx := context.Background()

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "admin@ganza.com", Password: "password"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", out.TokenType)
	assert.Equal(t, admin.ID, out.User.ID)
	assert.Equal(t, []string{entity.RoleAdmin}, out.User.Roles)
	assert.Equal(t, 1, lim.resets)

	id, jti, err := uc.Authenticate(ctx, out.AccessToken)
	require.NoError(t, err)
	assert.True(t, id.IsAdmin())
	assert.NotEmpty(t, jti)

	require.NoError(t, uc.Logout(ctx, id, jti))

	_, _, err = uc.Authenticate(ctx, out.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthenticate_RolesDesdeLaBase(t *testing.T) {
	s := testutil.NewStore()
	farmer := testutil.SeedFarmer(t, s, "Ana", "ana@example.com")
	uc := newAuth(s, nil)
	ctx := context.Background()
	token := testutil.IssueToken(t, s, farmer.ID)

	require.NoError(t, s.Roles().Assign(ctx, farmer.ID, entity.RoleAdminID))

	id, _, err := uc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.True(t, id.IsAdmin())
	assert.True(t, id.IsFarmer())
	assert.Equal(t, entity.RoleAdminID, id.RoleID)
}

func TestAuthenticate_TokenInvalidoOUsuarioBorrado(t *testing.T) {
	s := testutil.NewStore()
	farmer := testutil.SeedFarmer(t, s, "Ana", "ana@example.com")
	uc := newAuth(s, nil)
	ctx := context.Background()

	_, _, err := uc.Authenticate(ctx, "no.es.jwt")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	token := testutil.IssueToken(t, s, farmer.ID)
	require.NoError(t, s.Users().Delete(ctx, farmer.ID))
	_, _, err = uc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_Limitador(t *testing.T) {
	s := testutil.NewStore()
	testutil.SeedFarmer(t, s, "Ana", "ana@example.com")
	ctx := context.Background()

	_, err := newAuth(s, &fakeLimiter{allow: false}).Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "password"})
	assert.ErrorIs(t, err, domain.ErrTooManyAttempts)

	// si Redis falla el login sigue funcionando
	_, err = newAuth(s, &fakeLimiter{err: errors.New("redis caído")}).Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "password"})
	assert.NoError(t, err)
}
