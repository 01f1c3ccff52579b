package testutil

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/beanstock-api/internal/domain/authz"
	"github.com/jhoicas/beanstock-api/internal/domain/entity"
	"github.com/jhoicas/beanstock-api/pkg/jwt"
)

// JWTSecret secret usado por los helpers de token en pruebas.
const JWTSecret = "test-secret-key-for-unit-tests"

// SeedUser crea un usuario con los roles dados (el primero queda como role_id).
// El password se guarda con bcrypt.MinCost.
func SeedUser(t *testing.T, s *Store, name, email, password string, roleIDs ...int64) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	ctx := context.Background()
	u := &entity.User{Name: name, Email: email, PasswordHash: string(hash), CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := s.Users().Create(ctx, u); err != nil {
		t.Fatalf("crear usuario: %v", err)
	}
	for i := len(roleIDs) - 1; i >= 0; i-- {
		if err := s.Roles().Assign(ctx, u.ID, roleIDs[i]); err != nil {
			t.Fatalf("asignar rol: %v", err)
		}
	}
	out, _ := s.Users().GetByID(ctx, u.ID)
	return out
}

// SeedAdmin crea el administrador inicial (id 1) si la base está vacía.
func SeedAdmin(t *testing.T, s *Store) *entity.User {
	t.Helper()
	return SeedUser(t, s, "Ganza", "admin@ganza.com", "password", entity.RoleAdminID)
}

// SeedFarmer crea un Farmer.
func SeedFarmer(t *testing.T, s *Store, name, email string) *entity.User {
	t.Helper()
	return SeedUser(t, s, name, email, "password", entity.RoleFarmerID)
}

// Identity identidad autenticada para un usuario sembrado.
func Identity(u *entity.User) *authz.Identity {
	return authz.NewIdentity(u)
}

// IssueToken firma un token para userID y lo registra como sesión activa.
func IssueToken(t *testing.T, s *Store, userID int64) string {
	t.Helper()
	tok, err := jwt.Generate(JWTSecret, userID, "beanstock-test", 60)
	if err != nil {
		t.Fatalf("firmar token: %v", err)
	}
	err = s.Tokens().Create(context.Background(), &entity.AccessToken{
		ID: tok.ID, UserID: userID, ExpiresAt: tok.ExpiresAt, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("registrar token: %v", err)
	}
	return tok.Value
}

// Float64 puntero a v.
func Float64(v float64) *float64 { return &v }

// String puntero a v.
func String(v string) *string { return &v }
