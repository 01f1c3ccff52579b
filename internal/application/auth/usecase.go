package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/beanstock-api/internal/application/dto"
	"github.com/jhoicas/beanstock-api/internal/domain"
	"github.com/jhoicas/beanstock-api/internal/domain/authz"
	"github.com/jhoicas/beanstock-api/internal/domain/entity"
	"github.com/jhoicas/beanstock-api/internal/domain/repository"
	"github.com/jhoicas/beanstock-api/pkg/jwt"
	"github.com/jhoicas/beanstock-api/pkg/logger"
	"github.com/jhoicas/beanstock-api/pkg/validator"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro, login, logout y resolución de identidad.
type AuthUseCase struct {
	users     repository.UserRepository
	tokens    repository.TokenRepository
	registrar *FarmerRegistrar
	limiter   AttemptLimiter // nil = sin límite
	validate  *validator.Validator
	jwtCfg    JWTConfig
	log       *logger.Logger
	now       func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth. limiter puede ser nil.
func NewAuthUseCase(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	registrar *FarmerRegistrar,
	limiter AttemptLimiter,
	v *validator.Validator,
	jwtCfg JWTConfig,
	log *logger.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		users:     users,
		tokens:    tokens,
		registrar: registrar,
		limiter:   limiter,
		validate:  v,
		jwtCfg:    jwtCfg,
		log:       log,
		now:       time.Now,
	}
}

// Register registro público: siempre crea un Farmer.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	user, err := uc.registrar.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("user_id", user.ID).Msg("registro de farmer")
	return &dto.UserResponse{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		RoleID: entity.RoleFarmerID,
		Role:   entity.RoleFarmer,
	}, nil
}

// Login verifica email/password, emite el token y lo registra como sesión activa.
// Credenciales incorrectas se reportan como error de validación sobre "email".
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	in.Email = normalizeEmail(in.Email)
	if errs := uc.validate.Struct(in); errs != nil {
		return nil, domain.ValidationFromFields(errs)
	}

	if uc.limiter != nil {
		allowed, err := uc.limiter.Allow(ctx, in.Email)
		if err != nil {
			uc.log.Warn().Err(err).Msg("limitador de login no disponible")
		} else if !allowed {
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := uc.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		uc.log.Warn().Str("email", in.Email).Msg("login con credenciales incorrectas")
		return nil, domain.NewValidationError("email", domain.ErrInvalidCredentials.Error())
	}

	tok, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	if err := uc.tokens.Create(ctx, &entity.AccessToken{
		ID:        tok.ID,
		UserID:    user.ID,
		ExpiresAt: tok.ExpiresAt,
		CreatedAt: uc.now(),
	}); err != nil {
		return nil, err
	}
	if uc.limiter != nil {
		if err := uc.limiter.Reset(ctx, in.Email); err != nil {
			uc.log.Warn().Err(err).Msg("reset del limitador de login")
		}
	}

	roles := user.Roles
	if roles == nil {
		roles = []string{}
	}
	uc.log.Info().Int64("user_id", user.ID).Int64("role_id", user.RoleID).Strs("roles", roles).Msg("login exitoso")

	return &dto.LoginResponse{
		AccessToken: tok.Value,
		TokenType:   "Bearer",
		ExpiresAt:   tok.ExpiresAt,
		User: dto.LoginUser{
			ID:     user.ID,
			Name:   user.Name,
			Email:  user.Email,
			RoleID: user.RoleID,
			Roles:  roles,
		},
	}, nil
}

// Logout revoca el token de la sesión actual.
func (uc *AuthUseCase) Logout(ctx context.Context, id *authz.Identity, tokenID string) error {
	if id == nil {
		return domain.ErrUnauthorized
	}
	if err := uc.tokens.Revoke(ctx, tokenID, uc.now()); err != nil {
		return err
	}
	uc.log.Info().Int64("user_id", id.UserID).Msg("logout")
	return nil
}

// Authenticate resuelve la identidad desde un Bearer token: firma y expiración válidas,
// sesión no revocada y usuario existente. Los roles se leen de la base en cada llamada.
func (uc *AuthUseCase) Authenticate(ctx context.Context, tokenString string) (*authz.Identity, string, error) {
	userID, tokenID, err := jwt.Parse(uc.jwtCfg.Secret, tokenString)
	if err != nil {
		return nil, "", domain.ErrUnauthorized
	}
	active, err := uc.tokens.IsActive(ctx, tokenID, uc.now())
	if err != nil {
		return nil, "", err
	}
	if !active {
		return nil, "", domain.ErrUnauthorized
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", domain.ErrUnauthorized
	}
	return authz.NewIdentity(user), tokenID, nil
}
