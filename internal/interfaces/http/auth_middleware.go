package http

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/beanstock-api/internal/domain"
	"github.com/jhoicas/beanstock-api/internal/domain/authz"
	"github.com/jhoicas/beanstock-api/pkg/logger"
)

// Locals keys para la identidad y el jti del token en Fiber.
const (
	LocalIdentity = "identity"
	LocalTokenID  = "token_id"
)

// Authenticator resuelve la identidad a partir de un Bearer token (lo implementa *auth.AuthUseCase).
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*authz.Identity, string, error)
}

// AuthMiddleware valida el Bearer Token, verifica que la sesión siga activa y carga
// la identidad (con roles leídos de la base) en c.Locals.
func AuthMiddleware(auth Authenticator, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fail(c, fiber.StatusUnauthorized, CodeUnauthorized, "Authorization header requerido", nil)
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fail(c, fiber.StatusUnauthorized, CodeUnauthorized, "formato: Bearer <token>", nil)
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return fail(c, fiber.StatusUnauthorized, CodeUnauthorized, "token vacío", nil)
		}
		id, tokenID, err := auth.Authenticate(c.UserContext(), tokenString)
		if err != nil {
			if err == domain.ErrUnauthorized {
				return fail(c, fiber.StatusUnauthorized, CodeUnauthorized, "token inválido o expirado", nil)
			}
			return respondError(c, log, "authenticate", err)
		}
		c.Locals(LocalIdentity, id)
		c.Locals(LocalTokenID, tokenID)
		return c.Next()
	}
}

// RequireRole permite el paso solo si la identidad tiene alguno de los roles.
// Debe usarse DESPUÉS de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	title := cases.Title(language.Spanish)
	labels := make([]string, 0, len(roles))
	for _, r := range roles {
		labels = append(labels, title.String(r))
	}
	msg := "acceso restringido a: " + strings.Join(labels, ", ")

	return func(c *fiber.Ctx) error {
		id := GetIdentity(c)
		if id == nil {
			return fail(c, fiber.StatusUnauthorized, CodeUnauthorized, "no autenticado", nil)
		}
		for _, r := range roles {
			if id.HasRole(r) {
				return c.Next()
			}
		}
		return fail(c, fiber.StatusForbidden, CodeForbidden, msg, nil)
	}
}

// GetIdentity devuelve la identidad del contexto (nil si la ruta es pública).
func GetIdentity(c *fiber.Ctx) *authz.Identity {
	id, _ := c.Locals(LocalIdentity).(*authz.Identity)
	return id
}

// GetTokenID devuelve el jti del token de la petición.
func GetTokenID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalTokenID).(string)
	return s
}

// paramID lee un parámetro de ruta numérico positivo.
func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
