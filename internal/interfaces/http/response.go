package http

import (
	"errors"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/beanstock-api/internal/application/dto"
	"github.com/jhoicas/beanstock-api/internal/domain"
	"github.com/jhoicas/beanstock-api/pkg/logger"
)

// Códigos de error del sobre JSON.
const (
	CodeValidation      = "VALIDATION"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeTooManyRequests = "TOO_MANY_ATTEMPTS"
	CodeInternal        = "INTERNAL"
)

const msgInternal = "ocurrió un error inesperado"

func ok(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(dto.Envelope{Success: true, Message: message, Data: data})
}

func okList[T any](c *fiber.Ctx, message string, items []T) error {
	n := len(items)
	return c.Status(fiber.StatusOK).JSON(dto.Envelope{Success: true, Message: message, Data: items, Count: &n})
}

func fail(c *fiber.Ctx, status int, code, message string, fields map[string][]string) error {
	return c.Status(status).JSON(dto.Envelope{Success: false, Code: code, Message: message, Errors: fields})
}

// respondError traduce errores de dominio al sobre JSON. Lo inesperado se registra con
// contexto (usuario, acción, ruta), se envía a Sentry si está activo y se responde 500 sin detalle.
func respondError(c *fiber.Ctx, log *logger.Logger, action string, err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return fail(c, fiber.StatusUnprocessableEntity, CodeValidation, "error de validación", verr.Fields)
	case errors.Is(err, domain.ErrUnauthorized):
		return fail(c, fiber.StatusUnauthorized, CodeUnauthorized, domain.ErrUnauthorized.Error(), nil)
	case errors.Is(err, domain.ErrForbidden):
		return fail(c, fiber.StatusForbidden, CodeForbidden, "no autorizado para esta operación", nil)
	case errors.Is(err, domain.ErrUserNotFound):
		return fail(c, fiber.StatusNotFound, CodeNotFound, domain.ErrUserNotFound.Error(), nil)
	case errors.Is(err, domain.ErrNotFound):
		return fail(c, fiber.StatusNotFound, CodeNotFound, domain.ErrNotFound.Error(), nil)
	case errors.Is(err, domain.ErrTooManyAttempts):
		return fail(c, fiber.StatusTooManyRequests, CodeTooManyRequests, domain.ErrTooManyAttempts.Error(), nil)
	}

	var userID int64
	if id := GetIdentity(c); id != nil {
		userID = id.UserID
	}
	log.Error().Err(err).
		Int64("user_id", userID).
		Str("action", action).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("error inesperado")
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetUser(sentry.User{ID: formatID(userID)})
			scope.SetTag("action", action)
			hub.CaptureException(err)
		})
	}
	return fail(c, fiber.StatusInternalServerError, CodeInternal, msgInternal, nil)
}

// ErrorHandler manejador global de Fiber: rutas inexistentes, cuerpos demasiado grandes
// y panics recuperados salen con el mismo sobre JSON.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := CodeInternal
			switch fe.Code {
			case fiber.StatusNotFound:
				code = CodeNotFound
			case fiber.StatusUnauthorized:
				code = CodeUnauthorized
			case fiber.StatusForbidden:
				code = CodeForbidden
			}
			if fe.Code < fiber.StatusInternalServerError {
				return fail(c, fe.Code, code, fe.Message, nil)
			}
		}
		return respondError(c, log, "", err)
	}
}
