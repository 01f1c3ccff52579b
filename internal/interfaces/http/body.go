package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/beanstock-api/internal/domain"
	"github.com/jhoicas/beanstock-api/pkg/validator"
)

// parseBody decodifica el JSON; un cuerpo mal formado o con tipos incorrectos
// se reporta como error de validación por campo (422).
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return domain.ValidationFromFields(validator.DecodeErrors(err))
	}
	return nil
}
