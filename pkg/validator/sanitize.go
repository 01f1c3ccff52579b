package validator

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Sanitize elimina cualquier marcado HTML y espacios sobrantes de un texto libre.
// Se guarda texto plano: las entidades que escapa bluemonday se revierten.
func Sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// SanitizePtr aplica Sanitize si p no es nil.
func SanitizePtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := Sanitize(*p)
	return &s
}
