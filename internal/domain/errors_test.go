package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/beanstock-api/internal/domain"
)

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("crear: %w", domain.NewValidationError("email", "el email ya está registrado"))

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"el email ya está registrado"}, verr.Fields["email"])
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Contains(t, err.Error(), "email: el email ya está registrado")
}

func TestValidationFromFields(t *testing.T) {
	assert.NoError(t, domain.ValidationFromFields(nil))
	assert.NoError(t, domain.ValidationFromFields(map[string][]string{}))

	err := domain.ValidationFromFields(map[string][]string{"b": {"y"}, "a": {"x"}})
	require.Error(t, err)
	assert.Equal(t, "validación: a: x; b: y", err.Error())
}
