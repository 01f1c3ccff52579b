package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/beanstock-api/pkg/jwt"
)

const (
	testSecret = "test-secret-key-for-unit-tests"
	testIssuer = "beanstock-test"
)

func TestGenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, 42, testIssuer, 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Value)
	require.NotEmpty(t, tok.ID)

	userID, jti, err := pkgjwt.Parse(testSecret, tok.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, tok.ID, jti)
}

func TestGenerate_JTIUnicoPorToken(t *testing.T) {
	a, err := pkgjwt.Generate(testSecret, 1, testIssuer, 60)
	require.NoError(t, err)
	b, err := pkgjwt.Generate(testSecret, 1, testIssuer, 60)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, 1, testIssuer, -1)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse(testSecret, tok.Value)
	assert.Error(t, err)
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, 1, testIssuer, 60)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("otro-secret", tok.Value)
	assert.Error(t, err)
}

func TestSecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", 1, testIssuer, 60)
	assert.Error(t, err)

	_, _, err = pkgjwt.Parse("", "x.y.z")
	assert.Error(t, err)
}
