package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/supermercado-api/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

func TestGenerateParse(t *testing.T) {
	tok, err := jwt.Generate(secret, "a@x.com", "CUSTOMER", "supermercado-test", time.Minute)
	require.NoError(t, err)

	claims, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, "CUSTOMER", claims.Role)
	assert.Equal(t, "supermercado-test", claims.Issuer)
}

func TestParse_RechazosUniformes(t *testing.T) {
	expired, err := jwt.Generate(secret, "a@x.com", "CUSTOMER", "", -time.Minute)
	require.NoError(t, err)
	otherKey, err := jwt.Generate("otra-clave", "a@x.com", "CUSTOMER", "", time.Minute)
	require.NoError(t, err)
	noneAlg, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: "a@x.com", ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Minute))},
		Role:             "ADMIN",
	}).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"expirado": expired,
		"firma":    otherKey,
		"alg none": noneAlg,
		"basura":   "no.es.jwt",
		"vacío":    "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := jwt.Parse(secret, tok)
			assert.ErrorIs(t, err, jwt.ErrInvalidToken)
			assert.Equal(t, "could not validate credentials", err.Error())
		})
	}
}

func TestGenerate_RequiereSecretYSubject(t *testing.T) {
	_, err := jwt.Generate("", "a@x.com", "CUSTOMER", "", time.Minute)
	assert.Error(t, err)
	_, err = jwt.Generate(secret, "", "CUSTOMER", "", time.Minute)
	assert.Error(t, err)
}
