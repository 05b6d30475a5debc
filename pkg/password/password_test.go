package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/supermercado-api/pkg/password"
)

func TestHashVerify_IdaYVuelta(t *testing.T) {
	for _, p := range []string{"Str0ngPass", "ñandú-Clave9", "x"} {
		h, err := password.Hash(p)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(h, "$argon2id$v=19$"), h)
		assert.True(t, password.Verify(p, h))
		assert.False(t, password.Verify(p+"!", h))
		assert.True(t, password.IsHash(h))
		assert.False(t, password.NeedsRehash(h))
	}
}

func TestHash_SalDistintaEnCadaLlamada(t *testing.T) {
	a, err := password.Hash("Str0ngPass")
	require.NoError(t, err)
	b, err := password.Hash("Str0ngPass")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerify_HashMalFormadoDevuelveFalse(t *testing.T) {
	for _, h := range []string{
		"",
		"Str0ngPass",
		"$2a$10$abcdefghijklmnopqrstuv",
		"$argon2id$v=19$m=65536,t=3,p=4$",
		"$argon2id$v=18$m=65536,t=3,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=0,t=3,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=3,p=4$!!!$a2V5",
	} {
		assert.NotPanics(t, func() {
			assert.False(t, password.Verify("Str0ngPass", h), h)
		})
		assert.False(t, password.IsHash(h), h)
	}
}

func TestNeedsRehash_ParametrosAntiguos(t *testing.T) {
	assert.True(t, password.NeedsRehash("$argon2id$v=19$m=4096,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2U"))
	assert.True(t, password.NeedsRehash("plano"))
}

func TestValidateStrength(t *testing.T) {
	assert.NoError(t, password.ValidateStrength("Str0ngPass"))

	for _, p := range []string{"", "Ab1", "Abcdef1", "abcdefg1", "ABCDEFG1", "Abcdefgh"} {
		err := password.ValidateStrength(p)
		var pErr *password.PolicyError
		assert.ErrorAs(t, err, &pErr, "%q debe rechazarse", p)
	}
}

func TestDummyHash(t *testing.T) {
	h := password.DummyHash()
	assert.True(t, password.IsHash(h))
	assert.False(t, password.NeedsRehash(h))
	assert.Equal(t, h, password.DummyHash())
	assert.False(t, password.Verify("Str0ngPass", h))
}
