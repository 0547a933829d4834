package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookreviews/internal/config"
)

// testParams keeps hashing fast in tests.
var testParams = Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw123", testParams)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))
	assert.NotContains(t, hash, "pw123")
}

func TestHashPassword_SaltsEachHash(t *testing.T) {
	first, err := HashPassword("same-password", testParams)
	require.NoError(t, err)
	second, err := HashPassword("same-password", testParams)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", testParams)
	require.NoError(t, err)

	ok, err := CheckPassword("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword("wrong horse", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckPassword_UsesEncodedParameters(t *testing.T) {
	hash, err := HashPassword("pw", Argon2Params{Memory: 2048, Iterations: 2, Parallelism: 1})
	require.NoError(t, err)

	ok, err := CheckPassword("pw", hash)
	require.NoError(t, err)
	assert.True(t, ok, "verification reads parameters from the hash, not from defaults")
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	tests := []struct {
		name    string
		hash    string
		wantErr error
	}{
		{"empty", "", ErrMalformedHash},
		{"bcrypt", "$2a$12$abcdefghijklmnopqrstuv", ErrMalformedHash},
		{"bad params", "$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5", ErrMalformedHash},
		{"bad salt", "$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5", ErrMalformedHash},
		{"wrong version", "$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$a2V5", ErrIncompatibleVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := CheckPassword("pw", tt.hash)
			assert.False(t, ok)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParamsFromConfig(t *testing.T) {
	assert.Equal(t, DefaultArgon2Params(), ParamsFromConfig(config.Auth{}))

	p := ParamsFromConfig(config.Auth{Argon2Memory: 4096, Argon2Iterations: 4, Argon2Parallelism: 1})
	assert.Equal(t, Argon2Params{Memory: 4096, Iterations: 4, Parallelism: 1}, p)
}

func TestGenerateSessionSecret(t *testing.T) {
	a, err := GenerateSessionSecret()
	require.NoError(t, err)
	b, err := GenerateSessionSecret()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
