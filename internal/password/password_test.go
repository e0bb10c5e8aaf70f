package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=4$"))
	assert.True(t, Verify("correct horse battery staple", hash))
	assert.False(t, Verify("correct horse battery stapler", hash))
}

func TestHash_IsSalted(t *testing.T) {
	first, err := Hash("secret")
	require.NoError(t, err)
	second, err := Hash("secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, Verify("secret", first))
	assert.True(t, Verify("secret", second))
}

func TestHash_RejectsBadInput(t *testing.T) {
	_, err := Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = Hash(strings.Repeat("x", maxPasswordLength+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = Hash(strings.Repeat("é", maxPasswordLength+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestHash_LengthCountsCharacters(t *testing.T) {
	// 1024 two-byte characters is 2048 bytes
	long := strings.Repeat("é", maxPasswordLength)

	hash, err := Hash(long)
	require.NoError(t, err)
	assert.True(t, Verify(long, hash))
}

func TestVerify_Bcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, Verify("secret", string(legacy)))
	assert.False(t, Verify("Secret", string(legacy)))
}

func TestVerify_MalformedHashes(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{name: "empty", hash: ""},
		{name: "plaintext", hash: "secret"},
		{name: "unknown scheme", hash: "$pbkdf2-sha256$29000$abc$def"},
		{name: "too few parts", hash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA"},
		{name: "bad version", hash: "$argon2id$v=x$m=65536,t=3,p=4$c2FsdHNhbHQ$aGFzaA"},
		{name: "bad params", hash: "$argon2id$v=19$m=a,t=3,p=4$c2FsdHNhbHQ$aGFzaA"},
		{name: "zero params", hash: "$argon2id$v=19$m=0,t=0,p=0$c2FsdHNhbHQ$aGFzaA"},
		{name: "huge memory", hash: "$argon2id$v=19$m=4294967295,t=3,p=4$c2FsdHNhbHQ$aGFzaA"},
		{name: "huge time", hash: "$argon2id$v=19$m=65536,t=4294967295,p=4$c2FsdHNhbHQ$aGFzaA"},
		{name: "bad salt", hash: "$argon2id$v=19$m=65536,t=3,p=4$!!!$aGFzaA"},
		{name: "empty hash", hash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdHNhbHQ$"},
		{name: "truncated bcrypt", hash: "$2b$12$short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, Verify("secret", tt.hash))
		})
	}
}
