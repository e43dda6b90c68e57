package credentials_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zabecode/dac/internal/credentials"
)

func TestGenerate_Shape(t *testing.T) {
	secret, hash, prefix, err := credentials.Generate()
	require.NoError(t, err)

	assert.Len(t, secret, credentials.SecretLength)
	assert.Len(t, prefix, credentials.PrefixLength)
	assert.Equal(t, secret[:credentials.PrefixLength], prefix)
	assert.NotEqual(t, secret, hash)
	assert.NotContains(t, hash, secret)
}

func TestGenerate_SecretsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		secret, _, _, err := credentials.Generate()
		require.NoError(t, err)
		assert.False(t, seen[secret], "duplicate secret generated")
		seen[secret] = true
	}
}

func TestVerify_MatchingSecret(t *testing.T) {
	secret, hash, _, err := credentials.Generate()
	require.NoError(t, err)

	assert.True(t, credentials.Verify(secret, hash))
}

func TestVerify_RejectsOtherStrings(t *testing.T) {
	secret, hash, prefix, err := credentials.Generate()
	require.NoError(t, err)

	assert.False(t, credentials.Verify("", hash))
	assert.False(t, credentials.Verify(secret[:len(secret)-1], hash))
	assert.False(t, credentials.Verify(secret+"x", hash))

	// Same prefix, different tail must still fail.
	impostor := prefix + "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	require.Len(t, impostor, credentials.SecretLength)
	assert.False(t, credentials.Verify(impostor, hash))
}
