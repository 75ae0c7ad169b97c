package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGetHashAndCompare(t *testing.T) {
	hash, err := GetHashWithCost("secret123", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "secret123", hash)

	assert.NoError(t, CompareHash(hash, "secret123"))
	assert.Error(t, CompareHash(hash, "wrongpassword"))
}

func TestGetHash_ProducesDifferentSalts(t *testing.T) {
	first, err := GetHashWithCost("secret123", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := GetHashWithCost("secret123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestCompareHash_InvalidHash(t *testing.T) {
	assert.Error(t, CompareHash("not-a-bcrypt-hash", "secret123"))
}
