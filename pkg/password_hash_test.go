package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("squats-4-life")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, CheckPasswordHash("squats-4-life", hash))
	assert.False(t, CheckPasswordHash("squats-4-life ", hash))
	assert.False(t, CheckPasswordHash("burpees-4-life", hash))

	// hashing the same password twice must not produce the same hash
	hashAgain, err := HashPassword("squats-4-life")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hashAgain)
	assert.True(t, CheckPasswordHash("squats-4-life", hashAgain))
}

func TestCheckPasswordHash_GarbageHash(t *testing.T) {
	assert.False(t, CheckPasswordHash("whatever", "not-a-bcrypt-hash"))
	assert.False(t, CheckPasswordHash("whatever", ""))
}
