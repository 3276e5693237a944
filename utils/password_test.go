package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hashed)

	assert.NoError(t, CheckPassword(hashed, "s3cret-pass"))
	assert.ErrorIs(t, CheckPassword(hashed, "wrong"), ErrPasswordMismatch)
	assert.Error(t, CheckPassword("not-a-hash", "s3cret-pass"))
}
