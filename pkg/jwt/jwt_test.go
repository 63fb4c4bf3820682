package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	t.Run("round trip preserves the claims", func(t *testing.T) {
		token, err := GenerateToken("user-123", "casey@example.com", "user", testSecret, time.Hour)
		require.NoError(t, err)

		claims, err := ValidateToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID)
		assert.Equal(t, "casey@example.com", claims.Email)
		assert.Equal(t, "user", claims.Role)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		token, err := GenerateToken("user-123", "casey@example.com", "user", testSecret, time.Hour)
		require.NoError(t, err)

		_, err = ValidateToken(token, "other-secret")
		assert.Error(t, err)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		token, err := GenerateToken("user-123", "casey@example.com", "user", testSecret, -time.Minute)
		require.NoError(t, err)

		_, err = ValidateToken(token, testSecret)
		assert.Error(t, err)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := ValidateToken("not.a.token", testSecret)
		assert.Error(t, err)
	})
}
