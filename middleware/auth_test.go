package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken("alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	t.Run("socket handshake decoder", func(t *testing.T) {
		email, err := SocketioJWTDecoder(map[string]interface{}{
			"authorization": "Bearer " + token,
		})
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", email)
	})

	t.Run("missing authorization field", func(t *testing.T) {
		_, err := SocketioJWTDecoder(map[string]interface{}{})
		assert.Error(t, err)
	})

	t.Run("tampered token is rejected", func(t *testing.T) {
		_, err := SocketioJWTDecoder(map[string]interface{}{
			"authorization": "Bearer " + token + "x",
		})
		assert.Error(t, err)
	})
}

func TestAuthRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/auth/me", AuthRequired, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": c.GetString("email")})
	})

	t.Run("valid bearer token passes", func(t *testing.T) {
		token, err := GenerateToken("bob@example.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "bob@example.com")
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong scheme is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Basic abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
