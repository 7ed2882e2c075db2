package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// GenerateToken issues the JWT handed out at login. The email is the only
// claim; everything else is looked up in the database per request.
func GenerateToken(email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"Email": email,
	})
	return token.SignedString(jwtSecret())
}

func parseEmail(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	email, ok := claims["Email"].(string)
	if !ok || email == "" {
		return "", errors.New("missing email claim")
	}
	return email, nil
}

// JWTDecoder extracts the authenticated email from the Authorization
// header of a gin request.
func JWTDecoder(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", errors.New("missing Bearer token")
	}
	return parseEmail(strings.TrimPrefix(header, "Bearer "))
}

// SocketioJWTDecoder extracts the authenticated email from a socket.io
// handshake auth map. The token rides the 'authorization' field with the
// same 'Bearer ' prefix the REST API uses.
func SocketioJWTDecoder(authData map[string]interface{}) (string, error) {
	raw, ok := authData["authorization"].(string)
	if !ok {
		return "", errors.New("missing authorization field")
	}
	if !strings.HasPrefix(raw, "Bearer ") {
		return "", errors.New("missing Bearer prefix")
	}
	return parseEmail(strings.TrimPrefix(raw, "Bearer "))
}

// AuthRequired is the gin middleware guarding the /auth route group. It
// stores the decoded email in the context for the handlers downstream.
func AuthRequired(c *gin.Context) {
	email, err := JWTDecoder(c)
	if err != nil {
		// Abort the request with the appropriate error code
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set("email", email)
	c.Next()
}
