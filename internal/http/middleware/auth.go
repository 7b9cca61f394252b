package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"tripnotify/internal/http/dto"
	"tripnotify/internal/http/resp"
)

const recipientIDKey = "recipient_id"

type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// RecipientAuth authenticates the caller and pins the recipient
// identity for the request. Every notification query and mutation
// downstream is scoped to this identity; there is no way to name
// another recipient's records.
func RecipientAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if authHeader == "" || !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Code: resp.CodeUnauthorized, Message: "bearer token required",
			})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid || claims.UserID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Code: resp.CodeUnauthorized, Message: "invalid token",
			})
			return
		}

		c.Set(recipientIDKey, claims.UserID)
		c.Next()
	}
}

// RecipientID returns the authenticated recipient for the request.
func RecipientID(c *gin.Context) string {
	return c.GetString(recipientIDKey)
}

// GenerateToken signs a token for a recipient. The trip service and
// tests use it; browsers get theirs from the account subsystem.
func GenerateToken(secret, userID string, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "tripnotify",
		},
		UserID: userID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
