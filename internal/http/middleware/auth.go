package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextUserIDKey ключ id пользователя в gin.Context.
const ContextUserIDKey = "userID"

// Authenticator проверяет access токен.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (int64, error)
}

// AuthMiddleware требует валидный Bearer токен.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		userID, err := auth.Authenticate(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// OptionalAuthMiddleware подставляет пользователя, если токен передан и валиден.
// Без токена запрос проходит анонимно, с невалидным токеном отклоняется.
func OptionalAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		userID, err := auth.Authenticate(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// UserID возвращает id пользователя, установленный middleware.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}
