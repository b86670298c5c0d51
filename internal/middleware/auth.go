package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/waste3d/learnhub-api/internal/infrastructure/security"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware требует валидный access-токен и кладет userId/role в контекст.
func AuthMiddleware(tm *security.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		userID, role, err := tm.ValidateAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("userId", userID)
		c.Set("role", role)
		c.Next()
	}
}

// OptionalAuthMiddleware пропускает анонимов: невалидный или отсутствующий
// токен просто оставляет userId пустым. Нужен для превью-режима, где запись
// прогресса превращается в no-op.
func OptionalAuthMiddleware(tm *security.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if userID, role, err := tm.ValidateAccessToken(token); err == nil {
				c.Set("userId", userID)
				c.Set("role", role)
			}
		}
		c.Next()
	}
}
