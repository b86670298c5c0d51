package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/waste3d/learnhub-api/internal/domain"
)

// currentUserID — uuid.Nil для анонима (optional auth)
func currentUserID(c *gin.Context) uuid.UUID {
	id, err := uuid.Parse(c.GetString("userId"))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func isStaff(c *gin.Context) bool {
	role := c.GetString("role")
	return role == domain.RoleInstructor || role == domain.RoleAdmin
}
