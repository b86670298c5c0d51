package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/waste3d/learnhub-api/internal/application/authstate"
	"github.com/waste3d/learnhub-api/internal/application/usecase"
	"github.com/waste3d/learnhub-api/internal/domain"
	"github.com/waste3d/learnhub-api/internal/infrastructure/cache"
)

type ProfileHandler struct {
	profiles      *usecase.ProfileUseCase
	achievements  *usecase.AchievementUseCase
	notifications *cache.NotificationStore
	sessions      *authstate.Holder
}

func NewProfileHandler(
	profiles *usecase.ProfileUseCase,
	achievements *usecase.AchievementUseCase,
	notifications *cache.NotificationStore,
	sessions *authstate.Holder,
) *ProfileHandler {
	return &ProfileHandler{
		profiles:      profiles,
		achievements:  achievements,
		notifications: notifications,
		sessions:      sessions,
	}
}

// GET /api/v1/user/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	view, err := h.profiles.GetProfile(c, currentUserID(c))
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

// PUT /api/v1/user/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=3,max=50"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.profiles.UpdateUsername(c, currentUserID(c), req.Username); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /api/v1/user/avatar
func (h *ProfileHandler) SetAvatar(c *gin.Context) {
	var req struct {
		AvatarID int `json:"avatar_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if err := h.profiles.SetAvatar(c, currentUserID(c), req.AvatarID); err != nil {
		if errors.Is(err, usecase.ErrInvalidAvatar) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update avatar"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "avatar_id": req.AvatarID})
}

// GET /api/v1/leaderboard
func (h *ProfileHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	entries, err := h.profiles.Leaderboard(c, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// GET /api/v1/achievements — статический каталог, доступен без авторизации
func (h *ProfileHandler) AchievementCatalog(c *gin.Context) {
	defs := domain.AchievementCatalog()
	out := make([]gin.H, 0, len(defs))
	for _, def := range defs {
		out = append(out, gin.H{
			"id":          def.ID,
			"title":       def.Title,
			"description": def.Description,
			"icon":        def.Icon,
			"points":      def.Points,
			"rarity":      def.Rarity,
		})
	}
	c.JSON(http.StatusOK, gin.H{"achievements": out})
}

// GET /api/v1/user/achievements
func (h *ProfileHandler) EarnedAchievements(c *gin.Context) {
	earned, err := h.achievements.ListEarned(c, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(earned))
	for _, e := range earned {
		out = append(out, gin.H{
			"id":        e.Def.ID,
			"title":     e.Def.Title,
			"icon":      e.Def.Icon,
			"points":    e.Def.Points,
			"rarity":    e.Def.Rarity,
			"earned_at": e.EarnedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"achievements": out})
}

// GET /api/v1/user/notifications
func (h *ProfileHandler) Notifications(c *gin.Context) {
	list, err := h.notifications.List(c, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

// DELETE /api/v1/user/notifications/:id
func (h *ProfileHandler) DismissNotification(c *gin.Context) {
	if err := h.notifications.Dismiss(c, currentUserID(c), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to dismiss notification"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /api/v1/user/session — состояние сессии из холдера
func (h *ProfileHandler) Session(c *gin.Context) {
	userID := currentUserID(c)
	state, ok := h.sessions.Get(userID)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"state": "anonymous"})
		return
	}

	resp := gin.H{
		"state":        "authenticated",
		"user_id":      state.UserID,
		"signed_in_at": state.SignedInAt,
		"refreshed_at": state.RefreshedAt,
	}
	if state.Profile != nil {
		resp["username"] = state.Profile.Username
	}
	c.JSON(http.StatusOK, resp)
}
