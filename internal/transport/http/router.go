package handlers

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/waste3d/learnhub-api/internal/infrastructure/security"
	"github.com/waste3d/learnhub-api/internal/middleware"
)

func NewRouter(
	authHandler *AuthHandler,
	profileHandler *ProfileHandler,
	courseHandler *CourseHandler,
	progressHandler *ProgressHandler,
	limiter *middleware.RateLimiter,
	tokenManager *security.TokenManager,
	allowedOrigins string,
) *gin.Engine {
	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowOrigins = splitOrigins(allowedOrigins)
	config.AllowCredentials = true
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}
	r.Use(cors.New(config))

	requireAuth := middleware.AuthMiddleware(tokenManager)
	optionalAuth := middleware.OptionalAuthMiddleware(tokenManager)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", limiter.Limit("register", 3, 1*time.Minute), authHandler.Register)
			auth.POST("/login", limiter.Limit("login", 5, 1*time.Minute), authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authHandler.Logout)
		}

		// Каталог и навигация открыты для превью, прогресс цепляется
		// только для авторизованных
		course := api.Group("/courses")
		course.Use(optionalAuth)
		{
			course.GET("", courseHandler.List)
			course.GET("/:id", courseHandler.GetOne)
			course.GET("/:id/navigation", progressHandler.Navigation)

			// Для анонима запись прогресса — осознанный no-op
			course.POST("/:id/lessons/:lessonId/progress", progressHandler.Record)
			course.POST("/:id/lessons/:lessonId/complete", progressHandler.Complete)
		}

		staff := api.Group("/courses")
		staff.Use(requireAuth)
		{
			staff.POST("", courseHandler.Create)
			staff.DELETE("/:id", courseHandler.Delete)
		}

		api.GET("/achievements", profileHandler.AchievementCatalog)
		api.GET("/leaderboard", profileHandler.Leaderboard)

		user := api.Group("/user")
		user.Use(requireAuth)
		{
			user.GET("/profile", profileHandler.GetProfile)
			user.PUT("/profile", profileHandler.UpdateProfile)
			user.POST("/avatar", profileHandler.SetAvatar)
			user.GET("/achievements", profileHandler.EarnedAchievements)
			user.GET("/notifications", profileHandler.Notifications)
			user.DELETE("/notifications/:id", profileHandler.DismissNotification)
			user.GET("/session", profileHandler.Session)
		}
	}

	return r
}

func splitOrigins(origins string) []string {
	if origins == "" {
		return []string{"http://localhost:3000"}
	}

	parts := strings.Split(origins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
