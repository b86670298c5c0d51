package main

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/waste3d/learnhub-api/config"
	"github.com/waste3d/learnhub-api/internal/application/authstate"
	"github.com/waste3d/learnhub-api/internal/application/usecase"
	"github.com/waste3d/learnhub-api/internal/domain"
	"github.com/waste3d/learnhub-api/internal/infrastructure/cache"
	"github.com/waste3d/learnhub-api/internal/infrastructure/repository"
	"github.com/waste3d/learnhub-api/internal/infrastructure/security"
	"github.com/waste3d/learnhub-api/internal/middleware"
	handlers "github.com/waste3d/learnhub-api/internal/transport/http"
)

func main() {
	// 1. Загрузка конфига
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Подключение к БД
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	// 3. Миграции
	log.Println("Running migrations...")
	if err := db.AutoMigrate(
		&repository.UserGorm{},
		&domain.Profile{},
		&domain.Course{},
		&domain.Lesson{},
		&domain.LessonProgress{},
		&domain.CourseProgress{},
		&domain.UserAchievement{},
	); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	// 4. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("Connected to Redis at", cfg.RedisAddr)

	// 5. Инициализация слоев
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	courseRepo := repository.NewCourseRepository(db, rdb)
	progressRepo := repository.NewProgressRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)

	tokenCache := cache.NewTokenCache(rdb)
	notifications := cache.NewNotificationStore(rdb)
	hasher := security.NewPasswordHasher()
	tokenManager := security.NewTokenManager(cfg.AccessSecret, cfg.RefreshSecret)

	// 6. События авторизации и холдер сессий
	events := authstate.NewBroker()
	defer events.Close()

	sessions := authstate.NewHolder(profileRepo)
	sessions.Start(events)
	defer sessions.Stop()

	authUC := usecase.NewAuthUseCase(userRepo, profileRepo, tokenCache, hasher, tokenManager, events)
	achievementUC := usecase.NewAchievementUseCase(achievementRepo, profileRepo, notifications)
	progressUC := usecase.NewProgressUseCase(progressRepo, profileRepo, courseRepo, achievementUC, notifications)
	profileUC := usecase.NewProfileUseCase(profileRepo, progressRepo)

	// 7. HTTP
	rateLimiter := middleware.NewRateLimiter(rdb)

	router := handlers.NewRouter(
		handlers.NewAuthHandler(authUC),
		handlers.NewProfileHandler(profileUC, achievementUC, notifications, sessions),
		handlers.NewCourseHandler(courseRepo, progressRepo),
		handlers.NewProgressHandler(progressUC),
		rateLimiter,
		tokenManager,
		cfg.AllowedOrigins,
	)

	log.Printf("LearnHub API running on %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
