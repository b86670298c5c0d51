package repository

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/waste3d/learnhub-api/internal/domain"
)

// In-memory SQLite вместо Postgres, схема та же
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&UserGorm{},
		&domain.Profile{},
		&domain.Course{},
		&domain.Lesson{},
		&domain.LessonProgress{},
		&domain.CourseProgress{},
		&domain.UserAchievement{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}
