package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/waste3d/learnhub-api/internal/domain"
	"github.com/waste3d/learnhub-api/internal/infrastructure/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
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

// fakeNotifier собирает уведомления в память вместо Redis
type fakeNotifier struct {
	mu     sync.Mutex
	pushed []domain.Notification
}

func (f *fakeNotifier) Push(_ context.Context, _ uuid.UUID, n domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, n)
	return nil
}

func (f *fakeNotifier) byType(typ string) []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Notification
	for _, n := range f.pushed {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

type fixture struct {
	db       *gorm.DB
	profiles *repository.ProfileRepository
	progress *ProgressUseCase
	achieve  *AchievementUseCase
	notifier *fakeNotifier

	userID   uuid.UUID
	courseID uuid.UUID
	lessons  []domain.Lesson
}

// newFixture поднимает пользователя и курс из lessonCount уроков
func newFixture(t *testing.T, lessonCount int) *fixture {
	t.Helper()
	db := setupTestDB(t)
	ctx := context.Background()

	profileRepo := repository.NewProfileRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	courseRepo := repository.NewCourseRepository(db, nil)
	achievementRepo := repository.NewAchievementRepository(db)

	notifier := &fakeNotifier{}
	achieveUC := NewAchievementUseCase(achievementRepo, profileRepo, notifier)
	progressUC := NewProgressUseCase(progressRepo, profileRepo, courseRepo, achieveUC, notifier)

	userID := uuid.New()
	require.NoError(t, profileRepo.Create(ctx, &domain.Profile{
		ID:       userID,
		Email:    "student@test.local",
		Username: "student",
		Role:     domain.RoleStudent,
	}))

	course := &domain.Course{
		ID:       uuid.New(),
		Title:    "Go from scratch",
		Category: "programming",
	}
	for i := 0; i < lessonCount; i++ {
		course.Lessons = append(course.Lessons, domain.Lesson{
			ID:         uuid.New(),
			CourseID:   course.ID,
			Title:      "Lesson",
			OrderIndex: i,
		})
	}
	require.NoError(t, courseRepo.Create(ctx, course))

	return &fixture{
		db:       db,
		profiles: profileRepo,
		progress: progressUC,
		achieve:  achieveUC,
		notifier: notifier,
		userID:   userID,
		courseID: course.ID,
		lessons:  course.Lessons,
	}
}
