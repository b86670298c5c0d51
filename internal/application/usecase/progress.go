package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/waste3d/learnhub-api/internal/domain"
	"github.com/waste3d/learnhub-api/internal/infrastructure/repository"
)

// Награды
const (
	dailyBonusPoints       = 10 // первый урок за день
	courseCompletionPoints = 50 // первое завершение курса
)

type ProgressUseCase struct {
	progress     *repository.ProgressRepository
	profiles     *repository.ProfileRepository
	courses      *repository.CourseRepository
	achievements *AchievementUseCase
	notifier     Notifier
}

func NewProgressUseCase(
	pr *repository.ProgressRepository,
	profiles *repository.ProfileRepository,
	courses *repository.CourseRepository,
	achievements *AchievementUseCase,
	notifier Notifier,
) *ProgressUseCase {
	return &ProgressUseCase{
		progress:     pr,
		profiles:     profiles,
		courses:      courses,
		achievements: achievements,
		notifier:     notifier,
	}
}

// CompletionResult — что произошло при завершении урока.
type CompletionResult struct {
	Lesson          *domain.LessonProgress
	CoursePercent   int32
	CourseStatus    string
	CourseCompleted bool // курс закрыт именно этим вызовом
	Unlocked        []domain.AchievementDef
}

// findLesson проверяет, что урок принадлежит курсу.
func findLesson(course *domain.Course, lessonID uuid.UUID) (*domain.Lesson, error) {
	for i := range course.Lessons {
		if course.Lessons[i].ID == lessonID {
			return &course.Lessons[i], nil
		}
	}
	return nil, domain.ErrLessonNotInCourse
}

// RecordProgress — upsert прогресса по уроку.
// Анонимный просмотр (превью без аккаунта) — осознанный no-op, не ошибка.
func (uc *ProgressUseCase) RecordProgress(ctx context.Context, userID, courseID, lessonID uuid.UUID, percent int32, timeDeltaSec int64, payload datatypes.JSON) (*domain.LessonProgress, error) {
	if userID == uuid.Nil {
		return nil, nil
	}

	course, err := uc.courses.GetWithLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if _, err := findLesson(course, lessonID); err != nil {
		return nil, err
	}

	if _, err := uc.progress.EnsureCourseProgress(ctx, userID, courseID, lessonID); err != nil {
		return nil, err
	}

	return uc.progress.RecordLesson(ctx, userID, lessonID, courseID, percent, timeDeltaSec, payload)
}

// CompleteLesson закрывает урок и ведет всю сопутствующую бухгалтерию:
// агрегат курса, стрик, баллы, ачивки, уведомления.
// Порядок принципиален: сначала подтвержденная запись урока в БД, потом
// агрегаты и ачивки — чтобы не выдать награду за несохраненный прогресс.
func (uc *ProgressUseCase) CompleteLesson(ctx context.Context, userID, courseID, lessonID uuid.UUID, payload datatypes.JSON) (*CompletionResult, error) {
	if userID == uuid.Nil {
		return nil, nil
	}

	course, err := uc.courses.GetWithLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if _, err := findLesson(course, lessonID); err != nil {
		return nil, err
	}

	// 1. Фиксируем урок. created == true только при первом завершении —
	// повторные вызовы идемпотентны и наград не дают.
	created, lp, err := uc.progress.CompleteLesson(ctx, userID, lessonID, courseID, payload)
	if err != nil {
		return nil, err
	}

	// 2. Стрик и ежедневный бонус — только за новые уроки (защита от фарма)
	if created {
		if err := uc.profiles.IncrementLessonsCompleted(ctx, userID); err != nil {
			log.Printf("progress: failed to increment lessons_completed for %s: %v", userID, err)
		}

		streakUpdated, err := uc.profiles.CheckAndIncrementStreak(ctx, userID)
		if err != nil {
			log.Printf("progress: failed to update streak for %s: %v", userID, err)
		}
		if streakUpdated {
			if _, err := uc.profiles.ChangePoints(ctx, userID, dailyBonusPoints); err != nil {
				log.Printf("progress: failed to add daily bonus for %s: %v", userID, err)
			}
		}
	}

	// 3. Пересчитываем агрегат курса
	completedCount, err := uc.progress.CountCompleted(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	percent := domain.CompletionPercent(int(completedCount), len(course.Lessons))

	prevStatus, newStatus, err := uc.progress.UpdateCourseAggregate(ctx, userID, courseID, percent, int(completedCount), lessonID)
	if err != nil {
		return nil, err
	}

	result := &CompletionResult{
		Lesson:        lp,
		CoursePercent: percent,
		CourseStatus:  newStatus,
	}

	// 4. Первое завершение курса — большая награда
	if newStatus == domain.CourseStatusCompleted && prevStatus != domain.CourseStatusCompleted {
		result.CourseCompleted = true

		if _, err := uc.profiles.ChangePoints(ctx, userID, courseCompletionPoints); err != nil {
			log.Printf("progress: failed to add course bonus for %s: %v", userID, err)
		}
		if err := uc.profiles.IncrementCoursesCompleted(ctx, userID); err != nil {
			log.Printf("progress: failed to increment courses_completed for %s: %v", userID, err)
		}

		uc.notifyCourseCompleted(ctx, userID, course)
	}

	// 5. Ачивки — после того, как все счетчики записаны
	if created || result.CourseCompleted {
		unlocked, err := uc.achievements.Evaluate(ctx, userID)
		if err != nil {
			log.Printf("progress: achievement evaluation failed for %s: %v", userID, err)
		}
		result.Unlocked = unlocked
	}

	return result, nil
}

// Navigation строит состояние навигации по курсу для текущего урока.
// Для анонима прогресс пустой, но навигация работает (превью).
func (uc *ProgressUseCase) Navigation(ctx context.Context, userID, courseID, lessonID uuid.UUID) (*domain.NavigationState, error) {
	course, err := uc.courses.GetWithLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}

	progressMap := map[uuid.UUID]*domain.LessonProgress{}
	if userID != uuid.Nil {
		progressMap, err = uc.progress.MapByCourse(ctx, userID, courseID)
		if err != nil {
			return nil, err
		}
	}

	return domain.ResolveNavigation(courseID, course.Lessons, progressMap, lessonID)
}

func (uc *ProgressUseCase) notifyCourseCompleted(ctx context.Context, userID uuid.UUID, course *domain.Course) {
	if uc.notifier == nil {
		return
	}
	n := domain.Notification{
		ID:        uuid.New().String(),
		Type:      domain.NotificationCourseCompleted,
		Title:     "Course completed!",
		Message:   fmt.Sprintf("You finished %q. Great job!", course.Title),
		Icon:      "🎉",
		CreatedAt: time.Now(),
	}
	if err := uc.notifier.Push(ctx, userID, n); err != nil {
		log.Printf("progress: failed to push course notification: %v", err)
	}
}
