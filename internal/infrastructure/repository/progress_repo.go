package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/waste3d/learnhub-api/internal/domain"
)

var ErrProgressNotFound = errors.New("progress not found")

type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// RecordLesson — upsert строки прогресса по уроку.
// Первая запись создает строку со статусом in-progress и переданным процентом.
// Завершенный урок не трогаем, кроме time_spent. Процент вниз не откатываем
// (зашли со второго устройства со старым состоянием — игнорируем).
func (r *ProgressRepository) RecordLesson(ctx context.Context, userID, lessonID, courseID uuid.UUID, percent int32, timeDeltaSec int64, payload datatypes.JSON) (*domain.LessonProgress, error) {
	percent = domain.ClampPercent(percent)
	if timeDeltaSec < 0 {
		timeDeltaSec = 0
	}

	var existing domain.LessonProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		lp := &domain.LessonProgress{
			UserID:          userID,
			LessonID:        lessonID,
			CourseID:        courseID,
			Status:          domain.LessonStatusInProgress,
			ProgressPercent: percent,
			TimeSpentSec:    timeDeltaSec,
			Payload:         payload,
		}
		if err := r.db.WithContext(ctx).Create(lp).Error; err != nil {
			return nil, err
		}
		return lp, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"time_spent_sec": gorm.Expr("time_spent_sec + ?", timeDeltaSec),
	}

	if !existing.Completed() {
		if percent > existing.ProgressPercent {
			updates["progress_percent"] = percent
		}
		if payload != nil {
			updates["payload"] = payload
		}
	}

	err = r.db.WithContext(ctx).Model(&domain.LessonProgress{}).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Updates(updates).Error
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, userID, lessonID)
}

// CompleteLesson переводит урок в completed. Идемпотентно: повторный вызов
// ничего не меняет (completed_at остается прежним), created == false.
func (r *ProgressRepository) CompleteLesson(ctx context.Context, userID, lessonID, courseID uuid.UUID, payload datatypes.JSON) (bool, *domain.LessonProgress, error) {
	var existing domain.LessonProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		now := time.Now()
		lp := &domain.LessonProgress{
			UserID:          userID,
			LessonID:        lessonID,
			CourseID:        courseID,
			Status:          domain.LessonStatusCompleted,
			ProgressPercent: 100,
			Payload:         payload,
			CompletedAt:     &now,
		}
		if err := r.db.WithContext(ctx).Create(lp).Error; err != nil {
			return false, nil, err
		}
		return true, lp, nil
	}
	if err != nil {
		return false, nil, err
	}

	// Уже завершен — no-op
	if existing.Completed() {
		return false, &existing, nil
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":           domain.LessonStatusCompleted,
		"progress_percent": int32(100),
		"completed_at":     now,
	}
	if payload != nil {
		updates["payload"] = payload
	}

	err = r.db.WithContext(ctx).Model(&domain.LessonProgress{}).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Updates(updates).Error
	if err != nil {
		return false, nil, err
	}

	lp, err := r.Get(ctx, userID, lessonID)
	return true, lp, err
}

func (r *ProgressRepository) Get(ctx context.Context, userID, lessonID uuid.UUID) (*domain.LessonProgress, error) {
	var lp domain.LessonProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&lp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	return &lp, nil
}

// MapByCourse — прогресс пользователя по всем урокам курса, ключ = lesson_id.
func (r *ProgressRepository) MapByCourse(ctx context.Context, userID, courseID uuid.UUID) (map[uuid.UUID]*domain.LessonProgress, error) {
	var rows []domain.LessonProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[uuid.UUID]*domain.LessonProgress, len(rows))
	for i := range rows {
		result[rows[i].LessonID] = &rows[i]
	}
	return result, nil
}

func (r *ProgressRepository) CountCompleted(ctx context.Context, userID, courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.LessonProgress{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, domain.LessonStatusCompleted).
		Count(&count).Error
	return count, err
}

// EnsureCourseProgress создает агрегат при первом обращении к курсу
// (FirstOrCreate, чтобы не дублировать при двойном клике).
func (r *ProgressRepository) EnsureCourseProgress(ctx context.Context, userID, courseID, currentLessonID uuid.UUID) (*domain.CourseProgress, error) {
	cp := &domain.CourseProgress{UserID: userID, CourseID: courseID}
	err := r.db.WithContext(ctx).
		Where(domain.CourseProgress{UserID: userID, CourseID: courseID}).
		Attrs(domain.CourseProgress{
			Status:         domain.CourseStatusActive,
			LastAccessedAt: time.Now(),
		}).
		FirstOrCreate(cp).Error
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"last_accessed_at": time.Now()}
	if currentLessonID != uuid.Nil {
		updates["current_lesson_id"] = currentLessonID
	}
	if err := r.db.WithContext(ctx).Model(cp).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return cp, nil
}

func (r *ProgressRepository) GetCourseProgress(ctx context.Context, userID, courseID uuid.UUID) (*domain.CourseProgress, error) {
	var cp domain.CourseProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&cp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	return &cp, nil
}

// UpdateCourseAggregate пересчитывает агрегат курса после завершения урока.
// Возвращает статус до и после обновления.
// Защиты как в UpdateProgress: завершенный курс не откатываем в active,
// процент вниз не двигаем.
func (r *ProgressRepository) UpdateCourseAggregate(ctx context.Context, userID, courseID uuid.UUID, percent int32, lessonsCompleted int, currentLessonID uuid.UUID) (prevStatus, newStatus string, err error) {
	percent = domain.ClampPercent(percent)

	var existing domain.CourseProgress
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		status := domain.CourseStatusActive
		if percent >= 100 {
			status = domain.CourseStatusCompleted
		}
		cp := &domain.CourseProgress{
			UserID:           userID,
			CourseID:         courseID,
			Status:           status,
			ProgressPercent:  percent,
			LessonsCompleted: lessonsCompleted,
			CurrentLessonID:  currentLessonID,
			LastAccessedAt:   time.Now(),
		}
		if err := r.db.WithContext(ctx).Create(cp).Error; err != nil {
			return "", "", err
		}
		return "", status, nil
	}
	if err != nil {
		return "", "", err
	}

	prevStatus = existing.Status

	// Завершенный курс не сбрасываем, только поднимаем в списке
	if existing.Status == domain.CourseStatusCompleted {
		err = r.db.WithContext(ctx).Model(&existing).
			Update("last_accessed_at", time.Now()).Error
		return prevStatus, domain.CourseStatusCompleted, err
	}

	if percent < existing.ProgressPercent {
		err = r.db.WithContext(ctx).Model(&existing).
			Update("last_accessed_at", time.Now()).Error
		return prevStatus, existing.Status, err
	}

	newStatus = domain.CourseStatusActive
	if percent >= 100 {
		newStatus = domain.CourseStatusCompleted
		percent = 100
	}

	updates := map[string]interface{}{
		"progress_percent":  percent,
		"lessons_completed": lessonsCompleted,
		"status":            newStatus,
		"last_accessed_at":  time.Now(),
	}
	if currentLessonID != uuid.Nil {
		updates["current_lesson_id"] = currentLessonID
	}

	err = r.db.WithContext(ctx).Model(&domain.CourseProgress{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Updates(updates).Error
	return prevStatus, newStatus, err
}

// ListUserCourses — все курсы пользователя, сначала последние открытые.
func (r *ProgressRepository) ListUserCourses(ctx context.Context, userID uuid.UUID) ([]domain.CourseProgress, error) {
	var courses []domain.CourseProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_accessed_at desc").
		Find(&courses).Error
	return courses, err
}
