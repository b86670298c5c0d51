package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/waste3d/learnhub-api/internal/domain"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	return r.db.WithContext(ctx).Model(&domain.Profile{}).
		Where("id = ?", id).
		Update("username", username).Error
}

// Обновляем только AvatarID
func (r *ProfileRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarID int) error {
	return r.db.WithContext(ctx).Model(&domain.Profile{}).
		Where("id = ?", id).
		Update("avatar_id", avatarID).Error
}

// ChangePoints атомарно меняет баланс баллов и возвращает новое значение.
func (r *ProfileRepository) ChangePoints(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	err := r.db.WithContext(ctx).Model(&domain.Profile{}).
		Where("id = ?", id).
		Update("points", gorm.Expr("points + ?", delta)).Error
	if err != nil {
		return 0, err
	}

	var profile domain.Profile
	if err := r.db.WithContext(ctx).Select("points").Where("id = ?", id).First(&profile).Error; err != nil {
		return 0, err
	}
	return profile.Points, nil
}

func (r *ProfileRepository) IncrementLessonsCompleted(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.Profile{}).
		Where("id = ?", id).
		Update("lessons_completed", gorm.Expr("lessons_completed + 1")).Error
}

func (r *ProfileRepository) IncrementCoursesCompleted(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.Profile{}).
		Where("id = ?", id).
		Update("courses_completed", gorm.Expr("courses_completed + 1")).Error
}

// CheckAndIncrementStreak вызывается при завершении урока.
// Возвращает true, если это первая активность за сегодня (стрик сдвинулся).
func (r *ProfileRepository) CheckAndIncrementStreak(ctx context.Context, id uuid.UUID) (bool, error) {
	var profile domain.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return false, err
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	last := profile.LastStreakAt.UTC()
	lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)

	daysDiff := int(today.Sub(lastDay).Hours() / 24)

	// Сегодня уже засчитано
	if !profile.LastStreakAt.IsZero() && daysDiff == 0 {
		return false, nil
	}

	newStreak := 1
	if daysDiff == 1 {
		// Вчера была активность — серия продолжается
		newStreak = profile.Streak + 1
	}

	err := r.db.WithContext(ctx).Model(&domain.Profile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"streak":         newStreak,
			"last_streak_at": now,
		}).Error
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *ProfileRepository) GetLeaderboard(ctx context.Context, limit int) ([]domain.Profile, error) {
	var profiles []domain.Profile
	err := r.db.WithContext(ctx).
		Order("points desc").
		Order("courses_completed desc").
		Limit(limit).
		Find(&profiles).Error
	return profiles, err
}

// GetUserRank — позиция в лидерборде по баллам (1 = лучший).
func (r *ProfileRepository) GetUserRank(ctx context.Context, id uuid.UUID) (int, error) {
	profile, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}

	var ahead int64
	err = r.db.WithContext(ctx).Model(&domain.Profile{}).
		Where("points > ?", profile.Points).
		Count(&ahead).Error
	if err != nil {
		return 0, err
	}
	return int(ahead) + 1, nil
}
