package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/waste3d/learnhub-api/internal/domain"
)

type AchievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// Grant выдает ачивку, если ее еще нет. FirstOrCreate гарантирует
// at-most-once: повторная проверка условия ничего не вставит.
// created == true только при первой выдаче.
func (r *AchievementRepository) Grant(ctx context.Context, userID uuid.UUID, achievementID string) (bool, error) {
	ua := &domain.UserAchievement{UserID: userID, AchievementID: achievementID}
	result := r.db.WithContext(ctx).
		Where(domain.UserAchievement{UserID: userID, AchievementID: achievementID}).
		Attrs(domain.UserAchievement{EarnedAt: time.Now()}).
		FirstOrCreate(ua)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *AchievementRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.UserAchievement, error) {
	var earned []domain.UserAchievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at desc").
		Find(&earned).Error
	return earned, err
}

// EarnedIDs — множество уже выданных ачивок для быстрой проверки в цикле.
func (r *AchievementRepository) EarnedIDs(ctx context.Context, userID uuid.UUID) (map[string]bool, error) {
	earned, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]bool, len(earned))
	for _, ua := range earned {
		ids[ua.AchievementID] = true
	}
	return ids, nil
}
