package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/waste3d/learnhub-api/internal/domain"
	"github.com/waste3d/learnhub-api/internal/infrastructure/repository"
)

// Notifier — куда складывать пользовательские уведомления (Redis в проде).
type Notifier interface {
	Push(ctx context.Context, userID uuid.UUID, n domain.Notification) error
}

type AchievementUseCase struct {
	achievements *repository.AchievementRepository
	profiles     *repository.ProfileRepository
	notifier     Notifier
}

func NewAchievementUseCase(
	ar *repository.AchievementRepository,
	pr *repository.ProfileRepository,
	n Notifier,
) *AchievementUseCase {
	return &AchievementUseCase{
		achievements: ar,
		profiles:     pr,
		notifier:     n,
	}
}

// Evaluate прогоняет каталог ачивок по текущим счетчикам пользователя.
// Все выполненные и еще не выданные — выдаются ровно один раз (Grant
// идемпотентен). Порядок обхода каталога не гарантируется наружу.
// Счетчики берутся снимком: ачивка за баллы, заработанные самими ачивками,
// доедет на следующем вызове.
func (uc *AchievementUseCase) Evaluate(ctx context.Context, userID uuid.UUID) ([]domain.AchievementDef, error) {
	profile, err := uc.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := profile.Stats()

	earned, err := uc.achievements.EarnedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	var unlocked []domain.AchievementDef
	for _, def := range domain.AchievementCatalog() {
		if earned[def.ID] || !def.Unlocked(stats) {
			continue
		}

		created, err := uc.achievements.Grant(ctx, userID, def.ID)
		if err != nil {
			return unlocked, err
		}
		if !created {
			continue // выдали в параллельном запросе — не дублируем
		}

		unlocked = append(unlocked, def)

		if def.Points > 0 {
			if _, err := uc.profiles.ChangePoints(ctx, userID, def.Points); err != nil {
				log.Printf("achievements: failed to credit %d points for %s: %v", def.Points, def.ID, err)
			}
		}

		uc.notify(ctx, userID, def)
	}

	return unlocked, nil
}

func (uc *AchievementUseCase) notify(ctx context.Context, userID uuid.UUID, def domain.AchievementDef) {
	if uc.notifier == nil {
		return
	}
	n := domain.Notification{
		ID:        uuid.New().String(),
		Type:      domain.NotificationAchievement,
		Title:     fmt.Sprintf("Achievement unlocked: %s", def.Title),
		Message:   def.Description,
		Icon:      def.Icon,
		CreatedAt: time.Now(),
	}
	if err := uc.notifier.Push(ctx, userID, n); err != nil {
		// Уведомление не критично, ачивка уже записана
		log.Printf("achievements: failed to push notification for %s: %v", def.ID, err)
	}
}

// ListEarned возвращает выданные ачивки пользователя вместе с определениями.
type EarnedAchievement struct {
	Def      domain.AchievementDef
	EarnedAt time.Time
}

func (uc *AchievementUseCase) ListEarned(ctx context.Context, userID uuid.UUID) ([]EarnedAchievement, error) {
	rows, err := uc.achievements.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]EarnedAchievement, 0, len(rows))
	for _, ua := range rows {
		def := domain.FindAchievement(ua.AchievementID)
		if def == nil {
			continue // ачивку выпилили из каталога
		}
		result = append(result, EarnedAchievement{Def: *def, EarnedAt: ua.EarnedAt})
	}
	return result, nil
}
