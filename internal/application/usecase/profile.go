package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/waste3d/learnhub-api/internal/domain"
	"github.com/waste3d/learnhub-api/internal/infrastructure/repository"
)

// Аватарок сейчас 10 пресетов
const maxAvatarID = 10

var ErrInvalidAvatar = errors.New("avatar_id must be between 1 and 10")

type ProfileUseCase struct {
	profiles *repository.ProfileRepository
	progress *repository.ProgressRepository
}

func NewProfileUseCase(pr *repository.ProfileRepository, prog *repository.ProgressRepository) *ProfileUseCase {
	return &ProfileUseCase{profiles: pr, progress: prog}
}

// ProfileView — профиль в том виде, в котором его рисует дашборд.
type ProfileView struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	AvatarID int       `json:"avatar_id"`

	Streak              int  `json:"streak"`
	IsStreakActiveToday bool `json:"is_streak_active_today"`

	Points           int `json:"points"`
	LessonsCompleted int `json:"lessons_completed"`
	CoursesCompleted int `json:"courses_completed"`
	Rank             int `json:"rank"`

	ActiveCourses    []domain.CourseProgress `json:"active_courses"`
	CompletedCourses []domain.CourseProgress `json:"completed_courses"`
}

func (uc *ProfileUseCase) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileView, error) {
	p, err := uc.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	courses, err := uc.progress.ListUserCourses(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{
		ID:               p.ID,
		Email:            p.Email,
		Username:         p.Username,
		Role:             p.Role,
		AvatarID:         p.AvatarID,
		Points:           p.Points,
		LessonsCompleted: p.LessonsCompleted,
		CoursesCompleted: p.CoursesCompleted,
		ActiveCourses:    []domain.CourseProgress{},
		CompletedCourses: []domain.CourseProgress{},
	}

	for _, c := range courses {
		if c.Status == domain.CourseStatusCompleted {
			view.CompletedCourses = append(view.CompletedCourses, c)
		} else {
			view.ActiveCourses = append(view.ActiveCourses, c)
		}
	}

	view.Streak, view.IsStreakActiveToday = displayStreak(p.Streak, p.LastStreakAt)

	rank, err := uc.profiles.GetUserRank(ctx, userID)
	if err == nil {
		view.Rank = rank
	}

	return view, nil
}

// displayStreak: если последняя активность была сегодня — стрик горит;
// если пропущено больше одного дня — показываем 0, пока не пройден урок.
func displayStreak(streak int, lastStreakAt time.Time) (int, bool) {
	if lastStreakAt.IsZero() {
		return 0, false
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	last := lastStreakAt.UTC()
	lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)

	daysDiff := int(today.Sub(lastDay).Hours() / 24)

	switch {
	case daysDiff == 0:
		return streak, true
	case daysDiff == 1:
		return streak, false // вчера занимался, серия еще жива
	default:
		return 0, false
	}
}

func (uc *ProfileUseCase) UpdateUsername(ctx context.Context, userID uuid.UUID, username string) error {
	return uc.profiles.UpdateUsername(ctx, userID, username)
}

func (uc *ProfileUseCase) SetAvatar(ctx context.Context, userID uuid.UUID, avatarID int) error {
	if avatarID < 1 || avatarID > maxAvatarID {
		return ErrInvalidAvatar
	}
	return uc.profiles.UpdateAvatar(ctx, userID, avatarID)
}

type LeaderboardEntry struct {
	UserID           uuid.UUID `json:"user_id"`
	Username         string    `json:"username"`
	AvatarID         int       `json:"avatar_id"`
	Streak           int       `json:"streak"`
	Points           int       `json:"points"`
	CoursesCompleted int       `json:"courses_completed"`
}

func (uc *ProfileUseCase) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	profiles, err := uc.profiles.GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(profiles))
	for _, p := range profiles {
		entries = append(entries, LeaderboardEntry{
			UserID:           p.ID,
			Username:         p.Username,
			AvatarID:         p.AvatarID,
			Streak:           p.Streak,
			Points:           p.Points,
			CoursesCompleted: p.CoursesCompleted,
		})
	}
	return entries, nil
}
