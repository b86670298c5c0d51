package domain

import (
	"time"

	"github.com/google/uuid"
)

// Редкость ачивок
const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// AchievementDef — статическое определение ачивки. Каталог зашит в бинарь,
// per-user хранятся только факты выдачи (UserAchievement).
type AchievementDef struct {
	ID          string
	Title       string
	Description string
	Icon        string
	Points      int
	Rarity      string

	// Условие разблокировки по агрегированным счетчикам
	Unlocked func(s Stats) bool
}

// UserAchievement — append-only, пара (user, achievement) выдается максимум один раз.
type UserAchievement struct {
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	AchievementID string    `gorm:"primaryKey;size:64"`
	EarnedAt      time.Time
}

var achievementCatalog = []AchievementDef{
	{
		ID:          "first_lesson",
		Title:       "First Steps",
		Description: "Complete your first lesson",
		Icon:        "👣",
		Points:      10,
		Rarity:      RarityCommon,
		Unlocked:    func(s Stats) bool { return s.LessonsCompleted >= 1 },
	},
	{
		ID:          "lessons_5",
		Title:       "Getting Into It",
		Description: "Complete 5 lessons",
		Icon:        "📘",
		Points:      25,
		Rarity:      RarityCommon,
		Unlocked:    func(s Stats) bool { return s.LessonsCompleted >= 5 },
	},
	{
		ID:          "lessons_25",
		Title:       "Knowledge Seeker",
		Description: "Complete 25 lessons",
		Icon:        "🎓",
		Points:      75,
		Rarity:      RarityRare,
		Unlocked:    func(s Stats) bool { return s.LessonsCompleted >= 25 },
	},
	{
		ID:          "lessons_100",
		Title:       "Centurion",
		Description: "Complete 100 lessons",
		Icon:        "🏛",
		Points:      200,
		Rarity:      RarityEpic,
		Unlocked:    func(s Stats) bool { return s.LessonsCompleted >= 100 },
	},
	{
		ID:          "first_course",
		Title:       "Finisher",
		Description: "Complete your first course",
		Icon:        "🏁",
		Points:      50,
		Rarity:      RarityCommon,
		Unlocked:    func(s Stats) bool { return s.CoursesCompleted >= 1 },
	},
	{
		ID:          "courses_5",
		Title:       "Collector",
		Description: "Complete 5 courses",
		Icon:        "🏆",
		Points:      150,
		Rarity:      RarityEpic,
		Unlocked:    func(s Stats) bool { return s.CoursesCompleted >= 5 },
	},
	{
		ID:          "streak_3",
		Title:       "Warming Up",
		Description: "Learn 3 days in a row",
		Icon:        "🔥",
		Points:      20,
		Rarity:      RarityCommon,
		Unlocked:    func(s Stats) bool { return s.Streak >= 3 },
	},
	{
		ID:          "streak_7",
		Title:       "On Fire",
		Description: "Learn 7 days in a row",
		Icon:        "🔥",
		Points:      50,
		Rarity:      RarityRare,
		Unlocked:    func(s Stats) bool { return s.Streak >= 7 },
	},
	{
		ID:          "streak_30",
		Title:       "Unstoppable",
		Description: "Learn 30 days in a row",
		Icon:        "⚡",
		Points:      250,
		Rarity:      RarityLegendary,
		Unlocked:    func(s Stats) bool { return s.Streak >= 30 },
	},
	{
		ID:          "points_500",
		Title:       "Point Hunter",
		Description: "Earn 500 points",
		Icon:        "💎",
		Points:      100,
		Rarity:      RarityRare,
		Unlocked:    func(s Stats) bool { return s.Points >= 500 },
	},
}

// AchievementCatalog возвращает полный каталог определений.
func AchievementCatalog() []AchievementDef {
	return achievementCatalog
}

// FindAchievement ищет определение по id (nil, если нет в каталоге).
func FindAchievement(id string) *AchievementDef {
	for i := range achievementCatalog {
		if achievementCatalog[i].ID == id {
			return &achievementCatalog[i]
		}
	}
	return nil
}
