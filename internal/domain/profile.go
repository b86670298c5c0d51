package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrProfileNotFound = errors.New("profile not found")

type Profile struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email    string    `gorm:"uniqueIndex"`
	Username string
	Role     string `gorm:"default:'student'"`
	AvatarID int    `gorm:"default:1"`

	Streak       int `gorm:"default:0"`
	LastStreakAt time.Time

	Points           int `gorm:"default:0"` // Баллы за уроки, курсы и ачивки
	LessonsCompleted int `gorm:"default:0"`
	CoursesCompleted int `gorm:"default:0"` // Статистика для лидерборда

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stats — агрегированные счетчики, по которым проверяются условия ачивок
type Stats struct {
	LessonsCompleted int
	CoursesCompleted int
	Streak           int
	Points           int
}

func (p *Profile) Stats() Stats {
	return Stats{
		LessonsCompleted: p.LessonsCompleted,
		CoursesCompleted: p.CoursesCompleted,
		Streak:           p.Streak,
		Points:           p.Points,
	}
}
