package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Статусы прохождения. "not-started" в БД не хранится — это отсутствие строки.
const (
	LessonStatusInProgress = "in-progress"
	LessonStatusCompleted  = "completed"

	CourseStatusActive    = "active"
	CourseStatusCompleted = "completed"
)

// LessonProgress — одна строка на пару (user, lesson).
// После status=completed строка больше не меняется, кроме time_spent.
type LessonProgress struct {
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	LessonID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CourseID uuid.UUID `gorm:"type:uuid;index"`

	Status          string `gorm:"default:'in-progress'"`
	ProgressPercent int32
	TimeSpentSec    int64          // только растет
	Payload         datatypes.JSON // состояние конкретного урока (позиция видео, ответы квиза)

	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (lp *LessonProgress) Completed() bool {
	return lp.Status == LessonStatusCompleted
}

// CourseProgress — агрегат по урокам курса.
type CourseProgress struct {
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	CourseID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Status           string `gorm:"default:'active'"`
	ProgressPercent  int32
	LessonsCompleted int
	CurrentLessonID  uuid.UUID `gorm:"type:uuid"`
	LastAccessedAt   time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClampPercent приводит процент к диапазону [0, 100].
func ClampPercent(p int32) int32 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
