package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrLessonNotFound = errors.New("lesson not found")
)

type Course struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"index"`
	Description string
	Instructor  string
	Category    string `gorm:"index"`
	Difficulty  string `gorm:"default:'beginner'"`
	Rating      float32
	CoverURL    string

	// Связь один-ко-многим: у курса много уроков
	Lessons []Lesson `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE;"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Lesson struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CourseID    uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_lesson_order"`
	Title       string
	Type        string `gorm:"default:'video'"` // "video", "text", "quiz"
	DurationSec int
	OrderIndex  int  `gorm:"uniqueIndex:idx_lesson_order"` // позиция в курсе, уникальна внутри курса
	IsPreview   bool `gorm:"default:false"`

	CreatedAt time.Time
}
