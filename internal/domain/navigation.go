package domain

import (
	"errors"
	"math"

	"github.com/google/uuid"
)

// ErrLessonNotInCourse — текущий урок не найден в списке уроков курса.
// Это ошибка вызывающей стороны, не «пустая» навигация.
var ErrLessonNotInCourse = errors.New("lesson does not belong to course")

// LessonWithProgress — урок с прогрессом текущего пользователя (nil = не начат).
type LessonWithProgress struct {
	Lesson   Lesson
	Progress *LessonProgress
}

// NavigationState — эфемерное состояние навигации по курсу.
// Считается на каждый запрос, нигде не хранится.
type NavigationState struct {
	CourseID        uuid.UUID
	CurrentLessonID uuid.UUID

	CurrentIndex int // с нуля; -1 если урок не из этого курса
	HasNext      bool
	HasPrevious  bool

	// HasNext == false на последнем уроке означает завершение курса,
	// фронт уводит на экран завершения, а не на следующий урок.
	CompletionPercent int32

	Lessons []LessonWithProgress
}

// CompletionPercent — round(100 * completed / total). Пустой курс = 0%.
func CompletionPercent(completed, total int) int32 {
	if total <= 0 {
		return 0
	}
	p := int32(math.Round(float64(completed) / float64(total) * 100))
	return ClampPercent(p)
}

// ResolveNavigation строит NavigationState по отсортированному списку уроков
// (order_index asc) и прогрессу пользователя по ним.
func ResolveNavigation(courseID uuid.UUID, lessons []Lesson, progress map[uuid.UUID]*LessonProgress, currentLessonID uuid.UUID) (*NavigationState, error) {
	state := &NavigationState{
		CourseID:        courseID,
		CurrentLessonID: currentLessonID,
		CurrentIndex:    -1,
		Lessons:         make([]LessonWithProgress, 0, len(lessons)),
	}

	completed := 0
	for i, l := range lessons {
		lp := progress[l.ID]
		if lp != nil && lp.Completed() {
			completed++
		}
		if l.ID == currentLessonID {
			state.CurrentIndex = i
		}
		state.Lessons = append(state.Lessons, LessonWithProgress{Lesson: l, Progress: lp})
	}

	state.CompletionPercent = CompletionPercent(completed, len(lessons))

	if state.CurrentIndex == -1 {
		return state, ErrLessonNotInCourse
	}

	state.HasPrevious = state.CurrentIndex > 0
	state.HasNext = state.CurrentIndex < len(lessons)-1
	return state, nil
}
