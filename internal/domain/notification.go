package domain

import "time"

// Типы уведомлений
const (
	NotificationAchievement     = "achievement"
	NotificationCourseCompleted = "course_completed"
)

// Notification — пользовательское уведомление (тост на фронте).
// Живет в очереди Redis, в Postgres не хранится.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Icon      string    `json:"icon,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
