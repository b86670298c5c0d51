package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/waste3d/learnhub-api/internal/application/usecase"
	"github.com/waste3d/learnhub-api/internal/domain"
)

type ProgressHandler struct {
	progress *usecase.ProgressUseCase
}

func NewProgressHandler(progress *usecase.ProgressUseCase) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

func parseIDs(c *gin.Context) (courseID, lessonID uuid.UUID, ok bool) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return uuid.Nil, uuid.Nil, false
	}
	lessonID, err = uuid.Parse(c.Param("lessonId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return uuid.Nil, uuid.Nil, false
	}
	return courseID, lessonID, true
}

// POST /api/v1/courses/:id/lessons/:lessonId/progress
// Для анонима (превью) — no-op с recorded=false, а не ошибка.
func (h *ProgressHandler) Record(c *gin.Context) {
	courseID, lessonID, ok := parseIDs(c)
	if !ok {
		return
	}

	var req struct {
		Percent      int32           `json:"percent"`
		TimeDeltaSec int64           `json:"time_delta_sec"`
		Payload      json.RawMessage `json:"payload"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lp, err := h.progress.RecordProgress(c, currentUserID(c), courseID, lessonID, req.Percent, req.TimeDeltaSec, datatypes.JSON(req.Payload))
	if err != nil {
		h.writeProgressError(c, err)
		return
	}
	if lp == nil {
		c.JSON(http.StatusOK, gin.H{"recorded": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recorded": true, "progress": lp})
}

// POST /api/v1/courses/:id/lessons/:lessonId/complete
func (h *ProgressHandler) Complete(c *gin.Context) {
	courseID, lessonID, ok := parseIDs(c)
	if !ok {
		return
	}

	var req struct {
		Payload json.RawMessage `json:"payload"`
	}
	// Тело опционально
	_ = c.ShouldBindJSON(&req)

	result, err := h.progress.CompleteLesson(c, currentUserID(c), courseID, lessonID, datatypes.JSON(req.Payload))
	if err != nil {
		h.writeProgressError(c, err)
		return
	}
	if result == nil {
		c.JSON(http.StatusOK, gin.H{"recorded": false})
		return
	}

	unlocked := make([]gin.H, 0, len(result.Unlocked))
	for _, def := range result.Unlocked {
		unlocked = append(unlocked, gin.H{
			"id":     def.ID,
			"title":  def.Title,
			"icon":   def.Icon,
			"points": def.Points,
			"rarity": def.Rarity,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"recorded":         true,
		"lesson":           result.Lesson,
		"course_percent":   result.CoursePercent,
		"course_status":    result.CourseStatus,
		"course_completed": result.CourseCompleted,
		"unlocked":         unlocked,
	})
}

// GET /api/v1/courses/:id/navigation?lesson_id=...
func (h *ProgressHandler) Navigation(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}
	lessonID, err := uuid.Parse(c.Query("lesson_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lesson_id is required"})
		return
	}

	state, err := h.progress.Navigation(c, currentUserID(c), courseID, lessonID)
	if err != nil {
		h.writeProgressError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"course_id":          state.CourseID,
		"current_lesson_id":  state.CurrentLessonID,
		"current_index":      state.CurrentIndex,
		"has_next":           state.HasNext,
		"has_previous":       state.HasPrevious,
		"completion_percent": state.CompletionPercent,
		"lessons":            state.Lessons,
		// has_next == false на последнем уроке: фронт показывает экран
		// завершения курса вместо перехода дальше
	})
}

func (h *ProgressHandler) writeProgressError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
	case errors.Is(err, domain.ErrLessonNotInCourse):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Lesson does not belong to this course"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
