package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/waste3d/learnhub-api/internal/domain"
	"github.com/waste3d/learnhub-api/internal/infrastructure/repository"
)

type CourseHandler struct {
	courses  *repository.CourseRepository
	progress *repository.ProgressRepository
}

func NewCourseHandler(courses *repository.CourseRepository, progress *repository.ProgressRepository) *CourseHandler {
	return &CourseHandler{courses: courses, progress: progress}
}

// GET /api/v1/courses
func (h *CourseHandler) List(c *gin.Context) {
	search := c.Query("search")
	category := c.Query("category")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	courses, total, err := h.courses.List(c, search, category, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"courses": courses,
		"total":   total,
	})
}

// GET /api/v1/courses/:id
// Для авторизованного пользователя уроки приходят вместе с его прогрессом.
func (h *CourseHandler) GetOne(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	course, err := h.courses.GetWithLessons(c, courseID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	userID := currentUserID(c)

	progressMap := map[uuid.UUID]*domain.LessonProgress{}
	if userID != uuid.Nil {
		progressMap, err = h.progress.MapByCourse(c, userID, courseID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	type lessonView struct {
		Lesson   domain.Lesson          `json:"lesson"`
		Progress *domain.LessonProgress `json:"progress,omitempty"`
	}

	lessons := make([]lessonView, 0, len(course.Lessons))
	completed := 0
	for _, l := range course.Lessons {
		lp := progressMap[l.ID]
		if lp != nil && lp.Completed() {
			completed++
		}
		lessons = append(lessons, lessonView{Lesson: l, Progress: lp})
	}

	c.JSON(http.StatusOK, gin.H{
		"course":             course,
		"lessons":            lessons,
		"completion_percent": domain.CompletionPercent(completed, len(course.Lessons)),
	})
}

// POST /api/v1/courses — только instructor/admin
func (h *CourseHandler) Create(c *gin.Context) {
	if !isStaff(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied: instructors only"})
		return
	}

	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		Instructor  string `json:"instructor"`
		Category    string `json:"category"`
		Difficulty  string `json:"difficulty"`
		CoverURL    string `json:"cover_url"`
		Lessons     []struct {
			Title       string `json:"title" binding:"required"`
			Type        string `json:"type"`
			DurationSec int    `json:"duration_sec"`
			OrderIndex  int    `json:"order_index"`
			IsPreview   bool   `json:"is_preview"`
		} `json:"lessons"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course := &domain.Course{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Instructor:  req.Instructor,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		CoverURL:    req.CoverURL,
	}
	for _, l := range req.Lessons {
		course.Lessons = append(course.Lessons, domain.Lesson{
			ID:          uuid.New(),
			CourseID:    course.ID,
			Title:       l.Title,
			Type:        l.Type,
			DurationSec: l.DurationSec,
			OrderIndex:  l.OrderIndex,
			IsPreview:   l.IsPreview,
		})
	}

	if err := h.courses.Create(c, course); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"course_id": course.ID})
}

// DELETE /api/v1/courses/:id — только instructor/admin
func (h *CourseHandler) Delete(c *gin.Context) {
	if !isStaff(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	if err := h.courses.Delete(c, courseID); err != nil {
		if errors.Is(err, domain.ErrCourseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
