package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/waste3d/learnhub-api/internal/domain"
)

func TestRecordLesson_CreatesWithSuppliedPercent(t *testing.T) {
	repo := NewProgressRepository(setupTestDB(t))
	ctx := context.Background()
	userID, lessonID, courseID := uuid.New(), uuid.New(), uuid.New()

	lp, err := repo.RecordLesson(ctx, userID, lessonID, courseID, 35, 60, datatypes.JSON(`{"position":120}`))
	require.NoError(t, err)

	// Первая запись: статус in-progress, процент тот, что передали, не 0
	assert.Equal(t, domain.LessonStatusInProgress, lp.Status)
	assert.Equal(t, int32(35), lp.ProgressPercent)
	assert.Equal(t, int64(60), lp.TimeSpentSec)
	assert.Nil(t, lp.CompletedAt)
}

func TestRecordLesson_PercentNeverRegresses(t *testing.T) {
	repo := NewProgressRepository(setupTestDB(t))
	ctx := context.Background()
	userID, lessonID, courseID := uuid.New(), uuid.New(), uuid.New()

	_, err := repo.RecordLesson(ctx, userID, lessonID, courseID, 60, 0, nil)
	require.NoError(t, err)

	// Зашли со второго устройства со старым состоянием
	lp, err := repo.RecordLesson(ctx, userID, lessonID, courseID, 40, 30, nil)
	require.NoError(t, err)

	assert.Equal(t, int32(60), lp.ProgressPercent)
	assert.Equal(t, int64(30), lp.TimeSpentSec, "время все равно копится")
}

func TestRecordLesson_TimeSpentAccumulates(t *testing.T) {
	repo := NewProgressRepository(setupTestDB(t))
	ctx := context.Background()
	userID, lessonID, courseID := uuid.New(), uuid.New(), uuid.New()

	_, err := repo.RecordLesson(ctx, userID, lessonID, courseID, 10, 100, nil)
	require.NoError(t, err)
	lp, err := repo.RecordLesson(ctx, userID, lessonID, courseID, 20, 50, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(150), lp.TimeSpentSec)

	// Отрицательная дельта игнорируется
	lp, err = repo.RecordLesson(ctx, userID, lessonID, courseID, 20, -500, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(150), lp.TimeSpentSec)
}

func TestRecordLesson_CompletedIsLockedExceptTime(t *testing.T) {
	repo := NewProgressRepository(setupTestDB(t))
	ctx := context.Background()
	userID, lessonID, courseID := uuid.New(), uuid.New(), uuid.New()

	_, _, err := repo.CompleteLesson(ctx, userID, lessonID, courseID, nil)
	require.NoError(t, err)

	lp, err := repo.RecordLesson(ctx, userID, lessonID, courseID, 10, 25, datatypes.JSON(`{"x":1}`))
	require.NoError(t, err)

	assert.Equal(t, domain.LessonStatusCompleted, lp.Status)
	assert.Equal(t, int32(100), lp.ProgressPercent, "завершенный урок не откатывается")
	assert.Equal(t, int64(25), lp.TimeSpentSec)
}

func TestCompleteLesson_Idempotent(t *testing.T) {
	repo := NewProgressRepository(setupTestDB(t))
	ctx := context.Background()
	userID, lessonID, courseID := uuid.New(), uuid.New(), uuid.New()

	created, first, err := repo.CompleteLesson(ctx, userID, lessonID, courseID, nil)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, first.CompletedAt)
	assert.Equal(t, int32(100), first.ProgressPercent)

	// Повторное завершение ничего не меняет
	created, second, err := repo.CompleteLesson(ctx, userID, lessonID, courseID, nil)
	require.NoError(t, err)
	assert.False(t, created)
	require.NotNil(t, second.CompletedAt)
	assert.Equal(t, first.CompletedAt.Unix(), second.CompletedAt.Unix())
}

func TestCompleteLesson_UpgradesInProgressRow(t *testing.T) {
	repo := NewProgressRepository(setupTestDB(t))
	ctx := context.Background()
	userID, lessonID, courseID := uuid.New(), uuid.New(), uuid.New()

	_, err := repo.RecordLesson(ctx, userID, lessonID, courseID, 70, 0, nil)
	require.NoError(t, err)

	created, lp, err := repo.CompleteLesson(ctx, userID, lessonID, courseID, nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.LessonStatusCompleted, lp.Status)
	assert.Equal(t, int32(100), lp.ProgressPercent)
	assert.NotNil(t, lp.CompletedAt)
}

func TestCountCompleted(t *testing.T) {
	repo := NewProgressRepository(setupTestDB(t))
	ctx := context.Background()
	userID, courseID := uuid.New(), uuid.New()

	_, _, err := repo.CompleteLesson(ctx, userID, uuid.New(), courseID, nil)
	require.NoError(t, err)
	_, _, err = repo.CompleteLesson(ctx, userID, uuid.New(), courseID, nil)
	require.NoError(t, err)
	_, err = repo.RecordLesson(ctx, userID, uuid.New(), courseID, 50, 0, nil)
	require.NoError(t, err)

	count, err := repo.CountCompleted(ctx, userID, courseID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestUpdateCourseAggregate_CompletedLock(t *testing.T) {
	repo := NewProgressRepository(setupTestDB(t))
	ctx := context.Background()
	userID, courseID := uuid.New(), uuid.New()

	prev, status, err := repo.UpdateCourseAggregate(ctx, userID, courseID, 100, 4, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "", prev)
	assert.Equal(t, domain.CourseStatusCompleted, status)

	// Завершенный курс не откатывается в active
	prev, status, err = repo.UpdateCourseAggregate(ctx, userID, courseID, 50, 2, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, domain.CourseStatusCompleted, prev)
	assert.Equal(t, domain.CourseStatusCompleted, status)

	cp, err := repo.GetCourseProgress(ctx, userID, courseID)
	require.NoError(t, err)
	assert.Equal(t, int32(100), cp.ProgressPercent)
}

func TestUpdateCourseAggregate_PercentNeverRegresses(t *testing.T) {
	repo := NewProgressRepository(setupTestDB(t))
	ctx := context.Background()
	userID, courseID := uuid.New(), uuid.New()

	_, _, err := repo.UpdateCourseAggregate(ctx, userID, courseID, 60, 3, uuid.Nil)
	require.NoError(t, err)

	_, status, err := repo.UpdateCourseAggregate(ctx, userID, courseID, 40, 2, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, domain.CourseStatusActive, status)

	cp, err := repo.GetCourseProgress(ctx, userID, courseID)
	require.NoError(t, err)
	assert.Equal(t, int32(60), cp.ProgressPercent)
	assert.Equal(t, 3, cp.LessonsCompleted)
}

func TestEnsureCourseProgress_NoDuplicates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()
	userID, courseID, lessonID := uuid.New(), uuid.New(), uuid.New()

	_, err := repo.EnsureCourseProgress(ctx, userID, courseID, lessonID)
	require.NoError(t, err)
	_, err = repo.EnsureCourseProgress(ctx, userID, courseID, lessonID)
	require.NoError(t, err)

	var count int64
	db.Model(&domain.CourseProgress{}).Where("user_id = ?", userID).Count(&count)
	assert.Equal(t, int64(1), count)

	cp, err := repo.GetCourseProgress(ctx, userID, courseID)
	require.NoError(t, err)
	assert.Equal(t, lessonID, cp.CurrentLessonID)
	assert.Equal(t, domain.CourseStatusActive, cp.Status)
}
