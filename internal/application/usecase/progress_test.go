package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waste3d/learnhub-api/internal/domain"
)

func TestRecordProgress_AnonymousIsNoop(t *testing.T) {
	f := newFixture(t, 2)

	lp, err := f.progress.RecordProgress(context.Background(), uuid.Nil, f.courseID, f.lessons[0].ID, 50, 0, nil)
	require.NoError(t, err)
	assert.Nil(t, lp, "аноним ничего не пишет и не получает ошибку")
}

func TestRecordProgress_CreatesInProgressRow(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	lp, err := f.progress.RecordProgress(ctx, f.userID, f.courseID, f.lessons[0].ID, 42, 30, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.LessonStatusInProgress, lp.Status)
	assert.Equal(t, int32(42), lp.ProgressPercent)
}

func TestRecordProgress_UnknownLessonRejected(t *testing.T) {
	f := newFixture(t, 2)

	_, err := f.progress.RecordProgress(context.Background(), f.userID, f.courseID, uuid.New(), 10, 0, nil)
	assert.ErrorIs(t, err, domain.ErrLessonNotInCourse)
}

func TestCompleteLesson_FullBookkeeping(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	result, err := f.progress.CompleteLesson(ctx, f.userID, f.courseID, f.lessons[0].ID, nil)
	require.NoError(t, err)

	assert.Equal(t, int32(50), result.CoursePercent)
	assert.Equal(t, domain.CourseStatusActive, result.CourseStatus)
	assert.False(t, result.CourseCompleted)

	// Первый урок: ачивка first_lesson
	require.Len(t, result.Unlocked, 1)
	assert.Equal(t, "first_lesson", result.Unlocked[0].ID)

	p, err := f.profiles.GetByID(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.LessonsCompleted)
	assert.Equal(t, 1, p.Streak)
	// +10 дневной бонус, +10 за first_lesson
	assert.Equal(t, 20, p.Points)
}

func TestCompleteLesson_SecondCallIsIdempotent(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	first, err := f.progress.CompleteLesson(ctx, f.userID, f.courseID, f.lessons[0].ID, nil)
	require.NoError(t, err)
	require.NotNil(t, first.Lesson.CompletedAt)

	second, err := f.progress.CompleteLesson(ctx, f.userID, f.courseID, f.lessons[0].ID, nil)
	require.NoError(t, err)

	// Статус и completed_at не меняются, наград нет
	assert.Equal(t, domain.LessonStatusCompleted, second.Lesson.Status)
	assert.Equal(t, first.Lesson.CompletedAt.Unix(), second.Lesson.CompletedAt.Unix())
	assert.Empty(t, second.Unlocked)
	assert.Equal(t, first.CoursePercent, second.CoursePercent)

	p, err := f.profiles.GetByID(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.LessonsCompleted, "повторное завершение не увеличивает счетчик")
	assert.Equal(t, 20, p.Points)
}

func TestCompleteLesson_CourseCompletionRewardedOnce(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	_, err := f.progress.CompleteLesson(ctx, f.userID, f.courseID, f.lessons[0].ID, nil)
	require.NoError(t, err)

	result, err := f.progress.CompleteLesson(ctx, f.userID, f.courseID, f.lessons[1].ID, nil)
	require.NoError(t, err)

	assert.Equal(t, int32(100), result.CoursePercent)
	assert.Equal(t, domain.CourseStatusCompleted, result.CourseStatus)
	assert.True(t, result.CourseCompleted)

	unlockedIDs := make([]string, 0, len(result.Unlocked))
	for _, def := range result.Unlocked {
		unlockedIDs = append(unlockedIDs, def.ID)
	}
	assert.Contains(t, unlockedIDs, "first_course")

	p, err := f.profiles.GetByID(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.LessonsCompleted)
	assert.Equal(t, 1, p.CoursesCompleted)
	// 10 (бонус дня) + 10 (first_lesson) + 50 (курс) + 50 (first_course)
	assert.Equal(t, 120, p.Points)

	// Уведомление о завершении курса ровно одно
	assert.Len(t, f.notifier.byType(domain.NotificationCourseCompleted), 1)

	// Повторное завершение последнего урока ничего не добавляет
	again, err := f.progress.CompleteLesson(ctx, f.userID, f.courseID, f.lessons[1].ID, nil)
	require.NoError(t, err)
	assert.False(t, again.CourseCompleted)

	p, err = f.profiles.GetByID(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CoursesCompleted)
	assert.Equal(t, 120, p.Points)
	assert.Len(t, f.notifier.byType(domain.NotificationCourseCompleted), 1)
}

func TestCompleteLesson_AnonymousIsNoop(t *testing.T) {
	f := newFixture(t, 2)

	result, err := f.progress.CompleteLesson(context.Background(), uuid.Nil, f.courseID, f.lessons[0].ID, nil)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestNavigation_AfterCompletions(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()

	_, err := f.progress.CompleteLesson(ctx, f.userID, f.courseID, f.lessons[0].ID, nil)
	require.NoError(t, err)
	_, err = f.progress.CompleteLesson(ctx, f.userID, f.courseID, f.lessons[1].ID, nil)
	require.NoError(t, err)

	state, err := f.progress.Navigation(ctx, f.userID, f.courseID, f.lessons[2].ID)
	require.NoError(t, err)

	assert.Equal(t, 2, state.CurrentIndex)
	assert.True(t, state.HasPrevious)
	assert.True(t, state.HasNext)
	assert.Equal(t, int32(50), state.CompletionPercent)
}

func TestNavigation_LastLessonHasNoNext(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	for _, l := range f.lessons {
		_, err := f.progress.CompleteLesson(ctx, f.userID, f.courseID, l.ID, nil)
		require.NoError(t, err)
	}

	state, err := f.progress.Navigation(ctx, f.userID, f.courseID, f.lessons[2].ID)
	require.NoError(t, err)

	assert.False(t, state.HasNext, "дальше некуда — фронт показывает экран завершения")
	assert.Equal(t, int32(100), state.CompletionPercent)
}

func TestNavigation_AnonymousSeesEmptyProgress(t *testing.T) {
	f := newFixture(t, 3)

	state, err := f.progress.Navigation(context.Background(), uuid.Nil, f.courseID, f.lessons[0].ID)
	require.NoError(t, err)

	assert.Equal(t, int32(0), state.CompletionPercent)
	assert.True(t, state.HasNext)
	assert.False(t, state.HasPrevious)
}

func TestNavigation_UnknownCourse(t *testing.T) {
	f := newFixture(t, 1)

	_, err := f.progress.Navigation(context.Background(), f.userID, uuid.New(), f.lessons[0].ID)
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
}
