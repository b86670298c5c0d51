package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrant_AtMostOnce(t *testing.T) {
	repo := NewAchievementRepository(setupTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	created, err := repo.Grant(ctx, userID, "first_lesson")
	require.NoError(t, err)
	assert.True(t, created)

	// Повторная проверка условия ничего не вставляет
	created, err = repo.Grant(ctx, userID, "first_lesson")
	require.NoError(t, err)
	assert.False(t, created)

	earned, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, earned, 1)
}

func TestGrant_DifferentUsersIndependent(t *testing.T) {
	repo := NewAchievementRepository(setupTestDB(t))
	ctx := context.Background()

	created, err := repo.Grant(ctx, uuid.New(), "streak_3")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Grant(ctx, uuid.New(), "streak_3")
	require.NoError(t, err)
	assert.True(t, created)
}

func TestEarnedIDs(t *testing.T) {
	repo := NewAchievementRepository(setupTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	_, err := repo.Grant(ctx, userID, "first_lesson")
	require.NoError(t, err)
	_, err = repo.Grant(ctx, userID, "streak_3")
	require.NoError(t, err)

	ids, err := repo.EarnedIDs(ctx, userID)
	require.NoError(t, err)
	assert.True(t, ids["first_lesson"])
	assert.True(t, ids["streak_3"])
	assert.False(t, ids["lessons_100"])
}
