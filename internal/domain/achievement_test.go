package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAchievementCatalog_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range AchievementCatalog() {
		assert.False(t, seen[def.ID], "duplicate achievement id %s", def.ID)
		seen[def.ID] = true

		assert.NotEmpty(t, def.Title)
		assert.NotNil(t, def.Unlocked, "achievement %s has no predicate", def.ID)
	}
}

func TestAchievementPredicates(t *testing.T) {
	tests := []struct {
		id    string
		stats Stats
		want  bool
	}{
		{"first_lesson", Stats{LessonsCompleted: 0}, false},
		{"first_lesson", Stats{LessonsCompleted: 1}, true},
		{"lessons_5", Stats{LessonsCompleted: 4}, false},
		{"lessons_5", Stats{LessonsCompleted: 5}, true},
		{"first_course", Stats{CoursesCompleted: 1}, true},
		{"streak_7", Stats{Streak: 6}, false},
		{"streak_7", Stats{Streak: 7}, true},
		{"streak_7", Stats{Streak: 30}, true},
		{"points_500", Stats{Points: 499}, false},
		{"points_500", Stats{Points: 500}, true},
	}

	for _, tt := range tests {
		def := FindAchievement(tt.id)
		require.NotNil(t, def, "achievement %s not in catalog", tt.id)
		assert.Equal(t, tt.want, def.Unlocked(tt.stats), "%s with %+v", tt.id, tt.stats)
	}
}

func TestFindAchievement_Unknown(t *testing.T) {
	assert.Nil(t, FindAchievement("no_such_achievement"))
}
