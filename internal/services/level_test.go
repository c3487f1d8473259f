package services

import (
	"greenquest/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name     string
		snapshot models.ProgressSnapshot
		want     int
	}{
		{
			name:     "new user qualifies for level 1",
			snapshot: models.ProgressSnapshot{},
			want:     1,
		},
		{
			name: "just below every level 2 threshold",
			snapshot: models.ProgressSnapshot{
				WasteCollected:   49.9,
				ReportsSubmitted: 9,
				PointsEarned:     249,
			},
			want: 1,
		},
		{
			name:     "level 2 by waste alone",
			snapshot: models.ProgressSnapshot{WasteCollected: 50},
			want:     2,
		},
		{
			name:     "level 2 by reports alone",
			snapshot: models.ProgressSnapshot{ReportsSubmitted: 10},
			want:     2,
		},
		{
			name:     "level 2 by points alone",
			snapshot: models.ProgressSnapshot{PointsEarned: 250},
			want:     2,
		},
		{
			name:     "level 3 by waste",
			snapshot: models.ProgressSnapshot{WasteCollected: 200},
			want:     3,
		},
		{
			name:     "level 3 by points exactly at threshold",
			snapshot: models.ProgressSnapshot{PointsEarned: 1000},
			want:     3,
		},
		{
			name:     "level 4 by reports",
			snapshot: models.ProgressSnapshot{ReportsSubmitted: 50},
			want:     4,
		},
		{
			name:     "level 5 by waste",
			snapshot: models.ProgressSnapshot{WasteCollected: 1000},
			want:     5,
		},
		{
			name:     "level 5 by points far over threshold",
			snapshot: models.ProgressSnapshot{PointsEarned: 123456},
			want:     5,
		},
		{
			name: "highest satisfied rung wins over lower ones",
			snapshot: models.ProgressSnapshot{
				WasteCollected:   60,
				ReportsSubmitted: 11,
				PointsEarned:     5000,
			},
			want: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LevelFor(&tt.snapshot))
		})
	}
}

func TestLevelForIgnoresStoredLevel(t *testing.T) {
	// The stored level is an input to the never-regress rule in the
	// progress service, not to the ladder itself.
	snapshot := &models.ProgressSnapshot{UserLevel: 5}
	assert.Equal(t, 1, LevelFor(snapshot))
}
