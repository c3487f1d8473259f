package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBadgeSatisfies(t *testing.T) {
	snapshot := &ProgressSnapshot{
		WasteCollected:       120,
		ReportsSubmitted:     8,
		RewardsRedeemed:      2,
		CO2Offset:            60,
		UserLevel:            3,
		PickupTasksCompleted: 4,
	}

	tests := []struct {
		name      string
		badge     Badge
		satisfied bool
		known     bool
	}{
		{"first collection", Badge{CriteriaType: CriteriaFirstWasteCollection}, true, true},
		{"waste threshold met", Badge{CriteriaType: CriteriaWasteCollection, CriteriaValue: 100}, true, true},
		{"waste threshold not met", Badge{CriteriaType: CriteriaWasteCollection, CriteriaValue: 200}, false, true},
		{"reports threshold exactly met", Badge{CriteriaType: CriteriaReportsSubmitted, CriteriaValue: 8}, true, true},
		{"redemptions threshold not met", Badge{CriteriaType: CriteriaRewardsRedeemed, CriteriaValue: 3}, false, true},
		{"co2 threshold", Badge{CriteriaType: CriteriaCO2Offset, CriteriaValue: 60}, true, true},
		{"level threshold not met", Badge{CriteriaType: CriteriaUserLevel, CriteriaValue: 4}, false, true},
		{"pickups threshold", Badge{CriteriaType: CriteriaPickupTasksCompleted, CriteriaValue: 4}, true, true},
		{"unknown criteria", Badge{CriteriaType: "moon_phase"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			satisfied, known := tt.badge.Satisfies(snapshot)
			assert.Equal(t, tt.satisfied, satisfied)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestFirstWasteCollectionIgnoresCriteriaValue(t *testing.T) {
	badge := Badge{CriteriaType: CriteriaFirstWasteCollection, CriteriaValue: 999}

	satisfied, known := badge.Satisfies(&ProgressSnapshot{WasteCollected: 0.1})
	assert.True(t, known)
	assert.True(t, satisfied)

	satisfied, _ = badge.Satisfies(&ProgressSnapshot{})
	assert.False(t, satisfied)
}
