package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateReportTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"pending to assigned", ReportStatusPending, ReportStatusAssigned, true},
		{"pending to cancelled", ReportStatusPending, ReportStatusCancelled, true},
		{"pending straight to completed", ReportStatusPending, ReportStatusCompleted, false},
		{"assigned to in_progress", ReportStatusAssigned, ReportStatusInProgress, true},
		{"assigned to completed", ReportStatusAssigned, ReportStatusCompleted, true},
		{"assigned to cancelled", ReportStatusAssigned, ReportStatusCancelled, true},
		{"assigned back to pending", ReportStatusAssigned, ReportStatusPending, false},
		{"in_progress to completed", ReportStatusInProgress, ReportStatusCompleted, true},
		{"in_progress to cancelled", ReportStatusInProgress, ReportStatusCancelled, true},
		{"completed is terminal", ReportStatusCompleted, ReportStatusPending, false},
		{"completed cannot be cancelled", ReportStatusCompleted, ReportStatusCancelled, false},
		{"cancelled is terminal", ReportStatusCancelled, ReportStatusAssigned, false},
		{"unknown from state", "archived", ReportStatusPending, false},
		{"unknown to state", ReportStatusPending, "archived", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, ValidateReportTransition(tt.from, tt.to))
		})
	}
}

func TestTransactionAddsToBalance(t *testing.T) {
	assert.True(t, TransactionAddsToBalance(TransactionEarnedReport))
	assert.True(t, TransactionAddsToBalance(TransactionEarnedCollect))
	assert.False(t, TransactionAddsToBalance(TransactionRedeemed))
	assert.False(t, TransactionAddsToBalance("bonus"))
}

func TestValidateBadgeCriteriaType(t *testing.T) {
	for _, known := range []string{
		CriteriaFirstWasteCollection, CriteriaWasteCollection,
		CriteriaReportsSubmitted, CriteriaRewardsRedeemed,
		CriteriaCO2Offset, CriteriaUserLevel, CriteriaPickupTasksCompleted,
	} {
		assert.True(t, ValidateBadgeCriteriaType(known), known)
	}
	assert.False(t, ValidateBadgeCriteriaType("moon_phase"))
	assert.False(t, ValidateBadgeCriteriaType(""))
}

func TestSessionIsExpired(t *testing.T) {
	assert.True(t, (&Session{}).IsExpired(), "zero expiry is in the past")
}
