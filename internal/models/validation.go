package models

// ===============================
// ENUMS
// ===============================

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	RoleAgent = "agent"
)

// Report lifecycle states
const (
	ReportStatusPending    = "pending"
	ReportStatusAssigned   = "assigned"
	ReportStatusInProgress = "in_progress"
	ReportStatusCompleted  = "completed"
	ReportStatusCancelled  = "cancelled"
)

// Ledger transaction types
const (
	TransactionEarnedReport  = "earned_report"
	TransactionEarnedCollect = "earned_collect"
	TransactionRedeemed      = "redeemed"
)

// Notification types
const (
	NotificationReward    = "reward"
	NotificationLevelUp   = "level_up"
	NotificationBadge     = "badge"
	NotificationPickup    = "pickup"
	NotificationReport    = "report"
	NotificationSystem    = "system"
)

// reportTransitions is the single canonical transition table for report
// statuses. The terminal states have no outgoing edges.
var reportTransitions = map[string][]string{
	ReportStatusPending:    {ReportStatusAssigned, ReportStatusCancelled},
	ReportStatusAssigned:   {ReportStatusInProgress, ReportStatusCompleted, ReportStatusCancelled},
	ReportStatusInProgress: {ReportStatusCompleted, ReportStatusCancelled},
	ReportStatusCompleted:  {},
	ReportStatusCancelled:  {},
}

// ===============================
// VALIDATION HELPERS
// ===============================

// ValidateReportStatus validates the report status enum
func ValidateReportStatus(status string) bool {
	_, ok := reportTransitions[status]
	return ok
}

// ValidateReportTransition checks whether a status change is allowed by
// the report lifecycle.
func ValidateReportTransition(from, to string) bool {
	allowed, ok := reportTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ValidateUserRole validates the user role enum
func ValidateUserRole(role string) bool {
	switch role {
	case RoleUser, RoleAdmin, RoleAgent:
		return true
	}
	return false
}

// ValidateTransactionType validates the ledger transaction type enum
func ValidateTransactionType(txType string) bool {
	switch txType {
	case TransactionEarnedReport, TransactionEarnedCollect, TransactionRedeemed:
		return true
	}
	return false
}

// TransactionAddsToBalance reports whether a transaction type counts as
// an earning when folding the ledger into a balance.
func TransactionAddsToBalance(txType string) bool {
	return txType == TransactionEarnedReport || txType == TransactionEarnedCollect
}

// ValidateNotificationType validates the notification type enum
func ValidateNotificationType(notifType string) bool {
	switch notifType {
	case NotificationReward, NotificationLevelUp, NotificationBadge,
		NotificationPickup, NotificationReport, NotificationSystem:
		return true
	}
	return false
}

// ValidateBadgeCriteriaType validates the badge criteria type enum
func ValidateBadgeCriteriaType(criteriaType string) bool {
	switch criteriaType {
	case CriteriaFirstWasteCollection, CriteriaWasteCollection,
		CriteriaReportsSubmitted, CriteriaRewardsRedeemed,
		CriteriaCO2Offset, CriteriaUserLevel, CriteriaPickupTasksCompleted:
		return true
	}
	return false
}
