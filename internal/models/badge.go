package models

import "time"

// Badge represents an achievement badge that users can earn by reaching
// certain milestones. The criteria pair (type, value) is a typed
// predicate over the progress snapshot, validated at admin-write time.
type Badge struct {
	ID            int64   `json:"id" db:"id"`
	Name          string  `json:"name" db:"name" validate:"required,max=100"`
	Description   string  `json:"description" db:"description" validate:"max=500"`
	Icon          string  `json:"icon" db:"icon" validate:"max=100"`
	Color         string  `json:"color" db:"color" validate:"omitempty,len=7"`
	CriteriaType  string  `json:"criteria_type" db:"criteria_type" validate:"required,oneof=first_waste_collection waste_collection reports_submitted rewards_redeemed co2_offset user_level pickup_tasks_completed"`
	CriteriaValue float64 `json:"criteria_value" db:"criteria_value" validate:"min=0"`
	IsActive      bool    `json:"is_active" db:"is_active"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// UserBadge records that a badge was awarded to a user. The
// (user_id, badge_id) uniqueness constraint in the database is the
// authoritative at-most-once guard, even under concurrent awarding.
type UserBadge struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	BadgeID   int64     `json:"badge_id" db:"badge_id"`
	AwardedAt time.Time `json:"awarded_at" db:"awarded_at"`

	// Badge information (joined)
	Name  string `json:"name,omitempty" db:"name"`
	Icon  string `json:"icon,omitempty" db:"icon"`
	Color string `json:"color,omitempty" db:"color"`
}

// Badge criteria types. Each names one predicate over the progress
// snapshot; anything outside this set is skipped with a warning at
// evaluation time rather than failing the award pass.
const (
	CriteriaFirstWasteCollection = "first_waste_collection"
	CriteriaWasteCollection      = "waste_collection"
	CriteriaReportsSubmitted     = "reports_submitted"
	CriteriaRewardsRedeemed      = "rewards_redeemed"
	CriteriaCO2Offset            = "co2_offset"
	CriteriaUserLevel            = "user_level"
	CriteriaPickupTasksCompleted = "pickup_tasks_completed"
)

// Satisfies evaluates the badge's criteria against a progress snapshot.
// The second return value is false when the criteria type is unknown.
func (b *Badge) Satisfies(p *ProgressSnapshot) (bool, bool) {
	switch b.CriteriaType {
	case CriteriaFirstWasteCollection:
		return p.WasteCollected > 0, true
	case CriteriaWasteCollection:
		return p.WasteCollected >= b.CriteriaValue, true
	case CriteriaReportsSubmitted:
		return float64(p.ReportsSubmitted) >= b.CriteriaValue, true
	case CriteriaRewardsRedeemed:
		return float64(p.RewardsRedeemed) >= b.CriteriaValue, true
	case CriteriaCO2Offset:
		return p.CO2Offset >= b.CriteriaValue, true
	case CriteriaUserLevel:
		return float64(p.UserLevel) >= b.CriteriaValue, true
	case CriteriaPickupTasksCompleted:
		return float64(p.PickupTasksCompleted) >= b.CriteriaValue, true
	default:
		return false, false
	}
}
