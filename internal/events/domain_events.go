package events

import "time"

// ===============================
// USER EVENTS
// ===============================

type UserCreatedEvent struct {
	BaseEvent
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type UserDeactivatedEvent struct {
	BaseEvent
	UserID        int64     `json:"user_id"`
	Username      string    `json:"username"`
	Reason        string    `json:"reason"`
	DeactivatedAt time.Time `json:"deactivated_at"`
}

type UserLoggedInEvent struct {
	BaseEvent
	LoginAt   time.Time `json:"login_at"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
}

type UserLoggedOutEvent struct {
	BaseEvent
	LogoutAt time.Time `json:"logout_at"`
}

type PasswordChangedEvent struct {
	BaseEvent
	ChangedAt time.Time `json:"changed_at"`
}

// ===============================
// REPORT & PICKUP EVENTS
// ===============================

type ReportCreatedEvent struct {
	BaseEvent
	ReportID  int64   `json:"report_id"`
	WasteType string  `json:"waste_type"`
	Amount    float64 `json:"amount"`
	Location  string  `json:"location"`
}

type ReportStatusChangedEvent struct {
	BaseEvent
	ReportID   int64  `json:"report_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

type PickupAssignedEvent struct {
	BaseEvent
	ReportID    int64 `json:"report_id"`
	CollectorID int64 `json:"collector_id"`
}

type PickupCompletedEvent struct {
	BaseEvent
	ReportID    int64   `json:"report_id"`
	CollectorID int64   `json:"collector_id"`
	Amount      float64 `json:"amount"`
}

// ===============================
// GAMIFICATION EVENTS
// ===============================

type PointsEarnedEvent struct {
	BaseEvent
	TransactionID int64  `json:"transaction_id"`
	Type          string `json:"type"`
	Amount        int    `json:"amount"`
}

type PointsRedeemedEvent struct {
	BaseEvent
	TransactionID   int64 `json:"transaction_id"`
	CatalogRewardID int64 `json:"catalog_reward_id"`
	Amount          int   `json:"amount"`
}

type LevelChangedEvent struct {
	BaseEvent
	OldLevel int `json:"old_level"`
	NewLevel int `json:"new_level"`
}

type BadgesAwardedEvent struct {
	BaseEvent
	BadgeIDs   []int64  `json:"badge_ids"`
	BadgeNames []string `json:"badge_names"`
}

// ===============================
// FILE EVENTS
// ===============================

// FileUploadedEvent is emitted when a file is successfully uploaded
type FileUploadedEvent struct {
	BaseEvent
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// ===============================
// EVENT FACTORY FUNCTIONS
// ===============================

// NewUserCreatedEvent creates a new user created event
func NewUserCreatedEvent(userID int64, email, username string) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "user.created",
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		UserID:    userID,
		Email:     email,
		Username:  username,
		CreatedAt: time.Now(),
	}
}

// NewUserDeactivatedEvent creates a new user deactivated event
func NewUserDeactivatedEvent(userID int64, username, reason string) *UserDeactivatedEvent {
	return &UserDeactivatedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "user.deactivated",
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		UserID:        userID,
		Username:      username,
		Reason:        reason,
		DeactivatedAt: time.Now(),
	}
}

// NewUserLoggedInEvent creates a new login event
func NewUserLoggedInEvent(userID int64, ipAddress, userAgent string) *UserLoggedInEvent {
	return &UserLoggedInEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "user.logged_in",
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		LoginAt:   time.Now(),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// NewUserLoggedOutEvent creates a new logout event
func NewUserLoggedOutEvent(userID int64) *UserLoggedOutEvent {
	return &UserLoggedOutEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "user.logged_out",
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		LogoutAt: time.Now(),
	}
}

// NewPasswordChangedEvent creates a new password changed event
func NewPasswordChangedEvent(userID int64) *PasswordChangedEvent {
	return &PasswordChangedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "user.password_changed",
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		ChangedAt: time.Now(),
	}
}

// NewReportCreatedEvent creates a new report created event
func NewReportCreatedEvent(reportID, userID int64, wasteType string, amount float64, location string) *ReportCreatedEvent {
	return &ReportCreatedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "report.created",
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		ReportID:  reportID,
		WasteType: wasteType,
		Amount:    amount,
		Location:  location,
	}
}

// NewReportStatusChangedEvent creates a new status change event
func NewReportStatusChangedEvent(reportID, userID int64, from, to string) *ReportStatusChangedEvent {
	return &ReportStatusChangedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "report.status_changed",
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		ReportID:   reportID,
		FromStatus: from,
		ToStatus:   to,
	}
}

// NewPickupAssignedEvent creates a new pickup assigned event
func NewPickupAssignedEvent(reportID, collectorID int64) *PickupAssignedEvent {
	return &PickupAssignedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "pickup.assigned",
			Timestamp: time.Now(),
			UserID:    &collectorID,
		},
		ReportID:    reportID,
		CollectorID: collectorID,
	}
}

// NewPickupCompletedEvent creates a new pickup completed event
func NewPickupCompletedEvent(reportID, collectorID int64, amount float64) *PickupCompletedEvent {
	return &PickupCompletedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "pickup.completed",
			Timestamp: time.Now(),
			UserID:    &collectorID,
		},
		ReportID:    reportID,
		CollectorID: collectorID,
		Amount:      amount,
	}
}

// NewPointsEarnedEvent creates a new points earned event
func NewPointsEarnedEvent(transactionID, userID int64, txType string, amount int) *PointsEarnedEvent {
	return &PointsEarnedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "points.earned",
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		TransactionID: transactionID,
		Type:          txType,
		Amount:        amount,
	}
}

// NewPointsRedeemedEvent creates a new points redeemed event
func NewPointsRedeemedEvent(transactionID, userID, catalogRewardID int64, amount int) *PointsRedeemedEvent {
	return &PointsRedeemedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "points.redeemed",
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		TransactionID:   transactionID,
		CatalogRewardID: catalogRewardID,
		Amount:          amount,
	}
}

// NewLevelChangedEvent creates a new level changed event
func NewLevelChangedEvent(userID int64, oldLevel, newLevel int) *LevelChangedEvent {
	return &LevelChangedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "user.level_changed",
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		OldLevel: oldLevel,
		NewLevel: newLevel,
	}
}

// NewBadgesAwardedEvent creates a new badges awarded event
func NewBadgesAwardedEvent(userID int64, badgeIDs []int64, badgeNames []string) *BadgesAwardedEvent {
	return &BadgesAwardedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "badges.awarded",
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		BadgeIDs:   badgeIDs,
		BadgeNames: badgeNames,
	}
}

// NewFileUploadedEvent creates a new file uploaded event
func NewFileUploadedEvent(fileType string, fileSize int64, url, publicID string, userID *int64) *FileUploadedEvent {
	return &FileUploadedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "file.uploaded",
			Timestamp: time.Now(),
			UserID:    userID,
		},
		FileType: fileType,
		FileSize: fileSize,
		URL:      url,
		PublicID: publicID,
	}
}
