package model

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityType represents the type of user activity
type ActivityType string

const (
	ActivityTypeLogin             ActivityType = "login"
	ActivityTypeLogout            ActivityType = "logout"
	ActivityTypeCourseEnrolled    ActivityType = "course_enrolled"
	ActivityTypeCourseCompleted   ActivityType = "course_completed"
	ActivityTypeFeedbackSubmitted ActivityType = "feedback_submitted"
	ActivityTypeFeedbackDeleted   ActivityType = "feedback_deleted"
	ActivityTypeMessageSent       ActivityType = "message_sent"
	ActivityTypeProfileUpdated    ActivityType = "profile_updated"
	ActivityTypePasswordChanged   ActivityType = "password_changed"
)

// IsValidActivityType reports whether t is a known activity type
func IsValidActivityType(t string) bool {
	switch ActivityType(t) {
	case ActivityTypeLogin, ActivityTypeLogout, ActivityTypeCourseEnrolled,
		ActivityTypeCourseCompleted, ActivityTypeFeedbackSubmitted, ActivityTypeFeedbackDeleted,
		ActivityTypeMessageSent, ActivityTypeProfileUpdated, ActivityTypePasswordChanged:
		return true
	}
	return false
}

// UserActivity is an append-only audit record of a user action
type UserActivity struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;index:idx_user_activity" json:"user_id"`
	ActivityType ActivityType   `gorm:"type:varchar(50);not null;index:idx_activity_type" json:"action"`
	Details      string         `gorm:"type:text" json:"details"`
	Metadata     datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	IPAddress    string         `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent    string         `gorm:"type:text" json:"user_agent"`
	CreatedAt    time.Time      `gorm:"index:idx_created_at" json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for UserActivity
func (UserActivity) TableName() string {
	return "user_activities"
}
