package model

import (
	"time"
)

// Course difficulty ratings
const (
	DifficultyEasy        = "easy"
	DifficultyJustRight   = "just-right"
	DifficultyChallenging = "challenging"
	DifficultyDifficult   = "difficult"
)

// Difficulties lists every difficulty in display order
var Difficulties = []string{DifficultyEasy, DifficultyJustRight, DifficultyChallenging, DifficultyDifficult}

// Feedback is a user's review of a course, one per (user, course)
type Feedback struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_feedback_user_course" json:"user_id"`
	CourseID   uint      `gorm:"not null;uniqueIndex:idx_feedback_user_course;index" json:"course_id"`
	Rating     int       `gorm:"not null" json:"rating"` // 1-5
	Difficulty string    `gorm:"type:varchar(20);not null;index" json:"difficulty"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User   *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course *Product `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// TableName specifies the table name for Feedback
func (Feedback) TableName() string {
	return "feedback"
}
