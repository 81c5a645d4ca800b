package model

import (
	"time"
)

// Enrollment is the single record of a user's participation in a course
type Enrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_enrollment_user_product" json:"user_id"`
	ProductID  uint      `gorm:"not null;uniqueIndex:idx_enrollment_user_product;index" json:"product_id"`
	EnrolledAt time.Time `gorm:"not null" json:"enrolled_at"`
	Progress   int       `gorm:"not null;default:0" json:"progress"` // 0-100
	Completed  bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relationships
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName specifies the table name for Enrollment
func (Enrollment) TableName() string {
	return "enrollments"
}
