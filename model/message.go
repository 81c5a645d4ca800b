package model

import (
	"time"
)

// Message is a direct message between two users
type Message struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	FromID    uint       `gorm:"not null;index" json:"from_id"`
	ToID      uint       `gorm:"not null;index:idx_message_recipient" json:"to_id"`
	Subject   string     `gorm:"type:varchar(255);not null" json:"subject"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Read      bool       `gorm:"not null;default:false;index:idx_message_recipient" json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	From *User `gorm:"foreignKey:FromID" json:"from,omitempty"`
	To   *User `gorm:"foreignKey:ToID" json:"to,omitempty"`
}

// TableName specifies the table name for Message
func (Message) TableName() string {
	return "messages"
}
