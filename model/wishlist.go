package model

import (
	"time"
)

// Wishlist is a per-user set of saved products
type Wishlist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Products  []Product `gorm:"many2many:wishlist_products" json:"products"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Wishlist
func (Wishlist) TableName() string {
	return "wishlists"
}
