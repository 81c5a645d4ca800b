package model

import (
	"time"

	"gorm.io/datatypes"
)

// Category groups products in the catalog
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
}

// TableName specifies the table name for Category
func (Category) TableName() string {
	return "categories"
}

// Product is a purchasable course
type Product struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
	Name        string                      `gorm:"type:varchar(255);not null" json:"name"`
	Slug        *string                     `gorm:"type:varchar(255);uniqueIndex" json:"slug,omitempty"` // NULL allowed, non-NULL values unique
	Description string                      `gorm:"type:text" json:"description"`
	Price       float64                     `gorm:"not null" json:"price"`
	CategoryID  *uint                       `gorm:"index" json:"category_id,omitempty"`
	Image       string                      `gorm:"type:text" json:"image"`
	Stock       int                         `gorm:"default:0" json:"stock"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	IsFeatured  bool                        `gorm:"default:false;index" json:"is_featured"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	// Populated on request, not persisted
	EnrollmentCount *int64 `gorm:"-" json:"enrollment_count,omitempty"`
}

// TableName specifies the table name for Product
func (Product) TableName() string {
	return "products"
}

// SlugValue returns the slug or an empty string when unset
func (p *Product) SlugValue() string {
	if p.Slug == nil {
		return ""
	}
	return *p.Slug
}

// DefaultCategories are created when the catalog has no categories
func DefaultCategories() []Category {
	return []Category{
		{Name: "Technical Skills", Description: "Programming, data and tooling courses"},
		{Name: "Soft Skills", Description: "Communication, teamwork and personal effectiveness"},
		{Name: "Leadership", Description: "Management and leadership development"},
		{Name: "Compliance", Description: "Mandatory policy and regulatory training"},
	}
}
