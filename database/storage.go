package database

import (
	"context"

	"gorm.io/gorm"
)

// Storage defines the interface that all database implementations must satisfy
type Storage interface {
	// Lifecycle methods
	Init() error
	Close() error
	HealthCheck(ctx context.Context) error

	// DB returns the GORM handle used by services
	DB() *gorm.DB
}
