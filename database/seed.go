package database

import (
	"fmt"
	"strings"

	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/sahilchouksey/mindmeld-api/utils/auth"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, log *zap.Logger) *Seeder {
	return &Seeder{db: db, log: log}
}

// AdminSeed holds the credentials for the bootstrap admin account
type AdminSeed struct {
	Email    string
	Password string
	Name     string
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll(admin AdminSeed) error {
	s.log.Info("Starting database seeding")

	if err := s.SeedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if err := s.SeedAdminUser(admin); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	s.log.Info("Database seeding completed")
	return nil
}

// SeedCategories creates the default categories when none exist
func (s *Seeder) SeedCategories() error {
	var count int64
	if err := s.db.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		s.log.Info("Categories already exist, skipping")
		return nil
	}

	categories := model.DefaultCategories()
	if err := s.db.Create(&categories).Error; err != nil {
		return err
	}

	s.log.Info("Created categories", zap.Int("count", len(categories)))
	return nil
}

// SeedAdminUser creates the first admin account
func (s *Seeder) SeedAdminUser(admin AdminSeed) error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		s.log.Info("Admin user already exists, skipping")
		return nil
	}

	if admin.Email == "" || admin.Password == "" {
		s.log.Warn("ADMIN_EMAIL and ADMIN_PASSWORD not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	name := admin.Name
	if name == "" {
		name = "System Administrator"
	}

	user := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(admin.Email)),
		PasswordHash: passwordHash,
		Name:         name,
		Role:         model.RoleAdmin,
	}

	if err := s.db.Create(user).Error; err != nil {
		return err
	}

	s.log.Info("Created admin user", zap.String("email", user.Email))
	return nil
}
