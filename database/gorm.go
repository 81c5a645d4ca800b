package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sahilchouksey/mindmeld-api/config"
	"github.com/sahilchouksey/mindmeld-api/model"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GORMStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewGORMStore wraps an existing connection, used by tests and tools
func NewGORMStore(db *gorm.DB, log *zap.Logger) *GORMStore {
	return &GORMStore{db: db, log: log}
}

// DSN builds the PostgreSQL connection string. DATABASE_URL wins when set.
func DSN(env *config.EnvironmentVariable) string {
	if env.DATABASE_URL != "" {
		return env.DATABASE_URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		env.DB_HOST,
		env.DB_USER_NAME,
		env.DB_PASSWORD,
		env.DB_NAME,
		env.DB_PORT,
		env.DB_SSL_MODE,
	)
}

// StartGORM initializes a GORM connection to PostgreSQL
func StartGORM(env *config.EnvironmentVariable, log *zap.Logger) (*GORMStore, error) {
	// Configure GORM logger
	gormLogger := logger.Default.LogMode(logger.Info)
	if env.IsProduction() {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(DSN(env)), &gorm.Config{
		Logger:         gormLogger,
		PrepareStmt:    true,
		TranslateError: true, // unique violations surface as gorm.ErrDuplicatedKey
	})
	if err != nil {
		log.Error("Unable to connect to PostgreSQL with GORM", zap.Error(err))
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("Connected to PostgreSQL with GORM")

	return &GORMStore{db: db, log: log}, nil
}

// Models lists every model managed by AutoMigrate
func Models() []interface{} {
	return []interface{}{
		// Accounts
		&model.User{},
		&model.PasswordResetToken{},
		&model.JWTTokenBlacklist{},

		// Catalog
		&model.Category{},
		&model.Product{},

		// Learning
		&model.Enrollment{},
		&model.Feedback{},

		// Commerce
		&model.Cart{},
		&model.CartItem{},
		&model.Wishlist{},
		&model.Order{},
		&model.OrderItem{},

		// Communication
		&model.Message{},

		// Audit & logging
		&model.UserActivity{},
		&model.CronJobLog{},
	}
}

// Init runs the AutoMigrate to create/update tables
func (s *GORMStore) Init() error {
	s.log.Info("Running GORM AutoMigrate")

	if err := s.db.AutoMigrate(Models()...); err != nil {
		s.log.Error("AutoMigrate failed", zap.Error(err))
		return err
	}

	s.log.Info("GORM AutoMigrate completed")
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	s.log.Info("Closing database connection")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB returns the GORM DB instance
func (s *GORMStore) DB() *gorm.DB {
	return s.db
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
