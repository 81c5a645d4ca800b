package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/sahilchouksey/mindmeld-api/api"
	"github.com/sahilchouksey/mindmeld-api/config"
	"github.com/sahilchouksey/mindmeld-api/database"
	"github.com/sahilchouksey/mindmeld-api/router"
	"github.com/sahilchouksey/mindmeld-api/services/cron"
	"github.com/sahilchouksey/mindmeld-api/services/email"
	"github.com/sahilchouksey/mindmeld-api/services/storage"
	"github.com/sahilchouksey/mindmeld-api/utils/auth"
	"github.com/sahilchouksey/mindmeld-api/utils/cache"
	"github.com/sahilchouksey/mindmeld-api/utils/logger"
	"github.com/sahilchouksey/mindmeld-api/utils/metrics"
	"github.com/sahilchouksey/mindmeld-api/utils/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func SetupAndRunServer() error {
	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	env, err := config.Get()
	if err != nil {
		return err
	}

	log := logger.Must(env.GO_ENV)
	defer func() { _ = log.Sync() }()

	// Initialize GORM database connection
	store, err := database.StartGORM(env, log)
	if err != nil {
		log.Error("Check whether Postgres is running and DATABASE_URL or DB_* are set")
		return err
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Error("Failed to initialize database tables")
		return err
	}

	// Redis is optional; without it login throttling and the stats cache are off
	var redisCache *cache.RedisCache
	if env.REDIS_URL != "" {
		redisCache, err = cache.NewRedisCache(env.REDIS_URL)
		if err != nil {
			log.Warn("Failed to connect to Redis", zap.Error(err))
			redisCache = nil
		} else {
			defer redisCache.Close()
		}
	}

	files, err := NewFileStore(env)
	if err != nil {
		return err
	}

	mailer, err := email.NewMailer(email.Config{
		Provider:       env.MAIL_PROVIDER,
		From:           env.MAIL_FROM,
		FromName:       env.APP_NAME,
		Development:    env.IsDevelopment(),
		SMTPHost:       env.SMTP_HOST,
		SMTPPort:       env.SMTP_PORT,
		SMTPUser:       env.SMTP_USER,
		SMTPPassword:   env.SMTP_PASSWORD,
		SendGridAPIKey: env.SENDGRID_API_KEY,
	}, log)
	if err != nil {
		return err
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        env.JWT_SECRET,
		Expiry:        time.Duration(env.JWT_EXPIRY_HOURS) * time.Hour,
		RefreshExpiry: time.Duration(env.JWT_REFRESH_EXP_DAYS) * 24 * time.Hour,
		Issuer:        env.JWT_ISSUER,
	})

	deps := router.Dependencies{
		Store:       store,
		JWT:         jwtManager,
		Cache:       redisCache,
		Files:       files,
		Mailer:      mailer,
		ResetExpiry: time.Duration(env.PASSWORD_RESET_EXP_MINUTES) * time.Minute,
		Log:         log,
	}
	svc := router.NewServices(deps)

	// Initialize Cron Manager (only if enabled via environment variable)
	if env.CRON_ENABLED {
		cronManager := cron.NewCronManager(store.DB(), log)
		if err := cronManager.Register(cron.MaintenanceJobs(svc.PasswordResets, svc.Blacklist, svc.Products)...); err != nil {
			return err
		}
		cronManager.Start()
		defer cronManager.Stop()
	}

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", env.PORT), env.APP_NAME, env.IsDevelopment(), log)
	app := server.GetEngine()

	// Attach Middleware
	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    env.ALLOWED_ORIGINS,
		RateLimitRequests: env.RATE_LIMIT_REQUESTS,
		RateLimitWindow:   time.Minute,
		Development:       env.IsDevelopment(),
	})
	app.Use(middleware.ClientInfo())
	app.Use(metrics.Middleware())

	// Setup Routes
	router.SetupRoutes(app, deps, svc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// NewFileStore selects the avatar store from STORAGE_DRIVER
func NewFileStore(env *config.EnvironmentVariable) (storage.FileStore, error) {
	switch env.STORAGE_DRIVER {
	case "spaces":
		return storage.NewSpacesFileStore(storage.SpacesConfig{
			AccessKey: env.DO_SPACES_KEY,
			SecretKey: env.DO_SPACES_SECRET,
			Bucket:    env.DO_SPACES_BUCKET,
			Region:    env.DO_SPACES_REGION,
			Endpoint:  env.DO_SPACES_ENDPOINT,
			CDNURL:    env.DO_SPACES_PUBLIC_HOST,
			Prefix:    "avatars",
		})
	case "local", "":
		return storage.NewLocalFileStore(env.UPLOAD_DIR, "/uploads")
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", env.STORAGE_DRIVER)
	}
}
