package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/utils/middleware"
	"go.uber.org/zap"
)

// BodyLimit leaves room for avatar uploads plus multipart overhead
const BodyLimit = 6 * 1024 * 1024

type APIServer struct {
	app           *fiber.App
	listenAddress string
	log           *zap.Logger
}

func NewAPIServer(listenAddress, appName string, development bool, log *zap.Logger) *APIServer {
	return &APIServer{
		app: fiber.New(fiber.Config{
			AppName:      appName,
			BodyLimit:    BodyLimit,
			ErrorHandler: middleware.ErrorHandler(log, development),
		}),
		listenAddress: listenAddress,
		log:           log,
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	s.log.Info("Starting API Server", zap.String("address", s.listenAddress))

	return s.app.Listen(s.listenAddress)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down API Server")
	return s.app.ShutdownWithContext(ctx)
}
