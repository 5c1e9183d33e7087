package http_handler

import (
	"context"

	"github.com/anthanhphan/go-file-gateway/internal/api/config"
	"github.com/anthanhphan/go-file-gateway/internal/api/port"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// multipartOverhead is allowed on top of the payload limit for form framing.
const multipartOverhead = 1 << 20

type Server struct {
	app     *fiber.App
	cfg     *config.Config
	service port.FileService
}

func NewServer(cfg *config.Config, service port.FileService) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:             int(cfg.App.MaxUploadBytes) + multipartOverhead,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	// ${path} excludes the query string, so signatures never reach the log.
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}\n",
	}))

	s := &Server{
		app:     app,
		cfg:     cfg,
		service: service,
	}

	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", s.handleHealth)

	auth := NewAuthMiddleware(s.cfg.Auth)

	v1 := s.app.Group("/v1")
	// Signed downloads carry their own authorization and must match before /files/:id.
	v1.Get("/files/download", s.handleDownload)
	v1.Post("/uploads", auth, s.handleUpload)
	v1.Get("/files", auth, s.handleList)
	v1.Get("/files/:id", auth, s.handleGetFile)
	v1.Delete("/files/:id", auth, s.handleDelete)
	v1.Get("/files/:id/signed-url", auth, s.handleSignedURL)
}

func (s *Server) Start() error {
	return s.app.Listen(s.cfg.Server.Addr)
}

func (s *Server) Stop(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
