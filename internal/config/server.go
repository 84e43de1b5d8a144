package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"ProjectOCR/database/postgres"
	ocrHandler "ProjectOCR/internal/api/ocr/handler"
	ocrRepository "ProjectOCR/internal/api/ocr/repository"
	ocrService "ProjectOCR/internal/api/ocr/service"
	"ProjectOCR/internal/middleware"
	"ProjectOCR/pkg/docscan"
	"ProjectOCR/pkg/gemini"
	"ProjectOCR/pkg/imaging"
	"ProjectOCR/pkg/mlkit"
	"ProjectOCR/pkg/redis"
	"ProjectOCR/pkg/s3"
	"ProjectOCR/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine        *fiber.App
	db            *sqlx.DB
	log           *logrus.Logger
	middleware    middleware.Middleware
	validator     *validator.Validate
	utils         utils.IUtils
	handlers      []handler
	redisServer   redis.IRedis
	mlkitClient   mlkit.IMLKit
	scannerClient docscan.IDocScan
	geminiClient  gemini.IGemini
	s3Client      s3.ItfS3
	normalizer    imaging.INormalizer
	ocrService    ocrService.IOCRService
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithMLKitClient(client mlkit.IMLKit) ServerOption {
	return func(s *Server) error {
		s.mlkitClient = client
		return nil
	}
}

func WithScannerClient(client docscan.IDocScan) ServerOption {
	return func(s *Server) error {
		s.scannerClient = client
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithGeminiClient() ServerOption {
	return func(s *Server) error {
		client, err := gemini.NewGeminiClient()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create Gemini client: %v", err)
			}
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}
		s.geminiClient = client
		return nil
	}
}

func WithImaging() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before imaging")
		}
		s.normalizer = imaging.New(s.log)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// OCR Domain
	ocrRepo := ocrRepository.New(s.db, s.log)
	ocrServices := ocrService.NewOCRService(s.log, ocrRepo, s.geminiClient, s.mlkitClient, s.scannerClient, s.normalizer, s.redisServer, s.s3Client, s.utils)
	ocrHandlers := ocrHandler.New(s.log, s.validator, s.middleware, ocrServices, s.utils)

	s.ocrService = ocrServices
	s.setupHealthCheck()
	s.handlers = append(s.handlers, ocrHandlers)
}

func (s *Server) Run() error {
	if err := s.verifyExtractionBackend(); err != nil {
		s.shutdownCollaborators()
		return err
	}

	router := s.engine.Group("/api/v1")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	if err := s.engine.Listen(fmt.Sprintf(":%s", port)); err != nil {
		s.shutdownCollaborators()
		return err
	}

	return nil
}

// verifyExtractionBackend runs the startup gate against the extraction
// backend: the region pin must hold before the server accepts traffic.
func (s *Server) verifyExtractionBackend() error {
	if s.ocrService == nil || s.geminiClient == nil || s.normalizer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.ocrService.VerifyExtractionBackend(ctx); err != nil {
		s.log.Errorf("Extraction backend verification failed: %v", err)
		return err
	}

	return nil
}

// Shutdown closes the long-lived collaborator connections before the process
// exits.
func (s *Server) Shutdown() {
	s.shutdownCollaborators()

	if err := s.engine.Shutdown(); err != nil {
		s.log.Errorf("Error shutting down fiber: %v", err)
	}
}

func (s *Server) shutdownCollaborators() {
	if s.mlkitClient != nil {
		s.mlkitClient.CloseConnection()
	}
	if s.scannerClient != nil {
		s.scannerClient.CloseConnection()
	}
	if s.geminiClient != nil {
		s.geminiClient.Close()
	}
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
