// Package server contains the HTTP handlers for the users and thoughts API.
package server

import (
	"context"
	"errors"
	"strings"
	"time"

	_ "github.com/austinzumbro/nosql-social-api/docs" // swagger docs
	"github.com/austinzumbro/nosql-social-api/internal/bootstrap"
	"github.com/austinzumbro/nosql-social-api/internal/config"
	"github.com/austinzumbro/nosql-social-api/internal/middleware"
	"github.com/austinzumbro/nosql-social-api/internal/models"
	"github.com/austinzumbro/nosql-social-api/internal/repository"
	"github.com/austinzumbro/nosql-social-api/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	redis          *redis.Client
	maintenance    repository.MaintenanceRepository
	userService    *service.UserService
	thoughtService *service.ThoughtService
	promMiddleware *fiberprometheus.FiberPrometheus
}

// NewServer creates a server on top of an initialized runtime.
func NewServer(cfg *config.Config, rt *bootstrap.Runtime) *Server {
	return &Server{
		config:         cfg,
		redis:          rt.Redis,
		maintenance:    rt.Maintenance,
		userService:    rt.UserService,
		thoughtService: rt.ThoughtService,
		promMiddleware: middleware.InitMetrics("social-api"),
	}
}

// NewApp builds a fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Social API",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// errorHandler maps errors that escape handlers: fiber errors keep their
// status, everything else goes through the AppError classification.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{
			Message: fe.Message,
			Code:    codeForStatus(fe.Code),
		})
	}
	return models.RespondWithAppError(c, err)
}

func codeForStatus(status int) string {
	switch {
	case status == fiber.StatusNotFound:
		return models.CodeNotFound
	case status >= fiber.StatusInternalServerError:
		return models.CodeInternal
	default:
		return models.CodeValidation
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so error responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://localhost:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       86400,
	}))

	if s.config.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        s.config.RateLimitMax,
			Expiration: 1 * time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return c.Method() == fiber.MethodOptions || strings.HasPrefix(c.Path(), "/health")
			},
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"message": "Too many requests, please try again later.",
				})
			},
		}))
	}
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	users := api.Group("/users")
	users.Get("/", s.GetUsers)
	users.Post("/", middleware.RateLimit(s.redis, 10, time.Minute, "create_user"), s.CreateUser)
	users.Post("/:userId/friends/:friendId", middleware.RateLimit(
		s.redis, 30, time.Minute, "add_friend"), s.AddFriend)
	users.Delete("/:userId/friends/:friendId", s.RemoveFriend)
	users.Get("/:userId", s.GetUser)
	users.Put("/:userId", s.UpdateUser)
	users.Delete("/:userId", s.DeleteUser)

	thoughts := api.Group("/thoughts")
	thoughts.Get("/", s.GetThoughts)
	thoughts.Post("/", middleware.RateLimit(s.redis, 20, time.Minute, "create_thought"), s.CreateThought)
	thoughts.Post("/:thoughtId/reactions", middleware.RateLimit(
		s.redis, 30, time.Minute, "add_reaction"), s.AddReaction)
	thoughts.Delete("/:thoughtId/reactions/:reactionId", s.RemoveReaction)
	thoughts.Get("/:thoughtId", s.GetThought)
	thoughts.Put("/:thoughtId", s.UpdateThought)
	thoughts.Delete("/:thoughtId", s.DeleteThought)
}

// LivenessCheck handles GET /health/live
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles GET /health/ready. Redis is optional, so only a
// failing Redis connection (not a missing one) marks the service unready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.maintenance == nil {
		dbStatus = "unavailable"
	} else if err := s.maintenance.Ping(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}
