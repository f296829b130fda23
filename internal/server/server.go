// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"fmt"
	"strconv"
	"time"

	"tidepool/internal/config"
	"tidepool/internal/database"
	"tidepool/internal/mailer"
	"tidepool/internal/middleware"
	"tidepool/internal/models"
	"tidepool/internal/repository"
	"tidepool/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	relRepo        repository.RelationshipRepository
	postRepo       repository.PostRepository
	mail           mailer.Mailer
	userService    *service.UserService
}

// NewServer creates a new server instance, establishing its own database
// and Redis connections from config.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	redisClient := mailer.NewRedisClient(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, redisClient), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	relRepo := repository.NewRelationshipRepository(db)
	postRepo := repository.NewPostRepository(db)

	var mail mailer.Mailer
	if redisClient != nil {
		mail = mailer.NewRedisMailer(redisClient, cfg.MailFrom, cfg.MailBaseURL)
	} else {
		mail = mailer.NewLogMailer()
	}

	return &Server{
		config:      cfg,
		db:          db,
		redis:       redisClient,
		userRepo:    userRepo,
		relRepo:     relRepo,
		postRepo:    postRepo,
		mail:        mail,
		userService: service.NewUserService(userRepo, relRepo, postRepo, mail, cfg),
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	if s.promMiddleware == nil {
		s.promMiddleware = fiberprometheus.New("tidepool-api")
	}
	app.Use(s.promMiddleware.Middleware)

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health", s.HealthCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	auth := api.Group("/auth")
	auth.Post("/signup", s.Signup)
	auth.Post("/login", s.Login)

	account := api.Group("/account")
	account.Post("/activate", s.ActivateAccount)
	account.Post("/password_resets", s.RequestPasswordReset)
	account.Patch("/password_resets", s.CompletePasswordReset)

	authed := api.Group("", middleware.AuthRequired(s.config))
	authed.Get("/feed", s.GetFeed)
	authed.Get("/users/:id", s.GetUser)
	authed.Patch("/users/me", s.UpdateProfile)
	authed.Delete("/users/me", s.DeleteAccount)
	authed.Post("/users/:id/follow", s.Follow)
	authed.Delete("/users/:id/follow", s.Unfollow)
	authed.Get("/users/:id/followers", s.GetFollowers)
	authed.Get("/users/:id/following", s.GetFollowing)
}

// HealthCheck reports process liveness and database reachability.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// generateToken creates a JWT bearer token for the given user.
func (s *Server) generateToken(userID uint, email string) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(userID), 10),
		"email": email,
		"iss":   "tidepool-api",
		"exp":   now.Add(time.Hour * 24 * 7).Unix(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// currentUser loads the authenticated user set by the auth middleware.
func (s *Server) currentUser(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return nil, models.NewUnauthorizedError("Not authenticated")
	}
	return s.userRepo.GetByID(c.Context(), userID)
}
