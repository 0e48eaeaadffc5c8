package router

import (
	"github.com/anonto42/nano-midea/feed/internal/handlers"
	"github.com/anonto42/nano-midea/feed/internal/middleware"
	"github.com/anonto42/nano-midea/feed/internal/repositories"
	"github.com/anonto42/nano-midea/feed/validators"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Dependencies are the collaborators the HTTP layer is built from
type Dependencies struct {
	Posts    repositories.PostRepository
	Users    repositories.UserRepository
	Comments repositories.CommentRepository
	Feed     handlers.FeedService
	Auth     *middleware.Authenticator
	Logger   zerolog.Logger
}

// New builds the echo instance with middleware and all routes
func New(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()

	SetupMiddleware(e, deps.Logger)
	SetupRoutes(e, deps)
	return e
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, logger zerolog.Logger) {
	e.Use(eMiddleware.RequestIDWithConfig(eMiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(logger))
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	logger := deps.Logger.With().Str("component", "router").Logger()

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	api := e.Group("/api/v1")
	requireAuth := deps.Auth.Required()
	optionalAuth := deps.Auth.Optional()

	// Feed routes
	feedHandler := handlers.NewFeedHandler(deps.Feed)
	feedHandler.RegisterFeedRoutes(api, optionalAuth)

	// Post routes
	postHandler := handlers.NewPostHandler(deps.Posts, deps.Users)
	postHandler.RegisterPostRoutes(api, requireAuth, optionalAuth)

	// Like routes
	likeHandler := handlers.NewLikeHandler(deps.Posts)
	likeHandler.RegisterLikeRoutes(api, requireAuth)

	// Bookmark routes
	savedPostHandler := handlers.NewSavedPostHandler(deps.Posts)
	savedPostHandler.RegisterSavedPostRoutes(api, requireAuth)

	// Comment routes
	commentHandler := handlers.NewCommentHandler(deps.Comments, deps.Posts, deps.Logger)
	commentHandler.RegisterCommentRoutes(api, requireAuth)

	logger.Debug().Int("routes", len(e.Routes())).Msg("All routes configured")
}
