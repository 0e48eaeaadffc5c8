package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/nano-midea/feed/internal/cache"
	"github.com/anonto42/nano-midea/feed/internal/feed"
	"github.com/anonto42/nano-midea/feed/internal/handlers"
	"github.com/anonto42/nano-midea/feed/internal/metrics"
	"github.com/anonto42/nano-midea/feed/internal/middleware"
	"github.com/anonto42/nano-midea/feed/internal/models"
	"github.com/anonto42/nano-midea/feed/internal/repositories"
	"github.com/anonto42/nano-midea/feed/internal/router"
	"github.com/anonto42/nano-midea/feed/pkg/config"
	"github.com/anonto42/nano-midea/feed/pkg/firebase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger := config.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize databases")
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	if err := db.AutoMigrate(&models.User{}, &models.Comment{}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate PostgreSQL")
	}

	posts, users, comments := buildRepositories(ctx, cfg, db, logger)

	metrics.MustRegister(prometheus.DefaultRegisterer)
	metrics.StartServer(ctx, logger, ":"+cfg.MetricsPort)

	ranker := feed.NewRanker(posts, users, feed.Options{
		DefaultBatchSize: cfg.FeedDefaultBatch,
		MaxBatchSize:     cfg.FeedMaxBatch,
		QueryTimeout:     cfg.FeedQueryTimeout,
		Weights: feed.ScoreWeights{
			Like:    cfg.PopularLikeWeight,
			Comment: cfg.PopularCommentWeight,
			View:    cfg.PopularViewWeight,
		},
	}, logger)

	var feedService handlers.FeedService = ranker
	if db.Redis != nil {
		feedService = cache.NewFeedCache(ranker, db.Redis, cfg.FeedCacheTTL, logger)
		logger.Info().Dur("ttl", cfg.FeedCacheTTL).Msg("Anonymous feed cache enabled")
	}

	resolvers := []middleware.TokenResolver{middleware.NewJWTResolver(cfg.JWTSecret)}
	if cfg.FirebaseCredentialsPath != "" {
		authClient, err := firebase.NewAuthClient(ctx, firebase.Config{
			CredentialsPath: cfg.FirebaseCredentialsPath,
			ProjectID:       cfg.FirebaseProjectID,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize Firebase")
		}
		resolvers = append(resolvers, middleware.NewFirebaseResolver(authClient, users))
		logger.Info().Msg("Firebase ID tokens accepted")
	}

	e := router.New(router.Dependencies{
		Posts:    posts,
		Users:    users,
		Comments: comments,
		Feed:     feedService,
		Auth:     middleware.NewAuthenticator(logger, resolvers...),
		Logger:   logger,
	})

	go func() {
		logger.Info().Str("port", cfg.Port).Str("storage", cfg.Storage).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

func buildRepositories(ctx context.Context, cfg *config.Config, db *config.DB, logger zerolog.Logger) (repositories.PostRepository, repositories.UserRepository, repositories.CommentRepository) {
	if cfg.Storage == "memory" {
		logger.Warn().Msg("Using in-memory storage, data is lost on restart")
		return repositories.NewMemoryPostRepository(), repositories.NewMemoryUserRepository(), repositories.NewMemoryCommentRepository()
	}

	postRepo := repositories.NewMongoPostRepository(db.Mongo.Database(cfg.MongoDatabase))
	if err := postRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create post indexes")
	}
	return postRepo, repositories.NewPostgresUserRepository(db.Postgres), repositories.NewPostgresCommentRepository(db.Postgres)
}
