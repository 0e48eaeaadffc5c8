package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/nano-midea/feed/internal/feed"
	"github.com/anonto42/nano-midea/feed/internal/middleware"
	"github.com/anonto42/nano-midea/feed/internal/models"
	"github.com/anonto42/nano-midea/feed/internal/repositories"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext returns the viewer's user ID, 0 when anonymous.
func getUserIDFromContext(c echo.Context) uint {
	return middleware.ViewerID(c)
}

// feedHTTPError maps feed errors onto HTTP statuses. Store failures are
// retryable and say so.
func feedHTTPError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, feed.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, feed.ErrStoreUnavailable), errors.Is(err, context.DeadlineExceeded):
		c.Response().Header().Set("Retry-After", "1")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Feed temporarily unavailable, retry later")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// postHTTPError maps repository errors for single-post routes.
func postHTTPError(err error) error {
	if errors.Is(err, repositories.ErrPostNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// projectPost resolves the author and projects p for the viewer.
func projectPost(ctx context.Context, users repositories.UserRepository, p *models.Post, viewerID uint) (models.FeedPost, error) {
	author := models.UserCompact{ID: p.AuthorID}
	user, err := users.GetUserByID(ctx, p.AuthorID)
	switch {
	case err == nil:
		author = user.ToCompact()
	case !errors.Is(err, repositories.ErrUserNotFound):
		return models.FeedPost{}, err
	}
	return feed.Project(p, author, viewerID), nil
}
