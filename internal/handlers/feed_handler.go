package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/anonto42/nano-midea/feed/internal/feed"
	"github.com/labstack/echo/v4"
)

// FeedService builds feed pages
type FeedService interface {
	Feed(ctx context.Context, req feed.Request) (*feed.Page, error)
}

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	feedService FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feedService FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group, optionalAuth echo.MiddlewareFunc) {
	g.GET("/feed", h.GetFeed, optionalAuth)
}

// FeedQuery holds the feed query parameters
type FeedQuery struct {
	Sort   string `query:"sort" validate:"omitempty,max=16"`
	Tag    string `query:"tag" validate:"omitempty,max=32"`
	Cursor string `query:"cursor" validate:"omitempty,max=128"`
	Batch  string `query:"batch"`
}

// GetFeed returns one page of the ranked feed for the current viewer
func (h *FeedHandler) GetFeed(c echo.Context) error {
	var q FeedQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	req := feed.Request{
		Sort:     feed.SortMode(q.Sort),
		Tag:      q.Tag,
		Cursor:   q.Cursor,
		ViewerID: getUserIDFromContext(c),
	}
	if q.Batch != "" {
		batch, err := strconv.Atoi(q.Batch)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "batch must be a positive integer")
		}
		req.BatchSize = &batch
	}

	page, err := h.feedService.Feed(c.Request().Context(), req)
	if err != nil {
		return feedHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}
