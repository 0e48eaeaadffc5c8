package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/feed/internal/repositories"
	"github.com/labstack/echo/v4"
)

// SavedPostHandler handles bookmark HTTP requests
type SavedPostHandler struct {
	postRepository repositories.PostRepository
}

// NewSavedPostHandler creates a new SavedPostHandler
func NewSavedPostHandler(postRepo repositories.PostRepository) *SavedPostHandler {
	return &SavedPostHandler{postRepository: postRepo}
}

// RegisterSavedPostRoutes registers bookmark routes
func (h *SavedPostHandler) RegisterSavedPostRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/posts/:id/bookmark", h.SavePost, requireAuth)
	g.DELETE("/posts/:id/bookmark", h.UnsavePost, requireAuth)
}

// SavePost bookmarks a post
func (h *SavedPostHandler) SavePost(c echo.Context) error {
	added, err := h.postRepository.AddBookmark(c.Request().Context(), c.Param("id"), getUserIDFromContext(c))
	if err != nil {
		return postHTTPError(err)
	}
	if !added {
		return echo.NewHTTPError(http.StatusConflict, "Post already saved")
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"saved": true}})
}

// UnsavePost removes a bookmark
func (h *SavedPostHandler) UnsavePost(c echo.Context) error {
	removed, err := h.postRepository.RemoveBookmark(c.Request().Context(), c.Param("id"), getUserIDFromContext(c))
	if err != nil {
		return postHTTPError(err)
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "Saved post not found")
	}
	return c.NoContent(http.StatusNoContent)
}
