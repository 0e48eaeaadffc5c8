package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/feed/internal/repositories"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	postRepository repositories.PostRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(postRepo repositories.PostRepository) *LikeHandler {
	return &LikeHandler{postRepository: postRepo}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/posts/:id/likes", h.LikePost, requireAuth)
	g.DELETE("/posts/:id/likes", h.UnlikePost, requireAuth)
}

// LikePost handles liking a post. The store adds the viewer to the likers
// set atomically, so a repeated like is a conflict rather than a duplicate.
func (h *LikeHandler) LikePost(c echo.Context) error {
	added, err := h.postRepository.AddLike(c.Request().Context(), c.Param("id"), getUserIDFromContext(c))
	if err != nil {
		return postHTTPError(err)
	}
	if !added {
		return echo.NewHTTPError(http.StatusConflict, "Post already liked by this user")
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"liked": true}})
}

// UnlikePost handles unliking a post
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	removed, err := h.postRepository.RemoveLike(c.Request().Context(), c.Param("id"), getUserIDFromContext(c))
	if err != nil {
		return postHTTPError(err)
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "Like not found")
	}
	return c.NoContent(http.StatusNoContent)
}
