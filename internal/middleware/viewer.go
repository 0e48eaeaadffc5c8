package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ViewerIDKey is the echo context key holding the authenticated user ID.
const ViewerIDKey = "viewerID"

// TokenResolver maps a bearer token to a user ID.
type TokenResolver interface {
	ResolveViewer(ctx context.Context, token string) (uint, error)
}

// Authenticator tries each resolver in turn until one accepts the token.
type Authenticator struct {
	resolvers []TokenResolver
	logger    zerolog.Logger
}

// NewAuthenticator creates an Authenticator. Nil resolvers are ignored.
func NewAuthenticator(logger zerolog.Logger, resolvers ...TokenResolver) *Authenticator {
	a := &Authenticator{logger: logger.With().Str("component", "auth").Logger()}
	for _, r := range resolvers {
		if r != nil {
			a.resolvers = append(a.resolvers, r)
		}
	}
	return a
}

// Required rejects requests without a valid bearer token.
func (a *Authenticator) Required() echo.MiddlewareFunc {
	return a.middleware(false)
}

// Optional lets requests without an Authorization header through as
// anonymous. A header that is present but invalid is still rejected.
func (a *Authenticator) Optional() echo.MiddlewareFunc {
	return a.middleware(true)
}

func (a *Authenticator) middleware(allowAnonymous bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				if allowAnonymous {
					return next(c)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			viewerID, err := a.resolve(c.Request().Context(), parts[1])
			if err != nil {
				a.logger.Debug().Err(err).Msg("token rejected")
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(ViewerIDKey, viewerID)
			return next(c)
		}
	}
}

func (a *Authenticator) resolve(ctx context.Context, token string) (uint, error) {
	var lastErr error
	for _, r := range a.resolvers {
		viewerID, err := r.ResolveViewer(ctx, token)
		if err == nil {
			return viewerID, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = echo.ErrUnauthorized
	}
	return 0, lastErr
}

// ViewerID returns the authenticated user ID, or 0 for anonymous requests.
func ViewerID(c echo.Context) uint {
	if id, ok := c.Get(ViewerIDKey).(uint); ok {
		return id
	}
	return 0
}
