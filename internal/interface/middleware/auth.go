package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bonsai-buddy/internal/application"
	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/pkg/response"
)

const (
	CtxUserIDKey = "userID"
	CtxViewerKey = "viewer"
)

// Authenticator resolves an access token to the identity behind it.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (application.Viewer, error)
}

// accessToken reads the access_token cookie, falling back to a Bearer header.
func accessToken(c *gin.Context) string {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func setViewer(c *gin.Context, v application.Viewer) {
	c.Set(CtxViewerKey, v)
	c.Set(CtxUserIDKey, v.UserID)
}

// Auth requires a valid access token backed by a live session and puts the
// Viewer into the Gin context.
func Auth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := auth.Authenticate(c.Request.Context(), accessToken(c))
		if err != nil {
			response.Fail(c, err)
			return
		}
		setViewer(c, v)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a usable token is present and lets
// anonymous requests through. A session store outage still fails the request.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if token == "" {
			c.Next()
			return
		}
		v, err := auth.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
			setViewer(c, v)
		case apperror.KindOf(err) == apperror.KindUpstreamUnavailable:
			response.Fail(c, err)
			return
		}
		c.Next()
	}
}

// ViewerFrom returns the Viewer set by Auth or OptionalAuth, or the anonymous
// Viewer when there is none.
func ViewerFrom(c *gin.Context) application.Viewer {
	if v, ok := c.Get(CtxViewerKey); ok {
		if viewer, ok := v.(application.Viewer); ok {
			return viewer
		}
	}
	return application.Viewer{}
}
