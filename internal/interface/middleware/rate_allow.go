package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses the limiter (or guards an internal route) for
// loopback and RFC 1918 / RFC 4193 client addresses.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// OnlyIf lets a request through when allow approves it and answers 404
// otherwise, so the route looks absent to outsiders.
func OnlyIf(allow AllowFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if allow != nil && !allow(c) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.Next()
	}
}
