package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bonsai-buddy/internal/container"
	handlers "github.com/oksasatya/bonsai-buddy/internal/interface/http"
	"github.com/oksasatya/bonsai-buddy/internal/interface/middleware"
)

// AuthModule wires the session lifecycle.
// Public: POST /api/auth/register, /api/login, /api/refresh, /api/auth/reset/*
// Protected: POST /api/logout, GET /api/me
type AuthModule struct {
	Handler *handlers.AuthHandler
	Auth    middleware.Authenticator
}

func NewAuthModule(h *handlers.AuthHandler, auth middleware.Authenticator) *AuthModule {
	return &AuthModule{Handler: h, Auth: auth}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	registerLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIP(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIP(), nil)
	resetInitLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetConfirmLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)
	rg.POST("/logout", middleware.OptionalAuth(m.Auth), m.Handler.Logout)
	rg.POST("/auth/reset/init", resetInitLimiter, m.Handler.ResetInit)
	rg.POST("/auth/reset/confirm", resetConfirmLimiter, m.Handler.ResetConfirm)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Auth))
	{
		auth.GET("/me", m.Handler.Me)
	}
}
