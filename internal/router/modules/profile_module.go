package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bonsai-buddy/internal/container"
	handlers "github.com/oksasatya/bonsai-buddy/internal/interface/http"
	"github.com/oksasatya/bonsai-buddy/internal/interface/middleware"
)

// ProfileModule serves the caller's own profile and preferences plus the
// public user directory.
type ProfileModule struct {
	Handler *handlers.ProfileHandler
	Auth    middleware.Authenticator
}

func NewProfileModule(h *handlers.ProfileHandler, auth middleware.Authenticator) *ProfileModule {
	return &ProfileModule{Handler: h, Auth: auth}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	public := rg.Group("/users")
	public.Use(
		middleware.OptionalAuth(m.Auth),
		middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByIP(), nil),
	)
	{
		public.GET("/search", m.Handler.Search)
		public.GET("/:id", m.Handler.UserPage)
	}

	auth := rg.Group("/profile")
	auth.Use(
		middleware.Auth(m.Auth),
		middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("", m.Handler.GetProfile)
		auth.PUT("", m.Handler.UpdateProfile)
		auth.POST("/avatar", middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByUserID(), nil), m.Handler.UploadAvatar)
		auth.GET("/preferences", m.Handler.Preferences)
		auth.PUT("/theme", m.Handler.SetTheme)
		auth.PUT("/privacy", m.Handler.SetPrivacy)
		auth.PUT("/email-preferences", m.Handler.SetEmailPreferences)
		auth.PUT("/notification-settings", m.Handler.SetNotificationSettings)
	}
}
