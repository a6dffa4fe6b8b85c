package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bonsai-buddy/internal/container"
	handlers "github.com/oksasatya/bonsai-buddy/internal/interface/http"
	"github.com/oksasatya/bonsai-buddy/internal/interface/middleware"
)

// SpecimenModule exposes the catalogue and specimen subscriptions.
type SpecimenModule struct {
	Handler *handlers.SpecimenHandler
	Auth    middleware.Authenticator
}

func NewSpecimenModule(h *handlers.SpecimenHandler, auth middleware.Authenticator) *SpecimenModule {
	return &SpecimenModule{Handler: h, Auth: auth}
}

func (m *SpecimenModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	public := rg.Group("/specimens")
	public.Use(
		middleware.OptionalAuth(m.Auth),
		middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), nil),
	)
	{
		public.GET("", m.Handler.List)
		public.GET("/search", m.Handler.Search)
		public.GET("/:id", m.Handler.Get)
		public.GET("/:id/posts", m.Handler.Posts)
		public.GET("/:id/subscription", m.Handler.SubscriptionStatus)
	}

	auth := rg.Group("/specimens")
	auth.Use(
		middleware.Auth(m.Auth),
		middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("", middleware.RateLimit(rdb, 20, time.Minute, middleware.KeyByUserID(), nil), m.Handler.Create)
		auth.PATCH("/:id", m.Handler.Update)
		auth.DELETE("/:id", m.Handler.Delete)
		auth.POST("/:id/subscription", m.Handler.Subscribe)
		auth.DELETE("/:id/subscription", m.Handler.Unsubscribe)
	}
}
