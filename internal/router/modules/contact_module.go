package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bonsai-buddy/internal/container"
	handlers "github.com/oksasatya/bonsai-buddy/internal/interface/http"
	"github.com/oksasatya/bonsai-buddy/internal/interface/middleware"
)

type ContactModule struct {
	Handler *handlers.ContactHandler
}

func NewContactModule(h *handlers.ContactHandler) *ContactModule {
	return &ContactModule{Handler: h}
}

func (m *ContactModule) Register(rg *gin.RouterGroup) {
	limiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIP(), nil)
	rg.POST("/contact", limiter, m.Handler.Submit)
}
