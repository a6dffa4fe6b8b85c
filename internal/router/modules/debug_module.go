package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oksasatya/bonsai-buddy/internal/container"
	"github.com/oksasatya/bonsai-buddy/internal/interface/middleware"
)

// DebugModule serves expvar and Prometheus metrics. Unless Public is set
// only private network callers can reach them.
type DebugModule struct {
	Public bool
}

func NewDebugModule(public bool) *DebugModule { return &DebugModule{Public: public} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	var guard middleware.AllowFunc
	if !m.Public {
		guard = middleware.AllowPrivateIP()
	}
	only := middleware.OnlyIf(guard)
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", only, rl, gin.WrapH(expvar.Handler()))
	rg.GET("/metrics", only, rl, gin.WrapH(promhttp.Handler()))
}
