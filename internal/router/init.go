package router

import (
	"github.com/oksasatya/bonsai-buddy/internal/container"
	handlers "github.com/oksasatya/bonsai-buddy/internal/interface/http"
	"github.com/oksasatya/bonsai-buddy/internal/router/modules"
	"github.com/oksasatya/bonsai-buddy/pkg/helpers"
)

// InitModules builds the handlers from the container and registers every
// feature module. Call it once during startup, after the services are set.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	svc := container.GetServices()
	logger := container.GetLogger()
	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc, cookies, logger), svc.Auth))
	r.Add(modules.NewProfileModule(handlers.NewProfileHandler(svc, logger), svc.Auth))
	r.Add(modules.NewSpecimenModule(handlers.NewSpecimenHandler(svc, logger), svc.Auth))
	r.Add(modules.NewPostModule(handlers.NewPostHandler(svc, logger), handlers.NewCommentHandler(svc, logger), svc.Auth))
	r.Add(modules.NewContactModule(handlers.NewContactHandler(svc, logger)))
	r.Add(modules.NewDebugModule(cfg.DebugMetricsEnabled))
}
