package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	engagementEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bonsai_engagement_events_total",
		Help: "Likes, comments and subscriptions by event type.",
	}, []string{"event"})

	sideStepFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bonsai_side_step_failures_total",
		Help: "Best-effort steps (indexing, cleanup, theme sync) that failed without failing the request.",
	}, []string{"op", "step"})
)
