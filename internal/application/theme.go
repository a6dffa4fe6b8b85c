package application

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
)

// ThemeChange is broadcast when a user's theme is set or restored at sign-in.
type ThemeChange struct {
	UserID string       `json:"user_id"`
	Theme  entity.Theme `json:"theme"`
}

type ThemeObserver interface {
	ThemeChanged(ctx context.Context, change ThemeChange) error
}

type ThemeObserverFunc func(ctx context.Context, change ThemeChange) error

func (f ThemeObserverFunc) ThemeChanged(ctx context.Context, change ThemeChange) error {
	return f(ctx, change)
}

// ThemeHub fans theme changes out to registered observers. Delivery is
// best-effort: observer failures are logged and never reach the caller.
type ThemeHub struct {
	mu        sync.RWMutex
	next      int
	observers map[int]ThemeObserver
	logger    *logrus.Logger
}

func NewThemeHub(logger *logrus.Logger) *ThemeHub {
	return &ThemeHub{observers: map[int]ThemeObserver{}, logger: logger}
}

// Subscribe registers o and returns a function that removes it.
func (h *ThemeHub) Subscribe(o ThemeObserver) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	h.observers[id] = o
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.observers, id)
	}
}

func (h *ThemeHub) Publish(ctx context.Context, change ThemeChange) {
	h.mu.RLock()
	observers := make([]ThemeObserver, 0, len(h.observers))
	for _, o := range h.observers {
		observers = append(observers, o)
	}
	h.mu.RUnlock()

	for _, o := range observers {
		if err := o.ThemeChanged(ctx, change); err != nil {
			sideStepFailures.WithLabelValues("theme_sync", "notify observer").Inc()
			if h.logger != nil {
				h.logger.WithError(err).WithField("user_id", change.UserID).Warn("theme observer failed")
			}
		}
	}
}

// ThemeChannel is the Redis pub/sub channel carrying ThemeChange payloads.
const ThemeChannel = "bonsai:theme"

// RedisThemeObserver republishes theme changes so every API instance and
// connected client can pick them up.
type RedisThemeObserver struct {
	Client  *redis.Client
	Channel string
}

func (r RedisThemeObserver) ThemeChanged(ctx context.Context, change ThemeChange) error {
	b, err := json.Marshal(change)
	if err != nil {
		return err
	}
	ch := r.Channel
	if ch == "" {
		ch = ThemeChannel
	}
	return r.Client.Publish(ctx, ch, b).Err()
}
