// Package events publishes domain events after successful commits. The
// dashboard refresh used to be a persistence side effect in the admin app;
// here it is an explicit notification emitted by the services.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/zabecode/dac/internal/cache"
)

// Notifier delivers post-commit notifications. Delivery is best-effort and
// must never fail the request that triggered it.
type Notifier interface {
	DashboardRefresh(ctx context.Context, identifier string)
}

// DashboardRefreshEvent is the payload published on the dashboard channel.
type DashboardRefreshEvent struct {
	ID         string    `json:"id"`
	Identifier string    `json:"identifier"`
	At         time.Time `json:"at"`
}

// RedisNotifier publishes events over redis pub/sub.
type RedisNotifier struct {
	cache cache.Cache
}

func NewRedisNotifier(c cache.Cache) *RedisNotifier {
	return &RedisNotifier{cache: c}
}

func (n *RedisNotifier) DashboardRefresh(ctx context.Context, identifier string) {
	event := DashboardRefreshEvent{
		ID:         uuid.NewString(),
		Identifier: identifier,
		At:         time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("marshal dashboard refresh event", "error", err)
		return
	}
	if err := n.cache.Publish(ctx, cache.DashboardChannel, payload); err != nil {
		slog.Warn("publish dashboard refresh event", "error", err, "identifier", identifier)
	}
}

// NoopNotifier discards all events.
type NoopNotifier struct{}

func (NoopNotifier) DashboardRefresh(context.Context, string) {}
