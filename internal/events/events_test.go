package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zabecode/dac/internal/cache"
	"github.com/zabecode/dac/internal/events"
)

type captureCache struct {
	channel string
	payload []byte
	err     error
}

func (c *captureCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }
func (c *captureCache) Get(_ context.Context, _ string) ([]byte, bool, error)            { return nil, false, nil }
func (c *captureCache) Delete(_ context.Context, _ string) error                          { return nil }
func (c *captureCache) Ping(_ context.Context) error                                      { return nil }
func (c *captureCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 1, nil
}
func (c *captureCache) Publish(_ context.Context, channel string, payload []byte) error {
	c.channel = channel
	c.payload = payload
	return c.err
}

var _ cache.Cache = (*captureCache)(nil)

func TestDashboardRefresh_PublishesEvent(t *testing.T) {
	cc := &captureCache{}
	n := events.NewRedisNotifier(cc)

	n.DashboardRefresh(context.Background(), "acme")

	assert.Equal(t, cache.DashboardChannel, cc.channel)

	var event events.DashboardRefreshEvent
	require.NoError(t, json.Unmarshal(cc.payload, &event))
	assert.Equal(t, "acme", event.Identifier)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.At.IsZero())
}

func TestDashboardRefresh_SwallowsPublishError(t *testing.T) {
	cc := &captureCache{err: errors.New("redis down")}
	n := events.NewRedisNotifier(cc)

	// Must not panic or fail the caller
	n.DashboardRefresh(context.Background(), "acme")
	assert.NotNil(t, cc.payload)
}

func TestNoopNotifier(t *testing.T) {
	events.NoopNotifier{}.DashboardRefresh(context.Background(), "acme")
}
