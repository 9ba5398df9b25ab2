package healthcheck

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func healthyChecker(name string) Checker {
	return NewPingChecker(name, func(ctx context.Context) error {
		return nil
	})
}

func unhealthyChecker(name string) Checker {
	return NewPingChecker(name, func(ctx context.Context) error {
		return errors.New("connection refused")
	})
}

func TestCheckAllHealthy(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	hc.Register("mongodb", healthyChecker("mongodb"))
	hc.Register("redis", healthyChecker("redis"))

	response := hc.Check(context.Background())

	assert.Equal(t, StatusHealthy, response.Status)
	assert.Equal(t, "1.0.0", response.Version)
	assert.Len(t, response.Checks, 2)
}

func TestCheckUnhealthyDependency(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	hc.Register("mongodb", healthyChecker("mongodb"))
	hc.Register("redis", unhealthyChecker("redis"))

	response := hc.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, response.Status)

	var redisCheck *Check
	for i := range response.Checks {
		if response.Checks[i].Name == "redis" {
			redisCheck = &response.Checks[i]
		}
	}
	require.NotNil(t, redisCheck)
	assert.Equal(t, StatusUnhealthy, redisCheck.Status)
	assert.Contains(t, redisCheck.Message, "connection refused")
}

func TestCheckNoCheckers(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())

	response := hc.Check(context.Background())
	assert.Equal(t, StatusHealthy, response.Status)
	assert.Empty(t, response.Checks)
}

func TestCheckCaching(t *testing.T) {
	calls := 0
	hc := New("1.0.0", zap.NewNop())
	hc.SetCacheTTL(time.Minute)
	hc.Register("counter", NewPingChecker("counter", func(ctx context.Context) error {
		calls++
		return nil
	}))

	hc.Check(context.Background())
	hc.Check(context.Background())

	assert.Equal(t, 1, calls, "the second check within the TTL is served from cache")
}

func TestCheckCacheExpiry(t *testing.T) {
	calls := 0
	hc := New("1.0.0", zap.NewNop())
	hc.SetCacheTTL(time.Nanosecond)
	hc.Register("counter", NewPingChecker("counter", func(ctx context.Context) error {
		calls++
		return nil
	}))

	hc.Check(context.Background())
	time.Sleep(time.Millisecond)
	hc.Check(context.Background())

	assert.Equal(t, 2, calls)
}
