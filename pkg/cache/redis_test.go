package cache_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/emssupply/pkg/cache"
	"github.com/ghuser/emssupply/pkg/testutil"
)

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := cache.NewRedisClient(context.Background(), "not-a-valid-url")
	assert.Error(t, err)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	_, err := cache.NewRedisClient(context.Background(), "redis://localhost:19999")
	assert.Error(t, err)
}

func TestRedisIntegration(t *testing.T) {
	url := testutil.NewRedisURL(t)
	ctx := context.Background()

	rc, err := cache.NewRedisClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	require.NoError(t, rc.Ping(ctx))

	t.Run("json values", func(t *testing.T) {
		type station struct {
			Name  string `json:"name"`
			Units int    `json:"units"`
		}
		var got station
		err := rc.GetJSON(ctx, "missing", &got)
		assert.True(t, errors.Is(err, redis.Nil), "miss should be redis.Nil, got %v", err)

		require.NoError(t, rc.SetJSON(ctx, "station:1", station{Name: "Station 1", Units: 3}, 0))
		require.NoError(t, rc.GetJSON(ctx, "station:1", &got))
		assert.Equal(t, station{Name: "Station 1", Units: 3}, got)

		require.NoError(t, rc.Delete(ctx, "station:1", "never-set"))
		assert.ErrorIs(t, rc.GetJSON(ctx, "station:1", &got), redis.Nil)
	})

	t.Run("inventory cache", func(t *testing.T) {
		c := cache.NewInventoryCache(rc)
		agencyID := uuid.New()

		_, err := c.Get(ctx, agencyID)
		assert.ErrorIs(t, err, redis.Nil)

		want := []cache.CachedSupplyTotal{{SupplyID: uuid.New(), SupplyName: "Gauze 4x4", SKU: "GZ-44", TotalQuantity: 40, TotalParLevel: 60}}
		require.NoError(t, c.Set(ctx, agencyID, want))
		got, err := c.Get(ctx, agencyID)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		_, err = c.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, redis.Nil, "summaries are per agency")

		require.NoError(t, c.Invalidate(ctx, agencyID))
		_, err = c.Get(ctx, agencyID)
		assert.ErrorIs(t, err, redis.Nil)
	})
}
