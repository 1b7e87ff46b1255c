package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// InventoryCacheTTL bounds staleness if an invalidation is lost.
	InventoryCacheTTL = 10 * time.Minute

	inventoryCacheKeyPrefix = "inventory"
)

// CachedSupplyTotal is the per-supply row of an agency's inventory summary.
type CachedSupplyTotal struct {
	SupplyID      uuid.UUID `json:"supply_id"`
	SupplyName    string    `json:"supply_name"`
	SKU           string    `json:"sku"`
	CategoryName  string    `json:"category_name"`
	TotalQuantity int       `json:"total_quantity"`
	TotalParLevel int       `json:"total_par_level"`
}

// InventoryCache stores each agency's inventory summary as one JSON value.
// Key format: "inventory:{agencyID}:totals"
type InventoryCache struct {
	client *RedisClient
}

// NewInventoryCache creates a new InventoryCache backed by the given RedisClient.
func NewInventoryCache(r *RedisClient) *InventoryCache {
	return &InventoryCache{client: r}
}

// Get returns the cached summary for agencyID, or redis.Nil on a miss.
func (c *InventoryCache) Get(ctx context.Context, agencyID uuid.UUID) ([]CachedSupplyTotal, error) {
	var totals []CachedSupplyTotal
	if err := c.client.GetJSON(ctx, c.key(agencyID), &totals); err != nil {
		return nil, err
	}
	return totals, nil
}

// Set replaces the cached summary for agencyID.
func (c *InventoryCache) Set(ctx context.Context, agencyID uuid.UUID, totals []CachedSupplyTotal) error {
	return c.client.SetJSON(ctx, c.key(agencyID), totals, InventoryCacheTTL)
}

// Invalidate drops the cached summary for agencyID.
func (c *InventoryCache) Invalidate(ctx context.Context, agencyID uuid.UUID) error {
	return c.client.Delete(ctx, c.key(agencyID))
}

func (c *InventoryCache) key(agencyID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:totals", inventoryCacheKeyPrefix, agencyID)
}
