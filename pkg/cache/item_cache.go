package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultItemCacheTTL applies when NewItemCache is given no TTL.
	DefaultItemCacheTTL = 24 * time.Hour

	itemCacheKeyPrefix = "item"
)

// CachedItem is the read model of an item kept in Redis as a hash under
// "item:{orgID}:{itemID}".
type CachedItem struct {
	ID        uuid.UUID `json:"id"`
	OrgID     uuid.UUID `json:"org_id"`
	ItemType  string    `json:"item_type"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemCache is the read-through cache in front of the item repository. The
// API evicts entries on save and delete; the worker re-warms them from
// item.saved events.
type ItemCache struct {
	client *RedisClient
	ttl    time.Duration
}

func NewItemCache(r *RedisClient, ttl time.Duration) *ItemCache {
	if ttl <= 0 {
		ttl = DefaultItemCacheTTL
	}
	return &ItemCache{client: r, ttl: ttl}
}

// Get returns redis.Nil when the entry is missing or expired.
func (c *ItemCache) Get(ctx context.Context, orgID, itemID uuid.UUID) (*CachedItem, error) {
	vals, err := c.client.Client().HGetAll(ctx, itemKey(orgID, itemID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil
	}
	return decodeCachedItem(vals)
}

// Set writes the hash and its expiry in one MULTI so readers never see a
// partial entry.
func (c *ItemCache) Set(ctx context.Context, item *CachedItem) error {
	key := itemKey(item.OrgID, item.ID)
	pipe := c.client.Client().TxPipeline()
	pipe.HSet(ctx, key, encodeCachedItem(item))
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *ItemCache) Delete(ctx context.Context, orgID, itemID uuid.UUID) error {
	if err := c.client.Client().Del(ctx, itemKey(orgID, itemID)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

func itemKey(orgID, itemID uuid.UUID) string {
	return itemCacheKeyPrefix + ":" + orgID.String() + ":" + itemID.String()
}

func encodeCachedItem(item *CachedItem) map[string]any {
	return map[string]any{
		"id":         item.ID.String(),
		"org_id":     item.OrgID.String(),
		"item_type":  item.ItemType,
		"title":      item.Title,
		"created_at": item.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at": item.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func decodeCachedItem(vals map[string]string) (*CachedItem, error) {
	item := &CachedItem{ItemType: vals["item_type"], Title: vals["title"]}

	var err error
	if item.ID, err = uuid.Parse(vals["id"]); err != nil {
		return nil, fmt.Errorf("cache parse id: %w", err)
	}
	if item.OrgID, err = uuid.Parse(vals["org_id"]); err != nil {
		return nil, fmt.Errorf("cache parse org_id: %w", err)
	}
	if item.CreatedAt, err = time.Parse(time.RFC3339Nano, vals["created_at"]); err != nil {
		return nil, fmt.Errorf("cache parse created_at: %w", err)
	}
	if item.UpdatedAt, err = time.Parse(time.RFC3339Nano, vals["updated_at"]); err != nil {
		return nil, fmt.Errorf("cache parse updated_at: %w", err)
	}
	return item, nil
}
