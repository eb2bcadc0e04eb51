package media

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultListKey = "media:list"

// RedisStore persists the catalog as a Redis list, newest at the head. List
// scans the whole list and filters before paginating so pages are never
// under-filled; for a club-sized catalog one full scan per page is fine.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore wires the catalog to an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, key: defaultListKey}
}

// Add left-pushes the serialized item so the list stays newest-first.
func (s *RedisStore) Add(ctx context.Context, item *Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("media: marshal item: %w", err)
	}
	if err := s.client.LPush(ctx, s.key, data).Err(); err != nil {
		return fmt.Errorf("media: LPUSH failed: %w", err)
	}
	return nil
}

// List fetches the full list, decodes it (skipping corrupt entries), then
// filters and paginates with the same cursor semantics as the memory backend.
func (s *RedisStore) List(ctx context.Context, q Query) ([]*Item, string, error) {
	raw, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, "", fmt.Errorf("media: LRANGE failed: %w", err)
	}

	items := make([]*Item, 0, len(raw))
	for _, entry := range raw {
		var it Item
		if err := json.Unmarshal([]byte(entry), &it); err != nil {
			continue
		}
		items = append(items, &it)
	}

	page, next := paginate(filterItems(items, q), q.Limit, q.Cursor)
	return page, next, nil
}
