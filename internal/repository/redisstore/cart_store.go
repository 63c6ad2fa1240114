package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	radix "github.com/mediocregopher/radix/v3"

	"github.com/example/freshharvest/internal/datamodels/cart"
)

const cartKeyPrefix = "cart:"

// CartStore 基于 Redis 的购物车持久化存储
// 每个会话一个 key，整个行项序列以 JSON 存取，不设过期时间
type CartStore struct {
	redis radix.Client
}

// NewCartStore 创建购物车存储
func NewCartStore(redis radix.Client) *CartStore {
	return &CartStore{redis: redis}
}

func cartKey(key string) string {
	return cartKeyPrefix + key
}

// Load 读取会话购物车，key 不存在时返回空序列
func (s *CartStore) Load(ctx context.Context, key string) ([]cart.Item, error) {
	var raw string
	if err := s.redis.Do(radix.Cmd(&raw, "GET", cartKey(key))); err != nil {
		return nil, fmt.Errorf("load cart %s: %w", key, err)
	}
	if raw == "" {
		return nil, nil
	}
	var items []cart.Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		// 数据损坏时清掉，按空购物车处理
		_ = s.redis.Do(radix.Cmd(nil, "DEL", cartKey(key)))
		return nil, nil
	}
	return items, nil
}

// Save 整体覆盖写入，空序列直接删 key
func (s *CartStore) Save(ctx context.Context, key string, items []cart.Item) error {
	if len(items) == 0 {
		return s.Clear(ctx, key)
	}
	body, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart %s: %w", key, err)
	}
	if err := s.redis.Do(radix.FlatCmd(nil, "SET", cartKey(key), body)); err != nil {
		return fmt.Errorf("save cart %s: %w", key, err)
	}
	return nil
}

// Clear 删除会话购物车
func (s *CartStore) Clear(ctx context.Context, key string) error {
	if err := s.redis.Do(radix.Cmd(nil, "DEL", cartKey(key))); err != nil {
		return fmt.Errorf("clear cart %s: %w", key, err)
	}
	return nil
}
