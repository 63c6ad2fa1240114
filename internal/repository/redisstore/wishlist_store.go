package redisstore

import (
	"context"
	"fmt"

	radix "github.com/mediocregopher/radix/v3"
)

const wishlistKeyPrefix = "wishlist:"

// WishlistStore 基于 Redis 集合的会话收藏夹
// 每个会话一个 set，成员是规范化后的商品号，不设过期时间
type WishlistStore struct {
	redis radix.Client
}

// NewWishlistStore 创建收藏夹存储
func NewWishlistStore(redis radix.Client) *WishlistStore {
	return &WishlistStore{redis: redis}
}

func wishlistKey(key string) string {
	return wishlistKeyPrefix + key
}

// Toggle 收藏/取消收藏切换，返回切换后是否处于已收藏状态
func (s *WishlistStore) Toggle(ctx context.Context, key, productID string) (bool, error) {
	var added int
	if err := s.redis.Do(radix.Cmd(&added, "SADD", wishlistKey(key), productID)); err != nil {
		return false, fmt.Errorf("toggle wishlist %s: %w", key, err)
	}
	if added == 1 {
		return true, nil
	}
	// 已在集合中，本次切换为取消收藏
	if err := s.redis.Do(radix.Cmd(nil, "SREM", wishlistKey(key), productID)); err != nil {
		return false, fmt.Errorf("toggle wishlist %s: %w", key, err)
	}
	return false, nil
}

// List 当前收藏的商品号集合
func (s *WishlistStore) List(ctx context.Context, key string) ([]string, error) {
	var ids []string
	if err := s.redis.Do(radix.Cmd(&ids, "SMEMBERS", wishlistKey(key))); err != nil {
		return nil, fmt.Errorf("list wishlist %s: %w", key, err)
	}
	return ids, nil
}
