package service

import (
	"context"

	"github.com/example/freshharvest/internal/datamodels/cart"
	"github.com/example/freshharvest/internal/datamodels/product"
)

// WishlistStore 会话收藏夹存储接口
type WishlistStore interface {
	Toggle(ctx context.Context, key, productID string) (bool, error)
	List(ctx context.Context, key string) ([]string, error)
}

// WishlistService 收藏夹服务，按会话维护一个商品号集合
type WishlistService struct {
	store   WishlistStore
	catalog *CatalogService
}

// NewWishlistService 创建收藏夹服务
func NewWishlistService(store WishlistStore, catalog *CatalogService) *WishlistService {
	return &WishlistService{store: store, catalog: catalog}
}

// Toggle 收藏/取消收藏切换，返回切换后是否已收藏
func (s *WishlistService) Toggle(ctx context.Context, key, productID string) (bool, error) {
	added, err := s.store.Toggle(ctx, key, cart.NormalizeID(productID))
	if err != nil {
		GetMonitor().RecordStoreError()
		return false, err
	}
	return added, nil
}

// List 收藏的商品明细，商品已下架的条目直接跳过
func (s *WishlistService) List(ctx context.Context, key string) ([]*product.Product, error) {
	ids, err := s.store.List(ctx, key)
	if err != nil {
		GetMonitor().RecordStoreError()
		return nil, err
	}
	out := make([]*product.Product, 0, len(ids))
	for _, id := range ids {
		p, err := s.catalog.Get(ctx, id)
		if err != nil {
			GetMonitor().RecordDBError()
			return nil, err
		}
		if p == nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
