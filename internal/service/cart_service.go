package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/freshharvest/internal/datamodels/cart"
)

// CartView 返回给前台的购物车状态，角标和金额随每次变更一起算好
type CartView struct {
	Items  []cart.Item `json:"items"`
	Totals cart.Totals `json:"totals"`
	Count  int64       `json:"count"`
}

// CartService 购物车引擎的服务封装
// 每次操作按 读取 -> 内存变更 -> 持久化 的顺序执行，
// 操作返回后持久化状态与内存状态一定一致
type CartService struct {
	catalog     *CatalogService
	store       cart.Store
	events      EventPublisher
	shippingFee float64
}

// NewCartService 创建购物车服务
func NewCartService(catalog *CatalogService, store cart.Store, events EventPublisher, shippingFee float64) *CartService {
	if events == nil {
		events = NopPublisher{}
	}
	return &CartService{
		catalog:     catalog,
		store:       store,
		events:      events,
		shippingFee: shippingFee,
	}
}

func (s *CartService) load(ctx context.Context, key string) (*cart.Cart, error) {
	items, err := s.store.Load(ctx, key)
	if err != nil {
		GetMonitor().RecordStoreError()
		return nil, err
	}
	return cart.New(s.shippingFee, items), nil
}

func (s *CartService) save(ctx context.Context, key string, c *cart.Cart) error {
	if err := s.store.Save(ctx, key, c.Items()); err != nil {
		GetMonitor().RecordStoreError()
		return err
	}
	return nil
}

func (s *CartService) view(c *cart.Cart) *CartView {
	return &CartView{
		Items:  c.Items(),
		Totals: c.Totals(),
		Count:  c.ItemCount(),
	}
}

// Get 当前购物车状态
func (s *CartService) Get(ctx context.Context, key string) (*CartView, error) {
	c, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.view(c), nil
}

// Add 加购。商品不在目录中时静默跳过，返回未变化的购物车
func (s *CartService) Add(ctx context.Context, key, productID string, qty int64) (*CartView, error) {
	c, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	p, err := s.catalog.Get(ctx, productID)
	if err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	if p == nil {
		return s.view(c), nil
	}
	if qty <= 0 {
		qty = 1
	}
	c.Add(p, qty)
	if err := s.save(ctx, key, c); err != nil {
		return nil, err
	}

	if err := s.events.Publish(ctx, EventAddToCart, &AddToCartPayload{
		ProductID: cart.FormatID(p.ID),
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price,
		Quantity:  qty,
	}); err != nil {
		// 事件投递失败不影响购物车操作本身
		zap.L().Warn("publish add_to_cart event failed", zap.Error(err))
	}
	return s.view(c), nil
}

// Remove 删除整行，商品不在购物车中时静默跳过
func (s *CartService) Remove(ctx context.Context, key, productID string) (*CartView, error) {
	c, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}

	var removed *cart.Item
	for _, it := range c.Items() {
		if it.ProductID == cart.NormalizeID(productID) {
			tmp := it
			removed = &tmp
			break
		}
	}

	if !c.Remove(productID) {
		return s.view(c), nil
	}
	if err := s.save(ctx, key, c); err != nil {
		return nil, err
	}

	if removed != nil {
		if err := s.events.Publish(ctx, EventRemoveFromCart, &RemoveFromCartPayload{
			ProductID: removed.ProductID,
			Name:      removed.Name,
			Value:     removed.Price * float64(removed.Quantity),
			Quantity:  removed.Quantity,
		}); err != nil {
			zap.L().Warn("publish remove_from_cart event failed", zap.Error(err))
		}
	}
	return s.view(c), nil
}

// ChangeQuantity 数量增减，减到 0 以下等同于删除该行
func (s *CartService) ChangeQuantity(ctx context.Context, key, productID string, delta int64) (*CartView, error) {
	c, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	c.ChangeQuantity(productID, delta)
	if err := s.save(ctx, key, c); err != nil {
		return nil, err
	}
	return s.view(c), nil
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, key string) error {
	if err := s.store.Clear(ctx, key); err != nil {
		GetMonitor().RecordStoreError()
		return err
	}
	return nil
}
