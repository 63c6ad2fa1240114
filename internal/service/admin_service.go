package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/freshharvest/internal/datamodels/order"
	"github.com/example/freshharvest/internal/datamodels/product"
)

// AdminStats 订单看板统计，始终基于完整镜像计算，不受搜索过滤影响
type AdminStats struct {
	TotalOrders   int     `json:"total_orders"`
	TotalRevenue  float64 `json:"total_revenue"` // 不含 cancelled 订单
	PendingOrders int     `json:"pending_orders"`
}

// ProductFields 后台商品表单
type ProductFields struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Unit     string  `json:"unit"`
	Image    string  `json:"image"`
}

// Validate 校验商品表单
func (f *ProductFields) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if f.Price <= 0 {
		return fmt.Errorf("price must be positive")
	}
	return nil
}

func (f *ProductFields) applyTo(p *product.Product) {
	p.Name = strings.TrimSpace(f.Name)
	p.Price = f.Price
	p.Category = f.Category
	p.Unit = f.Unit
	p.Image = f.Image
}

// AdminService 后台视图服务
// 持有订单和商品的本地镜像，镜像通过整表重载刷新；
// 订单状态走乐观更新：远端成功才打本地补丁，远端失败则丢弃镜像重载，
// 保证失败后镜像不会偏离远端状态
type AdminService struct {
	mu       sync.Mutex
	orders   order.Repository
	products product.Repository

	orderMirror   []*order.Order
	productMirror []*product.Product
	stats         AdminStats
}

// NewAdminService 创建后台服务
func NewAdminService(orders order.Repository, products product.Repository) *AdminService {
	return &AdminService{orders: orders, products: products}
}

// RefreshOrders 整表重载订单镜像（按创建时间倒序）并重算统计
func (s *AdminService) RefreshOrders(ctx context.Context) error {
	list, err := s.orders.ListAll(ctx)
	if err != nil {
		GetMonitor().RecordDBError()
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderMirror = list
	s.recomputeStatsLocked()
	return nil
}

// RefreshProducts 整表重载商品镜像
func (s *AdminService) RefreshProducts(ctx context.Context) error {
	list, err := s.products.ListAll(ctx)
	if err != nil {
		GetMonitor().RecordDBError()
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productMirror = list
	return nil
}

// 调用方必须已持有 s.mu。
// 返回深拷贝：镜像元素会被乐观补丁原地改写，
// 共享指针会让锁外的 JSON 序列化与补丁写入构成数据竞争
func cloneOrderLocked(o *order.Order) *order.Order {
	cp := *o
	cp.Items = append(order.Items(nil), o.Items...)
	return &cp
}

// Orders 订单镜像副本，元素与镜像不共享
func (s *AdminService) Orders() []*order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*order.Order, len(s.orderMirror))
	for i, o := range s.orderMirror {
		out[i] = cloneOrderLocked(o)
	}
	return out
}

// Products 商品镜像副本，元素与镜像不共享
func (s *AdminService) Products() []*product.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*product.Product, len(s.productMirror))
	for i, p := range s.productMirror {
		cp := *p
		out[i] = &cp
	}
	return out
}

// Stats 当前统计值
func (s *AdminService) Stats() AdminStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// 调用方必须已持有 s.mu
func (s *AdminService) recomputeStatsLocked() {
	st := AdminStats{TotalOrders: len(s.orderMirror)}
	for _, o := range s.orderMirror {
		if o.Status != order.StatusCancelled {
			st.TotalRevenue += o.TotalAmount
		}
		if o.Status == order.StatusPending {
			st.PendingOrders++
		}
	}
	s.stats = st
}

// SearchOrders 在镜像内做大小写无关的子串过滤，
// 匹配客户姓名、电话和订单号文本，不访问远端也不影响统计
func (s *AdminService) SearchOrders(term string) []*order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if term == "" {
		out := make([]*order.Order, len(s.orderMirror))
		for i, o := range s.orderMirror {
			out[i] = cloneOrderLocked(o)
		}
		return out
	}
	kw := strings.ToLower(term)
	out := make([]*order.Order, 0, len(s.orderMirror))
	for _, o := range s.orderMirror {
		if strings.Contains(strings.ToLower(o.CustomerName), kw) ||
			strings.Contains(strings.ToLower(o.Phone), kw) ||
			strings.Contains(strconv.FormatInt(o.ID, 10), kw) {
			out = append(out, cloneOrderLocked(o))
		}
	}
	return out
}

// UpdateOrderStatus 乐观更新订单状态
// 状态值非法时在远端调用前拒绝；远端失败时丢弃镜像并整表重载；
// 远端已无此订单（影响 0 行）按无事发生处理
func (s *AdminService) UpdateOrderStatus(ctx context.Context, id int64, status order.Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid order status %q", status)
	}

	rows, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		GetMonitor().RecordDBError()
		// 失败后镜像不可信，整表重载兜底
		if reloadErr := s.RefreshOrders(ctx); reloadErr != nil {
			zap.L().Error("reload orders after failed status update",
				zap.Int64("order_id", id),
				zap.Error(reloadErr))
		}
		return fmt.Errorf("update order %d status: %w", id, err)
	}
	if rows == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orderMirror {
		if o.ID == id {
			o.Status = status
			break
		}
	}
	s.recomputeStatsLocked()
	return nil
}

// DeleteOrder 删除订单；远端失败时镜像保持原样
func (s *AdminService) DeleteOrder(ctx context.Context, id int64) error {
	if _, err := s.orders.Delete(ctx, id); err != nil {
		GetMonitor().RecordDBError()
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, o := range s.orderMirror {
		if o.ID == id {
			s.orderMirror = append(s.orderMirror[:i], s.orderMirror[i+1:]...)
			break
		}
	}
	s.recomputeStatsLocked()
	return nil
}

// DeleteProduct 删除商品；不影响已有订单的商品快照
func (s *AdminService) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := s.products.Delete(ctx, id); err != nil {
		GetMonitor().RecordDBError()
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.productMirror {
		if p.ID == id {
			s.productMirror = append(s.productMirror[:i], s.productMirror[i+1:]...)
			break
		}
	}
	return nil
}

// SaveProduct id 为 0 时新建，否则更新已有商品
// 与订单不同，成功后商品镜像整表重载而不打本地补丁
func (s *AdminService) SaveProduct(ctx context.Context, id int64, fields *ProductFields) (*product.Product, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	var p *product.Product
	if id == 0 {
		p = &product.Product{}
		fields.applyTo(p)
		if err := s.products.Create(ctx, p); err != nil {
			GetMonitor().RecordDBError()
			return nil, fmt.Errorf("create product: %w", err)
		}
	} else {
		existing, err := s.products.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("product %d not found", id)
			}
			GetMonitor().RecordDBError()
			return nil, err
		}
		fields.applyTo(existing)
		if err := s.products.Update(ctx, existing); err != nil {
			GetMonitor().RecordDBError()
			return nil, fmt.Errorf("update product %d: %w", id, err)
		}
		p = existing
	}

	if err := s.RefreshProducts(ctx); err != nil {
		zap.L().Error("reload products after save", zap.Error(err))
	}
	return p, nil
}
