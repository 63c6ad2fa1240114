package service

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/example/freshharvest/internal/datamodels/cart"
	"github.com/example/freshharvest/internal/datamodels/order"
	"github.com/example/freshharvest/internal/datamodels/product"
)

// memStore 内存版购物车存储
type memStore struct {
	mu       sync.Mutex
	data     map[string][]cart.Item
	loadErr  error
	saveErr  error
	clearErr error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]cart.Item)}
}

func (s *memStore) Load(_ context.Context, key string) ([]cart.Item, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.data[key]
	out := make([]cart.Item, len(items))
	copy(out, items)
	return out, nil
}

func (s *memStore) Save(_ context.Context, key string, items []cart.Item) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]cart.Item, len(items))
	copy(cp, items)
	s.data[key] = cp
	return nil
}

func (s *memStore) Clear(_ context.Context, key string) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// mockProductRepo 内存版商品仓储
type mockProductRepo struct {
	list      []*product.Product
	nextID    int64
	getErr    error
	listErr   error
	createErr error
	updateErr error
	deleteErr error
}

func (r *mockProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, p := range r.list {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockProductRepo) ListAll(_ context.Context) ([]*product.Product, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*product.Product, len(r.list))
	copy(out, r.list)
	return out, nil
}

func (r *mockProductRepo) ListByCategory(_ context.Context, category string) ([]*product.Product, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*product.Product, 0, len(r.list))
	for _, p := range r.list {
		if category == "" || category == "All" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *mockProductRepo) Create(_ context.Context, p *product.Product) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	r.list = append(r.list, p)
	return nil
}

func (r *mockProductRepo) Update(_ context.Context, p *product.Product) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	for i, old := range r.list {
		if old.ID == p.ID {
			r.list[i] = p
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *mockProductRepo) Delete(_ context.Context, id int64) (int64, error) {
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	for i, p := range r.list {
		if p.ID == id {
			r.list = append(r.list[:i], r.list[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// mockOrderRepo 内存版订单仓储
type mockOrderRepo struct {
	list      []*order.Order
	nextID    int64
	createErr error
	listErr   error
	updateErr error
	deleteErr error
}

func (r *mockOrderRepo) Create(_ context.Context, o *order.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	o.ID = r.nextID
	o.CreatedAt = time.Now()
	cp := *o
	r.list = append(r.list, &cp)
	return nil
}

func (r *mockOrderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	for _, o := range r.list {
		if o.ID == id {
			cp := *o
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockOrderRepo) ListAll(_ context.Context) ([]*order.Order, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	// 远端按创建时间倒序返回；镜像测试里直接按 list 逆序给出
	out := make([]*order.Order, 0, len(r.list))
	for i := len(r.list) - 1; i >= 0; i-- {
		cp := *r.list[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *mockOrderRepo) UpdateStatus(_ context.Context, id int64, status order.Status) (int64, error) {
	if r.updateErr != nil {
		return 0, r.updateErr
	}
	for _, o := range r.list {
		if o.ID == id {
			o.Status = status
			return 1, nil
		}
	}
	return 0, nil
}

func (r *mockOrderRepo) Delete(_ context.Context, id int64) (int64, error) {
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	for i, o := range r.list {
		if o.ID == id {
			r.list = append(r.list[:i], r.list[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// recPublisher 记录发布过的事件名
type recPublisher struct {
	events []string
	err    error
}

func (p *recPublisher) Publish(_ context.Context, name string, _ any) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, name)
	return nil
}
