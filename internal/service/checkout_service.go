package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/freshharvest/internal/datamodels/cart"
	"github.com/example/freshharvest/internal/datamodels/order"
)

// ErrCartEmpty 购物车为空时不允许下单
var ErrCartEmpty = errors.New("cart is empty")

// CheckoutRequest 结算表单，note 以外的字段必填
type CheckoutRequest struct {
	CustomerName string `json:"customer_name"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Note         string `json:"note"`
}

// Validate 在发起任何远端调用之前校验必填字段
func (r *CheckoutRequest) Validate() error {
	if strings.TrimSpace(r.CustomerName) == "" {
		return fmt.Errorf("customer_name is required")
	}
	if strings.TrimSpace(r.Address) == "" {
		return fmt.Errorf("address is required")
	}
	if strings.TrimSpace(r.Phone) == "" {
		return fmt.Errorf("phone is required")
	}
	return nil
}

// CheckoutService 下单服务：购物车 -> 订单记录
type CheckoutService struct {
	orders      order.Repository
	store       cart.Store
	events      EventPublisher
	shippingFee float64
}

// NewCheckoutService 创建下单服务
func NewCheckoutService(orders order.Repository, store cart.Store, events EventPublisher, shippingFee float64) *CheckoutService {
	if events == nil {
		events = NopPublisher{}
	}
	if shippingFee <= 0 {
		shippingFee = cart.DefaultShippingFee
	}
	return &CheckoutService{
		orders:      orders,
		store:       store,
		events:      events,
		shippingFee: shippingFee,
	}
}

// Submit 提交订单
// 订单写入成功后才清空购物车；写入失败时购物车保持原样，不会产生半个订单
func (s *CheckoutService) Submit(ctx context.Context, cartKey string, req *CheckoutRequest) (*order.Order, error) {
	GetMonitor().RecordCheckoutRequest()

	if err := req.Validate(); err != nil {
		GetMonitor().RecordCheckoutError()
		return nil, err
	}

	items, err := s.store.Load(ctx, cartKey)
	if err != nil {
		GetMonitor().RecordStoreError()
		GetMonitor().RecordCheckoutError()
		return nil, err
	}
	c := cart.New(s.shippingFee, items)
	if c.Len() == 0 {
		GetMonitor().RecordCheckoutError()
		return nil, ErrCartEmpty
	}

	totals := c.Totals()
	o := &order.Order{
		CustomerName: strings.TrimSpace(req.CustomerName),
		Address:      strings.TrimSpace(req.Address),
		Phone:        strings.TrimSpace(req.Phone),
		Note:         strings.TrimSpace(req.Note),
		TotalAmount:  totals.GrandTotal,
		Items:        c.Snapshot(),
		Status:       order.StatusPending,
	}

	if err := s.orders.Create(ctx, o); err != nil {
		GetMonitor().RecordDBError()
		GetMonitor().RecordCheckoutError()
		return nil, fmt.Errorf("create order: %w", err)
	}

	// 订单已落库；清空购物车失败只记录，不回滚订单
	if err := s.store.Clear(ctx, cartKey); err != nil {
		GetMonitor().RecordStoreError()
		zap.L().Error("clear cart after checkout failed",
			zap.Int64("order_id", o.ID),
			zap.Error(err))
	}

	if err := s.events.Publish(ctx, EventPurchase, &PurchasePayload{
		OrderID:  o.ID,
		Value:    o.TotalAmount,
		Shipping: s.shippingFee,
		Items:    o.Items,
	}); err != nil {
		zap.L().Warn("publish purchase event failed",
			zap.Int64("order_id", o.ID),
			zap.Error(err))
	}

	GetMonitor().RecordCheckoutSuccess()
	return o, nil
}

// GetOrder 成功页按订单号查询
func (s *CheckoutService) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	return s.orders.GetByID(ctx, id)
}
