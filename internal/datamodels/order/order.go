package order

import (
	"context"
	"fmt"
	"time"
)

// Status 订单状态
type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Valid 是否为合法状态值
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus 解析状态字符串，非法值返回错误
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", fmt.Errorf("invalid order status %q", v)
	}
	return s, nil
}

// Item 下单时刻的商品快照，落库后不再变化
type Item struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int64   `json:"quantity"`
}

// Items 以 JSON 形式整体存储在 orders.items 列中
type Items []Item

// Order 订单模型
// 创建后商品快照不可变，只有 Status 允许修改
type Order struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	CustomerName string    `gorm:"size:128;not null" json:"customer_name"`
	Address      string    `gorm:"size:512;not null" json:"address"`
	Phone        string    `gorm:"size:32;not null" json:"phone"`
	Note         string    `gorm:"size:512" json:"note"`
	TotalAmount  float64   `gorm:"not null" json:"total_amount"` // 小计 + 运费
	Items        Items     `gorm:"serializer:json" json:"items"`
	Status       Status    `gorm:"size:16;index;not null" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Repository 订单仓储接口
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListAll(ctx context.Context) ([]*Order, error) // 按创建时间倒序
	UpdateStatus(ctx context.Context, id int64, status Status) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}
