package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/example/freshharvest/internal/datamodels/order"
)

// StorefrontEventsQueue 前台行为事件队列，由 analytics-worker 消费
const StorefrontEventsQueue = "storefront_events"

// 事件名称
const (
	EventAddToCart      = "add_to_cart"
	EventRemoveFromCart = "remove_from_cart"
	EventPurchase       = "purchase"
)

// Event 事件信封
type Event struct {
	EventID    string          `json:"event_id"`
	Name       string          `json:"name"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// AddToCartPayload 加购事件内容
type AddToCartPayload struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Quantity  int64   `json:"quantity"`
}

// RemoveFromCartPayload 移除事件内容，Value 为整行金额
type RemoveFromCartPayload struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Quantity  int64   `json:"quantity"`
}

// PurchasePayload 下单成功事件内容
type PurchasePayload struct {
	OrderID  int64       `json:"order_id"`
	Value    float64     `json:"value"`
	Shipping float64     `json:"shipping"`
	Items    order.Items `json:"items"`
}

// EventPublisher 前台事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, name string, payload any) error
}

// NopPublisher 空实现，单测和无 MQ 环境下使用
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, name string, payload any) error {
	return nil
}

// MQPublisher 通过 RabbitMQ 投递事件
type MQPublisher struct {
	conn *amqp.Connection
}

// NewMQPublisher 创建事件发布器
func NewMQPublisher(conn *amqp.Connection) *MQPublisher {
	return &MQPublisher{conn: conn}
}

func (p *MQPublisher) Publish(ctx context.Context, name string, payload any) error {
	ch, err := p.conn.Channel()
	if err != nil {
		GetMonitor().RecordMQError()
		return err
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(StorefrontEventsQueue, true, false, false, false, nil); err != nil {
		GetMonitor().RecordMQError()
		return err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	body, err := json.Marshal(&Event{
		EventID:    uuid.NewString(),
		Name:       name,
		OccurredAt: time.Now(),
		Payload:    raw,
	})
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(
		ctx,
		"",
		StorefrontEventsQueue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		GetMonitor().RecordMQError()
		return err
	}
	return nil
}
