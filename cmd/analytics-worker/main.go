package main

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/example/freshharvest/internal/config"
	"github.com/example/freshharvest/internal/infra/mq"
	"github.com/example/freshharvest/internal/service"
)

// analytics-worker 消费前台行为事件队列（加购/移除/下单），
// 记录到监控并输出结构化日志。原始实现把同样的事件推给
// GTM dataLayer，这里作为独立消费者承接。
func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	mqConn := mq.Init(&cfg.RabbitMQ)

	ch, err := mqConn.Channel()
	if err != nil {
		zap.L().Fatal("failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(service.StorefrontEventsQueue, true, false, false, false, nil); err != nil {
		zap.L().Fatal("failed to declare queue", zap.Error(err))
	}

	// 手动确认模式（auto-ack=false）
	msgs, err := ch.Consume(service.StorefrontEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		zap.L().Fatal("failed to consume", zap.Error(err))
	}

	zap.L().Info("analytics worker started, waiting for events")

	for d := range msgs {
		handleDelivery(d)
	}
}

func handleDelivery(d amqp.Delivery) {
	var ev service.Event
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		zap.L().Warn("invalid event body", zap.Error(err))
		// 消息格式错误，拒绝并丢弃
		_ = d.Nack(false, false)
		return
	}

	switch ev.Name {
	case service.EventAddToCart:
		var p service.AddToCartPayload
		if err := json.Unmarshal(ev.Payload, &p); err == nil {
			zap.L().Info("add_to_cart",
				zap.String("event_id", ev.EventID),
				zap.String("product_id", p.ProductID),
				zap.String("category", p.Category),
				zap.Int64("quantity", p.Quantity))
		}
	case service.EventRemoveFromCart:
		var p service.RemoveFromCartPayload
		if err := json.Unmarshal(ev.Payload, &p); err == nil {
			zap.L().Info("remove_from_cart",
				zap.String("event_id", ev.EventID),
				zap.String("product_id", p.ProductID),
				zap.Float64("value", p.Value))
		}
	case service.EventPurchase:
		var p service.PurchasePayload
		if err := json.Unmarshal(ev.Payload, &p); err == nil {
			zap.L().Info("purchase",
				zap.String("event_id", ev.EventID),
				zap.Int64("order_id", p.OrderID),
				zap.Float64("value", p.Value),
				zap.Int("items", len(p.Items)))
		}
	default:
		zap.L().Warn("unknown event", zap.String("name", ev.Name))
	}

	service.GetMonitor().RecordEventConsumed()
	_ = d.Ack(false)
}
