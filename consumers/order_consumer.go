package consumers

import (
	"encoding/json"
	"errors"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"store-service/config"
	"store-service/models"
	"store-service/services"
)

func StartOrderConsumer(ch *amqp.Channel, cfg *config.Config, orders *services.OrderService) {
	// 消费主订单队列
	msgs, err := ch.Consume(
		cfg.OrderQueue,
		"store-service", // consumer tag
		false,           // auto-ack
		false,           // exclusive
		false,           // no-local
		false,           // no-wait
		nil,
	)
	if err != nil {
		log.Fatalf("Failed to register consumer: %v", err)
	}

	go func() {
		for msg := range msgs {
			processOrderMessage(msg, orders)
		}
	}()

	// 消费死信队列
	dlqMsgs, err := ch.Consume(
		cfg.DeadLetterQueue,
		"store-service-dlq", // consumer tag
		false,               // auto-ack
		false,               // exclusive
		false,               // no-local
		false,               // no-wait
		nil,
	)
	if err != nil {
		log.Printf("Failed to register DLQ consumer: %v", err)
	}

	go func() {
		for msg := range dlqMsgs {
			processDeadLetterMessage(msg)
		}
	}()
}

func processOrderMessage(msg amqp.Delivery, orders *services.OrderService) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in message processing: %v", r)
		}
	}()

	var event models.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("Invalid message format: %s", msg.Body)
		_ = msg.Nack(false, false) // 拒绝消息，不重新入队
		return
	}

	log.Printf("Processing order event: ID=%d, Type=%s", event.OrderID, event.Type)

	// 根据事件类型处理
	switch event.Type {
	case "created":
		handleOrderCreated(event)
	case "status_updated":
		handleStatusUpdated(event, orders)
	case "payment_check":
		handlePaymentCheck(event, orders)
	default:
		log.Printf("Unknown event type: %s", event.Type)
	}

	// 处理成功后确认消息
	_ = msg.Ack(false)
}

func processDeadLetterMessage(msg amqp.Delivery) {
	log.Printf("Received dead letter: %s", msg.Body)
	// 实际处理：记录到数据库、通知管理员等
	_ = msg.Ack(false)
}

func handleOrderCreated(event models.OrderEvent) {
	// 实际业务逻辑：通知其他服务、更新缓存等
	log.Printf("Handling order created: %d", event.OrderID)
}

func handleStatusUpdated(event models.OrderEvent, orders *services.OrderService) {
	order, err := orders.GetOrderDetails(event.OrderID, 0, true)
	if err != nil {
		log.Printf("Failed to get order %d: %v", event.OrderID, err)
		return
	}

	switch order.Status {
	case services.StatusShipped:
		// 发送发货通知
	case services.StatusCancelled:
		// 库存已在取消事务内归还，这里只做记录
	}
	log.Printf("Handling status update for order %d: %s", event.OrderID, order.Status)
}

// handlePaymentCheck 超时未支付的订单走状态机自动取消，取消事务会归还库存
func handlePaymentCheck(event models.OrderEvent, orders *services.OrderService) {
	order, err := orders.GetOrderDetails(event.OrderID, 0, true)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			log.Printf("Order %d no longer exists, skipping payment check", event.OrderID)
			return
		}
		log.Printf("Failed to get order status: %v", err)
		return
	}

	if order.Status == services.StatusPending {
		if _, err := orders.UpdateStatus(event.OrderID, services.StatusCancelled); err != nil {
			log.Printf("Failed to auto-cancel order %d: %v", event.OrderID, err)
		} else {
			log.Printf("Auto-cancelled order %d due to non-payment", event.OrderID)
		}
	}
}
