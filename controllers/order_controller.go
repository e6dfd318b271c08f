package controllers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"store-service/middlewares"
	"store-service/models"
	"store-service/rabbitmq"
	"store-service/services"
)

type OrderController struct {
	Orders *services.OrderService
	MQ     *rabbitmq.RabbitMQ
}

func NewOrderController(orders *services.OrderService, mq *rabbitmq.RabbitMQ) *OrderController {
	return &OrderController{Orders: orders, MQ: mq}
}

func (ctl *OrderController) PlaceOrder(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("create", status)
	}()

	var req models.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt64("userID")
	order, err := ctl.Orders.PlaceOrder(userID, req.Items, req.DeliveryAddress)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "data": order})

	// 事务提交成功后发送事件
	if ctl.MQ != nil {
		priority := 5                   // 默认优先级
		if order.TotalAmount > 100000 { // 大额订单高优先级
			priority = 9
		}

		event := models.OrderEvent{
			OrderID:  order.ID,
			UserID:   order.UserID,
			Type:     "created",
			Status:   order.Status,
			Total:    order.TotalAmount,
			Occurred: time.Now(),
		}
		if err := ctl.MQ.PublishOrderEvent(event, priority); err != nil {
			log.Printf("Failed to publish order created event: %v", err)
		}

		// 设置延迟事件（15分钟后检查支付状态）
		event.Type = "payment_check"
		if err := ctl.MQ.PublishDelayedEvent(event, 15*time.Minute); err != nil {
			log.Printf("Failed to publish delayed payment check event: %v", err)
		}
	}
}

func (ctl *OrderController) GetUserOrders(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("list", status)
	}()

	orders, err := ctl.Orders.GetUserOrders(c.GetInt64("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "data": orders})
}

func (ctl *OrderController) GetAllOrders(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("list_all", status)
	}()

	orders, err := ctl.Orders.GetAllOrders()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "data": orders})
}

func (ctl *OrderController) GetOrderDetails(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("details", status)
	}()

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	isAdmin := c.GetString("role") == "admin"
	order, err := ctl.Orders.GetOrderDetails(orderID, c.GetInt64("userID"), isAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (ctl *OrderController) UpdateOrderStatus(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("update_status", status)
	}()

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := ctl.Orders.UpdateStatus(orderID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "data": order})

	if ctl.MQ != nil {
		priority := 5                                 // 默认优先级
		if order.Status == services.StatusCancelled { // 取消订单高优先级
			priority = 8
		}

		event := models.OrderEvent{
			OrderID:  order.ID,
			UserID:   order.UserID,
			Type:     "status_updated",
			Status:   order.Status,
			Total:    order.TotalAmount,
			Occurred: time.Now(),
		}
		if err := ctl.MQ.PublishOrderEvent(event, priority); err != nil {
			log.Printf("Failed to publish order updated event: %v", err)
		}
	}
}

// HandleDeadLetter 死信队列处理函数
func (ctl *OrderController) HandleDeadLetter(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("dead_letter", status)
	}()

	var deadLetter struct {
		OrderID int64  `json:"order_id"`
		Reason  string `json:"reason"`
	}

	if err := c.ShouldBindJSON(&deadLetter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Printf("Handling dead letter for order %d: %s", deadLetter.OrderID, deadLetter.Reason)

	// 实际处理逻辑：记录、通知管理员等
	c.JSON(http.StatusOK, gin.H{"message": "Dead letter processed"})
}
