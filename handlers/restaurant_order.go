package handlers

import (
	"errors"
	"net/http"
	"time"

	"local-baba-api/config"
	"local-baba-api/middleware"
	"local-baba-api/models"
	"local-baba-api/notify"
	"local-baba-api/statemachine"
	"local-baba-api/utils"

	"github.com/gin-gonic/gin"
)

// GetRestaurantOrders lists the calling restaurant's orders. Supports
// ?status=, a ?window= of daily/weekly/monthly and ?search= on the customer
// name.
func GetRestaurantOrders(c *gin.Context) {
	restaurant := middleware.CurrentRestaurant(c)
	if restaurant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	query := config.DB.Preload("Items").Preload("User").Preload("DeliveredBy").
		Where("orders.restaurant_id = ?", restaurant.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("orders.status = ?", status)
	}

	switch c.Query("window") {
	case "daily":
		start, end := utils.ISTDayWindow()
		query = query.Where("orders.created_at >= ? AND orders.created_at < ?", start, end)
	case "weekly":
		query = query.Where("orders.created_at >= ?", time.Now().AddDate(0, 0, -7))
	case "monthly":
		query = query.Where("orders.created_at >= ?", time.Now().AddDate(0, -1, 0))
	}

	if search := c.Query("search"); search != "" {
		query = query.
			Joins("JOIN users ON users.id = orders.user_id").
			Where("users.name LIKE ?", "%"+search+"%")
	}

	var orders []models.Order
	if err := query.Order("orders.created_at DESC").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// GetRestaurantOrderByID returns one of the calling restaurant's orders.
func GetRestaurantOrderByID(c *gin.Context) {
	restaurant := middleware.CurrentRestaurant(c)
	if restaurant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	var order models.Order
	if err := config.DB.Preload("Items").Preload("User").Preload("DeliveredBy").
		Where("id = ? AND restaurant_id = ?", c.Param("id"), restaurant.ID).
		First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

type UpdateOrderRequest struct {
	Status        models.OrderStatus `json:"order_status" binding:"required"`
	PaymentStatus string             `json:"payment_status"`
}

// UpdateOrder is the restaurant's single lifecycle endpoint. Every requested
// change is validated against the transition table; setting Delivered routes
// through the shared completion path so history rows, rider credit and COD
// settlement behave identically no matter who finishes the order.
func UpdateOrder(c *gin.Context) {
	restaurant := middleware.CurrentRestaurant(c)
	if restaurant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	var order models.Order
	if err := config.DB.Where("id = ? AND restaurant_id = ?", c.Param("id"), restaurant.ID).
		First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Status != order.Status {
		if err := statemachine.CanTransition(order.Status, req.Status, statemachine.ActorRestaurant); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
	}

	if req.Status == models.StatusDelivered {
		delivered, notification, err := finishDelivery(order.ID, true)
		if err != nil {
			if errors.Is(err, ErrAlreadyFinal) {
				config.DB.First(&order, order.ID)
				c.JSON(http.StatusConflict, gin.H{"error": "Order is already " + string(order.Status)})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
			return
		}
		publish(notification)
		c.JSON(http.StatusOK, gin.H{"message": "Order updated", "order": delivered})
		return
	}

	if req.Status != order.Status {
		res := config.DB.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Update("status", req.Status)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
			return
		}
		if res.RowsAffected == 0 {
			config.DB.First(&order, order.ID)
			c.JSON(http.StatusConflict, gin.H{"error": "Order is already " + string(order.Status)})
			return
		}
		order.Status = req.Status

		if req.Status == models.StatusCancelled {
			if n, err := notify.Store(config.DB, models.NotifyOrderCancelled, &order.UserID, nil, &order.ID,
				"Your order #"+itoa(order.ID)+" was cancelled by the restaurant"); err == nil {
				publish(n)
			}
		}
	}

	if req.PaymentStatus == models.PaymentPaid && order.Payment.Status != models.PaymentPaid {
		now := time.Now()
		if err := config.DB.Model(&models.Order{}).Where("id = ?", order.ID).
			Updates(map[string]interface{}{"payment_status": models.PaymentPaid, "paid_at": now}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update payment"})
			return
		}
		order.Payment.Status = models.PaymentPaid
		order.PaidAt = &now
	}

	config.DB.Preload("Items").First(&order, order.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Order updated", "order": order})
}
