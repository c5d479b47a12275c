package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"local-baba-api/config"
	"local-baba-api/middleware"
	"local-baba-api/models"
	"local-baba-api/notify"
	"local-baba-api/statemachine"
	"local-baba-api/utils"

	"github.com/gin-gonic/gin"
)

// RegisterRider creates a rider account. Riders start unapproved and must
// complete their profile before an admin will approve them.
func RegisterRider(c *gin.Context) {
	registerUserWithRole(c, models.RoleRider)
}

type RiderProfileRequest struct {
	Name        string           `json:"name"`
	Image       string           `json:"image"`
	Address     string           `json:"address"`
	Phone       string           `json:"phone"`
	Gender      string           `json:"gender"`
	DOB         *time.Time       `json:"dob"`
	Nationality string           `json:"nationality"`
	Location    *models.GeoPoint `json:"location"`

	Identification *models.Identification `json:"identification"`
	Vehicle        *models.VehicleDetails `json:"vehicle_details"`
}

// CompleteRiderProfile fills in the onboarding form. IsProfileCompleted flips
// once every required document and detail is present; approval stays with the
// admin.
func CompleteRiderProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req RiderProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Image != "" {
		user.Image = req.Image
	}
	if req.Address != "" {
		user.Personal.Address = req.Address
	}
	if req.Phone != "" {
		user.Personal.Phone = req.Phone
	}
	if req.Gender != "" {
		user.Personal.Gender = req.Gender
	}
	if req.DOB != nil {
		user.Personal.DOB = req.DOB
	}
	if req.Nationality != "" {
		user.Personal.Nationality = req.Nationality
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.Identification != nil {
		user.Identification = *req.Identification
	}
	if req.Vehicle != nil {
		user.Vehicle = *req.Vehicle
	}

	user.IsProfileCompleted = user.IsProfileComplete()

	if err := config.DB.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":              "Profile updated",
		"is_profile_completed": user.IsProfileCompleted,
		"user":                 user,
	})
}

type AvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

// SetAvailability toggles whether the rider is taking deliveries right now.
func SetAvailability(c *gin.Context) {
	rider := middleware.CurrentUser(c)
	if rider == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rider.Personal.Available = *req.Available
	if err := config.DB.Save(rider).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update availability"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": rider.Personal.Available})
}

// GetAvailableOrders lists unclaimed orders whose restaurant sits within 5 km
// of the rider's stored location, nearest first. Only orders still in a
// claimable state and without an assigned rider show up; distances stay
// server-side.
func GetAvailableOrders(c *gin.Context) {
	rider := middleware.CurrentUser(c)
	if rider == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if rider.Location.Latitude == 0 && rider.Location.Longitude == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Set your location first"})
		return
	}

	var orders []models.Order
	if err := config.DB.Preload("Items").Preload("Restaurant").Preload("User").
		Where("status IN ? AND delivered_by_id IS NULL", statemachine.ClaimableStates).
		Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	var results []models.Order
	var distances []float64
	for _, o := range orders {
		if o.Restaurant == nil {
			continue
		}
		d := utils.Haversine(rider.Location.Longitude, rider.Location.Latitude,
			o.Restaurant.Location.Longitude, o.Restaurant.Location.Latitude)
		if d <= 5000 {
			results = append(results, o)
			distances = append(distances, d)
		}
	}
	for i := 0; i < len(results); i++ {
		for j := i + 1; j < len(results); j++ {
			if distances[j] < distances[i] {
				distances[i], distances[j] = distances[j], distances[i]
				results[i], results[j] = results[j], results[i]
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"orders": results, "count": len(results)})
}

// AcceptOrder claims an order for the calling rider. The conditional update on
// the claimable states is the whole concurrency story: when two riders race,
// exactly one update matches a row and the loser gets a conflict naming the
// order's actual state.
func AcceptOrder(c *gin.Context) {
	rider := middleware.CurrentUser(c)
	if rider == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	res := config.DB.Model(&models.Order{}).
		Where("id = ? AND status IN ? AND delivered_by_id IS NULL", orderID, statemachine.ClaimableStates).
		Updates(map[string]interface{}{
			"status":          models.StatusOnItsWay,
			"delivered_by_id": rider.ID,
		})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept order"})
		return
	}
	if res.RowsAffected == 0 {
		var order models.Order
		if err := config.DB.First(&order, orderID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": "Order can no longer be accepted, it is " + string(order.Status)})
		return
	}

	var order models.Order
	config.DB.Preload("Items").Preload("Restaurant").First(&order, orderID)

	if n, err := notify.Store(config.DB, models.NotifyOrderAccepted, &order.UserID, nil, &order.ID,
		rider.Name+" accepted your order #"+itoa(order.ID)); err == nil {
		publish(n)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order accepted", "order": order})
}

// DeliverOrder completes one of the calling rider's claimed orders. COD cash
// changes hands at the door, so the payment settles as part of delivery.
func DeliverOrder(c *gin.Context) {
	rider := middleware.CurrentUser(c)
	if rider == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var order models.Order
	if err := config.DB.Where("id = ? AND delivered_by_id = ?", c.Param("id"), rider.ID).
		First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if err := statemachine.CanTransition(order.Status, models.StatusDelivered, statemachine.ActorRider); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	delivered, notification, err := finishDelivery(order.ID, true)
	if err != nil {
		if errors.Is(err, ErrAlreadyFinal) {
			config.DB.First(&order, order.ID)
			c.JSON(http.StatusConflict, gin.H{"error": "Order is already " + string(order.Status)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deliver order"})
		return
	}
	publish(notification)

	c.JSON(http.StatusOK, gin.H{"message": "Order delivered", "order": delivered})
}

// GetRiderOrders lists orders assigned to the calling rider, newest first.
func GetRiderOrders(c *gin.Context) {
	rider := middleware.CurrentUser(c)
	if rider == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var orders []models.Order
	if err := config.DB.Preload("Items").Preload("Restaurant").Preload("User").
		Where("delivered_by_id = ?", rider.ID).Order("created_at DESC").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// GetRiderStats summarizes the rider dashboard: today's deliveries, lifetime
// deliveries, balance and rating. "Today" runs on IST day boundaries.
func GetRiderStats(c *gin.Context) {
	rider := middleware.CurrentUser(c)
	if rider == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	dayStart, dayEnd := utils.ISTDayWindow()

	var todayCount int64
	config.DB.Model(&models.Order{}).
		Where("delivered_by_id = ? AND status = ? AND delivered_at >= ? AND delivered_at < ?",
			rider.ID, models.StatusDelivered, dayStart, dayEnd).
		Count(&todayCount)

	var totalCount int64
	config.DB.Model(&models.Order{}).
		Where("delivered_by_id = ? AND status = ?", rider.ID, models.StatusDelivered).
		Count(&totalCount)

	var activeCount int64
	config.DB.Model(&models.Order{}).
		Where("delivered_by_id = ? AND status = ?", rider.ID, models.StatusOnItsWay).
		Count(&activeCount)

	c.JSON(http.StatusOK, gin.H{
		"today_deliveries": todayCount,
		"total_deliveries": totalCount,
		"active_orders":    activeCount,
		"account_balance":  rider.AccountBalance,
		"ratings":          rider.Ratings,
		"total_review":     rider.TotalReview,
	})
}

// GetRiderRevenueGraph returns the rider's monthly earnings for one year,
// twelve buckets of half the shipping price of each delivered order.
func GetRiderRevenueGraph(c *gin.Context) {
	rider := middleware.CurrentUser(c)
	if rider == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	year := time.Now().Year()
	if y, err := strconv.Atoi(c.Query("year")); err == nil && y > 2000 {
		year = y
	}
	start, end := utils.YearRange(year)

	var orders []models.Order
	if err := config.DB.
		Where("delivered_by_id = ? AND status = ? AND delivered_at >= ? AND delivered_at < ?",
			rider.ID, models.StatusDelivered, start, end).
		Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	monthly := make([]float64, 12)
	for _, o := range orders {
		if o.DeliveredAt != nil {
			monthly[int(o.DeliveredAt.Month())-1] += o.ShippingPrice * riderShippingShare
		}
	}

	c.JSON(http.StatusOK, gin.H{"year": year, "monthly_revenue": monthly})
}
