package handlers

import (
	"net/http"
	"time"

	"local-baba-api/cache"
	"local-baba-api/config"
	"local-baba-api/middleware"
	"local-baba-api/models"
	"local-baba-api/notify"
	"local-baba-api/services"
	"local-baba-api/statemachine"
	"local-baba-api/utils"

	"github.com/gin-gonic/gin"
)

type RegisterUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone"`
}

// emailTaken reports whether any account of either kind already owns the
// address. One email maps to at most one account across both kinds.
func emailTaken(email string) bool {
	var user models.User
	if err := config.DB.Where("email = ?", email).First(&user).Error; err == nil {
		return true
	}
	var restaurant models.Restaurant
	if err := config.DB.Where("email = ?", email).First(&restaurant).Error; err == nil {
		return true
	}
	return false
}

// registerUserWithRole is shared by customer and rider signup. The account is
// created unverified; a 4-digit OTP goes out by email, and a failed send rolls
// the whole registration back.
func registerUserWithRole(c *gin.Context, role models.UserRole) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if emailTaken(req.Email) {
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Role:     role,
		Personal: models.PersonalDetails{Phone: req.Phone},
	}
	if err := user.SetPassword(req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	if role == models.RoleCustomer {
		user.IsApproved = true
	}
	code := user.GenerateOTP()

	if err := config.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	}

	if err := services.SendEmail(user.Email, "Email verification", "Your four digit OTP is "+code+"."); err != nil {
		config.DB.Delete(&user)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to send verification email"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "OTP was sent to your registered email, please verify",
		"success": true,
		"email":   user.Email,
	})
}

// RegisterUser creates a customer account.
func RegisterUser(c *gin.Context) {
	registerUserWithRole(c, models.RoleCustomer)
}

// GetUserProfile returns the authenticated user's own record.
func GetUserProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type UpdateProfileRequest struct {
	Name        string           `json:"name"`
	Image       string           `json:"image"`
	Address     string           `json:"address"`
	Phone       string           `json:"phone"`
	Gender      string           `json:"gender"`
	DOB         *time.Time       `json:"dob"`
	Nationality string           `json:"nationality"`
	Location    *models.GeoPoint `json:"location"`
}

// UpdateUserProfile patches personal details; zero values leave fields alone.
func UpdateUserProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req UpdateProfileRequest
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

	if err := config.DB.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": user})
}

type PlaceOrderItem struct {
	ProductID uint                 `json:"product_id" binding:"required"`
	Quantity  int                  `json:"quantity" binding:"required,min=1"`
	Size      string               `json:"size"`
	Extras    []models.ExtraOption `json:"extras"`
}

type PlaceOrderRequest struct {
	Items         []PlaceOrderItem `json:"order_item" binding:"required,min=1,dive"`
	PaymentMethod string           `json:"payment_method" binding:"required,oneof=cod online"`
	PaymentID     string           `json:"payment_id"`
	TaxPrice      float64          `json:"tax_price"`
	ShippingPrice float64          `json:"shipping_price"`
}

// PlaceOrder creates an order in Processing. The restaurant is resolved from
// the first line item and all items must belong to it. Online payments require
// a gateway payment id and are stamped paid immediately; COD stays unpaid
// until delivery.
func PlaceOrder(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.PaymentMethod == models.MethodOnline && req.PaymentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment id is required for online payments"})
		return
	}

	var order models.Order
	var itemsPrice float64
	for i, reqItem := range req.Items {
		var product models.Product
		if err := config.DB.First(&product, reqItem.ProductID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		if i == 0 {
			order.RestaurantID = product.RestaurantID
		} else if product.RestaurantID != order.RestaurantID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "All items must belong to the same restaurant"})
			return
		}

		price := product.BasePrice
		if product.DiscountPrice != nil && *product.DiscountPrice < product.BasePrice {
			price = *product.DiscountPrice
		}
		for _, size := range product.Sizes {
			if reqItem.Size != "" && size.Size == reqItem.Size {
				price = size.Price
			}
		}
		for _, extra := range reqItem.Extras {
			price += extra.Price
		}

		order.Items = append(order.Items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.ItemName,
			Price:     price,
			Quantity:  reqItem.Quantity,
			Image:     product.Image,
			Size:      reqItem.Size,
			Extras:    reqItem.Extras,
		})
		itemsPrice += price * float64(reqItem.Quantity)
	}

	order.UserID = user.ID
	order.ItemsPrice = itemsPrice
	order.TaxPrice = req.TaxPrice
	order.ShippingPrice = req.ShippingPrice
	order.TotalPrice = itemsPrice + req.TaxPrice + req.ShippingPrice
	order.Status = models.StatusProcessing
	order.Payment = models.PaymentInfo{Method: req.PaymentMethod, Status: models.PaymentUnpaid}
	if req.PaymentMethod == models.MethodOnline {
		now := time.Now()
		order.Payment.Status = models.PaymentPaid
		order.Payment.ID = req.PaymentID
		order.PaidAt = &now
	}

	if err := config.DB.Create(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		return
	}

	if n, err := notify.Store(config.DB, models.NotifyOrderPlaced, nil, &order.RestaurantID, &order.ID,
		"New order #"+itoa(order.ID)+" placed by "+user.Name); err == nil {
		publish(n)
	}

	var restaurant models.Restaurant
	if err := config.DB.First(&restaurant, order.RestaurantID).Error; err == nil {
		// Best effort; the order stands even if the email bounces.
		_ = services.SendEmail(restaurant.Email, "New order received",
			"Order #"+itoa(order.ID)+" has been placed. Total: "+ftoa(order.TotalPrice))
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Order placed", "order": order})
}

// CancelOrder cancels the caller's own order with a conditional update so a
// concurrent delivery wins cleanly.
func CancelOrder(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var order models.Order
	if err := config.DB.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	res := config.DB.Model(&models.Order{}).
		Where("id = ? AND status IN ?", order.ID, statemachine.NonTerminalStates).
		Update("status", models.StatusCancelled)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel order"})
		return
	}
	if res.RowsAffected == 0 {
		config.DB.First(&order, order.ID)
		c.JSON(http.StatusConflict, gin.H{"error": "Order is already " + string(order.Status)})
		return
	}

	if n, err := notify.Store(config.DB, models.NotifyOrderCancelled, nil, &order.RestaurantID, &order.ID,
		"Order #"+itoa(order.ID)+" was cancelled by the customer"); err == nil {
		publish(n)
	}

	if err := services.SendEmail(user.Email, "Order cancelled",
		"Your order #"+itoa(order.ID)+" has been cancelled."); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Order cancelled but confirmation email failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "success": true})
}

// GetUserOrders lists the caller's orders, newest first, items included.
func GetUserOrders(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var orders []models.Order
	if err := config.DB.Preload("Items").Preload("Restaurant").
		Where("user_id = ?", user.ID).Order("created_at DESC").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// GetUserOrderByID returns one of the caller's orders.
func GetUserOrderByID(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var order models.Order
	if err := config.DB.Preload("Items").Preload("Restaurant").Preload("DeliveredBy").
		Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

type SubmitReviewRequest struct {
	TargetKind models.ReviewTarget `json:"target_kind" binding:"required,oneof=product restaurant rider"`
	TargetID   uint                `json:"target_id" binding:"required"`
	Rating     int                 `json:"rating" binding:"required,min=1,max=5"`
	Comment    string              `json:"comment"`
}

// SubmitReview upserts the caller's review of one target and recomputes the
// target's mean rating over all current reviews. A resubmission replaces the
// earlier rating rather than adding a second row.
func SubmitReview(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var product models.Product
	switch req.TargetKind {
	case models.ReviewProduct:
		if err := config.DB.First(&product, req.TargetID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
	case models.ReviewRestaurant:
		var r models.Restaurant
		if err := config.DB.First(&r, req.TargetID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
			return
		}
	case models.ReviewRider:
		var rider models.User
		if err := config.DB.Where("id = ? AND role = ?", req.TargetID, models.RoleRider).First(&rider).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Rider not found"})
			return
		}
	}

	var review models.Review
	err := config.DB.Where("user_id = ? AND target_kind = ? AND target_id = ?",
		user.ID, req.TargetKind, req.TargetID).First(&review).Error
	if err == nil {
		review.Rating = req.Rating
		review.Comment = req.Comment
		review.Profile = user.Image
		if err := config.DB.Save(&review).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save review"})
			return
		}
	} else {
		review = models.Review{
			UserID:     user.ID,
			TargetKind: req.TargetKind,
			TargetID:   req.TargetID,
			Rating:     req.Rating,
			Comment:    req.Comment,
			Profile:    user.Image,
		}
		if err := config.DB.Create(&review).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save review"})
			return
		}
	}

	if err := recomputeRating(req.TargetKind, req.TargetID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rating"})
		return
	}

	// Every branch notifies its audience: a product review reaches the owning
	// restaurant, a restaurant review the restaurant itself, a rider review
	// the rider.
	switch req.TargetKind {
	case models.ReviewProduct:
		if n, err := notify.Store(config.DB, models.NotifyOther, nil, &product.RestaurantID, nil,
			user.Name+" reviewed "+product.ItemName+": "+itoa(uint(req.Rating))+" stars"); err == nil {
			publish(n)
		}
	case models.ReviewRestaurant:
		if n, err := notify.Store(config.DB, models.NotifyOther, nil, &req.TargetID, nil,
			user.Name+" reviewed your restaurant: "+itoa(uint(req.Rating))+" stars"); err == nil {
			publish(n)
		}
	case models.ReviewRider:
		if n, err := notify.Store(config.DB, models.NotifyOther, &req.TargetID, nil, nil,
			user.Name+" rated your delivery: "+itoa(uint(req.Rating))+" stars"); err == nil {
			publish(n)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review submitted", "review": review})
}

// recomputeRating recalculates the full mean and count for one review target.
func recomputeRating(kind models.ReviewTarget, targetID uint) error {
	var stats struct {
		Avg   float64
		Count int
	}
	if err := config.DB.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("target_kind = ? AND target_id = ?", kind, targetID).
		Scan(&stats).Error; err != nil {
		return err
	}

	updates := map[string]interface{}{"ratings": stats.Avg, "total_review": stats.Count}
	switch kind {
	case models.ReviewProduct:
		return config.DB.Model(&models.Product{}).Where("id = ?", targetID).Updates(updates).Error
	case models.ReviewRestaurant:
		return config.DB.Model(&models.Restaurant{}).Where("id = ?", targetID).Updates(updates).Error
	case models.ReviewRider:
		return config.DB.Model(&models.User{}).Where("id = ?", targetID).Updates(updates).Error
	}
	return nil
}

// GetNearbyRestaurants lists approved restaurants within 1 km of the caller's
// stored location, nearest first. Distances stay server-side; the caller only
// learns membership.
func GetNearbyRestaurants(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.Location.Latitude == 0 && user.Location.Longitude == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Set your location first"})
		return
	}

	var restaurants []models.Restaurant
	if err := config.DB.Where("is_approved = ?", true).Find(&restaurants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch restaurants"})
		return
	}

	var results []models.Restaurant
	var distances []float64
	for _, r := range restaurants {
		d := utils.Haversine(user.Location.Longitude, user.Location.Latitude,
			r.Location.Longitude, r.Location.Latitude)
		if d <= 1000 {
			results = append(results, r)
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

	c.JSON(http.StatusOK, gin.H{"restaurants": results, "count": len(results)})
}

// GetUserNotifications returns the caller's notifications, newest first.
func GetUserNotifications(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var notifications []models.Notification
	if err := config.DB.Where("recipient_id = ?", user.ID).
		Order("created_at DESC").Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "count": len(notifications)})
}

// MarkNotificationRead flips one of the caller's notifications to read.
func MarkNotificationRead(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	res := config.DB.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", c.Param("id"), user.ID).
		Update("read", true)
	if res.Error != nil || res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetCartPricing prices a prospective cart without creating an order, applying
// the same size/extras rules as PlaceOrder. The frontend uses it for totals.
func GetCartPricing(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var itemsPrice float64
	for _, reqItem := range req.Items {
		var product models.Product
		if err := config.DB.First(&product, reqItem.ProductID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		price := product.BasePrice
		if product.DiscountPrice != nil && *product.DiscountPrice < product.BasePrice {
			price = *product.DiscountPrice
		}
		for _, size := range product.Sizes {
			if reqItem.Size != "" && size.Size == reqItem.Size {
				price = size.Price
			}
		}
		for _, extra := range reqItem.Extras {
			price += extra.Price
		}
		itemsPrice += price * float64(reqItem.Quantity)
	}

	c.JSON(http.StatusOK, gin.H{
		"items_price":    itemsPrice,
		"tax_price":      req.TaxPrice,
		"shipping_price": req.ShippingPrice,
		"total_price":    itemsPrice + req.TaxPrice + req.ShippingPrice,
	})
}

// GetTopRatedRestaurants serves the five-minute cached top list.
func GetTopRatedRestaurants(c *gin.Context) {
	if data, ok := cache.GetTopRated(); ok {
		c.JSON(http.StatusOK, gin.H{"restaurants": data, "cached": true})
		return
	}

	var restaurants []models.Restaurant
	if err := config.DB.Where("is_approved = ?", true).
		Order("ratings DESC").Limit(10).Find(&restaurants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch restaurants"})
		return
	}
	cache.SetTopRated(restaurants)
	c.JSON(http.StatusOK, gin.H{"restaurants": restaurants, "cached": false})
}
