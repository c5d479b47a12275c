package handlers

import (
	"net/http"
	"strconv"
	"time"

	"local-baba-api/cache"
	"local-baba-api/config"
	"local-baba-api/middleware"
	"local-baba-api/models"
	"local-baba-api/services"
	"local-baba-api/utils"

	"github.com/gin-gonic/gin"
)

type RegisterRestaurantRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// RegisterRestaurant creates a restaurant account, unverified and unapproved.
// The same one-email-one-account rule as user signup applies across kinds.
func RegisterRestaurant(c *gin.Context) {
	var req RegisterRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if emailTaken(req.Email) {
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	}

	restaurant := models.Restaurant{
		Name:  req.Name,
		Email: req.Email,
	}
	if err := restaurant.SetPassword(req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	code := restaurant.GenerateOTP()

	if err := config.DB.Create(&restaurant).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	}

	if err := services.SendEmail(restaurant.Email, "Email verification", "Your four digit OTP is "+code+"."); err != nil {
		config.DB.Delete(&restaurant)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to send verification email"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "OTP was sent to your registered email, please verify",
		"success": true,
		"email":   restaurant.Email,
	})
}

type RestaurantProfileRequest struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	City           string `json:"city"`
	Address        string `json:"address"`
	NoOfEmployees  int    `json:"no_of_employees"`
	CuisineType    string `json:"cuisine_type"`
	OperatingHours string `json:"operating_hours"`
	Image          string `json:"image"`

	Owner              *models.OwnerDetails `json:"owner_details"`
	LegalCopyOfLicense string               `json:"legal_copy_of_license"`
	Location           *models.GeoPoint     `json:"location"`
}

// CompleteRestaurantProfile fills in the onboarding form; approval is a
// separate admin step once the profile is complete.
func CompleteRestaurantProfile(c *gin.Context) {
	restaurant := middleware.CurrentRestaurant(c)
	if restaurant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	var req RestaurantProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" {
		restaurant.Name = req.Name
	}
	if req.Phone != "" {
		restaurant.Phone = req.Phone
	}
	if req.City != "" {
		restaurant.City = req.City
	}
	if req.Address != "" {
		restaurant.Address = req.Address
	}
	if req.NoOfEmployees > 0 {
		restaurant.NoOfEmployees = req.NoOfEmployees
	}
	if req.CuisineType != "" {
		restaurant.CuisineType = req.CuisineType
	}
	if req.OperatingHours != "" {
		restaurant.OperatingHours = req.OperatingHours
	}
	if req.Image != "" {
		restaurant.Image = req.Image
	}
	if req.Owner != nil {
		restaurant.Owner = *req.Owner
	}
	if req.LegalCopyOfLicense != "" {
		restaurant.LegalCopyOfLicense = req.LegalCopyOfLicense
	}
	if req.Location != nil {
		restaurant.Location = *req.Location
	}

	restaurant.IsProfileCompleted = restaurant.IsProfileComplete()

	if err := config.DB.Save(restaurant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":              "Profile updated",
		"is_profile_completed": restaurant.IsProfileCompleted,
		"restaurant":           restaurant,
	})
}

// GetRestaurantProfile returns the authenticated restaurant's own record.
func GetRestaurantProfile(c *gin.Context) {
	restaurant := middleware.CurrentRestaurant(c)
	if restaurant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

type ProductRequest struct {
	CategoryID  uint   `json:"category_id" binding:"required"`
	OfferID     *uint  `json:"offer_id"`
	ItemName    string `json:"item_name" binding:"required"`
	Description string `json:"description"`

	BasePrice     float64  `json:"base_price" binding:"required,gt=0"`
	DiscountPrice *float64 `json:"discount_price"`

	Ingredients []string             `json:"ingredients"`
	Sizes       []models.SizeOption  `json:"sizes"`
	Extras      []models.ExtraOption `json:"extras"`

	Image               string `json:"image"`
	SpecialInstructions string `json:"special_instructions"`
	Availability        *bool  `json:"availability"`
}

// AddNewProduct creates a menu item for the calling restaurant. The discount
// percentage is derived server-side, never trusted from the client.
func AddNewProduct(c *gin.Context) {
	restaurant := middleware.CurrentRestaurant(c)
	if restaurant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var category models.Category
	if err := config.DB.First(&category, req.CategoryID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	if req.OfferID != nil {
		var offer models.Offer
		if err := config.DB.Where("id = ? AND restaurant_id = ?", *req.OfferID, restaurant.ID).
			First(&offer).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
			return
		}
	}

	var duplicate models.Product
	if err := config.DB.Where("restaurant_id = ? AND item_name = ?", restaurant.ID, req.ItemName).
		First(&duplicate).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A product with this name already exists"})
		return
	}

	product := models.Product{
		RestaurantID:        restaurant.ID,
		CategoryID:          req.CategoryID,
		OfferID:             req.OfferID,
		ItemName:            req.ItemName,
		Description:         req.Description,
		BasePrice:           req.BasePrice,
		DiscountPrice:       req.DiscountPrice,
		DiscountPercentage:  utils.CalculateDiscountPercentage(req.BasePrice, req.DiscountPrice),
		Ingredients:         req.Ingredients,
		Sizes:               req.Sizes,
		Extras:              req.Extras,
		Image:               req.Image,
		SpecialInstructions: req.SpecialInstructions,
	}
	if req.Availability != nil {
		product.Availability = *req.Availability
	} else {
		product.Availability = true
	}

	if err := config.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "product": product})
}

// UpdateProduct edits one of the calling restaurant's own products and
// recomputes the discount percentage from the current prices.
func UpdateProduct(c *gin.Context) {
	restaurant := middleware.CurrentRestaurant(c)
	if restaurant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	var product models.Product
	if err := config.DB.Where("id = ? AND restaurant_id = ?", c.Param("id"), restaurant.ID).
		First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.CategoryID != 0 {
		var category models.Category
		if err := config.DB.First(&category, req.CategoryID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		product.CategoryID = req.CategoryID
	}
	product.OfferID = req.OfferID
	if req.ItemName != "" {
		product.ItemName = req.ItemName
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.BasePrice > 0 {
		product.BasePrice = req.BasePrice
	}
	product.DiscountPrice = req.DiscountPrice
	product.DiscountPercentage = utils.CalculateDiscountPercentage(product.BasePrice, product.DiscountPrice)
	if req.Ingredients != nil {
		product.Ingredients = req.Ingredients
	}
	if req.Sizes != nil {
		product.Sizes = req.Sizes
	}
	if req.Extras != nil {
		product.Extras = req.Extras
	}
	if req.Image != "" {
		product.Image = req.Image
	}
	if req.SpecialInstructions != "" {
		product.SpecialInstructions = req.SpecialInstructions
	}
	if req.Availability != nil {
		product.Availability = *req.Availability
	}

	if err := config.DB.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": product})
}

// DeleteProduct removes one of the calling restaurant's products. Existing
// order items keep their denormalized snapshot.
func DeleteProduct(c *gin.Context) {
	restaurant := middleware.CurrentRestaurant(c)
	if restaurant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	res := config.DB.Where("id = ? AND restaurant_id = ?", c.Param("id"), restaurant.ID).
		Delete(&models.Product{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted", "success": true})
}

// GetRestaurantProducts lists the calling restaurant's menu.
func GetRestaurantProducts(c *gin.Context) {
	restaurant := middleware.CurrentRestaurant(c)
	if restaurant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	var products []models.Product
	if err := config.DB.Preload("Category").Preload("Offer").
		Where("restaurant_id = ?", restaurant.ID).Order("created_at DESC").
		Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

type OfferRequest struct {
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description" binding:"required"`
	Discount    float64   `json:"discount" binding:"required,gt=0"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
}

// CreateOffer adds a discount window owned by the calling restaurant.
func CreateOffer(c *gin.Context) {
	restaurant := middleware.CurrentRestaurant(c)
	if restaurant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	var req OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.EndDate.After(req.StartDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "End date must be after start date"})
		return
	}

	offer := models.Offer{
		RestaurantID: restaurant.ID,
		Name:         req.Name,
		Description:  req.Description,
		Discount:     req.Discount,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	}
	if err := config.DB.Create(&offer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create offer"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Offer created", "offer": offer})
}

// GetRestaurantOffers lists the calling restaurant's offers.
func GetRestaurantOffers(c *gin.Context) {
	restaurant := middleware.CurrentRestaurant(c)
	if restaurant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	var offers []models.Offer
	if err := config.DB.Where("restaurant_id = ?", restaurant.ID).
		Order("created_at DESC").Find(&offers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch offers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers, "count": len(offers)})
}

// DeleteOffer removes an offer and detaches any products still pointing at it.
func DeleteOffer(c *gin.Context) {
	restaurant := middleware.CurrentRestaurant(c)
	if restaurant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	var offer models.Offer
	if err := config.DB.Where("id = ? AND restaurant_id = ?", c.Param("id"), restaurant.ID).
		First(&offer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
		return
	}

	config.DB.Model(&models.Product{}).Where("offer_id = ?", offer.ID).Update("offer_id", nil)
	if err := config.DB.Delete(&offer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete offer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Offer deleted", "success": true})
}

// GetRestaurantStats summarizes the restaurant dashboard: today's orders and
// revenue (IST day window), lifetime totals and the current rating.
func GetRestaurantStats(c *gin.Context) {
	restaurant := middleware.CurrentRestaurant(c)
	if restaurant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	dayStart, dayEnd := utils.ISTDayWindow()

	var todayOrders int64
	config.DB.Model(&models.Order{}).
		Where("restaurant_id = ? AND created_at >= ? AND created_at < ?", restaurant.ID, dayStart, dayEnd).
		Count(&todayOrders)

	var todayRevenue float64
	config.DB.Model(&models.Order{}).
		Select("COALESCE(SUM(total_price), 0)").
		Where("restaurant_id = ? AND status = ? AND delivered_at >= ? AND delivered_at < ?",
			restaurant.ID, models.StatusDelivered, dayStart, dayEnd).
		Scan(&todayRevenue)

	var totalOrders int64
	config.DB.Model(&models.Order{}).
		Where("restaurant_id = ?", restaurant.ID).Count(&totalOrders)

	var deliveredOrders int64
	config.DB.Model(&models.Order{}).
		Where("restaurant_id = ? AND status = ?", restaurant.ID, models.StatusDelivered).
		Count(&deliveredOrders)

	var totalRevenue float64
	config.DB.Model(&models.Order{}).
		Select("COALESCE(SUM(total_price), 0)").
		Where("restaurant_id = ? AND status = ?", restaurant.ID, models.StatusDelivered).
		Scan(&totalRevenue)

	var pendingOrders int64
	config.DB.Model(&models.Order{}).
		Where("restaurant_id = ? AND status IN ?", restaurant.ID,
			[]models.OrderStatus{models.StatusProcessing, models.StatusPreparing}).
		Count(&pendingOrders)

	var menuCount int64
	config.DB.Model(&models.Product{}).
		Where("restaurant_id = ?", restaurant.ID).Count(&menuCount)

	c.JSON(http.StatusOK, gin.H{
		"menu_count":       menuCount,
		"today_orders":     todayOrders,
		"today_revenue":    todayRevenue,
		"total_orders":     totalOrders,
		"delivered_orders": deliveredOrders,
		"pending_orders":   pendingOrders,
		"total_revenue":    totalRevenue,
		"ratings":          restaurant.Ratings,
		"total_review":     restaurant.TotalReview,
	})
}

// GetRevenueComparison returns monthly delivered revenue for two years side by
// side, defaulting to this year against last year.
func GetRevenueComparison(c *gin.Context) {
	restaurant := middleware.CurrentRestaurant(c)
	if restaurant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	yearA := time.Now().Year()
	yearB := yearA - 1
	if y, err := strconv.Atoi(c.Query("year")); err == nil && y > 2000 {
		yearA = y
		yearB = y - 1
	}

	monthlyFor := func(year int) ([]float64, error) {
		start, end := utils.YearRange(year)
		var orders []models.Order
		err := config.DB.
			Where("restaurant_id = ? AND status = ? AND delivered_at >= ? AND delivered_at < ?",
				restaurant.ID, models.StatusDelivered, start, end).
			Find(&orders).Error
		if err != nil {
			return nil, err
		}
		monthly := make([]float64, 12)
		for _, o := range orders {
			if o.DeliveredAt != nil {
				monthly[int(o.DeliveredAt.Month())-1] += o.TotalPrice
			}
		}
		return monthly, nil
	}

	current, err := monthlyFor(yearA)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch revenue"})
		return
	}
	previous, err := monthlyFor(yearB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch revenue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"current_year":  gin.H{"year": yearA, "monthly_revenue": current},
		"previous_year": gin.H{"year": yearB, "monthly_revenue": previous},
	})
}

// GetRestaurantNotifications lists notifications addressed to the restaurant.
func GetRestaurantNotifications(c *gin.Context) {
	restaurant := middleware.CurrentRestaurant(c)
	if restaurant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	var notifications []models.Notification
	if err := config.DB.Where("restaurant_id = ?", restaurant.ID).
		Order("created_at DESC").Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "count": len(notifications)})
}

// MarkRestaurantNotificationRead flips one of the restaurant's notifications
// to read.
func MarkRestaurantNotificationRead(c *gin.Context) {
	restaurant := middleware.CurrentRestaurant(c)
	if restaurant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	res := config.DB.Model(&models.Notification{}).
		Where("id = ? AND restaurant_id = ?", c.Param("id"), restaurant.ID).
		Update("read", true)
	if res.Error != nil || res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// InvalidateListings drops the public listing caches; the restaurant can call
// it after a burst of menu edits instead of waiting out the TTL.
func InvalidateListings(c *gin.Context) {
	cache.Invalidate()
	c.JSON(http.StatusOK, gin.H{"success": true})
}
