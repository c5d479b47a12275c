package handlers

import (
	"net/http"

	"local-baba-api/cache"
	"local-baba-api/config"
	"local-baba-api/models"
	"local-baba-api/notify"
	"local-baba-api/services"

	"github.com/gin-gonic/gin"
)

type CategoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Image string `json:"image" binding:"required"`
}

// CreateCategory adds a global product category and drops the listing caches.
func CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := models.Category{Name: req.Name, Image: req.Image}
	if err := config.DB.Create(&category).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
		return
	}

	cache.Invalidate()
	c.JSON(http.StatusCreated, gin.H{"message": "Category created", "category": category})
}

// UpdateCategory edits a category name or image.
func UpdateCategory(c *gin.Context) {
	var category models.Category
	if err := config.DB.First(&category, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	category.Name = req.Name
	category.Image = req.Image

	if err := config.DB.Save(&category).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
		return
	}

	cache.Invalidate()
	c.JSON(http.StatusOK, gin.H{"message": "Category updated", "category": category})
}

// DeleteCategory removes a category unless products still reference it.
func DeleteCategory(c *gin.Context) {
	var count int64
	config.DB.Model(&models.Product{}).Where("category_id = ?", c.Param("id")).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Category still has products"})
		return
	}

	res := config.DB.Delete(&models.Category{}, c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	cache.Invalidate()
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted", "success": true})
}

// ApproveRestaurant flips a restaurant to approved. Only completed profiles
// qualify; approval unlocks the menu and order endpoints.
func ApproveRestaurant(c *gin.Context) {
	var restaurant models.Restaurant
	if err := config.DB.First(&restaurant, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}
	if !restaurant.IsProfileCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Restaurant profile is not complete"})
		return
	}
	if restaurant.IsApproved {
		c.JSON(http.StatusOK, gin.H{"message": "Restaurant is already approved"})
		return
	}

	restaurant.IsApproved = true
	if err := config.DB.Save(&restaurant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve restaurant"})
		return
	}

	if n, err := notify.Store(config.DB, models.NotifySystemAlert, nil, &restaurant.ID, nil,
		"Your restaurant has been approved"); err == nil {
		publish(n)
	}
	_ = services.SendEmail(restaurant.Email, "Restaurant approved",
		"Congratulations, your restaurant "+restaurant.Name+" is now live.")

	c.JSON(http.StatusOK, gin.H{"message": "Restaurant approved", "restaurant": restaurant})
}

// ApproveRider flips a rider to approved, with the same completed-profile
// requirement as restaurants.
func ApproveRider(c *gin.Context) {
	var rider models.User
	if err := config.DB.Where("id = ? AND role = ?", c.Param("id"), models.RoleRider).
		First(&rider).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rider not found"})
		return
	}
	if !rider.IsProfileCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rider profile is not complete"})
		return
	}
	if rider.IsApproved {
		c.JSON(http.StatusOK, gin.H{"message": "Rider is already approved"})
		return
	}

	rider.IsApproved = true
	if err := config.DB.Save(&rider).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve rider"})
		return
	}

	if n, err := notify.Store(config.DB, models.NotifySystemAlert, &rider.ID, nil, nil,
		"Your rider account has been approved"); err == nil {
		publish(n)
	}
	_ = services.SendEmail(rider.Email, "Rider account approved",
		"Congratulations "+rider.Name+", you can start accepting deliveries.")

	c.JSON(http.StatusOK, gin.H{"message": "Rider approved", "rider": rider})
}

// GetPendingRestaurants lists completed-but-unapproved restaurant profiles.
func GetPendingRestaurants(c *gin.Context) {
	var restaurants []models.Restaurant
	if err := config.DB.
		Where("is_approved = ? AND is_profile_completed = ?", false, true).
		Order("created_at ASC").Find(&restaurants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch restaurants"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurants": restaurants, "count": len(restaurants)})
}

// GetPendingRiders lists completed-but-unapproved rider profiles.
func GetPendingRiders(c *gin.Context) {
	var riders []models.User
	if err := config.DB.
		Where("role = ? AND is_approved = ? AND is_profile_completed = ?", models.RoleRider, false, true).
		Order("created_at ASC").Find(&riders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch riders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"riders": riders, "count": len(riders)})
}

// GetAllUsers lists user accounts, optionally filtered by ?role=.
func GetAllUsers(c *gin.Context) {
	query := config.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// GetAdminCounts returns the platform-wide headline numbers.
func GetAdminCounts(c *gin.Context) {
	var customers, riders, restaurants, orders, delivered int64
	config.DB.Model(&models.User{}).Where("role = ?", models.RoleCustomer).Count(&customers)
	config.DB.Model(&models.User{}).Where("role = ?", models.RoleRider).Count(&riders)
	config.DB.Model(&models.Restaurant{}).Count(&restaurants)
	config.DB.Model(&models.Order{}).Count(&orders)
	config.DB.Model(&models.Order{}).Where("status = ?", models.StatusDelivered).Count(&delivered)

	var revenue float64
	config.DB.Model(&models.Order{}).
		Select("COALESCE(SUM(total_price), 0)").
		Where("status = ?", models.StatusDelivered).
		Scan(&revenue)

	c.JSON(http.StatusOK, gin.H{
		"customers":        customers,
		"riders":           riders,
		"restaurants":      restaurants,
		"orders":           orders,
		"delivered_orders": delivered,
		"total_revenue":    revenue,
	})
}
