package handlers

import (
	"net/http"
	"time"

	"local-baba-api/cache"
	"local-baba-api/config"
	"local-baba-api/models"
	"local-baba-api/statemachine"

	"github.com/gin-gonic/gin"
)

// GetAllRestaurants lists approved restaurants for public browsing.
func GetAllRestaurants(c *gin.Context) {
	query := config.DB.Where("is_approved = ?", true)
	if city := c.Query("city"); city != "" {
		query = query.Where("city = ?", city)
	}
	if cuisine := c.Query("cuisine"); cuisine != "" {
		query = query.Where("cuisine_type = ?", cuisine)
	}

	var restaurants []models.Restaurant
	if err := query.Order("ratings DESC").Find(&restaurants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch restaurants"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurants": restaurants, "count": len(restaurants)})
}

// GetRestaurantByID returns one approved restaurant with its menu.
func GetRestaurantByID(c *gin.Context) {
	var restaurant models.Restaurant
	if err := config.DB.Preload("Products").Preload("Products.Category").
		Where("id = ? AND is_approved = ?", c.Param("id"), true).
		First(&restaurant).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

// GetAllProducts lists available products, filterable by category and
// restaurant, searchable with ?q= and sortable with ?sort=.
func GetAllProducts(c *gin.Context) {
	query := config.DB.Preload("Category").Preload("Restaurant").
		Where("availability = ?", true)
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if restaurantID := c.Query("restaurant_id"); restaurantID != "" {
		query = query.Where("restaurant_id = ?", restaurantID)
	}
	if q := c.Query("q"); q != "" {
		query = query.Where("item_name LIKE ?", "%"+q+"%")
	}

	switch c.Query("sort") {
	case "price_asc":
		query = query.Order("base_price ASC")
	case "price_desc":
		query = query.Order("base_price DESC")
	default:
		query = query.Order("ratings DESC")
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// GetDiscountedRestaurants lists approved restaurants that currently sell at
// least one discounted product.
func GetDiscountedRestaurants(c *gin.Context) {
	var restaurants []models.Restaurant
	err := config.DB.
		Where("is_approved = ? AND id IN (?)", true,
			config.DB.Model(&models.Product{}).Select("restaurant_id").
				Where("discount_percentage > 0")).
		Order("ratings DESC").Find(&restaurants).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch restaurants"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurants": restaurants, "count": len(restaurants)})
}

// GetProductByID returns one product with category, restaurant and offer.
func GetProductByID(c *gin.Context) {
	var product models.Product
	if err := config.DB.Preload("Category").Preload("Restaurant").Preload("Offer").
		First(&product, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// GetCategories serves the category list through the five-minute cache.
func GetCategories(c *gin.Context) {
	if data, ok := cache.GetCategories(); ok {
		c.JSON(http.StatusOK, gin.H{"categories": data, "cached": true})
		return
	}

	var categories []models.Category
	if err := config.DB.Order("name ASC").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}
	cache.SetCategories(categories)
	c.JSON(http.StatusOK, gin.H{"categories": categories, "cached": false})
}

// GetReviews lists reviews for one target, addressed by kind and id.
func GetReviews(c *gin.Context) {
	kind := models.ReviewTarget(c.Param("kind"))
	switch kind {
	case models.ReviewProduct, models.ReviewRestaurant, models.ReviewRider:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown review target kind"})
		return
	}

	var reviews []models.Review
	if err := config.DB.Preload("User").
		Where("target_kind = ? AND target_id = ?", kind, c.Param("id")).
		Order("created_at DESC").Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "count": len(reviews)})
}

// GetActiveOffers lists offers whose window covers the current moment.
func GetActiveOffers(c *gin.Context) {
	now := time.Now()
	var offers []models.Offer
	if err := config.DB.Preload("Restaurant").
		Where("start_date <= ? AND end_date >= ?", now, now).
		Order("discount DESC").Find(&offers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch offers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers, "count": len(offers)})
}

// GetOrderTransitions publishes the order state machine so clients can render
// which actions are currently possible.
func GetOrderTransitions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"transitions": statemachine.GetAllTransitions()})
}
