package routes

import (
	"local-baba-api/handlers"
	"local-baba-api/middleware"
	"local-baba-api/models"
	"local-baba-api/notify"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers every endpoint group on the engine.
func SetupRoutes(r *gin.Engine, hub *notify.Hub) {
	customer := string(models.RoleCustomer)
	rider := string(models.RoleRider)
	admin := string(models.RoleAdmin)

	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/login", handlers.LoginUser)
		auth.POST("/logout", handlers.Logout)
		auth.POST("/forgot-password", handlers.ForgotPassword)
		auth.POST("/verify-otp", handlers.VerifyOTP)
		auth.POST("/reset-password", middleware.AuthRequired(), handlers.ResetPassword)
		auth.PUT("/update-password", middleware.AuthRequired(), handlers.UpdatePassword)
		auth.GET("/google", handlers.GoogleLogin)
		auth.GET("/google/callback", handlers.GoogleCallback)
	}

	global := r.Group("/api/v1/global")
	{
		global.GET("/restaurants", handlers.GetAllRestaurants)
		global.GET("/restaurants/top-rated", handlers.GetTopRatedRestaurants)
		global.GET("/restaurants/discounted", handlers.GetDiscountedRestaurants)
		global.GET("/restaurants/:id", handlers.GetRestaurantByID)
		global.GET("/products", handlers.GetAllProducts)
		global.GET("/products/:id", handlers.GetProductByID)
		global.GET("/categories", handlers.GetCategories)
		global.GET("/reviews/:kind/:id", handlers.GetReviews)
		global.GET("/offers", handlers.GetActiveOffers)
		global.GET("/order-transitions", handlers.GetOrderTransitions)
	}

	user := r.Group("/api/v1/user")
	{
		user.POST("/register", handlers.RegisterUser)

		authed := user.Group("", middleware.AuthRequired(), middleware.RoleRequired(customer, admin))
		{
			authed.GET("/profile", handlers.GetUserProfile)
			authed.PUT("/profile", handlers.UpdateUserProfile)
			authed.GET("/restaurants/nearby", handlers.GetNearbyRestaurants)
			authed.POST("/cart/price", handlers.GetCartPricing)
			authed.POST("/orders", handlers.PlaceOrder)
			authed.GET("/orders", handlers.GetUserOrders)
			authed.GET("/orders/:id", handlers.GetUserOrderByID)
			authed.PUT("/orders/:id/cancel", handlers.CancelOrder)
			authed.POST("/reviews", handlers.SubmitReview)
			authed.GET("/notifications", handlers.GetUserNotifications)
			authed.PUT("/notifications/:id/read", handlers.MarkNotificationRead)
		}
	}

	riderGroup := r.Group("/api/v1/rider")
	{
		riderGroup.POST("/register", handlers.RegisterRider)

		authed := riderGroup.Group("", middleware.AuthRequired(), middleware.RoleRequired(rider))
		{
			authed.GET("/profile", handlers.GetUserProfile)
			authed.PUT("/profile", handlers.CompleteRiderProfile)
			authed.PUT("/availability", handlers.SetAvailability)
			authed.GET("/notifications", handlers.GetUserNotifications)

			approved := authed.Group("", middleware.RiderApproved())
			{
				approved.GET("/orders/available", handlers.GetAvailableOrders)
				approved.PUT("/orders/:id/accept", handlers.AcceptOrder)
				approved.PUT("/orders/:id/deliver", handlers.DeliverOrder)
				approved.GET("/orders", handlers.GetRiderOrders)
				approved.GET("/stats", handlers.GetRiderStats)
				approved.GET("/revenue", handlers.GetRiderRevenueGraph)
			}
		}
	}

	restaurant := r.Group("/api/v1/restaurant")
	{
		restaurant.POST("/register", handlers.RegisterRestaurant)

		authed := restaurant.Group("", middleware.AuthRequired(), middleware.RoleRequired(models.RoleRestaurant))
		{
			authed.GET("/profile", handlers.GetRestaurantProfile)
			authed.PUT("/profile", handlers.CompleteRestaurantProfile)
			authed.GET("/notifications", handlers.GetRestaurantNotifications)
			authed.PUT("/notifications/:id/read", handlers.MarkRestaurantNotificationRead)

			approved := authed.Group("", middleware.RestaurantApproved())
			{
				approved.POST("/products", handlers.AddNewProduct)
				approved.GET("/products", handlers.GetRestaurantProducts)
				approved.PUT("/products/:id", handlers.UpdateProduct)
				approved.DELETE("/products/:id", handlers.DeleteProduct)

				approved.POST("/offers", handlers.CreateOffer)
				approved.GET("/offers", handlers.GetRestaurantOffers)
				approved.DELETE("/offers/:id", handlers.DeleteOffer)

				approved.GET("/orders", handlers.GetRestaurantOrders)
				approved.GET("/orders/:id", handlers.GetRestaurantOrderByID)
				approved.PUT("/orders/:id", handlers.UpdateOrder)

				approved.GET("/stats", handlers.GetRestaurantStats)
				approved.GET("/revenue/comparison", handlers.GetRevenueComparison)
				approved.POST("/listings/invalidate", handlers.InvalidateListings)
			}
		}
	}

	adminGroup := r.Group("/api/v1/admin",
		middleware.AuthRequired(), middleware.RoleRequired(admin))
	{
		adminGroup.POST("/categories", handlers.CreateCategory)
		adminGroup.PUT("/categories/:id", handlers.UpdateCategory)
		adminGroup.DELETE("/categories/:id", handlers.DeleteCategory)

		adminGroup.PUT("/restaurants/:id/approve", handlers.ApproveRestaurant)
		adminGroup.PUT("/riders/:id/approve", handlers.ApproveRider)
		adminGroup.GET("/restaurants/pending", handlers.GetPendingRestaurants)
		adminGroup.GET("/riders/pending", handlers.GetPendingRiders)

		adminGroup.GET("/users", handlers.GetAllUsers)
		adminGroup.GET("/counts", handlers.GetAdminCounts)
	}

	payment := r.Group("/api/v1/payment", middleware.AuthRequired())
	{
		payment.POST("/order", handlers.CreatePaymentOrder)
		payment.POST("/verify", handlers.VerifyPayment)
	}

	r.GET("/ws", hub.ServeWS)
}
