package main

import (
	"log"
	"time"

	"local-baba-api/config"
	"local-baba-api/handlers"
	"local-baba-api/notify"
	"local-baba-api/routes"
	"local-baba-api/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	gin.SetMode(config.GetEnv("GIN_MODE", gin.DebugMode))

	config.InitDB()
	config.InitGoogleOAuth()
	services.Init()

	hub := notify.NewHub()
	go hub.Run()
	handlers.SetPublisher(hub)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.FrontendURL()},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "local-baba-api"})
	})

	routes.SetupRoutes(r, hub)

	port := config.GetEnv("PORT", "4000")
	log.Println("Server starting on port " + port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
