package config

import (
	"log"
	"os"

	"local-baba-api/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// JWTSecret signs session tokens, read from env or fallback.
var JWTSecret = []byte(GetEnv("JWT_SECRET", "local_baba_super_secret_2024"))

// PaymentKeySecret is the shared secret the payment gateway signs callbacks
// with (HMAC-SHA256 over "orderId|paymentId").
var PaymentKeySecret = []byte(GetEnv("PAYMENT_KEY_SECRET", "local_baba_payment_secret"))

func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func InitDB() {
	var err error
	DB, err = gorm.Open(sqlite.Open(GetEnv("DB_PATH", "local_baba.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	log.Println("Database connected and migrated")
}

// Migrate runs auto-migration for every model. Split out so tests can migrate
// an in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.Category{},
		&models.Offer{},
		&models.Product{},
		&models.Review{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderHistoryEntry{},
		&models.Notification{},
	)
}
