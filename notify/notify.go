package notify

import (
	"local-baba-api/models"

	"gorm.io/gorm"
)

// Store persists one notification record unconditionally (no dedup) and
// returns it. Publishing to the real-time channel is the caller's job.
func Store(db *gorm.DB, typ models.NotificationType, recipient, restaurant, order *uint, message string) (*models.Notification, error) {
	n := &models.Notification{
		Type:         typ,
		RecipientID:  recipient,
		RestaurantID: restaurant,
		OrderID:      order,
		Message:      message,
	}
	if err := db.Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}
