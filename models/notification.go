package models

import "time"

type NotificationType string

const (
	NotifyOrderPlaced    NotificationType = "orderPlaced"
	NotifyOrderAccepted  NotificationType = "orderAccepted"
	NotifyOrderDelivered NotificationType = "orderDelivered"
	NotifyOrderCancelled NotificationType = "orderCancelled"
	NotifySystemAlert    NotificationType = "systemAlert"
	NotifyOther          NotificationType = "other"
)

// Notification weakly references its subjects; deleting an order or account
// never cascades here.
type Notification struct {
	ID           uint             `json:"id" gorm:"primaryKey"`
	Type         NotificationType `json:"type" gorm:"not null"`
	RecipientID  *uint            `json:"recipient_id"`
	Recipient    *User            `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`
	RestaurantID *uint            `json:"restaurant_id"`
	Restaurant   *Restaurant      `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	OrderID      *uint            `json:"order_id"`
	Message      string           `json:"message" gorm:"not null"`
	Read         bool             `json:"read" gorm:"default:false"`
	CreatedAt    time.Time        `json:"created_at"`
}
