package handlers

import (
	"errors"
	"time"

	"local-baba-api/config"
	"local-baba-api/models"
	"local-baba-api/notify"
	"local-baba-api/statemachine"

	"gorm.io/gorm"
)

// riderShippingShare is the fraction of the shipping price credited to the
// delivering rider's account balance.
const riderShippingShare = 0.5

// ErrAlreadyFinal reports a delivery attempt on an order that reached a
// terminal state first.
var ErrAlreadyFinal = errors.New("order already reached a final state")

// finishDelivery moves an order to Delivered atomically. One transaction
// covers the conditional status flip, the delivered timestamp, history rows
// for both the customer and the restaurant, a COD payment settlement, and the
// rider's shipping credit. Partial application is impossible; losing a race
// against another finisher returns ErrAlreadyFinal.
//
// forceCODPaid marks a cash order paid on handover, which is how the
// restaurant-side completion settles payment.
func finishDelivery(orderID uint, forceCODPaid bool) (*models.Order, *models.Notification, error) {
	var order models.Order
	var notification *models.Notification

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status IN ?", orderID, statemachine.NonTerminalStates).
			Updates(map[string]interface{}{"status": models.StatusDelivered, "delivered_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyFinal
		}

		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			return err
		}

		if order.Payment.Method == models.MethodCOD && order.Payment.Status != models.PaymentPaid && forceCODPaid {
			if err := tx.Model(&models.Order{}).Where("id = ?", orderID).
				Updates(map[string]interface{}{"payment_status": models.PaymentPaid, "paid_at": now}).Error; err != nil {
				return err
			}
			order.Payment.Status = models.PaymentPaid
			order.PaidAt = &now
		}

		history := []models.OrderHistoryEntry{
			{OrderID: order.ID, UserID: &order.UserID},
			{OrderID: order.ID, RestaurantID: &order.RestaurantID},
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		if order.DeliveredByID != nil {
			credit := order.ShippingPrice * riderShippingShare
			if err := tx.Model(&models.User{}).Where("id = ?", *order.DeliveredByID).
				Update("account_balance", gorm.Expr("account_balance + ?", credit)).Error; err != nil {
				return err
			}
		}

		n, err := notify.Store(tx, models.NotifyOrderDelivered, nil, &order.RestaurantID, &order.ID,
			"Order #"+itoa(order.ID)+" has been delivered")
		if err != nil {
			return err
		}
		notification = n
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &order, notification, nil
}
