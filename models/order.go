package models

import "time"

// OrderStatus represents all possible states of a delivery order.
type OrderStatus string

const (
	StatusProcessing OrderStatus = "Processing"
	StatusPreparing  OrderStatus = "Preparing"
	StatusPickedUp   OrderStatus = "Picked up"
	StatusOnItsWay   OrderStatus = "On its way"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

const (
	PaymentPaid   = "paid"
	PaymentUnpaid = "unpaid"

	MethodCOD    = "cod"
	MethodOnline = "online"
)

// PaymentInfo is the order's payment sub-record. ID is the external gateway
// reference, mandatory for online payments.
type PaymentInfo struct {
	Status string `json:"status" gorm:"default:'unpaid'"`
	Method string `json:"payment_method"`
	ID     string `json:"id"`
}

// OrderItem is a line item captured at placement time. Name, price and image
// are denormalized snapshots; later product changes never touch them.
type OrderItem struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	OrderID   uint     `json:"order_id" gorm:"not null"`
	ProductID uint     `json:"product_id" gorm:"not null"`
	Product   *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`

	Name     string        `json:"name" gorm:"not null"`
	Price    float64       `json:"price" gorm:"not null"`
	Quantity int           `json:"quantity" gorm:"not null"`
	Image    string        `json:"image"`
	Size     string        `json:"size"`
	Extras   []ExtraOption `json:"extras" gorm:"serializer:json"`
}

type Order struct {
	ID uint `json:"id" gorm:"primaryKey"`

	// UserID is the ordering customer and the delivery destination.
	UserID uint  `json:"user_id" gorm:"not null"`
	User   *User `json:"user,omitempty" gorm:"foreignKey:UserID"`

	// RestaurantID is the pick-up point, resolved from the first line item.
	RestaurantID uint        `json:"restaurant_id" gorm:"not null"`
	Restaurant   *Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`

	DeliveredByID *uint `json:"delivered_by_id"`
	DeliveredBy   *User `json:"delivered_by,omitempty" gorm:"foreignKey:DeliveredByID"`

	Items []OrderItem `json:"order_item" gorm:"foreignKey:OrderID"`

	Payment PaymentInfo `json:"payment_info" gorm:"embedded;embeddedPrefix:payment_"`
	PaidAt  *time.Time  `json:"paid_at"`

	ItemsPrice    float64 `json:"items_price" gorm:"default:0"`
	TaxPrice      float64 `json:"tax_price" gorm:"default:0"`
	ShippingPrice float64 `json:"shipping_price" gorm:"default:0"`
	TotalPrice    float64 `json:"total_price" gorm:"default:0"`

	Status      OrderStatus `json:"order_status" gorm:"not null;default:'Processing'"`
	DeliveredAt *time.Time  `json:"delivered_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderHistoryEntry links a delivered order into the customer's and the
// restaurant's order history. Rows are appended only at delivery time.
type OrderHistoryEntry struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	OrderID      uint      `json:"order_id" gorm:"not null"`
	UserID       *uint     `json:"user_id"`
	RestaurantID *uint     `json:"restaurant_id"`
	CreatedAt    time.Time `json:"created_at"`
}
