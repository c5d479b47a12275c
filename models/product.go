package models

import "time"

type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	Image     string    `json:"image" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Offer is a restaurant-managed discount window, optionally referenced by
// products of that restaurant.
type Offer struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	RestaurantID uint        `json:"restaurant_id" gorm:"not null"`
	Restaurant   *Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	Name         string      `json:"name" gorm:"not null"`
	Description  string      `json:"description" gorm:"not null"`
	Discount     float64     `json:"discount" gorm:"not null"`
	StartDate    time.Time   `json:"start_date"`
	EndDate      time.Time   `json:"end_date"`
	CreatedAt    time.Time   `json:"created_at"`
}

type SizeOption struct {
	Size  string  `json:"size"`
	Price float64 `json:"price"`
}

type ExtraOption struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type Product struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	RestaurantID uint        `json:"restaurant_id" gorm:"not null"`
	Restaurant   *Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	CategoryID   uint        `json:"category_id" gorm:"not null"`
	Category     *Category   `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	OfferID      *uint       `json:"offer_id"`
	Offer        *Offer      `json:"offer,omitempty" gorm:"foreignKey:OfferID"`

	ItemName    string `json:"item_name" gorm:"not null"`
	Description string `json:"description"`

	BasePrice     float64  `json:"base_price" gorm:"not null"`
	DiscountPrice *float64 `json:"discount_price"`
	// DiscountPercentage is recomputed from base/discount price on every write.
	DiscountPercentage int `json:"discount_percentage" gorm:"default:0"`

	Ingredients []string      `json:"ingredients" gorm:"serializer:json"`
	Sizes       []SizeOption  `json:"sizes" gorm:"serializer:json"`
	Extras      []ExtraOption `json:"extras" gorm:"serializer:json"`

	Image               string `json:"image"`
	SpecialInstructions string `json:"special_instructions"`
	Status              string `json:"status" gorm:"default:'Active'"`
	Availability        bool   `json:"availability" gorm:"default:true"`

	Ratings     float64 `json:"ratings" gorm:"default:0"`
	TotalReview int     `json:"total_review" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewTarget names the kind of entity a review is attached to. Callers must
// name the kind explicitly; integer ids are not unique across tables.
type ReviewTarget string

const (
	ReviewProduct    ReviewTarget = "product"
	ReviewRestaurant ReviewTarget = "restaurant"
	ReviewRider      ReviewTarget = "rider"
)

// Review holds one reviewer's rating of one target. The unique index enforces
// the at-most-one-review-per-(reviewer,target) invariant; a resubmission
// updates the row in place.
type Review struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	UserID     uint         `json:"user_id" gorm:"not null;uniqueIndex:idx_reviewer_target"`
	User       *User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	TargetKind ReviewTarget `json:"target_kind" gorm:"not null;uniqueIndex:idx_reviewer_target"`
	TargetID   uint         `json:"target_id" gorm:"not null;uniqueIndex:idx_reviewer_target"`
	Rating     int          `json:"rating" gorm:"not null"`
	Comment    string       `json:"comment"`
	// Profile snapshots the reviewer's display image at submission time.
	Profile   string    `json:"profile"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
