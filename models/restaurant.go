package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// RoleRestaurant is the fixed role label of the restaurant account kind.
const RoleRestaurant = "restaurant"

// OwnerDetails describes the person behind a restaurant account.
type OwnerDetails struct {
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Image       string     `json:"image"`
	Phone       string     `json:"phone"`
	Gender      string     `json:"gender" gorm:"default:'Male'"`
	DOB         *time.Time `json:"dob"`
	Nationality string     `json:"nationality"`
}

type Restaurant struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-"`

	City           string `json:"city"`
	Address        string `json:"address"`
	NoOfEmployees  int    `json:"no_of_employees"`
	CuisineType    string `json:"cuisine_type"`
	OperatingHours string `json:"operating_hours"`
	Image          string `json:"image"`

	Owner OwnerDetails `json:"owner_details" gorm:"embedded;embeddedPrefix:owner_"`

	// URL of the uploaded license copy; the file itself lives in file storage.
	LegalCopyOfLicense string `json:"legal_copy_of_license"`

	IsProfileCompleted bool `json:"is_profile_completed" gorm:"default:false"`
	IsApproved         bool `json:"is_approved" gorm:"default:false"`
	IsEmailVerified    bool `json:"is_email_verified" gorm:"default:false"`

	Ratings     float64 `json:"ratings" gorm:"default:0"`
	TotalReview int     `json:"total_review" gorm:"default:0"`

	OTP       string     `json:"-"`
	OTPExpire *time.Time `json:"-"`

	Location GeoPoint `json:"location" gorm:"embedded;embeddedPrefix:loc_"`

	Products []Product `json:"products,omitempty" gorm:"foreignKey:RestaurantID"`
	Orders   []Order   `json:"orders,omitempty" gorm:"foreignKey:RestaurantID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Restaurant) GenerateOTP() string {
	code := generateOTP()
	expire := time.Now().Add(otpValidity)
	r.OTP = code
	r.OTPExpire = &expire
	return code
}

func (r *Restaurant) OTPMatches(code string) bool {
	return code != "" && r.OTP == code && r.OTPExpire != nil && time.Now().Before(*r.OTPExpire)
}

func (r *Restaurant) ClearOTP() {
	r.OTP = ""
	r.OTPExpire = nil
}

func (r *Restaurant) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	r.PasswordHash = string(hash)
	return nil
}

func (r *Restaurant) ComparePassword(plain string) bool {
	if r.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(r.PasswordHash), []byte(plain)) == nil
}

// IsProfileComplete reports whether the onboarding form is fully filled in;
// admins only approve completed profiles.
func (r *Restaurant) IsProfileComplete() bool {
	required := []string{
		r.Name, r.Phone, r.Email, r.City, r.Address, r.CuisineType, r.OperatingHours,
		r.Owner.Name, r.Owner.Email, r.Owner.Phone, r.Owner.Gender, r.Owner.Nationality,
		r.LegalCopyOfLicense,
	}
	for _, v := range required {
		if v == "" {
			return false
		}
	}
	return r.NoOfEmployees > 0 && r.Owner.DOB != nil
}
