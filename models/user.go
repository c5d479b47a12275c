package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// UserRole defines allowed roles for the user account kind. Restaurants are a
// separate account kind (see Restaurant) and are not listed here.
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleRider    UserRole = "rider"
	RoleAdmin    UserRole = "admin"
)

// UserStatus is a soft lifecycle flag; user accounts are never hard-deleted.
type UserStatus string

const (
	UserActive    UserStatus = "Active"
	UserInactive  UserStatus = "Inactive"
	UserDeleted   UserStatus = "Deleted"
	UserBlocked   UserStatus = "Blocked"
	UserSuspended UserStatus = "Suspended"
)

// PersonalDetails is shared by customers and riders.
type PersonalDetails struct {
	Address     string     `json:"address"`
	Phone       string     `json:"phone"`
	Gender      string     `json:"gender" gorm:"default:'Male'"`
	Available   bool       `json:"available" gorm:"default:true"`
	DOB         *time.Time `json:"dob"`
	Nationality string     `json:"nationality"`
}

// Identification holds a rider's documents. Copies are URLs returned by the
// file storage service, never file contents.
type Identification struct {
	NationalID         string     `json:"national_id"`
	IDCardExp          *time.Time `json:"id_card_exp"`
	IDCardCopy         string     `json:"id_card_copy"`
	DrivingLicenseNo   string     `json:"driving_license_no"`
	DrivingLicenseExp  *time.Time `json:"driving_license_exp"`
	DrivingLicenseCopy string     `json:"driving_license_copy"`
}

type VehicleDetails struct {
	VehicleType   string `json:"vehicle_type"`
	VehicleNumber string `json:"vehicle_number"`
	VehicleModel  string `json:"vehicle_model"`
	VehicleMake   string `json:"vehicle_make"`
	VehicleIDCopy string `json:"vehicle_id_copy"`
}

// GeoPoint is a WGS84 coordinate pair, longitude first as in GeoJSON.
type GeoPoint struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	Name         string   `json:"name"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string   `json:"-"`
	GoogleID     string   `json:"-"`
	Role         UserRole `json:"role" gorm:"not null;default:'customer'"`
	Image        string   `json:"image"`

	Personal       PersonalDetails `json:"personal_details" gorm:"embedded;embeddedPrefix:personal_"`
	Identification Identification  `json:"identification" gorm:"embedded;embeddedPrefix:ident_"`
	Vehicle        VehicleDetails  `json:"vehicle_details" gorm:"embedded;embeddedPrefix:vehicle_"`

	IsProfileCompleted bool `json:"is_profile_completed" gorm:"default:false"`

	// AccountBalance is credited only when the rider completes a delivery.
	AccountBalance float64 `json:"account_balance" gorm:"default:0"`

	Ratings     float64 `json:"ratings" gorm:"default:0"`
	TotalReview int     `json:"total_review" gorm:"default:0"`

	IsApproved bool       `json:"is_approved" gorm:"default:false"`
	IsVerified bool       `json:"is_verified" gorm:"default:false"`
	Status     UserStatus `json:"status" gorm:"default:'Active'"`
	LastLogin  *time.Time `json:"last_login"`

	OTP       string     `json:"-"`
	OTPExpire *time.Time `json:"-"`

	Location GeoPoint `json:"location" gorm:"embedded;embeddedPrefix:loc_"`

	Orders []Order `json:"orders,omitempty" gorm:"foreignKey:UserID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const otpValidity = 5 * time.Minute

// generateOTP returns a 4-digit numeric code.
func generateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return fmt.Sprintf("%04d", time.Now().UnixNano()%9000+1000)
	}
	return fmt.Sprintf("%04d", n.Int64()+1000)
}

// GenerateOTP stores a fresh 4-digit code with a 5-minute expiry on the user.
// The caller is responsible for saving and for out-of-band delivery.
func (u *User) GenerateOTP() string {
	code := generateOTP()
	expire := time.Now().Add(otpValidity)
	u.OTP = code
	u.OTPExpire = &expire
	return code
}

// OTPMatches is a two-part predicate: value equality AND expiry in the future.
// An expired code never matches; no cleanup job removes stale codes.
func (u *User) OTPMatches(code string) bool {
	return code != "" && u.OTP == code && u.OTPExpire != nil && time.Now().Before(*u.OTPExpire)
}

// ClearOTP removes the code, e.g. after verification or a failed email send.
func (u *User) ClearOTP() {
	u.OTP = ""
	u.OTPExpire = nil
}

func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) ComparePassword(plain string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// IsProfileComplete reports whether every field a rider must provide before
// approval is present.
func (u *User) IsProfileComplete() bool {
	required := []string{
		u.Name, u.Email,
		u.Personal.Address, u.Personal.Phone, u.Personal.Gender, u.Personal.Nationality,
		u.Identification.NationalID, u.Identification.IDCardCopy,
		u.Identification.DrivingLicenseNo, u.Identification.DrivingLicenseCopy,
		u.Vehicle.VehicleType, u.Vehicle.VehicleNumber, u.Vehicle.VehicleModel,
		u.Vehicle.VehicleMake, u.Vehicle.VehicleIDCopy,
	}
	for _, v := range required {
		if v == "" {
			return false
		}
	}
	return u.Personal.DOB != nil && u.Identification.IDCardExp != nil &&
		u.Identification.DrivingLicenseExp != nil
}
