package models

import (
	"testing"
	"time"
)

func TestGenerateOTP(t *testing.T) {
	var u User
	code := u.GenerateOTP()

	if len(code) != 4 {
		t.Fatalf("OTP %q should be 4 digits", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("OTP %q should be numeric", code)
		}
	}
	if u.OTP != code {
		t.Errorf("stored OTP %q does not match returned code %q", u.OTP, code)
	}
	if u.OTPExpire == nil || !u.OTPExpire.After(time.Now()) {
		t.Error("OTP expiry should be set in the future")
	}
}

func TestOTPMatches(t *testing.T) {
	future := time.Now().Add(time.Minute)
	past := time.Now().Add(-time.Minute)

	tests := []struct {
		name   string
		otp    string
		expire *time.Time
		code   string
		want   bool
	}{
		{"valid code", "1234", &future, "1234", true},
		{"wrong code", "1234", &future, "9999", false},
		{"expired code never matches", "1234", &past, "1234", false},
		{"no expiry set", "1234", nil, "1234", false},
		{"empty code", "", &future, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := User{OTP: tt.otp, OTPExpire: tt.expire}
			if got := u.OTPMatches(tt.code); got != tt.want {
				t.Errorf("OTPMatches(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	var u User
	if err := u.SetPassword("hunter2hunter2"); err != nil {
		t.Fatal(err)
	}
	if u.PasswordHash == "hunter2hunter2" {
		t.Error("password should not be stored in plain text")
	}
	if !u.ComparePassword("hunter2hunter2") {
		t.Error("correct password should match")
	}
	if u.ComparePassword("wrong") {
		t.Error("wrong password should not match")
	}
	if (&User{}).ComparePassword("") {
		t.Error("account without a hash should never match")
	}
}

func TestRiderProfileCompleteness(t *testing.T) {
	dob := time.Now().AddDate(-25, 0, 0)
	exp := time.Now().AddDate(2, 0, 0)

	complete := User{
		Name:  "Ravi",
		Email: "ravi@example.com",
		Personal: PersonalDetails{
			Address: "12 MG Road", Phone: "9900112233",
			Gender: "Male", Nationality: "Indian", DOB: &dob,
		},
		Identification: Identification{
			NationalID: "AAD-1", IDCardExp: &exp, IDCardCopy: "https://files/id.png",
			DrivingLicenseNo: "DL-9", DrivingLicenseExp: &exp, DrivingLicenseCopy: "https://files/dl.png",
		},
		Vehicle: VehicleDetails{
			VehicleType: "bike", VehicleNumber: "KA-01-1234",
			VehicleModel: "Splendor", VehicleMake: "Hero", VehicleIDCopy: "https://files/rc.png",
		},
	}
	if !complete.IsProfileComplete() {
		t.Error("fully filled profile should be complete")
	}

	missing := complete
	missing.Identification.DrivingLicenseCopy = ""
	if missing.IsProfileComplete() {
		t.Error("profile without a license copy should be incomplete")
	}

	noDOB := complete
	noDOB.Personal.DOB = nil
	if noDOB.IsProfileComplete() {
		t.Error("profile without a date of birth should be incomplete")
	}
}
