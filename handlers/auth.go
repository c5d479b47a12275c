package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"local-baba-api/config"
	"local-baba-api/middleware"
	"local-baba-api/models"
	"local-baba-api/services"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginUser authenticates a customer/rider/admin account.
func LoginUser(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if !user.ComparePassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	now := time.Now()
	user.LastLogin = &now
	config.DB.Save(&user)

	sendUserToken(c, &user, http.StatusCreated, "Authenticated")
}

// Logout clears the session cookie.
func Logout(c *gin.Context) {
	clearTokenCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword issues a reset OTP to whichever account kind owns the email.
// Emails are unique across both kinds by the registration invariant, so at
// most one account matches. A failed send rolls the code back.
func ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err == nil {
		code := user.GenerateOTP()
		config.DB.Save(&user)
		if err := services.SendEmail(user.Email, "Password verification", "Your four digit OTP is "+code+"."); err != nil {
			user.ClearOTP()
			config.DB.Save(&user)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to send email"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Verification email was sent to your registered email",
			"success": true,
			"email":   user.Email,
		})
		return
	}

	var restaurant models.Restaurant
	if err := config.DB.Where("email = ?", req.Email).First(&restaurant).Error; err == nil {
		code := restaurant.GenerateOTP()
		config.DB.Save(&restaurant)
		if err := services.SendEmail(restaurant.Email, "Password verification", "Your four digit OTP is "+code+"."); err != nil {
			restaurant.ClearOTP()
			config.DB.Save(&restaurant)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to send email"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Verification email was sent to your registered email",
			"success": true,
			"email":   restaurant.Email,
		})
		return
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
}

type VerifyOTPRequest struct {
	OTP string `json:"otp" binding:"required,len=4,numeric"`
}

// VerifyOTP matches the code across both account kinds: value equality AND
// unexpired. On match the account is marked verified, the code cleared, and a
// session token issued. A miss is a domain-level result, not an error.
func VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := config.DB.Where("otp = ? AND otp_expire > ?", req.OTP, time.Now()).First(&user).Error
	if err == nil {
		user.IsVerified = true
		user.OTP = ""
		config.DB.Save(&user)
		sendUserToken(c, &user, http.StatusOK, "OTP verified")
		return
	}

	var restaurant models.Restaurant
	err = config.DB.Where("otp = ? AND otp_expire > ?", req.OTP, time.Now()).First(&restaurant).Error
	if err == nil {
		restaurant.IsEmailVerified = true
		restaurant.OTP = ""
		config.DB.Save(&restaurant)
		sendRestaurantToken(c, &restaurant, http.StatusOK, "OTP verified")
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid OTP"})
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// ResetPassword mutates the password of the authenticated account. The session
// gate plus a still-unexpired OTP window stand in for a separate reset token.
func ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if user := middleware.CurrentUser(c); user != nil {
		var fresh models.User
		if err := config.DB.Where("email = ? AND otp_expire > ?", user.Email, time.Now()).First(&fresh).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if err := fresh.SetPassword(req.Password); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		fresh.OTPExpire = nil
		config.DB.Save(&fresh)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated successfully"})
		return
	}

	if restaurant := middleware.CurrentRestaurant(c); restaurant != nil {
		var fresh models.Restaurant
		if err := config.DB.Where("email = ? AND otp_expire > ?", restaurant.Email, time.Now()).First(&fresh).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
			return
		}
		if err := fresh.SetPassword(req.Password); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		fresh.OTPExpire = nil
		config.DB.Save(&fresh)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated successfully"})
		return
	}

	c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
}

type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
}

// UpdatePassword changes a logged-in user's password after checking the old one.
func UpdatePassword(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !user.ComparePassword(req.OldPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Wrong password"})
		return
	}
	if err := user.SetPassword(req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	config.DB.Save(user)
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// GoogleLogin redirects the browser to Google's consent screen.
func GoogleLogin(c *gin.Context) {
	if config.GoogleOAuthConfig == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google login is not configured"})
		return
	}
	url := config.GoogleOAuthConfig.AuthCodeURL("state-token")
	c.Redirect(http.StatusTemporaryRedirect, url)
}

type googleProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Image string `json:"picture"`
}

// GoogleCallback exchanges the code, resolves or creates the local user, and
// redirects to the frontend with a short-lived intermediate token. The
// one-email-one-account-kind invariant applies: an email registered as a
// restaurant cannot log in federated.
func GoogleCallback(c *gin.Context) {
	if config.GoogleOAuthConfig == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google login is not configured"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code"})
		return
	}

	token, err := config.GoogleOAuthConfig.Exchange(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Code exchange failed"})
		return
	}

	client := config.GoogleOAuthConfig.Client(c.Request.Context(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}
	defer resp.Body.Close()

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil || profile.Email == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode profile"})
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", profile.Email).First(&user).Error; err != nil {
		var restaurant models.Restaurant
		if err := config.DB.Where("email = ?", profile.Email).First(&restaurant).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "A restaurant with this email exists"})
			return
		}
		user = models.User{
			GoogleID:   profile.ID,
			Name:       profile.Name,
			Email:      profile.Email,
			Image:      profile.Image,
			IsApproved: true,
			IsVerified: true,
		}
		if err := config.DB.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "User not created"})
			return
		}
	}

	intermediate, err := middleware.GenerateToken(user.ID, middleware.KindUser, middleware.IntermediateTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	setTokenCookie(c, intermediate)
	c.Redirect(http.StatusTemporaryRedirect, config.FrontendURL()+"/callback?token="+intermediate)
}
