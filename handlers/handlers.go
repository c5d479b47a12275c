package handlers

import (
	"net/http"
	"strconv"

	"local-baba-api/middleware"
	"local-baba-api/models"
	"local-baba-api/notify"

	"github.com/gin-gonic/gin"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// publisher is the injected real-time publish port. main sets it before routes
// are registered, so handlers can never publish through a nil channel.
var publisher notify.Publisher = discardPublisher{}

// SetPublisher wires the notification hub (or a test recorder).
func SetPublisher(p notify.Publisher) {
	if p != nil {
		publisher = p
	}
}

type discardPublisher struct{}

func (discardPublisher) Publish(any) {}

func publish(n *models.Notification) {
	publisher.Publish(n)
}

// sendUserToken issues a session token for a user as both cookie and body.
func sendUserToken(c *gin.Context, user *models.User, status int, msg string) {
	token, err := middleware.GenerateToken(user.ID, middleware.KindUser, middleware.SessionTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	setTokenCookie(c, token)
	c.JSON(status, gin.H{"message": msg, "user": user, "token": token})
}

func sendRestaurantToken(c *gin.Context, restaurant *models.Restaurant, status int, msg string) {
	token, err := middleware.GenerateToken(restaurant.ID, middleware.KindRestaurant, middleware.SessionTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	setTokenCookie(c, token)
	c.JSON(status, gin.H{"message": msg, "restaurant": restaurant, "token": token})
}

func setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(middleware.TokenCookie, token, int(middleware.SessionTTL.Seconds()), "/", "", true, true)
}

func clearTokenCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", true, true)
}
