package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"local-baba-api/config"
	"local-baba-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CreatePaymentOrderRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// CreatePaymentOrder opens a gateway payment intent for the checkout flow.
// The returned id goes to the gateway widget; the receipt is ours.
func CreatePaymentOrder(c *gin.Context) {
	var req CreatePaymentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       uuid.NewString(),
		"receipt":  utils.GenerateReceiptNumber(),
		"amount":   req.Amount,
		"currency": "INR",
	})
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// VerifyPayment checks the gateway callback signature: HMAC-SHA256 over
// "orderId|paymentId" with the shared payment secret, compared in constant
// time.
func VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mac := hmac.New(sha256.New, config.PaymentKeySecret)
	mac.Write([]byte(req.OrderID + "|" + req.PaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(req.Signature)) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid payment signature"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "payment_id": req.PaymentID})
}
