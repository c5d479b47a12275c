package handlers_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"testing"

	"local-baba-api/config"
)

func signPayment(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, config.PaymentKeySecret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreatePaymentOrder(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createCustomer(t, "payer@example.com")

	w := env.do(t, http.MethodPost, "/api/v1/payment/order", map[string]any{
		"amount": 250.0,
	}, token)
	requireStatus(t, w, http.StatusCreated)

	body := decodeBody(t, w)
	if body["id"] == nil || body["id"] == "" {
		t.Fatal("payment order should carry a gateway id")
	}
	if receipt := body["receipt"].(string); !strings.HasPrefix(receipt, "REC-") {
		t.Fatalf("receipt %q should start with REC-", receipt)
	}

	w = env.do(t, http.MethodPost, "/api/v1/payment/order", map[string]any{"amount": 0}, token)
	requireStatus(t, w, http.StatusBadRequest)
}

func TestVerifyPaymentSignature(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createCustomer(t, "payer@example.com")

	w := env.do(t, http.MethodPost, "/api/v1/payment/verify", map[string]any{
		"order_id":   "order_1",
		"payment_id": "pay_1",
		"signature":  signPayment("order_1", "pay_1"),
	}, token)
	requireStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodPost, "/api/v1/payment/verify", map[string]any{
		"order_id":   "order_1",
		"payment_id": "pay_1",
		"signature":  "forged",
	}, token)
	requireStatus(t, w, http.StatusBadRequest)

	// A signature for one payment does not verify another.
	w = env.do(t, http.MethodPost, "/api/v1/payment/verify", map[string]any{
		"order_id":   "order_2",
		"payment_id": "pay_2",
		"signature":  signPayment("order_1", "pay_1"),
	}, token)
	requireStatus(t, w, http.StatusBadRequest)
}
