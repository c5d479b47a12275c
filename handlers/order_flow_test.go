package handlers_test

import (
	"fmt"
	"math"
	"net/http"
	"testing"
	"time"

	"local-baba-api/models"
)

func placeOrder(t *testing.T, env *testEnv, token string, productID uint) uint {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/v1/user/orders", map[string]any{
		"order_item":     []map[string]any{{"product_id": productID, "quantity": 2}},
		"payment_method": "cod",
		"tax_price":      20.0,
		"shipping_price": 30.0,
	}, token)
	requireStatus(t, w, http.StatusCreated)

	body := decodeBody(t, w)
	order := body["order"].(map[string]any)
	return uint(order["id"].(float64))
}

func TestOrderLifecycleEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	customer, customerToken := env.createCustomer(t, "customer@example.com")
	restaurant, _ := env.createRestaurant(t, "kitchen@example.com", true)
	rider, riderToken := env.createRider(t, "rider@example.com")
	product := env.createProduct(t, restaurant.ID, 100)

	orderID := placeOrder(t, env, customerToken, product.ID)

	var order models.Order
	env.db.Preload("Items").First(&order, orderID)
	if order.TotalPrice != 250 {
		t.Fatalf("total = %v, want 250 (2x100 + 20 tax + 30 shipping)", order.TotalPrice)
	}
	if order.Status != models.StatusProcessing {
		t.Fatalf("new order status = %s, want Processing", order.Status)
	}
	if order.RestaurantID != restaurant.ID {
		t.Fatalf("order restaurant = %d, want %d", order.RestaurantID, restaurant.ID)
	}
	if order.Items[0].Name != product.ItemName || order.Items[0].Price != 100 {
		t.Fatal("line item should snapshot the product name and price")
	}

	var placedCount int64
	env.db.Model(&models.Notification{}).
		Where("type = ? AND restaurant_id = ?", models.NotifyOrderPlaced, restaurant.ID).
		Count(&placedCount)
	if placedCount != 1 {
		t.Fatalf("placed notifications = %d, want 1", placedCount)
	}

	// Rider sees the order within the 5 km radius.
	w := env.do(t, http.MethodGet, "/api/v1/rider/orders/available", nil, riderToken)
	requireStatus(t, w, http.StatusOK)
	if got := decodeBody(t, w)["count"].(float64); got != 1 {
		t.Fatalf("available orders = %v, want 1", got)
	}

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/rider/orders/%d/accept", orderID), nil, riderToken)
	requireStatus(t, w, http.StatusOK)

	env.db.First(&order, orderID)
	if order.Status != models.StatusOnItsWay {
		t.Fatalf("accepted order status = %s, want On its way", order.Status)
	}
	if order.DeliveredByID == nil || *order.DeliveredByID != rider.ID {
		t.Fatal("accepted order should be assigned to the rider")
	}

	var acceptedCount int64
	env.db.Model(&models.Notification{}).
		Where("type = ? AND recipient_id = ?", models.NotifyOrderAccepted, customer.ID).
		Count(&acceptedCount)
	if acceptedCount != 1 {
		t.Fatalf("accepted notifications = %d, want 1", acceptedCount)
	}

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/rider/orders/%d/deliver", orderID), nil, riderToken)
	requireStatus(t, w, http.StatusOK)

	env.db.First(&order, orderID)
	if order.Status != models.StatusDelivered {
		t.Fatalf("delivered order status = %s", order.Status)
	}
	if order.DeliveredAt == nil {
		t.Fatal("delivered order should carry a delivery timestamp")
	}
	if order.Payment.Status != models.PaymentPaid || order.PaidAt == nil {
		t.Fatal("COD order should settle as paid on delivery")
	}

	var freshRider models.User
	env.db.First(&freshRider, rider.ID)
	if math.Abs(freshRider.AccountBalance-15) > 1e-9 {
		t.Fatalf("rider balance = %v, want 15 (half of 30 shipping)", freshRider.AccountBalance)
	}

	var historyCount int64
	env.db.Model(&models.OrderHistoryEntry{}).Where("order_id = ?", orderID).Count(&historyCount)
	if historyCount != 2 {
		t.Fatalf("history rows = %d, want 2 (customer + restaurant)", historyCount)
	}

	var deliveredCount int64
	env.db.Model(&models.Notification{}).
		Where("type = ? AND restaurant_id = ?", models.NotifyOrderDelivered, restaurant.ID).
		Count(&deliveredCount)
	if deliveredCount != 1 {
		t.Fatalf("delivered notifications = %d, want exactly 1", deliveredCount)
	}

	// Terminal state: nothing moves it anymore.
	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/user/orders/%d/cancel", orderID), nil, customerToken)
	requireStatus(t, w, http.StatusConflict)

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/rider/orders/%d/deliver", orderID), nil, riderToken)
	requireStatus(t, w, http.StatusConflict)
}

func TestSecondAcceptLoses(t *testing.T) {
	env := newTestEnv(t)
	_, customerToken := env.createCustomer(t, "customer@example.com")
	restaurant, _ := env.createRestaurant(t, "kitchen@example.com", true)
	_, riderToken := env.createRider(t, "rider1@example.com")
	_, rival := env.createRider(t, "rider2@example.com")
	product := env.createProduct(t, restaurant.ID, 100)

	orderID := placeOrder(t, env, customerToken, product.ID)

	w := env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/rider/orders/%d/accept", orderID), nil, riderToken)
	requireStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/rider/orders/%d/accept", orderID), nil, rival)
	requireStatus(t, w, http.StatusConflict)

	var order models.Order
	env.db.First(&order, orderID)
	if order.DeliveredByID == nil {
		t.Fatal("order should stay assigned to the first rider")
	}
}

func TestCancelThenAccept(t *testing.T) {
	env := newTestEnv(t)
	_, customerToken := env.createCustomer(t, "customer@example.com")
	restaurant, _ := env.createRestaurant(t, "kitchen@example.com", true)
	_, riderToken := env.createRider(t, "rider@example.com")
	product := env.createProduct(t, restaurant.ID, 100)

	orderID := placeOrder(t, env, customerToken, product.ID)

	w := env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/user/orders/%d/cancel", orderID), nil, customerToken)
	requireStatus(t, w, http.StatusOK)

	var order models.Order
	env.db.First(&order, orderID)
	if order.Status != models.StatusCancelled {
		t.Fatalf("order status = %s, want Cancelled", order.Status)
	}

	// The cancelled order is gone from the rider's feed and cannot be claimed.
	w = env.do(t, http.MethodGet, "/api/v1/rider/orders/available", nil, riderToken)
	requireStatus(t, w, http.StatusOK)
	if got := decodeBody(t, w)["count"].(float64); got != 0 {
		t.Fatalf("available orders = %v, want 0", got)
	}

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/rider/orders/%d/accept", orderID), nil, riderToken)
	requireStatus(t, w, http.StatusConflict)
}

func TestOnlineOrderRequiresPaymentID(t *testing.T) {
	env := newTestEnv(t)
	_, customerToken := env.createCustomer(t, "customer@example.com")
	restaurant, _ := env.createRestaurant(t, "kitchen@example.com", true)
	product := env.createProduct(t, restaurant.ID, 100)

	w := env.do(t, http.MethodPost, "/api/v1/user/orders", map[string]any{
		"order_item":     []map[string]any{{"product_id": product.ID, "quantity": 1}},
		"payment_method": "online",
	}, customerToken)
	requireStatus(t, w, http.StatusBadRequest)

	w = env.do(t, http.MethodPost, "/api/v1/user/orders", map[string]any{
		"order_item":     []map[string]any{{"product_id": product.ID, "quantity": 1}},
		"payment_method": "online",
		"payment_id":     "pay_123",
	}, customerToken)
	requireStatus(t, w, http.StatusCreated)

	var order models.Order
	env.db.Order("id DESC").First(&order)
	if order.Payment.Status != models.PaymentPaid || order.PaidAt == nil {
		t.Fatal("online order should be stamped paid at placement")
	}
}

func TestOrdersFromTwoRestaurantsRejected(t *testing.T) {
	env := newTestEnv(t)
	_, customerToken := env.createCustomer(t, "customer@example.com")
	restaurantA, _ := env.createRestaurant(t, "a@example.com", true)
	restaurantB, _ := env.createRestaurant(t, "b@example.com", true)
	productA := env.createProduct(t, restaurantA.ID, 100)
	productB := env.createProduct(t, restaurantB.ID, 100)

	w := env.do(t, http.MethodPost, "/api/v1/user/orders", map[string]any{
		"order_item": []map[string]any{
			{"product_id": productA.ID, "quantity": 1},
			{"product_id": productB.ID, "quantity": 1},
		},
		"payment_method": "cod",
	}, customerToken)
	requireStatus(t, w, http.StatusBadRequest)
}

func TestAvailableOrdersNearestFirstWithoutDistance(t *testing.T) {
	env := newTestEnv(t)
	_, customerToken := env.createCustomer(t, "customer@example.com")
	near, _ := env.createRestaurant(t, "near@example.com", true)
	_, riderToken := env.createRider(t, "rider@example.com")

	// ~3 km north of the rider, still inside the 5 km radius.
	farther := &models.Restaurant{
		Name: "Uphill Kitchen", Email: "uphill@example.com", City: "Bengaluru",
		IsApproved: true, IsEmailVerified: true, IsProfileCompleted: true,
		Location: models.GeoPoint{Longitude: 77.5946, Latitude: 12.9990},
	}
	if err := farther.SetPassword("password123"); err != nil {
		t.Fatal(err)
	}
	if err := env.db.Create(farther).Error; err != nil {
		t.Fatal(err)
	}

	productFar := env.createProduct(t, farther.ID, 100)
	productNear := env.createProduct(t, near.ID, 100)

	// The farther order goes in first so feed position cannot come from
	// insertion order.
	placeOrder(t, env, customerToken, productFar.ID)
	placeOrder(t, env, customerToken, productNear.ID)

	w := env.do(t, http.MethodGet, "/api/v1/rider/orders/available", nil, riderToken)
	requireStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	if got := body["count"].(float64); got != 2 {
		t.Fatalf("available orders = %v, want 2", got)
	}

	orders := body["orders"].([]any)
	first := orders[0].(map[string]any)
	if uint(first["restaurant_id"].(float64)) != near.ID {
		t.Fatal("feed should list the nearest restaurant's order first")
	}
	if _, ok := first["distance"]; ok {
		t.Fatal("feed should not expose the computed distance")
	}
}

func TestRiderRevenueGraphMonthlyBuckets(t *testing.T) {
	env := newTestEnv(t)
	_, customerToken := env.createCustomer(t, "customer@example.com")
	restaurant, _ := env.createRestaurant(t, "kitchen@example.com", true)
	_, riderToken := env.createRider(t, "rider@example.com")
	product := env.createProduct(t, restaurant.ID, 100)

	orderID := placeOrder(t, env, customerToken, product.ID)
	w := env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/rider/orders/%d/accept", orderID), nil, riderToken)
	requireStatus(t, w, http.StatusOK)
	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/rider/orders/%d/deliver", orderID), nil, riderToken)
	requireStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodGet, "/api/v1/rider/revenue", nil, riderToken)
	requireStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	if got := body["year"].(float64); int(got) != time.Now().Year() {
		t.Fatalf("year = %v, want the current year", got)
	}

	monthly := body["monthly_revenue"].([]any)
	if len(monthly) != 12 {
		t.Fatalf("buckets = %d, want 12", len(monthly))
	}
	var total float64
	for _, v := range monthly {
		total += v.(float64)
	}
	bucket := monthly[int(time.Now().Month())-1].(float64)
	if math.Abs(bucket-15) > 1e-9 || math.Abs(total-15) > 1e-9 {
		t.Fatalf("current month bucket = %v, total = %v, want 15 (half of 30 shipping) in one bucket", bucket, total)
	}
}

func TestFarAwayOrderNotAvailable(t *testing.T) {
	env := newTestEnv(t)
	_, customerToken := env.createCustomer(t, "customer@example.com")
	restaurant, _ := env.createRestaurant(t, "kitchen@example.com", true)
	product := env.createProduct(t, restaurant.ID, 100)

	// Rider roughly 90 km away in Mysuru.
	rider := &models.User{
		Name: "Far Rider", Email: "far@example.com", Role: models.RoleRider,
		IsApproved: true, IsVerified: true,
		Location: models.GeoPoint{Longitude: 76.6394, Latitude: 12.2958},
	}
	if err := rider.SetPassword("password123"); err != nil {
		t.Fatal(err)
	}
	if err := env.db.Create(rider).Error; err != nil {
		t.Fatal(err)
	}
	riderToken := env.token(t, rider.ID, "user")

	placeOrder(t, env, customerToken, product.ID)

	w := env.do(t, http.MethodGet, "/api/v1/rider/orders/available", nil, riderToken)
	requireStatus(t, w, http.StatusOK)
	if got := decodeBody(t, w)["count"].(float64); got != 0 {
		t.Fatalf("available orders = %v, want 0 for a rider 90 km away", got)
	}
}
