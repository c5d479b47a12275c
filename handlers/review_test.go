package handlers_test

import (
	"fmt"
	"math"
	"net/http"
	"testing"

	"local-baba-api/models"
)

func submitReview(t *testing.T, env *testEnv, token string, kind string, targetID uint, rating int) {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/v1/user/reviews", map[string]any{
		"target_kind": kind,
		"target_id":   targetID,
		"rating":      rating,
		"comment":     "tasty",
	}, token)
	requireStatus(t, w, http.StatusOK)
}

func TestReviewUpsertAndMean(t *testing.T) {
	env := newTestEnv(t)
	_, tokenA := env.createCustomer(t, "a@example.com")
	_, tokenB := env.createCustomer(t, "b@example.com")
	restaurant, _ := env.createRestaurant(t, "kitchen@example.com", true)

	submitReview(t, env, tokenA, "restaurant", restaurant.ID, 4)

	var fresh models.Restaurant
	env.db.First(&fresh, restaurant.ID)
	if fresh.Ratings != 4 || fresh.TotalReview != 1 {
		t.Fatalf("after first review: ratings=%v count=%d, want 4/1", fresh.Ratings, fresh.TotalReview)
	}

	submitReview(t, env, tokenB, "restaurant", restaurant.ID, 2)
	env.db.First(&fresh, restaurant.ID)
	if fresh.Ratings != 3 || fresh.TotalReview != 2 {
		t.Fatalf("after second review: ratings=%v count=%d, want 3/2", fresh.Ratings, fresh.TotalReview)
	}

	// Resubmission replaces, never duplicates.
	submitReview(t, env, tokenA, "restaurant", restaurant.ID, 5)
	env.db.First(&fresh, restaurant.ID)
	if math.Abs(fresh.Ratings-3.5) > 1e-9 || fresh.TotalReview != 2 {
		t.Fatalf("after resubmission: ratings=%v count=%d, want 3.5/2", fresh.Ratings, fresh.TotalReview)
	}

	var rows int64
	env.db.Model(&models.Review{}).
		Where("target_kind = ? AND target_id = ?", models.ReviewRestaurant, restaurant.ID).
		Count(&rows)
	if rows != 2 {
		t.Fatalf("review rows = %d, want 2", rows)
	}
}

func TestReviewTargetKindsAreIndependent(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createCustomer(t, "a@example.com")
	restaurant, _ := env.createRestaurant(t, "kitchen@example.com", true)
	product := env.createProduct(t, restaurant.ID, 100)
	rider, _ := env.createRider(t, "rider@example.com")

	// The same reviewer can rate a product, a restaurant and a rider even when
	// their integer ids happen to collide.
	submitReview(t, env, token, "product", product.ID, 5)
	submitReview(t, env, token, "restaurant", restaurant.ID, 3)
	submitReview(t, env, token, "rider", rider.ID, 4)

	var rows int64
	env.db.Model(&models.Review{}).Count(&rows)
	if rows != 3 {
		t.Fatalf("review rows = %d, want 3", rows)
	}

	var freshProduct models.Product
	env.db.First(&freshProduct, product.ID)
	if freshProduct.Ratings != 5 || freshProduct.TotalReview != 1 {
		t.Fatalf("product rating = %v/%d, want 5/1", freshProduct.Ratings, freshProduct.TotalReview)
	}

	var freshRider models.User
	env.db.First(&freshRider, rider.ID)
	if freshRider.Ratings != 4 || freshRider.TotalReview != 1 {
		t.Fatalf("rider rating = %v/%d, want 4/1", freshRider.Ratings, freshRider.TotalReview)
	}
}

func TestReviewNotifiesItsAudience(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createCustomer(t, "a@example.com")
	restaurant, _ := env.createRestaurant(t, "kitchen@example.com", true)
	product := env.createProduct(t, restaurant.ID, 100)
	rider, _ := env.createRider(t, "rider@example.com")

	// A product review lands with the owning restaurant.
	submitReview(t, env, token, "product", product.ID, 5)
	var count int64
	env.db.Model(&models.Notification{}).
		Where("restaurant_id = ?", restaurant.ID).Count(&count)
	if count != 1 {
		t.Fatalf("restaurant notifications after product review = %d, want 1", count)
	}

	// A restaurant review lands with the restaurant itself.
	submitReview(t, env, token, "restaurant", restaurant.ID, 3)
	env.db.Model(&models.Notification{}).
		Where("restaurant_id = ?", restaurant.ID).Count(&count)
	if count != 2 {
		t.Fatalf("restaurant notifications after restaurant review = %d, want 2", count)
	}

	// A rider review lands with the rider.
	submitReview(t, env, token, "rider", rider.ID, 4)
	env.db.Model(&models.Notification{}).
		Where("recipient_id = ?", rider.ID).Count(&count)
	if count != 1 {
		t.Fatalf("rider notifications after rider review = %d, want 1", count)
	}
}

func TestReviewUnknownTarget(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createCustomer(t, "a@example.com")

	w := env.do(t, http.MethodPost, "/api/v1/user/reviews", map[string]any{
		"target_kind": "restaurant", "target_id": 9999, "rating": 4,
	}, token)
	requireStatus(t, w, http.StatusNotFound)

	w = env.do(t, http.MethodPost, "/api/v1/user/reviews", map[string]any{
		"target_kind": "spaceship", "target_id": 1, "rating": 4,
	}, token)
	requireStatus(t, w, http.StatusBadRequest)
}

func TestPublicReviewListing(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createCustomer(t, "a@example.com")
	restaurant, _ := env.createRestaurant(t, "kitchen@example.com", true)

	submitReview(t, env, token, "restaurant", restaurant.ID, 4)

	w := env.do(t, http.MethodGet,
		fmt.Sprintf("/api/v1/global/reviews/restaurant/%d", restaurant.ID), nil, "")
	requireStatus(t, w, http.StatusOK)
	if got := decodeBody(t, w)["count"].(float64); got != 1 {
		t.Fatalf("public reviews = %v, want 1", got)
	}
}
