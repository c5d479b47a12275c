package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"local-baba-api/cache"
	"local-baba-api/config"
	"local-baba-api/handlers"
	"local-baba-api/middleware"
	"local-baba-api/models"
	"local-baba-api/notify"
	"local-baba-api/routes"
	"local-baba-api/services"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// stubMailer records every send and can be told to fail.
type stubMailer struct {
	mu   sync.Mutex
	Sent []sentMail
	Fail bool
}

func (m *stubMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return errors.New("smtp unavailable")
	}
	m.Sent = append(m.Sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

// recordingPublisher captures everything handlers push to the realtime channel.
type recordingPublisher struct {
	mu     sync.Mutex
	Events []any
}

func (p *recordingPublisher) Publish(v any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, v)
}

type testEnv struct {
	router    *gin.Engine
	db        *gorm.DB
	mailer    *stubMailer
	publisher *recordingPublisher
}

// newTestEnv wires the full router against a fresh in-memory database with a
// recording mailer and publisher.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(
		sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	config.DB = db
	cache.Invalidate()

	mailer := &stubMailer{}
	services.SetMailer(mailer)

	publisher := &recordingPublisher{}
	handlers.SetPublisher(publisher)

	hub := notify.NewHub()
	go hub.Run()

	r := gin.New()
	routes.SetupRoutes(r, hub)

	return &testEnv{router: r, db: db, mailer: mailer, publisher: publisher}
}

// do issues a JSON request, optionally authenticated with a bearer token.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func (e *testEnv) createCustomer(t *testing.T, email string) (*models.User, string) {
	t.Helper()
	user := &models.User{
		Name: "Customer", Email: email, Role: models.RoleCustomer,
		IsApproved: true, IsVerified: true,
		Location: models.GeoPoint{Longitude: 77.5946, Latitude: 12.9716},
	}
	if err := user.SetPassword("password123"); err != nil {
		t.Fatal(err)
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return user, e.token(t, user.ID, middleware.KindUser)
}

func (e *testEnv) createRider(t *testing.T, email string) (*models.User, string) {
	t.Helper()
	rider := &models.User{
		Name: "Rider", Email: email, Role: models.RoleRider,
		IsApproved: true, IsVerified: true, IsProfileCompleted: true,
		Location: models.GeoPoint{Longitude: 77.5950, Latitude: 12.9720},
	}
	if err := rider.SetPassword("password123"); err != nil {
		t.Fatal(err)
	}
	if err := e.db.Create(rider).Error; err != nil {
		t.Fatalf("create rider: %v", err)
	}
	return rider, e.token(t, rider.ID, middleware.KindUser)
}

func (e *testEnv) createRestaurant(t *testing.T, email string, approved bool) (*models.Restaurant, string) {
	t.Helper()
	restaurant := &models.Restaurant{
		Name: "Tandoor House", Email: email, City: "Bengaluru",
		IsApproved: approved, IsEmailVerified: true, IsProfileCompleted: true,
		Location: models.GeoPoint{Longitude: 77.5948, Latitude: 12.9718},
	}
	if err := restaurant.SetPassword("password123"); err != nil {
		t.Fatal(err)
	}
	if err := e.db.Create(restaurant).Error; err != nil {
		t.Fatalf("create restaurant: %v", err)
	}
	return restaurant, e.token(t, restaurant.ID, middleware.KindRestaurant)
}

var categorySeq uint64

func (e *testEnv) createProduct(t *testing.T, restaurantID uint, price float64) *models.Product {
	t.Helper()
	category := &models.Category{
		Name:  fmt.Sprintf("Category-%d", atomic.AddUint64(&categorySeq, 1)),
		Image: "https://img/cat.png",
	}
	if err := e.db.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	product := &models.Product{
		RestaurantID: restaurantID, CategoryID: category.ID,
		ItemName: "Butter Naan", BasePrice: price, Availability: true,
	}
	if err := e.db.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func (e *testEnv) token(t *testing.T, id uint, kind string) string {
	t.Helper()
	token, err := middleware.GenerateToken(id, kind, middleware.SessionTTL)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, want, w.Body.String())
	}
}
