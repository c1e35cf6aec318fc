package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"orderdesk/internal/catalog"
	"orderdesk/internal/config"
	"orderdesk/internal/database"
	"orderdesk/internal/handlers"
	"orderdesk/internal/models"
	"orderdesk/internal/repositories"
	"orderdesk/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test_jwt_secret"

// Thursday 2026-10-15.
var fixedNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	app       *fiber.App
	auth      *services.AuthService
	orderRepo *repositories.GORMOrderRepository
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(config.DriverSQLite, dsn, nil)
	require.NoError(t, err)

	userRepo := repositories.NewGORMUserRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	authService := services.NewAuthService(testJWTSecret, "", nil)
	identityService := services.NewIdentityService(userRepo, orderRepo, nil)
	orderService := services.NewOrderService(orderRepo, userRepo, catalog.Default(),
		services.WithClock(func() time.Time { return fixedNow }))

	app := handlers.NewRouter(handlers.RouterConfig{
		Auth:     authService,
		Identity: identityService,
		Orders:   orderService,
	})

	return &testEnv{app: app, auth: authService, orderRepo: orderRepo}
}

func (e *testEnv) token(t *testing.T, p models.Principal) string {
	t.Helper()
	token, err := e.auth.IssueToken(p)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func orderPayload(date string) map[string]interface{} {
	return map[string]interface{}{
		"purchaseDate":     date,
		"deliveryTime":     "10:00",
		"deliveryLocation": "Colombo",
		"productName":      "Office Chair",
		"quantity":         2,
	}
}

func TestConfigIsPublic(t *testing.T) {
	env := setupApp(t)

	status, body := env.do(t, http.MethodGet, "/api/orders/config", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)

	var lists map[string][]string
	require.NoError(t, json.Unmarshal(body.Data, &lists))
	assert.Equal(t, catalog.DefaultDistricts, lists["districts"])
	assert.Equal(t, catalog.DefaultProducts, lists["products"])
	assert.Equal(t, catalog.DefaultDeliveryTimes, lists["deliveryTimes"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := setupApp(t)

	status, _ := env.do(t, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, http.MethodGet, "/api/orders", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCurrentUserIsProvisionedOnce(t *testing.T) {
	env := setupApp(t)
	token := env.token(t, models.Principal{Subject: "sub-alice", Name: "Alice", Email: "alice@example.com"})

	status, body := env.do(t, http.MethodGet, "/api/auth/user", token, nil)
	require.Equal(t, http.StatusOK, status)

	var first models.UserProfile
	require.NoError(t, json.Unmarshal(body.Data, &first))
	assert.Equal(t, "sub-alice", first.Username)
	assert.Equal(t, "N/A", first.ContactNumber)
	assert.Equal(t, "Unknown", first.Country)

	// A later login with changed claims does not touch the stored record.
	renamed := env.token(t, models.Principal{Subject: "sub-alice", Name: "Alice Renamed", Email: "alice@example.com"})
	status, body = env.do(t, http.MethodGet, "/api/auth/user", renamed, nil)
	require.Equal(t, http.StatusOK, status)

	var second models.UserProfile
	require.NoError(t, json.Unmarshal(body.Data, &second))
	assert.Equal(t, first, second)

	// The explicit sync operation does.
	status, body = env.do(t, http.MethodPut, "/api/user/profile/sync", renamed, nil)
	require.Equal(t, http.StatusOK, status)
	var synced models.UserProfile
	require.NoError(t, json.Unmarshal(body.Data, &synced))
	assert.Equal(t, "Alice Renamed", synced.Name)
}

func TestEmailConflictBetweenUsers(t *testing.T) {
	env := setupApp(t)

	first := env.token(t, models.Principal{Subject: "sub-1", Email: "shared@example.com"})
	status, _ := env.do(t, http.MethodGet, "/api/auth/user", first, nil)
	require.Equal(t, http.StatusOK, status)

	second := env.token(t, models.Principal{Subject: "sub-2", Email: "shared@example.com"})
	status, body := env.do(t, http.MethodGet, "/api/auth/user", second, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, body.Success)
}

func TestOrderLifecycle(t *testing.T) {
	env := setupApp(t)
	token := env.token(t, models.Principal{Subject: "sub-alice", Email: "alice@example.com"})

	// Next Monday.
	status, body := env.do(t, http.MethodPost, "/api/orders", token, orderPayload("2026-10-19"))
	require.Equal(t, http.StatusCreated, status, body.Message)
	assert.Equal(t, "Order created successfully", body.Message)

	var created models.OrderResponse
	require.NoError(t, json.Unmarshal(body.Data, &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "2026-10-19", created.PurchaseDate)
	assert.Equal(t, "10:00", created.DeliveryTime)
	assert.Equal(t, "Colombo", created.DeliveryLocation)
	assert.Equal(t, "Office Chair", created.ProductName)
	assert.Equal(t, 2, created.Quantity)

	status, body = env.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, status)
	var fetched models.OrderResponse
	require.NoError(t, json.Unmarshal(body.Data, &fetched))
	assert.Equal(t, created, fetched)

	status, body = env.do(t, http.MethodGet, "/api/orders/upcoming", token, nil)
	require.Equal(t, http.StatusOK, status)
	var upcoming []models.OrderResponse
	require.NoError(t, json.Unmarshal(body.Data, &upcoming))
	assert.Len(t, upcoming, 1)

	status, body = env.do(t, http.MethodGet, "/api/orders/past", token, nil)
	require.Equal(t, http.StatusOK, status)
	var past []models.OrderResponse
	require.NoError(t, json.Unmarshal(body.Data, &past))
	assert.Empty(t, past)

	status, body = env.do(t, http.MethodDelete, fmt.Sprintf("/api/orders/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Order deleted successfully", body.Message)

	status, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreateOrderOnSunday(t *testing.T) {
	env := setupApp(t)
	token := env.token(t, models.Principal{Subject: "sub-alice"})

	status, body := env.do(t, http.MethodPost, "/api/orders", token, orderPayload("2026-10-18"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, body.Success)
	assert.Equal(t, "Delivery is not available on Sundays", body.Message)
}

func TestCreateOrderMalformedBody(t *testing.T) {
	env := setupApp(t)
	token := env.token(t, models.Principal{Subject: "sub-alice"})

	payload := orderPayload("2026-10-19")
	payload["quantity"] = "two"
	status, body := env.do(t, http.MethodPost, "/api/orders", token, payload)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body", body.Message)
}

func TestOtherUsersOrdersAreNotFound(t *testing.T) {
	env := setupApp(t)
	alice := env.token(t, models.Principal{Subject: "sub-alice"})
	bob := env.token(t, models.Principal{Subject: "sub-bob"})

	status, body := env.do(t, http.MethodPost, "/api/orders", alice, orderPayload("2026-10-19"))
	require.Equal(t, http.StatusCreated, status)
	var created models.OrderResponse
	require.NoError(t, json.Unmarshal(body.Data, &created))

	path := fmt.Sprintf("/api/orders/%d", created.ID)

	status, body = env.do(t, http.MethodGet, path, bob, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Order not found or access denied", body.Message)

	status, body = env.do(t, http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Order not found or access denied", body.Message)

	status, body = env.do(t, http.MethodGet, "/api/orders", bob, nil)
	require.Equal(t, http.StatusOK, status)
	var bobsOrders []models.OrderResponse
	require.NoError(t, json.Unmarshal(body.Data, &bobsOrders))
	assert.Empty(t, bobsOrders)

	// Still there for its owner.
	status, _ = env.do(t, http.MethodGet, path, alice, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestDeletePastOrderIsRejected(t *testing.T) {
	env := setupApp(t)
	token := env.token(t, models.Principal{Subject: "sub-alice"})

	// Provision the user, then plant an order dated yesterday directly in the store.
	status, _ := env.do(t, http.MethodGet, "/api/auth/user", token, nil)
	require.Equal(t, http.StatusOK, status)

	past := &models.Order{
		Username:         "sub-alice",
		PurchaseDate:     time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC),
		DeliveryTime:     "11:00:00",
		DeliveryLocation: "Kandy",
		ProductName:      "Wardrobe",
		Quantity:         1,
	}
	require.NoError(t, env.orderRepo.Create(t.Context(), past))

	status, body := env.do(t, http.MethodDelete, fmt.Sprintf("/api/orders/%d", past.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Cannot delete past orders", body.Message)

	status, body = env.do(t, http.MethodGet, "/api/orders/past", token, nil)
	require.Equal(t, http.StatusOK, status)
	var pastOrders []models.OrderResponse
	require.NoError(t, json.Unmarshal(body.Data, &pastOrders))
	require.Len(t, pastOrders, 1)
	assert.Equal(t, "11:00", pastOrders[0].DeliveryTime)
}

func TestInvalidOrderID(t *testing.T) {
	env := setupApp(t)
	token := env.token(t, models.Principal{Subject: "sub-alice"})

	status, body := env.do(t, http.MethodGet, "/api/orders/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid order id", body.Message)
}

func TestProfileAndAccountDeletion(t *testing.T) {
	env := setupApp(t)
	token := env.token(t, models.Principal{Subject: "sub-alice", Country: "LK"})

	status, _ := env.do(t, http.MethodPost, "/api/orders", token, orderPayload("2026-10-19"))
	require.Equal(t, http.StatusCreated, status)

	status, body := env.do(t, http.MethodGet, "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	var profile models.UserProfile
	require.NoError(t, json.Unmarshal(body.Data, &profile))
	assert.Equal(t, "LK", profile.Country)
	require.NotNil(t, profile.OrderCount)
	assert.Equal(t, int64(1), *profile.OrderCount)

	status, _ = env.do(t, http.MethodDelete, "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, status)

	count, err := env.orderRepo.CountByUser(t.Context(), "sub-alice")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLogoutAndHealth(t *testing.T) {
	env := setupApp(t)

	status, body := env.do(t, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Logged out successfully", body.Message)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
