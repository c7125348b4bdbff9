package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/a2n2k3p4/paysoncheckout-backend/capture"
	"github.com/a2n2k3p4/paysoncheckout-backend/checkout"
	"github.com/a2n2k3p4/paysoncheckout-backend/config"
	"github.com/a2n2k3p4/paysoncheckout-backend/logging"
	"github.com/a2n2k3p4/paysoncheckout-backend/metrics"
	"github.com/a2n2k3p4/paysoncheckout-backend/models"
	"github.com/a2n2k3p4/paysoncheckout-backend/payson"
	"github.com/a2n2k3p4/paysoncheckout-backend/store"
)

// fakePayson keeps checkouts in memory and speaks just enough of the Payson
// API for the gateway.
type fakePayson struct {
	mu         sync.Mutex
	checkouts  map[string]*payson.Checkout
	requests   int
	shipStatus string
}

func (f *fakePayson) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++

	w.Header().Set("Content-Type", "application/json")
	id := strings.TrimPrefix(r.URL.Path, "/Checkouts/")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/Checkouts":
		var op payson.CreateCheckout
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &op)
		id = fmt.Sprintf("co-%d", len(f.checkouts)+1)
		co := &payson.Checkout{
			ID:       id,
			Status:   payson.StatusCreated,
			Snippet:  fmt.Sprintf(`<iframe src="https://test-www.payson.se/embedded/%s"></iframe>`, id),
			Merchant: op.Merchant,
			Order:    op.Order,
		}
		f.checkouts[id] = co
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(co)
	case r.Method == http.MethodGet && f.checkouts[id] != nil:
		_ = json.NewEncoder(w).Encode(f.checkouts[id])
	case r.Method == http.MethodPut && f.checkouts[id] != nil:
		var co payson.Checkout
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &co)
		if co.Status == payson.StatusShipped && f.shipStatus != "" {
			co.Status = f.shipStatus
		}
		f.checkouts[id] = &co
		_ = json.NewEncoder(w).Encode(&co)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"message":"Checkout not found"}]}`))
	}
}

func (f *fakePayson) setStatus(id, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkouts[id].Status = status
}

func (f *fakePayson) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

type testEnv struct {
	app    *fiber.App
	store  *store.Store
	payson *fakePayson
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, store.Migrate(db))
	return db
}

func newTestEnv(t *testing.T, settings models.GatewaySettings) *testEnv {
	t.Helper()
	fake := &fakePayson{checkouts: map[string]*payson.Checkout{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := payson.NewClient("4", "key", true)
	require.NoError(t, err)
	client.WithEndpoint(srv.URL)

	st := store.New(setupTestDB(t))
	log := logging.Discard()
	uris := config.Config{StoreURL: "https://shop.example", PublicURL: "https://gw.example"}.MerchantURIs()
	sessions := checkout.NewSessions(st, client, settings, uris, log)

	h := &GatewayHandler{
		Store:    st,
		Renderer: checkout.NewRenderer(settings, st, sessions, log),
		Capture:  capture.NewService(st, client, settings, log),
		Client:   client,
		Settings: settings,
		Metrics:  metrics.New(),
		Log:      log,
	}
	app := fiber.New()
	h.Register(app)
	return &testEnv{app: app, store: st, payson: fake}
}

func (e *testEnv) do(t *testing.T, method, target, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

const cartJSON = `{
	"key": "cart-1",
	"currency": "SEK",
	"items": [{"product": {"id": 1, "sku": "MUG-1", "title": "Coffee mug"}, "quantity": 2, "line_total": 100, "line_tax": 25}],
	"shipping_packages": [{"rates": [{"id": "flat_rate:1", "label": "Postnord", "cost": 40, "taxes": [10]}]}]
}`

var enabled = models.GatewaySettings{Enabled: true, OrderManagement: true, MerchantID: "4", APIKey: "key", TestMode: true}

func TestHealthAndTraceID(t *testing.T) {
	env := newTestEnv(t, enabled)

	resp := env.do(t, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
	assert.JSONEq(t, `{"status":"ok"}`, readBody(t, resp))
}

func TestSettingsHideAPIKey(t *testing.T) {
	env := newTestEnv(t, enabled)

	body := readBody(t, env.do(t, http.MethodGet, "/settings", ""))

	assert.Contains(t, body, `"order_management":true`)
	assert.NotContains(t, body, "api_key")
	assert.NotContains(t, body, `"key"`)
}

func TestRenderCheckout(t *testing.T) {
	env := newTestEnv(t, enabled)

	resp := env.do(t, http.MethodPost, "/checkout/review", cartJSON)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	body := readBody(t, resp)
	assert.Contains(t, body, `id="customer_details_payson"`)
	assert.Contains(t, body, `<iframe src="https://test-www.payson.se/embedded/co-1"></iframe></div></div>`)

	orders, _, err := env.store.ListOrders(context.Background(), store.OrderFilters{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "co-1", orders[0].TransactionID)
	assert.Equal(t, models.OrderStatusPending, orders[0].Status)

	sent := env.payson.checkouts["co-1"]
	require.Len(t, sent.Order.Items, 2)
	assert.Equal(t, 62.5, sent.Order.Items[0].UnitPrice)
	assert.Equal(t, "Shipping", sent.Order.Items[1].Reference)

	// Rendering again for the same cart reuses both the order and the checkout.
	resp = env.do(t, http.MethodPost, "/checkout/review", cartJSON)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, env.payson.checkouts, 1)
}

func TestRenderCheckout_Disabled(t *testing.T) {
	env := newTestEnv(t, models.GatewaySettings{})

	resp := env.do(t, http.MethodPost, "/checkout/review", cartJSON)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Zero(t, env.payson.requestCount())
}

func TestRenderCheckout_BadCart(t *testing.T) {
	env := newTestEnv(t, enabled)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/checkout/review", `{"currency":"SEK"}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/checkout/review", `{`).StatusCode)
}

func TestCartLines(t *testing.T) {
	env := newTestEnv(t, enabled)

	resp := env.do(t, http.MethodPost, "/cart/lines", cartJSON)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pd payson.PayData
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &pd))
	assert.Equal(t, payson.CurrencySEK, pd.Currency)
	require.Len(t, pd.Items, 2)
	assert.Equal(t, 0.25, pd.Items[0].TaxRate)
	assert.Equal(t, "MUG-1", pd.Items[0].Reference)
}

func checkoutOrder(t *testing.T, env *testEnv) uint {
	t.Helper()
	resp := env.do(t, http.MethodPost, "/checkout/review", cartJSON)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	orders, _, err := env.store.ListOrders(context.Background(), store.OrderFilters{}, 1, 0)
	require.NoError(t, err)
	return orders[0].ID
}

func TestNotificationThenCapture(t *testing.T) {
	env := newTestEnv(t, enabled)
	id := checkoutOrder(t, env)
	env.payson.setStatus("co-1", payson.StatusReadyToShip)

	resp := env.do(t, http.MethodPost, "/notifications/payson?checkout=co-1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	order, err := env.store.FindOrder(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	status, _ := order.MetaValue(models.MetaOrderStatus)
	assert.Equal(t, payson.StatusReadyToShip, status)

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/orders/%d/status", id), `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, fmt.Sprintf(`{"order_id":%d,"status":"completed","capture":"captured"}`, id), readBody(t, resp))

	order, err = env.store.FindOrder(context.Background(), id)
	require.NoError(t, err)
	_, captured := order.MetaValue(models.MetaReservationCaptured)
	assert.True(t, captured)
	status, _ = order.MetaValue(models.MetaOrderStatus)
	assert.Equal(t, payson.StatusShipped, status)
	require.NotEmpty(t, order.Notes)
	assert.Contains(t, order.Notes[len(order.Notes)-1].Content, "successfully captured")

	// Completing an already completed order is not a status change.
	before := env.payson.requestCount()
	resp = env.do(t, http.MethodPost, fmt.Sprintf("/orders/%d/status", id), `{"status":"completed"}`)
	assert.JSONEq(t, fmt.Sprintf(`{"order_id":%d,"status":"completed"}`, id), readBody(t, resp))

	// Reopening and completing again hits the captured flag.
	env.do(t, http.MethodPost, fmt.Sprintf("/orders/%d/status", id), `{"status":"processing"}`)
	resp = env.do(t, http.MethodPost, fmt.Sprintf("/orders/%d/status", id), `{"status":"completed"}`)
	assert.JSONEq(t, fmt.Sprintf(`{"order_id":%d,"status":"completed","capture":"already_captured"}`, id), readBody(t, resp))
	assert.Equal(t, before, env.payson.requestCount())

	metricsBody := readBody(t, env.do(t, http.MethodGet, "/metrics", ""))
	assert.Contains(t, metricsBody, `paysoncheckout_captures_total{result="captured"} 1`)
	assert.Contains(t, metricsBody, `paysoncheckout_captures_total{result="already_captured"} 1`)
}

func TestCapture_PendingStatusFromPayson(t *testing.T) {
	env := newTestEnv(t, enabled)
	id := checkoutOrder(t, env)
	env.payson.shipStatus = "pending"

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/orders/%d/status", id), `{"status":"completed"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"capture":"not_captured"`)
	order, err := env.store.FindOrder(context.Background(), id)
	require.NoError(t, err)
	_, captured := order.MetaValue(models.MetaReservationCaptured)
	assert.False(t, captured)
	assert.Equal(t, capture.NoteNotCaptured, order.Notes[len(order.Notes)-1].Content)
}

func TestCapture_NotPaysonOrder(t *testing.T) {
	env := newTestEnv(t, enabled)
	order := models.Order{Status: models.OrderStatusProcessing, PaymentMethod: "bacs", Currency: "SEK"}
	require.NoError(t, env.store.DB.Create(&order).Error)

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/orders/%d/status", order.ID), `{"status":"completed"}`)

	assert.Contains(t, readBody(t, resp), `"capture":"not_payson"`)
	assert.Zero(t, env.payson.requestCount())
	loaded, err := env.store.FindOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Meta)
	assert.Empty(t, loaded.Notes)
}

func TestNotification_Errors(t *testing.T) {
	env := newTestEnv(t, enabled)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/notifications/payson", "").StatusCode)
	assert.Equal(t, http.StatusInternalServerError, env.do(t, http.MethodPost, "/notifications/payson?checkout=missing", "").StatusCode)
}

func TestOrderEndpoints(t *testing.T) {
	env := newTestEnv(t, enabled)
	id := checkoutOrder(t, env)

	resp := env.do(t, http.MethodGet, fmt.Sprintf("/orders/%d", id), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"transaction_id":"co-1"`)

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/orders/%d/lines", id), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pd payson.PayData
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &pd))
	require.Len(t, pd.Items, 2)
	assert.Equal(t, 62.5, pd.Items[0].UnitPrice)
	assert.Equal(t, float64(50), pd.Items[1].UnitPrice)

	resp = env.do(t, http.MethodGet, "/orders?status=pending&limit=5", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Orders     []models.Order `json:"orders"`
		Pagination struct {
			Total int64 `json:"total"`
			Limit int   `json:"limit"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &list))
	assert.Len(t, list.Orders, 1)
	assert.Equal(t, int64(1), list.Pagination.Total)
	assert.Equal(t, 5, list.Pagination.Limit)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/orders/999", "").StatusCode)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/orders/abc", "").StatusCode)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, fmt.Sprintf("/orders/%d/status", id), `{"status":"shipped"}`).StatusCode)
}

func TestParseLimitOffset(t *testing.T) {
	tests := []struct {
		limit, offset         string
		wantLimit, wantOffset int
	}{
		{"", "", 50, 0},
		{"10", "20", 10, 20},
		{"-1", "-5", 50, 0},
		{"abc", "x", 50, 0},
	}
	for _, tt := range tests {
		l, o := parseLimitOffset(tt.limit, tt.offset)
		assert.Equal(t, tt.wantLimit, l)
		assert.Equal(t, tt.wantOffset, o)
	}
}
