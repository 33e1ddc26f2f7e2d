package http

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/checkout"
	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/domain/wishlist"
	redisdb "github.com/your-org/storefront/internal/infrastructure/database/redis"
	"github.com/your-org/storefront/internal/interfaces/http/handlers"
	"github.com/your-org/storefront/internal/interfaces/http/routes"
	"github.com/your-org/storefront/internal/pkg/apperror"
	"github.com/your-org/storefront/internal/pkg/logger"
)

// memStore keeps users, orders and saved skus in memory
type memStore struct {
	mu     sync.Mutex
	users  map[string]*user.User
	orders map[string][]order.Order
	saved  map[string][]string
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[string]*user.User{},
		orders: map[string][]order.Order{},
		saved:  map[string][]string{},
	}
}

func (m *memStore) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperror.Conflict("user with this email already exists")
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *memStore) Update(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return apperror.NotFound("user", u.ID)
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) AppendOrder(_ context.Context, userID string, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return apperror.NotFound("user", userID)
	}
	m.orders[userID] = append(m.orders[userID], *o)
	return nil
}

func (m *memStore) ListOrders(_ context.Context, userID string) ([]order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]order.Order(nil), m.orders[userID]...), nil
}

func (m *memStore) FindOrderByNumber(_ context.Context, userID, number string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders[userID] {
		if o.OrderNumber == number {
			cp := o
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("order", number)
}

func (m *memStore) AddSaved(_ context.Context, userID, sku string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.saved[userID] {
		if s == sku {
			return nil
		}
	}
	m.saved[userID] = append(m.saved[userID], sku)
	return nil
}

func (m *memStore) ListSaved(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.saved[userID]...), nil
}

func (m *memStore) RemoveSaved(_ context.Context, userID, sku string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.saved[userID] {
		if s != sku {
			out = append(out, s)
		}
	}
	m.saved[userID] = out
	return nil
}

type fakeInvoices struct{}

func (fakeInvoices) RenderInvoice(o *order.Order) ([]byte, error) {
	return []byte("%PDF " + o.OrderNumber), nil
}

func testConfig() *config.Config {
	pricing := checkout.DefaultPricing()
	return &config.Config{
		App:    config.AppConfig{Name: "Storefront", Version: "test", Environment: "test"},
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		JWT: config.JWTConfig{
			Secret:             "test-secret-that-is-long-enough-123456",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{
			BcryptCost:         4,
			RateLimitPerMinute: 1000,
			CORSAllowedOrigins: []string{"http://localhost:3000"},
			CORSAllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			CORSAllowedHeaders: []string{"Content-Type", "Authorization"},
		},
		Pricing: config.PricingConfig{
			TaxRate:               pricing.TaxRate,
			FlatShippingFee:       pricing.FlatShippingFee,
			FreeShippingThreshold: pricing.FreeShippingThreshold,
			Currency:              "USD",
		},
		Session: config.SessionConfig{CookieName: "session_id", TTL: time.Hour},
	}
}

type testAPI struct {
	t       *testing.T
	handler nethttp.Handler
	session string
	token   string
	store   *memStore
	server  *Server
}

func newTestAPI(t *testing.T) *testAPI {
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redisdb.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	cfg := testConfig()
	log := logger.Discard()

	catalog, err := product.NewSeedCatalogFromJSON([]byte(`[
		{"sku": "A", "title": "Lamp", "price": "10.00", "category": "Home Decor"},
		{"sku": "B", "title": "Mug", "price": "5.00", "category": "Home Decor"}
	]`))
	require.NoError(t, err)

	store := newMemStore()
	cartService := cart.NewService(client, catalog, cfg, log)
	checkoutService := checkout.NewService(cartService, store, client, nil, cfg, log)
	pricing := checkoutService.Pricing()

	server := NewServer(cfg, log, client, handlers.NewHealthHandler(cfg, map[string]handlers.Pinger{"redis": client}), &routes.Handlers{
		Auth:     handlers.NewAuthHandler(user.NewService(store, nil, cfg, log), cfg, log),
		Product:  handlers.NewProductHandler(product.NewService(catalog, catalog, log), log),
		Cart:     handlers.NewCartHandler(cartService, pricing, log),
		Checkout: handlers.NewCheckoutHandler(checkoutService, log),
		Order:    handlers.NewOrderHandler(order.NewService(store, fakeInvoices{}, log), log),
		Wishlist: handlers.NewWishlistHandler(wishlist.NewService(store, catalog, cartService, log), pricing, log),
	})

	return &testAPI{t: t, handler: server.Handler(), session: uuid.NewString(), store: store, server: server}
}

func (a *testAPI) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&nethttp.Cookie{Name: "session_id", Value: a.session})
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// data decodes the "data" member of a success envelope
func data(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func (a *testAPI) register() {
	rec := a.do(nethttp.MethodPost, "/auth/register", map[string]string{
		"first_name": "Jane",
		"last_name":  "Doe",
		"email":      "Jane@Example.com",
		"password":   "password123",
	})
	require.Equal(a.t, nethttp.StatusCreated, rec.Code, rec.Body.String())

	var auth struct {
		AccessToken string `json:"access_token"`
	}
	data(a.t, rec, &auth)
	a.token = auth.AccessToken
}

type cartView struct {
	Items   []cart.LineItem `json:"items"`
	Summary struct {
		Subtotal    string `json:"subtotal"`
		ShippingFee string `json:"shipping_fee"`
		TaxAmount   string `json:"tax_amount"`
		Total       string `json:"total"`
	} `json:"summary"`
}

func completeShipping() map[string]string {
	return map[string]string{
		"first_name": "Jane",
		"last_name":  "Doe",
		"email":      "jane@example.com",
		"address":    "1 Main St",
		"city":       "Springfield",
		"state":      "IL",
		"zip_code":   "62701",
		"country":    "US",
	}
}

func TestCartPricing(t *testing.T) {
	api := newTestAPI(t)

	require.Equal(t, nethttp.StatusOK, api.do(nethttp.MethodPost, "/cart/items", gin.H{"sku": "A", "quantity": 1}).Code)
	require.Equal(t, nethttp.StatusOK, api.do(nethttp.MethodPost, "/cart/items", gin.H{"sku": "A", "quantity": 1}).Code)
	rec := api.do(nethttp.MethodPost, "/cart/items", gin.H{"sku": "B", "quantity": 1})
	require.Equal(t, nethttp.StatusOK, rec.Code)

	var view cartView
	data(t, rec, &view)
	require.Len(t, view.Items, 2)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, "25", view.Summary.Subtotal)
	assert.Equal(t, "9.99", view.Summary.ShippingFee)
	assert.Equal(t, "2", view.Summary.TaxAmount)
	assert.Equal(t, "36.99", view.Summary.Total)

	rec = api.do(nethttp.MethodGet, "/cart/count", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	var count struct {
		Count int `json:"count"`
	}
	data(t, rec, &count)
	assert.Equal(t, 3, count.Count)

	assert.Equal(t, nethttp.StatusNotFound, api.do(nethttp.MethodPost, "/cart/items", gin.H{"sku": "ZZZ"}).Code)
	assert.Equal(t, nethttp.StatusNotFound, api.do(nethttp.MethodPut, "/cart/items/ZZZ", gin.H{"quantity": 2}).Code)
	assert.Equal(t, nethttp.StatusBadRequest, api.do(nethttp.MethodPost, "/cart/items", gin.H{}).Code)

	require.Equal(t, nethttp.StatusOK, api.do(nethttp.MethodDelete, "/cart", nil).Code)
	data(t, api.do(nethttp.MethodGet, "/cart", nil), &view)
	assert.Empty(t, view.Items)
}

func TestSessionCookieIssued(t *testing.T) {
	api := newTestAPI(t)
	api.session = ""

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	require.Equal(t, nethttp.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "session_id", cookies[0].Name)
	assert.NoError(t, uuid.Validate(cookies[0].Value))
	assert.True(t, cookies[0].HttpOnly)
}

func TestSubmitRequiresAuthentication(t *testing.T) {
	api := newTestAPI(t)
	api.do(nethttp.MethodPost, "/cart/items", gin.H{"sku": "A", "quantity": 1})

	rec := api.do(nethttp.MethodPost, "/checkout/submit", gin.H{"shipping": completeShipping()})
	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
	assert.Equal(t, nethttp.StatusUnauthorized, api.do(nethttp.MethodGet, "/orders", nil).Code)
}

func TestSubmitValidation(t *testing.T) {
	api := newTestAPI(t)
	api.register()

	rec := api.do(nethttp.MethodPost, "/checkout/submit", gin.H{"shipping": completeShipping()})
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cart is empty")

	api.do(nethttp.MethodPost, "/cart/items", gin.H{"sku": "A", "quantity": 1})
	rec = api.do(nethttp.MethodPost, "/checkout/submit", gin.H{"shipping": gin.H{}})
	require.Equal(t, nethttp.StatusBadRequest, rec.Code)

	var body struct {
		Fields []string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"first_name", "last_name", "email", "address", "city", "state", "zip_code", "country"}, body.Fields)

	for _, orders := range api.store.orders {
		assert.Empty(t, orders)
	}
}

func TestCheckoutFlowToOrderAndInvoice(t *testing.T) {
	api := newTestAPI(t)
	api.register()

	api.do(nethttp.MethodPost, "/cart/items", gin.H{"sku": "A", "quantity": 12})

	rec := api.do(nethttp.MethodPost, "/checkout/next", nil)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)

	require.Equal(t, nethttp.StatusOK, api.do(nethttp.MethodPut, "/checkout/shipping", gin.H{"shipping": completeShipping()}).Code)
	require.Equal(t, nethttp.StatusOK, api.do(nethttp.MethodPost, "/checkout/next", nil).Code)

	assert.Equal(t, nethttp.StatusBadRequest, api.do(nethttp.MethodPost, "/checkout/place-order", nil).Code)

	require.Equal(t, nethttp.StatusOK, api.do(nethttp.MethodPut, "/checkout/payment", gin.H{"payment_method": "paypal"}).Code)
	rec = api.do(nethttp.MethodPost, "/checkout/next", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)

	var state struct {
		Flow struct {
			Stage string `json:"stage"`
		} `json:"flow"`
		Step int `json:"step"`
	}
	data(t, rec, &state)
	assert.Equal(t, "review", state.Flow.Stage)

	rec = api.do(nethttp.MethodPost, "/checkout/place-order", nil)
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())

	var placed struct {
		OrderNumber   string `json:"order_number"`
		Total         string `json:"total"`
		ShippingFee   string `json:"shipping_fee"`
		PaymentMethod string `json:"payment_method"`
		Status        string `json:"status"`
	}
	data(t, rec, &placed)
	assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{8}$`, placed.OrderNumber)
	assert.Equal(t, "129.6", placed.Total)
	assert.Equal(t, "0", placed.ShippingFee)
	assert.Equal(t, "paypal", placed.PaymentMethod)
	assert.Equal(t, "processing", placed.Status)

	var view cartView
	data(t, api.do(nethttp.MethodGet, "/cart", nil), &view)
	assert.Empty(t, view.Items)

	rec = api.do(nethttp.MethodGet, "/orders", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	var history struct {
		Orders []struct {
			OrderNumber string `json:"order_number"`
		} `json:"orders"`
		Stats struct {
			Total      int `json:"total"`
			Processing int `json:"processing"`
		} `json:"stats"`
	}
	data(t, rec, &history)
	require.Len(t, history.Orders, 1)
	assert.Equal(t, placed.OrderNumber, history.Orders[0].OrderNumber)
	assert.Equal(t, 1, history.Stats.Total)
	assert.Equal(t, 1, history.Stats.Processing)

	rec = api.do(nethttp.MethodGet, "/orders/"+placed.OrderNumber+"/invoice", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF "+placed.OrderNumber, rec.Body.String())

	assert.Equal(t, nethttp.StatusNotFound, api.do(nethttp.MethodGet, "/orders/ORD-NOPE", nil).Code)
}

func TestWishlistMoveToCart(t *testing.T) {
	api := newTestAPI(t)
	api.register()

	require.Equal(t, nethttp.StatusCreated, api.do(nethttp.MethodPost, "/wishlist/items", gin.H{"sku": "B"}).Code)
	assert.Equal(t, nethttp.StatusNotFound, api.do(nethttp.MethodPost, "/wishlist/items", gin.H{"sku": "ZZZ"}).Code)

	rec := api.do(nethttp.MethodPost, "/wishlist/items/B/move-to-cart", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)

	var view cartView
	data(t, rec, &view)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "B", view.Items[0].SKU)

	var list struct {
		Count int `json:"count"`
	}
	data(t, api.do(nethttp.MethodGet, "/wishlist", nil), &list)
	assert.Equal(t, 0, list.Count)
}

func TestAuthEndpoints(t *testing.T) {
	api := newTestAPI(t)
	api.register()

	rec := api.do(nethttp.MethodPost, "/auth/register", gin.H{
		"first_name": "J", "last_name": "D", "email": "jane@example.com", "password": "password123",
	})
	assert.Equal(t, nethttp.StatusConflict, rec.Code)

	api.token = ""
	rec = api.do(nethttp.MethodPost, "/auth/login", gin.H{"email": "jane@example.com", "password": "wrong-pass1"})
	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)

	rec = api.do(nethttp.MethodPost, "/auth/login", gin.H{"email": "jane@example.com", "password": "password123"})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	var auth struct {
		AccessToken string `json:"access_token"`
	}
	data(t, rec, &auth)
	api.token = auth.AccessToken

	rec = api.do(nethttp.MethodPut, "/account/settings", gin.H{"name": "Jane Q. Doe"})
	require.Equal(t, nethttp.StatusOK, rec.Code)

	rec = api.do(nethttp.MethodGet, "/auth/profile", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	var profile struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	data(t, rec, &profile)
	assert.Equal(t, "Jane Q. Doe", profile.Name)
	assert.Equal(t, "jane@example.com", profile.Email)
	assert.Empty(t, profile.Password)
}

func TestProducts(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(nethttp.MethodGet, "/products?sort_by=price_asc", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	var list struct {
		Products []struct {
			SKU string `json:"sku"`
		} `json:"products"`
	}
	data(t, rec, &list)
	require.Len(t, list.Products, 2)
	assert.Equal(t, "B", list.Products[0].SKU)

	assert.Equal(t, nethttp.StatusOK, api.do(nethttp.MethodGet, "/products/A", nil).Code)
	assert.Equal(t, nethttp.StatusNotFound, api.do(nethttp.MethodGet, "/products/ZZZ", nil).Code)
	assert.Equal(t, nethttp.StatusOK, api.do(nethttp.MethodGet, "/products/categories", nil).Code)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/health", nil))
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestLogoutExpiresSessionCookie(t *testing.T) {
	api := newTestAPI(t)
	api.register()

	rec := api.do(nethttp.MethodPost, "/auth/logout", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)

	var expired *nethttp.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_id" {
			expired = c
		}
	}
	require.NotNil(t, expired)
	assert.Empty(t, expired.Value)
	assert.Less(t, expired.MaxAge, 0)
	assert.True(t, expired.HttpOnly)
}

func TestServerStopBeforeStart(t *testing.T) {
	api := newTestAPI(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, api.server.Stop(ctx))

	// a shut down server refuses to listen
	assert.NoError(t, api.server.Start())
}
