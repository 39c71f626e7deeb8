package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	cartDomain "github.com/ridloal/stationery-storefront/internal/cart/domain"
	cartRepository "github.com/ridloal/stationery-storefront/internal/cart/repository"
	cartService "github.com/ridloal/stationery-storefront/internal/cart/service"
	catalogRepository "github.com/ridloal/stationery-storefront/internal/catalog/repository"
	catalogService "github.com/ridloal/stationery-storefront/internal/catalog/service"
	orderService "github.com/ridloal/stationery-storefront/internal/order/service"
	"github.com/ridloal/stationery-storefront/internal/platform/config"
	"github.com/ridloal/stationery-storefront/internal/platform/metrics"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storeCSV = `Name,Category,Code,Price,Discounted Price,Brand,Tag,Stock,Minimum Order Quantity
Gel Pen,Stationery,GP-01,10,8,Reynolds,Top Seller,100,1
Notebook,Stationery,NB-01,50,45,Classmate,,40,1
"Stapler, Heavy Duty",Office Supplies,ST-01,120,99,Kangaro,Top Seller,5,1
`

func newTestServer(t *testing.T) (*gin.Engine, *prometheus.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte(storeCSV), 0o644))

	registry := prometheus.NewRegistry()
	m := metrics.New("test", registry)
	catalog := catalogService.NewCatalogService(catalogRepository.NewCSVProductRepository(catalogRepository.NewFileSource(path)), m)
	sessions := cartService.NewSessionService(cartRepository.NewMemorySnapshotRepository(), cartDomain.StockAllow, time.Hour, m)
	orders := orderService.NewOrderService(orderService.Config{}, []orderService.Notifier{orderService.EmailNotifier{}}, m)
	return newRouter("test", catalog, sessions, orders, m, registry), registry
}

func call(t *testing.T, r *gin.Engine, method, target, session string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(cartDomain.SessionHeader, session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStorefront_BrowseCartCheckout(t *testing.T) {
	r, _ := newTestServer(t)

	w := call(t, r, http.MethodGet, "/api/v1/products?category=Office+Supplies", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Products []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Products, 1)
	assert.Equal(t, "product-3", list.Products[0].ID)
	assert.Equal(t, "Stapler, Heavy Duty", list.Products[0].Name)

	w = call(t, r, http.MethodPost, "/api/v1/cart", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	session := w.Header().Get(cartDomain.SessionHeader)
	require.NotEmpty(t, session)

	require.Equal(t, http.StatusOK, call(t, r, http.MethodPost, "/api/v1/cart/items", session, gin.H{"product_id": "product-1", "quantity": 3}).Code)
	require.Equal(t, http.StatusOK, call(t, r, http.MethodPost, "/api/v1/cart/items", session, gin.H{"product_id": "product-2", "quantity": 1}).Code)

	w = call(t, r, http.MethodPost, "/api/v1/checkout", session, gin.H{
		"full_name":               "Asha Verma",
		"contact_number":          "9876543210",
		"email":                   "asha@example.com",
		"address":                 "12 MG Road, Jaipur",
		"preferred_delivery_time": "Any Time",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order struct {
		OrderID     string          `json:"order_id"`
		TotalAmount decimal.Decimal `json:"total_amount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.True(t, decimal.NewFromInt(69).Equal(order.TotalAmount))

	w = call(t, r, http.MethodGet, "/api/v1/cart", session, nil)
	var snap cartDomain.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.True(t, snap.IsEmpty())
}

func TestStorefront_HealthAndMetrics(t *testing.T) {
	r, _ := newTestServer(t)

	w := call(t, r, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	call(t, r, http.MethodGet, "/api/v1/categories", "", nil)

	w = call(t, r, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `test_catalog_loads_total{outcome="ok"} 1`)
	assert.Contains(t, w.Body.String(), `test_http_requests_total{method="GET",path="/api/v1/categories",status="200"} 1`)
}

func TestBuildSource(t *testing.T) {
	src, err := buildSource(config.CatalogConfig{Source: "file", FilePath: "data/products.csv"})
	require.NoError(t, err)
	assert.IsType(t, &catalogRepository.FileSource{}, src)

	src, err = buildSource(config.CatalogConfig{Source: "http", URL: "https://example.com/sheet.csv", HTTPTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "http:https://example.com/sheet.csv", src.Describe())

	_, err = buildSource(config.CatalogConfig{Source: "http"})
	assert.Error(t, err)
	_, err = buildSource(config.CatalogConfig{Source: "s3"})
	assert.Error(t, err)
	_, err = buildSource(config.CatalogConfig{Source: "ftp"})
	assert.Error(t, err)
}

func TestBuildNotifiers(t *testing.T) {
	names := func(cfg config.OrderConfig) []string {
		notifiers, closeFn := buildNotifiers(cfg)
		defer closeFn()
		var out []string
		for _, n := range notifiers {
			out = append(out, n.Name())
		}
		return out
	}

	assert.Equal(t, []string{"email", "whatsapp"}, names(config.OrderConfig{EmailEnabled: true, WhatsAppEnabled: true, WhatsAppNumber: "7023312573"}))
	assert.Equal(t, []string{"email"}, names(config.OrderConfig{EmailEnabled: true}))
	assert.Empty(t, names(config.OrderConfig{}))
}
