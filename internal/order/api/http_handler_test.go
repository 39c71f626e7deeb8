package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	cartDomain "github.com/ridloal/stationery-storefront/internal/cart/domain"
	"github.com/ridloal/stationery-storefront/internal/cart/repository"
	cartService "github.com/ridloal/stationery-storefront/internal/cart/service"
	catalog "github.com/ridloal/stationery-storefront/internal/catalog/domain"
	"github.com/ridloal/stationery-storefront/internal/order/domain"
	"github.com/ridloal/stationery-storefront/internal/order/service"
	"github.com/ridloal/stationery-storefront/internal/order/service/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var customer = gin.H{
	"full_name":               "Asha Verma",
	"contact_number":          "9876543210",
	"email":                   "asha@example.com",
	"address":                 "12 MG Road, Jaipur",
	"preferred_delivery_time": domain.SlotAnyTime,
}

func newCheckoutRouter(os service.OrderService, ss cartService.SessionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewOrderHandler(os, ss).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func filledSession(t *testing.T, ss cartService.SessionService) string {
	t.Helper()
	id, cart, err := ss.NewSession(context.TODO())
	require.NoError(t, err)
	_, err = cart.AddToCart(catalog.Product{ID: "product-1", Name: "Gel Pen", Price: decimal.NewFromInt(10), DiscountedPrice: decimal.NewFromInt(8)}, 3)
	require.NoError(t, err)
	_, err = cart.AddToCart(catalog.Product{ID: "product-2", Name: "Notebook", Price: decimal.NewFromInt(50), DiscountedPrice: decimal.NewFromInt(45)}, 1)
	require.NoError(t, err)
	return id
}

func postCheckout(r *gin.Engine, session string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(cartDomain.SessionHeader, session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newSessions() cartService.SessionService {
	return cartService.NewSessionService(repository.NewMemorySnapshotRepository(), cartDomain.StockAllow, time.Hour, nil)
}

func TestOrderHandler_Checkout(t *testing.T) {
	t.Run("Successful checkout clears the cart", func(t *testing.T) {
		ss := newSessions()
		id := filledSession(t, ss)
		r := newCheckoutRouter(service.NewOrderService(service.Config{}, nil, nil), ss)

		w := postCheckout(r, id, customer)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var order domain.OrderDetails
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
		assert.Regexp(t, regexp.MustCompile(`^VE-\d{8}-\d{4}$`), order.OrderID)
		assert.True(t, decimal.NewFromInt(69).Equal(order.TotalAmount))
		assert.Len(t, order.Items, 2)
		assert.True(t, order.OrderDate.AddDate(0, 0, 3).Equal(order.EstimatedDeliveryDate))

		cart, err := ss.Cart(context.TODO(), id)
		require.NoError(t, err)
		assert.Zero(t, cart.TotalItems())
	})

	t.Run("Validation failure keeps the cart", func(t *testing.T) {
		ss := newSessions()
		id := filledSession(t, ss)
		r := newCheckoutRouter(service.NewOrderService(service.Config{}, nil, nil), ss)

		w := postCheckout(r, id, gin.H{"full_name": "Asha", "contact_number": "123", "email": "asha@example.com", "address": "Jaipur"})

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var body struct {
			Fields map[string]string `json:"fields"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, map[string]string{
			"contact_number":          "Please enter a valid 10-digit contact number",
			"preferred_delivery_time": "Preferred delivery time is required",
		}, body.Fields)

		cart, _ := ss.Cart(context.TODO(), id)
		assert.Equal(t, 4, cart.TotalItems())
	})

	t.Run("Empty cart", func(t *testing.T) {
		ss := newSessions()
		id, _, _ := ss.NewSession(context.TODO())
		r := newCheckoutRouter(service.NewOrderService(service.Config{}, nil, nil), ss)

		w := postCheckout(r, id, customer)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Missing session", func(t *testing.T) {
		r := newCheckoutRouter(service.NewOrderService(service.Config{}, nil, nil), newSessions())

		w := postCheckout(r, "", customer)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Submission failure keeps the cart", func(t *testing.T) {
		ss := newSessions()
		id := filledSession(t, ss)
		os := new(mocks.MockOrderService)
		os.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(req domain.CreateOrderRequest) bool {
			return len(req.Items) == 2 && req.TotalAmount.Equal(decimal.NewFromInt(69))
		})).Return(nil, fmt.Errorf("%w: upstream 500", service.ErrSubmissionFailed)).Once()
		r := newCheckoutRouter(os, ss)

		w := postCheckout(r, id, customer)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		cart, _ := ss.Cart(context.TODO(), id)
		assert.Equal(t, 4, cart.TotalItems())
		os.AssertExpectations(t)
	})
}

func TestOrderHandler_CheckoutKeepsItemsAddedDuringSubmission(t *testing.T) {
	ss := newSessions()
	id := filledSession(t, ss)
	cart, err := ss.Cart(context.TODO(), id)
	require.NoError(t, err)

	eraser := catalog.Product{ID: "product-9", Name: "Eraser", Price: decimal.NewFromInt(6), DiscountedPrice: decimal.NewFromInt(5)}
	os := new(mocks.MockOrderService)
	os.On("PlaceOrder", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			// the shopper keeps editing the same session while the order is in flight
			_, _ = cart.AddToCart(eraser, 2)
			_, _ = cart.UpdateQuantity("product-1", 5)
		}).
		Return(&domain.OrderDetails{OrderID: "VE-00000001-0001", TotalAmount: decimal.NewFromInt(69)}, nil).Once()
	r := newCheckoutRouter(os, ss)

	w := postCheckout(r, id, customer)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "product-9")

	snap := cart.Snapshot()
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, "product-1", snap.Entries[0].Product.ID)
	assert.Equal(t, 2, snap.Entries[0].Quantity)
	assert.Equal(t, "product-9", snap.Entries[1].Product.ID)
	assert.Equal(t, 2, snap.Entries[1].Quantity)
	os.AssertExpectations(t)
}

func TestOrderHandler_DeliverySlots(t *testing.T) {
	r := newCheckoutRouter(service.NewOrderService(service.Config{}, nil, nil), newSessions())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/checkout/delivery-slots", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["Morning (9 AM - 12 PM)","Afternoon (12 PM - 3 PM)","Evening (3 PM - 6 PM)","Any Time"]`, w.Body.String())
}
