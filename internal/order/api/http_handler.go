package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	cartDomain "github.com/ridloal/stationery-storefront/internal/cart/domain"
	cartService "github.com/ridloal/stationery-storefront/internal/cart/service"
	"github.com/ridloal/stationery-storefront/internal/order/domain"
	"github.com/ridloal/stationery-storefront/internal/order/service"
	"github.com/ridloal/stationery-storefront/internal/platform/logger"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orderService service.OrderService
	sessions     cartService.SessionService
}

func NewOrderHandler(os service.OrderService, ss cartService.SessionService) *OrderHandler {
	return &OrderHandler{orderService: os, sessions: ss}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/checkout", h.Checkout)
	router.GET("/checkout/delivery-slots", h.DeliverySlots)
}

func (h *OrderHandler) DeliverySlots(c *gin.Context) {
	c.JSON(http.StatusOK, domain.DeliverySlots)
}

// Checkout places an order for the session's cart and removes the ordered
// items from the cart on success.
func (h *OrderHandler) Checkout(c *gin.Context) {
	sessionID := c.GetHeader(cartDomain.SessionHeader)
	cart, err := h.sessions.Cart(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, cartService.ErrSessionNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing " + cartDomain.SessionHeader + " header"})
			return
		}
		logger.Error("Checkout Hdl: failed to resolve session", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}

	var customer domain.CustomerDetails
	if err := c.ShouldBindJSON(&customer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	snap := cart.Snapshot()
	order, err := h.orderService.PlaceOrder(c.Request.Context(), domain.CreateOrderRequest{
		Customer:    customer,
		Items:       snap.Entries,
		TotalAmount: snap.TotalPrice,
	})
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid customer details", "fields": verr.Fields})
		case errors.Is(err, service.ErrEmptyCart):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrSubmissionFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": "There was an error processing your order. Please try again."})
		default:
			logger.Error("Checkout Hdl: unhandled service error", err, zap.String("session_id", sessionID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		}
		return
	}

	if left := cart.RemoveOrdered(snap.Entries); !left.IsEmpty() {
		logger.Info("Checkout: cart changed while the order was submitted, keeping newer items",
			zap.String("session_id", sessionID),
			zap.String("order_id", order.OrderID),
			zap.Int("items_left", left.TotalItems))
	}
	c.JSON(http.StatusCreated, order)
}
