package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/stationery-storefront/internal/cart/domain"
	"github.com/ridloal/stationery-storefront/internal/cart/service"
	"github.com/ridloal/stationery-storefront/internal/cart/store"
	catalogService "github.com/ridloal/stationery-storefront/internal/catalog/service"
	"github.com/ridloal/stationery-storefront/internal/platform/logger"
	"github.com/ridloal/stationery-storefront/internal/platform/metrics"
	"go.uber.org/zap"
)

type CartHandler struct {
	sessions service.SessionService
	catalog  catalogService.CatalogService
	metrics  *metrics.Metrics
}

func NewCartHandler(ss service.SessionService, cs catalogService.CatalogService, m *metrics.Metrics) *CartHandler {
	if m == nil {
		m = metrics.Nop()
	}
	return &CartHandler{sessions: ss, catalog: cs, metrics: m}
}

func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup) {
	cartRoutes := router.Group("/cart")
	{
		cartRoutes.POST("", h.CreateSession)
		cartRoutes.GET("", h.GetCart)
		cartRoutes.DELETE("", h.ClearCart)
		cartRoutes.POST("/items", h.AddItem)
		cartRoutes.PUT("/items/:product_id", h.UpdateItem)
		cartRoutes.DELETE("/items/:product_id", h.RemoveItem)
	}
}

type sessionResponse struct {
	SessionID string          `json:"session_id"`
	Cart      domain.Snapshot `json:"cart"`
}

func (h *CartHandler) CreateSession(c *gin.Context) {
	id, cart, err := h.sessions.NewSession(c.Request.Context())
	if err != nil {
		logger.Error("CreateSession Hdl: failed to create session", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create cart session"})
		return
	}
	c.Header(domain.SessionHeader, id)
	c.JSON(http.StatusCreated, sessionResponse{SessionID: id, Cart: cart.Snapshot()})
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, ok := h.sessionCart(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cart.Snapshot())
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	cart, ok := h.sessionCart(c)
	if !ok {
		return
	}
	snap := cart.ClearCart()
	h.metrics.RecordCartMutation("clear")
	c.JSON(http.StatusOK, snap)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	cart, ok := h.sessionCart(c)
	if !ok {
		return
	}

	var req domain.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	detail, err := h.catalog.GetProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalogService.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		logger.Error("AddItem Hdl: catalog lookup failed", err, zap.String("product_id", req.ProductID))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Product catalog is unavailable"})
		return
	}

	snap, err := cart.AddToCart(detail.Product, req.Quantity)
	if err != nil {
		writeMutationError(c, err)
		return
	}
	h.metrics.RecordCartMutation("add")
	c.JSON(http.StatusOK, snap)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	cart, ok := h.sessionCart(c)
	if !ok {
		return
	}

	var req domain.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	snap, err := cart.UpdateQuantity(c.Param("product_id"), *req.Quantity)
	if err != nil {
		writeMutationError(c, err)
		return
	}
	h.metrics.RecordCartMutation("update")
	c.JSON(http.StatusOK, snap)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	cart, ok := h.sessionCart(c)
	if !ok {
		return
	}
	snap := cart.RemoveFromCart(c.Param("product_id"))
	h.metrics.RecordCartMutation("remove")
	c.JSON(http.StatusOK, snap)
}

// sessionCart resolves the session header, writing the error response itself on failure.
func (h *CartHandler) sessionCart(c *gin.Context) (*store.Store, bool) {
	cart, err := h.sessions.Cart(c.Request.Context(), c.GetHeader(domain.SessionHeader))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing " + domain.SessionHeader + " header"})
			return nil, false
		}
		logger.Error("Cart Hdl: failed to resolve session", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return nil, false
	}
	return cart, true
}

func writeMutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrQuantityTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrOutOfStock), errors.Is(err, domain.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("Cart Hdl: unhandled mutation error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
	}
}
