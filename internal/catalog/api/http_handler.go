package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/stationery-storefront/internal/catalog/service"
	"github.com/ridloal/stationery-storefront/internal/platform/logger"
	"github.com/shopspring/decimal"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(cs service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: cs}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	productRoutes := router.Group("/products")
	{
		productRoutes.GET("", h.ListProducts)
		productRoutes.GET("/top-sellers", h.TopSellers)
		productRoutes.GET("/:id", h.GetProduct)
		productRoutes.GET("/:id/related", h.RelatedProducts)
	}
	router.GET("/categories", h.ListCategories)
}

type listQuery struct {
	Search     string   `form:"search"`
	Categories []string `form:"category"`
	Brands     []string `form:"brand"`
	Tag        string   `form:"tag"`
	MinPrice   string   `form:"min_price"`
	MaxPrice   string   `form:"max_price"`
}

func parseBound(raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}
	minPrice, err := parseBound(q.MinPrice)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid min_price"})
		return
	}
	maxPrice, err := parseBound(q.MaxPrice)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid max_price"})
		return
	}

	res, err := h.catalogService.Search(c.Request.Context(), service.Filter{
		Search:     q.Search,
		Categories: q.Categories,
		Brands:     q.Brands,
		Tag:        q.Tag,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
	})
	if err != nil {
		logger.Error("ListProducts: service error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Product catalog is unavailable"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	detail, err := h.catalogService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeLookupError(c, "GetProduct", err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *CatalogHandler) RelatedProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	related, err := h.catalogService.RelatedProducts(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.writeLookupError(c, "RelatedProducts", err)
		return
	}
	c.JSON(http.StatusOK, related)
}

func (h *CatalogHandler) TopSellers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	sellers, err := h.catalogService.TopSellers(c.Request.Context(), limit)
	if err != nil {
		logger.Error("TopSellers: service error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Product catalog is unavailable"})
		return
	}
	c.JSON(http.StatusOK, sellers)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	cats, err := h.catalogService.Categories(c.Request.Context())
	if err != nil {
		logger.Error("ListCategories: service error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Product catalog is unavailable"})
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (h *CatalogHandler) writeLookupError(c *gin.Context, op string, err error) {
	if errors.Is(err, service.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	logger.Error(op+": service error", err)
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Product catalog is unavailable"})
}
