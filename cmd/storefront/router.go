package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	cartApi "github.com/ridloal/stationery-storefront/internal/cart/api"
	cartService "github.com/ridloal/stationery-storefront/internal/cart/service"
	catalogApi "github.com/ridloal/stationery-storefront/internal/catalog/api"
	catalogService "github.com/ridloal/stationery-storefront/internal/catalog/service"
	orderApi "github.com/ridloal/stationery-storefront/internal/order/api"
	orderService "github.com/ridloal/stationery-storefront/internal/order/service"
	"github.com/ridloal/stationery-storefront/internal/platform/metrics"
	"github.com/ridloal/stationery-storefront/internal/platform/middleware"
)

func newRouter(env string, catalog catalogService.CatalogService, sessions cartService.SessionService, orders orderService.OrderService, m *metrics.Metrics, gatherer prometheus.Gatherer) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(), m.Middleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "cart_sessions": sessions.ActiveSessions()})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler(gatherer)))

	apiV1 := router.Group("/api/v1")
	catalogApi.NewCatalogHandler(catalog).RegisterRoutes(apiV1)
	cartApi.NewCartHandler(sessions, catalog, m).RegisterRoutes(apiV1)
	orderApi.NewOrderHandler(orders, sessions).RegisterRoutes(apiV1)
	return router
}
