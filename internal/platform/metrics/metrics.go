package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector the storefront exposes. Collectors are
// registered on the Registerer given to New so tests can use a private registry.
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	CatalogLoads        *prometheus.CounterVec
	ProductsParsed      prometheus.Gauge
	CartMutations       *prometheus.CounterVec
	CartSessions        prometheus.Gauge
	Orders              *prometheus.CounterVec
}

func New(prefix string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		CatalogLoads: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_catalog_loads_total",
			Help: "Catalog CSV loads by outcome",
		}, []string{"outcome"}),
		ProductsParsed: f.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "_catalog_products",
			Help: "Number of products produced by the last successful load",
		}),
		CartMutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_cart_mutations_total",
			Help: "Cart mutations by operation",
		}, []string{"operation"}),
		CartSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "_cart_sessions",
			Help: "Cart sessions currently held in memory",
		}),
		Orders: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_orders_total",
			Help: "Checkout submissions by outcome",
		}, []string{"outcome"}),
	}
}

// Nop returns collectors bound to a throwaway registry.
func Nop() *Metrics {
	return New("nop", prometheus.NewRegistry())
}

func (m *Metrics) RecordCatalogLoad(count int, err error) {
	if err != nil {
		m.CatalogLoads.WithLabelValues("error").Inc()
		return
	}
	m.CatalogLoads.WithLabelValues("ok").Inc()
	m.ProductsParsed.Set(float64(count))
}

func (m *Metrics) RecordCartMutation(operation string) {
	m.CartMutations.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordOrder(outcome string) {
	m.Orders.WithLabelValues(outcome).Inc()
}

// Middleware records request counts and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
