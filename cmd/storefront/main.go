package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	amqp "github.com/rabbitmq/amqp091-go"
	cartDomain "github.com/ridloal/stationery-storefront/internal/cart/domain"
	cartRepository "github.com/ridloal/stationery-storefront/internal/cart/repository"
	cartService "github.com/ridloal/stationery-storefront/internal/cart/service"
	catalogRepository "github.com/ridloal/stationery-storefront/internal/catalog/repository"
	catalogService "github.com/ridloal/stationery-storefront/internal/catalog/service"
	orderService "github.com/ridloal/stationery-storefront/internal/order/service"
	"github.com/ridloal/stationery-storefront/internal/platform/config"
	"github.com/ridloal/stationery-storefront/internal/platform/database"
	"github.com/ridloal/stationery-storefront/internal/platform/logger"
	"github.com/ridloal/stationery-storefront/internal/platform/metrics"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load("storefront")
	if err := logger.Init(cfg.Log.Level, cfg.Server.Env, cfg.ServiceName); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("Storefront stopped with error", err)
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(cfg.Metrics.Prefix, registry)

	source, err := buildSource(cfg.Catalog)
	if err != nil {
		return err
	}
	catalog := catalogService.NewCatalogService(catalogRepository.NewCSVProductRepository(source), m)
	logger.Info("Catalog source configured", zap.String("source", source.Describe()))

	policy, err := cartDomain.ParseStockPolicy(cfg.Cart.StockPolicy)
	if err != nil {
		return err
	}
	snapshots, closeSnapshots, err := buildSnapshotRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSnapshots()

	sessions := cartService.NewSessionService(snapshots, policy, cfg.Cart.SessionIdle, m)
	if err := sessions.StartSweeper(cfg.Cart.SweepSpec); err != nil {
		return err
	}
	defer sessions.StopSweeper()

	notifiers, closeNotifiers := buildNotifiers(cfg.Order)
	defer closeNotifiers()
	orders := orderService.NewOrderService(orderService.Config{
		IDPrefix:     cfg.Order.IDPrefix,
		SubmitDelay:  cfg.Order.SubmitDelay,
		DeliveryDays: cfg.Order.DeliveryDays,
	}, notifiers, m)

	router := newRouter(cfg.Server.Env, catalog, sessions, orders, m, registry)
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Storefront listening", zap.String("addr", server.Addr), zap.String("stock_policy", string(policy)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down storefront")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildSource(cfg config.CatalogConfig) (catalogRepository.ProductSource, error) {
	switch cfg.Source {
	case "file", "":
		return catalogRepository.NewFileSource(cfg.FilePath), nil
	case "http":
		if cfg.URL == "" {
			return nil, errors.New("CATALOG_URL is required for the http catalog source")
		}
		return catalogRepository.NewHTTPSource(cfg.URL, cfg.HTTPTimeout), nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, errors.New("CATALOG_S3_BUCKET is required for the s3 catalog source")
		}
		return catalogRepository.NewS3Source(cfg.S3Region, cfg.S3Bucket, cfg.S3Key)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}

func buildSnapshotRepository(ctx context.Context, cfg config.Config) (cartRepository.SnapshotRepository, func(), error) {
	switch cfg.Cart.SnapshotBackend {
	case "memory", "":
		return cartRepository.NewMemorySnapshotRepository(), func() {}, nil
	case "redis":
		client, err := database.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				logger.Error("Failed to close redis client", err)
			}
		}
		return cartRepository.NewRedisSnapshotRepository(client, cfg.Cart.SnapshotTTL), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown cart snapshot backend %q", cfg.Cart.SnapshotBackend)
	}
}

// buildNotifiers includes the email and WhatsApp stubs unless disabled. The
// RabbitMQ notifier is added when RABBITMQ_URI is set and reachable.
func buildNotifiers(cfg config.OrderConfig) ([]orderService.Notifier, func()) {
	var notifiers []orderService.Notifier
	if cfg.EmailEnabled {
		notifiers = append(notifiers, orderService.EmailNotifier{})
	}
	if cfg.WhatsAppEnabled {
		notifiers = append(notifiers, orderService.WhatsAppNotifier{Number: cfg.WhatsAppNumber})
	}
	if cfg.RabbitMQURI == "" {
		return notifiers, func() {}
	}

	conn, err := amqp.Dial(cfg.RabbitMQURI)
	if err != nil {
		logger.Error("RabbitMQ unavailable, order events disabled", err)
		return notifiers, func() {}
	}
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("Failed to open RabbitMQ channel, order events disabled", err)
		_ = conn.Close()
		return notifiers, func() {}
	}
	q, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil)
	if err != nil {
		logger.Error("Failed to declare order queue, order events disabled", err, zap.String("queue", cfg.Queue))
		_ = ch.Close()
		_ = conn.Close()
		return notifiers, func() {}
	}

	logger.Info("Publishing order events to RabbitMQ", zap.String("queue", q.Name))
	notifiers = append(notifiers, orderService.NewQueueNotifier(ch, q.Name))
	return notifiers, func() {
		_ = ch.Close()
		_ = conn.Close()
	}
}
