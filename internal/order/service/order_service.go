package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	cart "github.com/ridloal/stationery-storefront/internal/cart/domain"
	"github.com/ridloal/stationery-storefront/internal/order/domain"
	"github.com/ridloal/stationery-storefront/internal/platform/logger"
	"github.com/ridloal/stationery-storefront/internal/platform/metrics"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrSubmissionFailed = errors.New("order submission failed")
)

// FailureInjector lets tests and demos force a submission failure.
type FailureInjector func(req domain.CreateOrderRequest) error

type Config struct {
	IDPrefix     string
	SubmitDelay  time.Duration
	DeliveryDays int
	Failure      FailureInjector
}

type OrderService interface {
	ValidateCustomer(c domain.CustomerDetails) error
	PlaceOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.OrderDetails, error)
}

type orderServiceImpl struct {
	cfg       Config
	notifiers []Notifier
	validate  *validator.Validate
	metrics   *metrics.Metrics
	now       func() time.Time
	randIntn  func(n int) int
}

func NewOrderService(cfg Config, notifiers []Notifier, m *metrics.Metrics) OrderService {
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "VE"
	}
	if cfg.DeliveryDays <= 0 {
		cfg.DeliveryDays = 3
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &orderServiceImpl{
		cfg:       cfg,
		notifiers: notifiers,
		validate:  newValidator(),
		metrics:   m,
		now:       time.Now,
		randIntn:  rand.IntN,
	}
}

func (s *orderServiceImpl) ValidateCustomer(c domain.CustomerDetails) error {
	return validateCustomer(s.validate, c)
}

func (s *orderServiceImpl) PlaceOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.OrderDetails, error) {
	if err := s.ValidateCustomer(req.Customer); err != nil {
		s.metrics.RecordOrder("invalid")
		return nil, err
	}
	if len(req.Items) == 0 {
		s.metrics.RecordOrder("empty")
		return nil, ErrEmptyCart
	}

	total := req.TotalAmount
	if total.IsZero() {
		total = cart.TotalPrice(req.Items)
	}

	orderDate := s.now()
	order := &domain.OrderDetails{
		OrderID:               s.generateOrderID(orderDate),
		Items:                 append([]cart.Entry(nil), req.Items...),
		TotalAmount:           total,
		Customer:              req.Customer.Trimmed(),
		OrderDate:             orderDate,
		EstimatedDeliveryDate: orderDate.AddDate(0, 0, s.cfg.DeliveryDays),
	}
	log := logger.With(zap.String("order_id", order.OrderID))

	if err := s.submit(ctx, req); err != nil {
		s.metrics.RecordOrder("failed")
		log.Error("PlaceOrder: submission failed", zap.Error(err))
		return nil, err
	}

	for _, n := range s.notifiers {
		if err := n.Notify(ctx, order); err != nil {
			log.Warn("PlaceOrder: confirmation not sent", zap.String("notifier", n.Name()), zap.Error(err))
		}
	}

	s.metrics.RecordOrder("placed")
	log.Info("Order placed",
		zap.Int("items", cart.TotalItems(order.Items)),
		zap.String("total", order.TotalAmount.StringFixed(2)))
	return order, nil
}

// submit stands in for the remote order call: a fixed delay, then the injected outcome.
func (s *orderServiceImpl) submit(ctx context.Context, req domain.CreateOrderRequest) error {
	if s.cfg.SubmitDelay > 0 {
		timer := time.NewTimer(s.cfg.SubmitDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	if s.cfg.Failure != nil {
		if err := s.cfg.Failure(req); err != nil {
			return fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
		}
	}
	return nil
}

// generateOrderID builds <prefix>-<last 8 digits of unix millis>-<4 random digits>.
func (s *orderServiceImpl) generateOrderID(at time.Time) string {
	millis := strconv.FormatInt(at.UnixMilli(), 10)
	if len(millis) > 8 {
		millis = millis[len(millis)-8:]
	}
	return fmt.Sprintf("%s-%s-%04d", s.cfg.IDPrefix, millis, s.randIntn(10000))
}
