package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/ridloal/stationery-storefront/internal/order/domain"
	"github.com/ridloal/stationery-storefront/internal/platform/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Notifier sends an order confirmation somewhere.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, order *domain.OrderDetails) error
}

// EmailNotifier logs the confirmation that would be mailed to the customer.
type EmailNotifier struct{}

func (EmailNotifier) Name() string { return "email" }

func (EmailNotifier) Notify(ctx context.Context, order *domain.OrderDetails) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Info("Sending order confirmation email",
		zap.String("order_id", order.OrderID),
		zap.String("to", order.Customer.Email),
		zap.Int("items", len(order.Items)),
		zap.String("total", order.TotalAmount.StringFixed(2)))
	return nil
}

// WhatsAppNotifier logs the order summary that would be sent to the shop's WhatsApp number.
type WhatsAppNotifier struct {
	Number string
}

func (WhatsAppNotifier) Name() string { return "whatsapp" }

func (n WhatsAppNotifier) Notify(ctx context.Context, order *domain.OrderDetails) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.Number == "" {
		return fmt.Errorf("whatsapp notifier: no destination number")
	}
	logger.Info("Sending order summary to WhatsApp",
		zap.String("order_id", order.OrderID),
		zap.String("to", n.Number),
		zap.String("customer", order.Customer.FullName),
		zap.String("contact", order.Customer.ContactNumber))
	return nil
}

// Publisher is the part of *amqp.Channel the queue notifier needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type orderEventItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type orderEvent struct {
	OrderID               string           `json:"order_id"`
	Email                 string           `json:"email"`
	ContactNumber         string           `json:"contact_number"`
	Items                 []orderEventItem `json:"items"`
	TotalAmount           decimal.Decimal  `json:"total_amount"`
	OrderDate             string           `json:"order_date"`
	EstimatedDeliveryDate string           `json:"estimated_delivery_date"`
}

// QueueNotifier publishes an order event to a RabbitMQ queue via the default exchange.
type QueueNotifier struct {
	publisher Publisher
	queue     string
}

func NewQueueNotifier(p Publisher, queue string) *QueueNotifier {
	return &QueueNotifier{publisher: p, queue: queue}
}

func (n *QueueNotifier) Name() string { return "rabbitmq" }

func (n *QueueNotifier) Notify(ctx context.Context, order *domain.OrderDetails) error {
	event := orderEvent{
		OrderID:               order.OrderID,
		Email:                 order.Customer.Email,
		ContactNumber:         order.Customer.ContactNumber,
		Items:                 make([]orderEventItem, 0, len(order.Items)),
		TotalAmount:           order.TotalAmount,
		OrderDate:             order.OrderDate.Format(time.RFC3339),
		EstimatedDeliveryDate: order.EstimatedDeliveryDate.Format("2006-01-02"),
	}
	for _, e := range order.Items {
		event.Items = append(event.Items, orderEventItem{
			ProductID: e.Product.ID,
			Name:      e.Product.Name,
			Quantity:  e.Quantity,
			LineTotal: e.LineTotal(),
		})
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	err = n.publisher.PublishWithContext(ctx, "", n.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    order.OrderID,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish order %s to %s: %w", order.OrderID, n.queue, err)
	}
	return nil
}
