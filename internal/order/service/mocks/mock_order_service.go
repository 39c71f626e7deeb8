package mocks

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/ridloal/stationery-storefront/internal/order/domain"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) ValidateCustomer(c domain.CustomerDetails) error {
	args := m.Called(c)
	return args.Error(0)
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.OrderDetails, error) {
	args := m.Called(ctx, req)
	if o := args.Get(0); o != nil {
		return o.(*domain.OrderDetails), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockNotifier) Notify(ctx context.Context, order *domain.OrderDetails) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}
