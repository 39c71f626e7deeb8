package mocks

import (
	"context"

	"github.com/ridloal/stationery-storefront/internal/catalog/domain"
	"github.com/ridloal/stationery-storefront/internal/catalog/service"
	"github.com/stretchr/testify/mock"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) FetchProducts(ctx context.Context) []domain.Product {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]domain.Product)
	}
	return []domain.Product{}
}

func (m *MockCatalogService) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id string) (*domain.ProductDetail, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*domain.ProductDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogService) RelatedProducts(ctx context.Context, id string, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, id, limit)
	if res := args.Get(0); res != nil {
		return res.([]domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogService) TopSellers(ctx context.Context, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, limit)
	if res := args.Get(0); res != nil {
		return res.([]domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogService) Categories(ctx context.Context) ([]domain.CategorySummary, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]domain.CategorySummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogService) Search(ctx context.Context, f service.Filter) (*service.FilterResult, error) {
	args := m.Called(ctx, f)
	if res := args.Get(0); res != nil {
		return res.(*service.FilterResult), args.Error(1)
	}
	return nil, args.Error(1)
}
