package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridloal/stationery-storefront/internal/catalog/domain"
	"github.com/ridloal/stationery-storefront/internal/catalog/repository"
	"github.com/ridloal/stationery-storefront/internal/platform/logger"
	"github.com/ridloal/stationery-storefront/internal/platform/metrics"
	"go.uber.org/zap"
)

var ErrProductNotFound = errors.New("product not found")

const (
	DefaultRelatedLimit   = 4
	DefaultTopSellerLimit = 4
)

type CatalogService interface {
	// FetchProducts never fails: load errors are logged and reported as an empty list.
	FetchProducts(ctx context.Context) []domain.Product
	LoadProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.ProductDetail, error)
	RelatedProducts(ctx context.Context, id string, limit int) ([]domain.Product, error)
	TopSellers(ctx context.Context, limit int) ([]domain.Product, error)
	Categories(ctx context.Context) ([]domain.CategorySummary, error)
	Search(ctx context.Context, f Filter) (*FilterResult, error)
}

type catalogServiceImpl struct {
	repo    repository.ProductRepository
	metrics *metrics.Metrics
}

func NewCatalogService(repo repository.ProductRepository, m *metrics.Metrics) CatalogService {
	if m == nil {
		m = metrics.Nop()
	}
	return &catalogServiceImpl{repo: repo, metrics: m}
}

func (s *catalogServiceImpl) FetchProducts(ctx context.Context) []domain.Product {
	products, err := s.LoadProducts(ctx)
	if err != nil {
		logger.Error("FetchProducts: catalog unavailable, returning empty list", err)
		return []domain.Product{}
	}
	return products
}

func (s *catalogServiceImpl) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.LoadProducts(ctx)
	s.metrics.RecordCatalogLoad(len(products), err)
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (s *catalogServiceImpl) GetProduct(ctx context.Context, id string) (*domain.ProductDetail, error) {
	products, err := s.LoadProducts(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := findByID(products, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return &domain.ProductDetail{
		Product:         p,
		DiscountPercent: p.DiscountPercent(),
		Images:          p.Images(),
	}, nil
}

// RelatedProducts lists other products from the same category, in catalog order.
func (s *catalogServiceImpl) RelatedProducts(ctx context.Context, id string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	products, err := s.LoadProducts(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := findByID(products, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}

	related := make([]domain.Product, 0, limit)
	for _, candidate := range products {
		if len(related) == limit {
			break
		}
		if candidate.Category == p.Category && candidate.ID != p.ID {
			related = append(related, candidate)
		}
	}
	return related, nil
}

func (s *catalogServiceImpl) TopSellers(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = DefaultTopSellerLimit
	}
	products, err := s.LoadProducts(ctx)
	if err != nil {
		return nil, err
	}
	sellers := Filter{Tag: domain.TopSellerTag}.Apply(products)
	if len(sellers) > limit {
		sellers = sellers[:limit]
	}
	return sellers, nil
}

func (s *catalogServiceImpl) Categories(ctx context.Context) ([]domain.CategorySummary, error) {
	products, err := s.LoadProducts(ctx)
	if err != nil {
		return nil, err
	}

	index := map[string]int{}
	summaries := []domain.CategorySummary{}
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		i, ok := index[p.Category]
		if !ok {
			i = len(summaries)
			index[p.Category] = i
			summaries = append(summaries, domain.CategorySummary{Name: p.Category, Brands: []string{}})
		}
		summaries[i].Count++
		if p.Brand != "" && !contains(summaries[i].Brands, p.Brand) {
			summaries[i].Brands = append(summaries[i].Brands, p.Brand)
		}
	}
	return summaries, nil
}

func (s *catalogServiceImpl) Search(ctx context.Context, f Filter) (*FilterResult, error) {
	products, err := s.LoadProducts(ctx)
	if err != nil {
		return nil, err
	}
	matched := f.Apply(products)
	logger.Debug("Catalog search",
		zap.String("search", f.Search),
		zap.Int("matched", len(matched)),
		zap.Int("total", len(products)))
	return &FilterResult{
		Products: matched,
		Total:    len(matched),
		Facets:   BuildFacets(products),
	}, nil
}

func findByID(products []domain.Product, id string) (domain.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}
