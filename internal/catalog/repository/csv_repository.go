package repository

import (
	"context"
	"fmt"
	"io"

	"github.com/ridloal/stationery-storefront/internal/catalog/domain"
	"github.com/ridloal/stationery-storefront/internal/platform/logger"
	"go.uber.org/zap"
)

type ProductRepository interface {
	// LoadProducts builds a fresh product slice on every call; nothing is cached.
	LoadProducts(ctx context.Context) ([]domain.Product, error)
}

type csvProductRepository struct {
	source ProductSource
}

func NewCSVProductRepository(source ProductSource) ProductRepository {
	return &csvProductRepository{source: source}
}

func (r *csvProductRepository) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	body, err := r.source.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog from %s: %w", r.source.Describe(), err)
	}
	// The caller may have gone away while the body was in flight.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	products, err := ParseProducts(string(raw))
	if err != nil {
		return nil, fmt.Errorf("catalog from %s: %w", r.source.Describe(), err)
	}

	logger.Debug("Catalog loaded",
		zap.String("source", r.source.Describe()),
		zap.Int("products", len(products)))
	return products, nil
}
