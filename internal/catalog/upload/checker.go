// Package upload checks catalog CSV files dropped into S3 before the
// storefront is pointed at them.
package upload

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"github.com/ridloal/stationery-storefront/internal/catalog/domain"
	"github.com/ridloal/stationery-storefront/internal/catalog/repository"
	"github.com/ridloal/stationery-storefront/internal/platform/logger"
	"go.uber.org/zap"
)

// SourceFactory opens the uploaded object as a product source.
type SourceFactory func(bucket, key string) (repository.ProductSource, error)

type ObjectReport struct {
	Bucket   string   `json:"bucket"`
	Key      string   `json:"key"`
	Products int      `json:"products"`
	Warnings []string `json:"warnings"`
	Error    string   `json:"error,omitempty"`
}

type Report struct {
	Objects []ObjectReport `json:"objects"`
}

type Checker struct {
	newSource SourceFactory
}

func NewChecker(f SourceFactory) *Checker {
	return &Checker{newSource: f}
}

// Handle parses every object in the event. A file that cannot be read or
// parsed fails the invocation; row-level problems are only reported.
func (c *Checker) Handle(ctx context.Context, event events.S3Event) (Report, error) {
	report := Report{Objects: make([]ObjectReport, 0, len(event.Records))}
	var errs []error

	for _, record := range event.Records {
		bucket := record.S3.Bucket.Name
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			key = record.S3.Object.Key
		}

		obj := c.check(ctx, bucket, key)
		if obj.Error != "" {
			errs = append(errs, fmt.Errorf("s3://%s/%s: %s", bucket, key, obj.Error))
		}
		logger.Info("Catalog upload checked",
			zap.String("bucket", bucket),
			zap.String("key", key),
			zap.Int("products", obj.Products),
			zap.Int("warnings", len(obj.Warnings)))
		report.Objects = append(report.Objects, obj)
	}
	return report, errors.Join(errs...)
}

func (c *Checker) check(ctx context.Context, bucket, key string) ObjectReport {
	obj := ObjectReport{Bucket: bucket, Key: key, Warnings: []string{}}

	source, err := c.newSource(bucket, key)
	if err != nil {
		obj.Error = err.Error()
		return obj
	}
	products, err := repository.NewCSVProductRepository(source).LoadProducts(ctx)
	if err != nil {
		obj.Error = err.Error()
		return obj
	}

	obj.Products = len(products)
	for _, p := range products {
		obj.Warnings = append(obj.Warnings, Lint(p)...)
	}
	return obj
}

// Lint lists data problems in a parsed product that the loader silently defaults.
func Lint(p domain.Product) []string {
	var warnings []string
	if p.Name == "" {
		warnings = append(warnings, p.ID+": missing name")
	}
	if p.Category == "" {
		warnings = append(warnings, p.ID+": missing category")
	}
	if p.Price.IsZero() {
		warnings = append(warnings, p.ID+": price is zero")
	}
	if p.DiscountedPrice.GreaterThan(p.Price) {
		warnings = append(warnings, p.ID+": discounted price above price")
	}
	if p.Thumbnail == "" {
		warnings = append(warnings, p.ID+": no thumbnail")
	}
	return warnings
}
