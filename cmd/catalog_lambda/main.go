package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/ridloal/stationery-storefront/internal/catalog/repository"
	"github.com/ridloal/stationery-storefront/internal/catalog/upload"
	"github.com/ridloal/stationery-storefront/internal/platform/config"
	"github.com/ridloal/stationery-storefront/internal/platform/logger"
)

func main() {
	cfg := config.Load("catalog-lambda")
	if err := logger.Init(cfg.Log.Level, "production", cfg.ServiceName); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	checker := upload.NewChecker(func(bucket, key string) (repository.ProductSource, error) {
		return repository.NewS3Source(cfg.Catalog.S3Region, bucket, key)
	})
	lambda.Start(checker.Handle)
}
