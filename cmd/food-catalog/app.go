package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bigkaa/foodcatalog/internal/config"
	"github.com/bigkaa/foodcatalog/internal/database"
	"github.com/bigkaa/foodcatalog/internal/datasource"
	"github.com/bigkaa/foodcatalog/internal/importer"
	"github.com/bigkaa/foodcatalog/internal/repository"
)

// openDatabase применяет миграции и открывает пул соединений.
func openDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		return nil, fmt.Errorf("миграции БД: %w", err)
	}

	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("подключение к PostgreSQL: %w", err)
	}
	return pool, nil
}

// newImporter собирает импортёр: HTTP-источник, хранилище продуктов, журнал.
func newImporter(cfg *config.Config, products repository.ProductRepository, history repository.ImportHistoryRepository, logger *slog.Logger) (*importer.Importer, error) {
	source, err := datasource.New(datasource.Options{
		BaseURL:      cfg.ImportBaseURL,
		IndexFile:    cfg.ImportIndexFile,
		FetchTimeout: cfg.ImportFetchTimeout,
		RetryMax:     cfg.ImportRetryMax,
		RetryWaitMin: cfg.ImportRetryWaitMin,
		RetryWaitMax: cfg.ImportRetryWaitMax,
		RateLimit:    cfg.ImportRateLimit,
		RateBurst:    cfg.ImportRateBurst,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("клиент источника данных: %w", err)
	}

	recorder := importer.NewHistoryRecorder(history, logger)
	return importer.New(source, products, recorder, importer.Options{
		BatchCap:     cfg.ImportBatchCap,
		FileTimeout:  cfg.ImportFileTimeout,
		FlushTimeout: cfg.ImportFlushTimeout,
		MaxLineBytes: cfg.ImportMaxLineBytes,
	}, logger), nil
}
