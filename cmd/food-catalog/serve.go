package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/bigkaa/foodcatalog/internal/api/handlers"
	"github.com/bigkaa/foodcatalog/internal/api/middleware"
	"github.com/bigkaa/foodcatalog/internal/api/openapi"
	"github.com/bigkaa/foodcatalog/internal/config"
	"github.com/bigkaa/foodcatalog/internal/database"
	"github.com/bigkaa/foodcatalog/internal/repository"
	"github.com/bigkaa/foodcatalog/internal/scheduler"
	"github.com/bigkaa/foodcatalog/internal/server"
	"github.com/bigkaa/foodcatalog/internal/service"
)

func newServeCmd(load loaderFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запуск HTTP API и ежедневного импорта",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	startedAt := time.Now()
	logger.Info("Food Catalog запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// 1. Миграции и подключение к PostgreSQL (pgxpool)
	pool, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	// 2. Repositories
	productRepo := repository.NewProductRepository(pool)
	historyRepo := repository.NewImportHistoryRepository(pool)

	// 3. Импортёр и планировщик
	imp, err := newImporter(cfg, productRepo, historyRepo, logger)
	if err != nil {
		return err
	}
	state := scheduler.NewState()
	sched := scheduler.New(imp, scheduler.Config{
		Hour:     cfg.ImportHour,
		Minute:   cfg.ImportMinute,
		Location: cfg.ImportLocation,
		Enabled:  cfg.ImportScheduleEnabled,
	}, state, logger)

	// 4. Services
	pgChecker := database.NewReadinessChecker(pool)
	productSvc := service.NewProductService(productRepo, service.NewProductCache(cfg.CacheSize, cfg.CacheTTL), logger)
	importSvc := service.NewImportService(sched, historyRepo, logger)
	statusSvc := service.NewStatusService(pgChecker, state, importSvc, startedAt, logger)

	// 5. OpenAPI-документ: разбор и валидация при старте
	doc, err := openapi.Load(ctx)
	if err != nil {
		return err
	}
	docJSON, err := openapi.JSON(doc)
	if err != nil {
		return err
	}

	// 6. API handler
	apiHandler := handlers.NewAPIHandler(
		handlers.NewHealthHandler(pgChecker),
		productSvc,
		importSvc,
		statusSvc,
		docJSON,
		logger,
	)

	// 7. topologymetrics — мониторинг зависимостей (PostgreSQL + источник данных)
	var dephealthSvc *service.DephealthService
	if cfg.DephealthEnabled {
		// Адаптер pgxpool → *sql.DB: проверка идёт через существующий пул
		pgDB := stdlib.OpenDBFromPool(pool)
		defer pgDB.Close()

		if os.Getenv("FC_DEPHEALTH_GROUP") == "" {
			logger.Warn("FC_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
				slog.String("default", cfg.DephealthGroup),
			)
		}

		var dhErr error
		dephealthSvc, dhErr = service.NewDephealthService(service.DephealthConfig{
			ServiceID:       config.ServiceName,
			Group:           cfg.DephealthGroup,
			DB:              pgDB,
			PostgresURL:     cfg.DatabaseURL(),
			SourceBaseURL:   cfg.ImportBaseURL,
			SourceIndexFile: cfg.ImportIndexFile,
			CheckInterval:   cfg.DephealthCheckInterval,
			IsEntry:         cfg.DephealthIsEntry,
		}, logger)
		if dhErr != nil {
			logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
				slog.String("error", dhErr.Error()),
			)
			dephealthSvc = nil
		} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics", slog.String("error", startErr.Error()))
			dephealthSvc = nil
		}
	}

	// 8. Фоновый планировщик импорта
	sched.Start(ctx)

	// 9. HTTP-сервер. При shutdown сначала отменяется активный импорт,
	// чтобы синхронный POST /products/import успел ответить.
	srv := server.New(cfg, logger, apiHandler,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	)
	srv.OnShutdown(sched.Stop)

	runErr := srv.Run(ctx)

	// 10. Остановка фоновых задач
	logger.Info("Останавливаем фоновые задачи...")
	sched.Stop()
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	if runErr != nil {
		return runErr
	}
	logger.Info("Food Catalog остановлен")
	return nil
}
