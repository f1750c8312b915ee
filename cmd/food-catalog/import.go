package main

import (
	"encoding/json"
	"errors"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bigkaa/foodcatalog/internal/domain/model"
	"github.com/bigkaa/foodcatalog/internal/repository"
)

func newImportCmd(load loaderFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Однократный запуск импорта; итог печатается в JSON",
		Long: `Выполняет один запуск импорта и записывает его итог в журнал.
Прерывание (SIGINT/SIGTERM) дозаписывает текущий пакет и завершает запуск.
Код выхода 1, если запуск завершился ошибкой.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool, err := openDatabase(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			imp, err := newImporter(cfg,
				repository.NewProductRepository(pool),
				repository.NewImportHistoryRepository(pool),
				logger)
			if err != nil {
				return err
			}

			out := imp.Run(ctx, model.TriggerCLI)
			return reportOutcome(cmd.OutOrStdout(), out)
		},
	}
}

// reportOutcome печатает итог и возвращает ошибку для неудачного запуска.
func reportOutcome(w io.Writer, out *model.RunOutcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	if !out.Succeeded() {
		return errors.New(out.Detail)
	}
	return nil
}
