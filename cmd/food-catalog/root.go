package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/bigkaa/foodcatalog/internal/config"
)

// newRootCmd собирает дерево команд.
func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "food-catalog",
		Short: "REST API каталога продуктов с ежедневным импортом Open Food Facts",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML-файл конфигурации (переменные FC_* имеют приоритет)")

	load := func() (*config.Config, *slog.Logger, error) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return nil, nil, err
		}
		return cfg, config.SetupLogger(cfg), nil
	}

	root.AddCommand(
		newServeCmd(load),
		newImportCmd(load),
		newMigrateCmd(load),
		newVersionCmd(),
	)
	return root
}

// loaderFunc загружает конфигурацию и настраивает логирование.
type loaderFunc func() (*config.Config, *slog.Logger, error)
