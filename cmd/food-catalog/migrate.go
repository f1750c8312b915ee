package main

import (
	"github.com/spf13/cobra"

	"github.com/bigkaa/foodcatalog/internal/database"
)

func newMigrateCmd(load loaderFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применение миграций БД",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			return database.Migrate(cfg, logger)
		},
	}
}
