package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigkaa/foodcatalog/internal/config"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Версия сборки",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", config.ServiceName, config.Version)
		},
	}
}
