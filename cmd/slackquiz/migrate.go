package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pavelanni/slackquiz/internal/store/postgres/migrations"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply Postgres schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			setupLogging(cmd)
			v := viperForCmd(cmd)
			url := v.GetString("postgres-url")
			if url == "" {
				return fmt.Errorf("postgres-url: %w", errMissingFlag)
			}
			return migrations.Apply(cmd.Context(), url)
		},
	}
	f := cmd.Flags()
	f.String("postgres-url", "", "Postgres connection URL")
	addLogFlags(f, "text")
	return cmd
}
