package main

import (
	"context"
	"fmt"

	"github.com/lbxxgn/my-blog/internal/server"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *server.App) error {
				if err := app.Migrate(ctx); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return nil
			})
		},
	}
}
