package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/lbxxgn/my-blog/internal/server"
	"github.com/spf13/cobra"
)

var errDrift = errors.New("index drift detected")

func newRebuildIndexCmd() *cobra.Command {
	var audit bool

	cmd := &cobra.Command{
		Use:   "rebuild-index",
		Short: "Clear the full-text mirror and re-derive it from every item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *server.App) error {
				if audit {
					report, err := app.Content.AuditIndex(ctx)
					if err != nil {
						return err
					}
					if report.Clean() {
						fmt.Fprintln(cmd.OutOrStdout(), "index is consistent, nothing to rebuild")
						return nil
					}
				}

				n, err := app.Content.RebuildIndex(ctx)
				if err != nil {
					return fmt.Errorf("rebuild: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rebuilt %d index entries\n", n)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&audit, "if-drifted", false, "rebuild only when an audit finds drift")
	return cmd
}

func newAuditIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit-index",
		Short: "Report items whose mirror entry is missing, orphaned or stale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *server.App) error {
				report, err := app.Content.AuditIndex(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "missing:  %v\n", report.Missing)
				fmt.Fprintf(out, "orphaned: %v\n", report.Orphaned)
				fmt.Fprintf(out, "stale:    %v\n", report.Stale)
				if !report.Clean() {
					return errDrift
				}
				return nil
			})
		},
	}
}
