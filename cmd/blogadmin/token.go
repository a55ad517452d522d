package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lbxxgn/my-blog/internal/server"
	"github.com/spf13/cobra"
)

func newIssueTokenCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "issue-token [user-id]",
		Short: "Sign a viewer token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			return withApp(cmd, func(ctx context.Context, app *server.App) error {
				token, err := app.IssueToken(id, role)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "viewer role (admin or author)")
	return cmd
}
