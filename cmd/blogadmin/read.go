package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/lbxxgn/my-blog/internal/server"
	"github.com/lbxxgn/my-blog/internal/server/access"
	"github.com/spf13/cobra"
)

var errDenied = errors.New("access denied")

func newReadCmd() *cobra.Command {
	var token, password string

	cmd := &cobra.Command{
		Use:   "read [id]",
		Short: "Print a content item if the viewer may read it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid content id %q", args[0])
			}

			return withApp(cmd, func(ctx context.Context, app *server.App) error {
				viewer, err := app.Viewer(token)
				if err != nil {
					return err
				}

				cache := access.NewMemoryUnlockCache()
				if password != "" {
					ok, err := app.Reader.VerifyAndUnlock(ctx, id, password, cache)
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("%w: wrong password for item %d", errDenied, id)
					}
				}

				item, d, err := app.Reader.Get(ctx, id, viewer, cache)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("%w: %s", errDenied, d)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s\n\n%s\n", item.Title, item.Body)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "viewer token; anonymous when empty")
	cmd.Flags().StringVar(&password, "password", "", "password for a password-protected item")
	return cmd
}
