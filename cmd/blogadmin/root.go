package main

import (
	"context"

	"github.com/lbxxgn/my-blog/internal/server"
	"github.com/lbxxgn/my-blog/internal/server/config"
	"github.com/spf13/cobra"
)

// newRootCmd builds the blogadmin command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "blogadmin",
		Short: "Maintenance commands for the blog content store",
		Long: `blogadmin runs schema migrations, repairs the full-text index
mirror out of band from request handling and previews content as a
given viewer would see it.`,
		SilenceUsage: true,
	}

	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newMigrateCmd(),
		newRebuildIndexCmd(),
		newAuditIndexCmd(),
		newIssueTokenCmd(),
		newListCmd(),
		newReadCmd(),
	)
	return root
}

// withApp loads the config from cmd's flags, opens the app and runs fn with a
// context cancelled on interrupt.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *server.App) error) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	ctx, cancel := server.WithSignalCancel(cmd.Context())
	defer cancel()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	return fn(ctx, app)
}
