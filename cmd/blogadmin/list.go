package main

import (
	"context"
	"fmt"
	"io"

	"github.com/lbxxgn/my-blog/internal/server"
	"github.com/lbxxgn/my-blog/internal/server/access"
	"github.com/lbxxgn/my-blog/internal/server/filters"
	"github.com/lbxxgn/my-blog/internal/server/models"
	"github.com/lbxxgn/my-blog/internal/server/pagination"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var (
		params   map[string]string
		token    string
		drafts   bool
		page     int
		pageSize int
		cursor   string
		keyset   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List content as a viewer would see it",
		Long: `list prints one page of content using the same filtering, scoping and
redaction as the reader-facing listing. Use --keyset (optionally with
--cursor) for cursor pagination; otherwise --page selects an offset page.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := filters.FromParams(params, drafts)
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, app *server.App) error {
				viewer, err := app.Viewer(token)
				if err != nil {
					return err
				}
				cache := access.NewMemoryUnlockCache()
				out := cmd.OutOrStdout()

				if keyset || cursor != "" {
					p, err := app.Listing.ListCursor(ctx, set, viewer, cache, cursor, pageSize)
					if err != nil {
						return err
					}
					printItems(out, p.Items)
					fmt.Fprintf(out, "has more: %t\n", p.HasMore)
					if p.NextCursor != "" {
						fmt.Fprintf(out, "next cursor: %s\n", p.NextCursor)
					}
					return nil
				}

				p, err := app.Listing.ListOffset(ctx, set, viewer, cache, page, pageSize)
				if err != nil {
					return err
				}
				printItems(out, p.Items)
				first, last := pagination.ItemSpan(p.Page, p.PageSize, p.TotalCount)
				w := p.Window()
				fmt.Fprintf(out, "items %d-%d of %d, page %d/%d, pages %v", first, last, p.TotalCount, p.Page, p.TotalPages, w.Pages)
				if w.HasMore {
					fmt.Fprint(out, " ...")
				}
				fmt.Fprintln(out)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringToStringVarP(&params, "filter", "f", nil, "filter parameters: category_id, tag_id, author_id, q")
	f.StringVar(&token, "token", "", "viewer token; anonymous when empty")
	f.BoolVar(&drafts, "drafts", false, "include unpublished items")
	f.IntVar(&page, "page", 1, "page number in offset mode")
	f.IntVar(&pageSize, "size", 0, "items per page; unsupported sizes use the default")
	f.StringVar(&cursor, "cursor", "", "continue after this cursor")
	f.BoolVar(&keyset, "keyset", false, "use cursor pagination")
	return cmd
}

func printItems(w io.Writer, items []*models.ContentItem) {
	for _, it := range items {
		body := it.Body
		if it.Locked {
			body = "(locked)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", it.ID, it.CreatedAt.Format("2006-01-02 15:04"), it.Visibility, it.Title, body)
	}
}
