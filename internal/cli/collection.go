package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mbrcli/mbr/internal/query"
	"github.com/mbrcli/mbr/internal/tabular"
	"github.com/mbrcli/mbr/internal/tui"
)

// newCollectionCmd creates the collection command group.
func (cli *CLI) newCollectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collection",
		Short: "Browse collections",
	}

	cmd.AddCommand(cli.newCollectionListCmd())

	return cmd
}

// newCollectionListCmd creates the collection list command.
func (cli *CLI) newCollectionListCmd() *cobra.Command {
	var output dataFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the collections on the server",
		Long: `List the collections saved questions are organized into.

Collection IDs go into 'mbr query --list --collection ID'.

Examples:
  # List collections
  mbr collection list

  # As JSON
  mbr collection list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.parse()
			if err != nil {
				return err
			}
			return cli.runCollectionList(cmd.Context(), format, output)
		},
	}

	output.register(cmd)

	return cmd
}

// runCollectionList handles the collection listing.
func (cli *CLI) runCollectionList(ctx context.Context, format tabular.Format, output dataFlags) error {
	client, manager, err := cli.authenticated()
	if err != nil {
		return err
	}
	service := query.NewService(client, manager)

	var result *tabular.Result
	err = withSpinner("Fetching collections...", func() error {
		var fetchErr error
		result, fetchErr = service.ListCollections(ctx)
		return fetchErr
	})
	if err != nil {
		return err
	}

	return renderResult(ctx, result, format, tui.Options{
		Title:        "Collections",
		NoFullscreen: output.noFullscreen,
	})
}
