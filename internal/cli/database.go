package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mbrcli/mbr/internal/query"
	"github.com/mbrcli/mbr/internal/tabular"
	"github.com/mbrcli/mbr/internal/tui"
)

// newDatabaseCmd creates the database command group.
func (cli *CLI) newDatabaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "database",
		Short: "Browse databases, schemas, and tables",
		Long: `Browse the data sources configured on the server.

Examples:
  # List databases
  mbr database list

  # Schemas of database 2
  mbr database schemas 2

  # Tables in the public schema
  mbr database tables 2 public

  # First rows of a table
  mbr database preview 2 81`,
	}

	cmd.AddCommand(
		cli.newDatabaseListCmd(),
		cli.newDatabaseSchemasCmd(),
		cli.newDatabaseTablesCmd(),
		cli.newDatabasePreviewCmd(),
	)

	return cmd
}

// newDatabaseListCmd creates the database list command.
func (cli *CLI) newDatabaseListCmd() *cobra.Command {
	var output dataFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the databases configured on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.parse()
			if err != nil {
				return err
			}
			return cli.runDatabaseFetch(cmd.Context(), format, output, "Databases", "Fetching databases...",
				func(ctx context.Context, service *query.Service) (*tabular.Result, error) {
					return service.ListDatabases(ctx)
				})
		},
	}

	output.register(cmd)

	return cmd
}

// newDatabaseSchemasCmd creates the database schemas command.
func (cli *CLI) newDatabaseSchemasCmd() *cobra.Command {
	var output dataFlags

	cmd := &cobra.Command{
		Use:   "schemas DATABASE",
		Short: "List the schemas of a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.parse()
			if err != nil {
				return err
			}
			databaseID, err := parseIDArg(args[0], "database ID")
			if err != nil {
				return err
			}
			return cli.runDatabaseFetch(cmd.Context(), format, output,
				fmt.Sprintf("Schemas of database %d", databaseID), "Fetching schemas...",
				func(ctx context.Context, service *query.Service) (*tabular.Result, error) {
					return service.ListSchemas(ctx, databaseID)
				})
		},
	}

	output.register(cmd)

	return cmd
}

// newDatabaseTablesCmd creates the database tables command.
func (cli *CLI) newDatabaseTablesCmd() *cobra.Command {
	var output dataFlags

	cmd := &cobra.Command{
		Use:   "tables DATABASE SCHEMA",
		Short: "List the tables in a schema",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.parse()
			if err != nil {
				return err
			}
			databaseID, err := parseIDArg(args[0], "database ID")
			if err != nil {
				return err
			}
			schema := args[1]
			return cli.runDatabaseFetch(cmd.Context(), format, output,
				fmt.Sprintf("Tables in %s", schema), "Fetching tables...",
				func(ctx context.Context, service *query.Service) (*tabular.Result, error) {
					return service.ListTables(ctx, databaseID, schema)
				})
		},
	}

	output.register(cmd)

	return cmd
}

// newDatabasePreviewCmd creates the database preview command.
func (cli *CLI) newDatabasePreviewCmd() *cobra.Command {
	var (
		limitFlag int
		output    dataFlags
	)

	cmd := &cobra.Command{
		Use:   "preview DATABASE TABLE",
		Short: "Show the first rows of a table",
		Long: `Run an ad-hoc query returning the first rows of a table.

Examples:
  # Default preview (10 rows)
  mbr database preview 2 81

  # More rows
  mbr database preview 2 81 --limit 50`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.parse()
			if err != nil {
				return err
			}
			databaseID, err := parseIDArg(args[0], "database ID")
			if err != nil {
				return err
			}
			tableID, err := parseIDArg(args[1], "table ID")
			if err != nil {
				return err
			}
			return cli.runDatabaseFetch(cmd.Context(), format, output,
				fmt.Sprintf("Preview of table %d", tableID), "Fetching rows...",
				func(ctx context.Context, service *query.Service) (*tabular.Result, error) {
					return service.PreviewTable(ctx, databaseID, tableID, limitFlag)
				})
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 0, "Number of rows to fetch (default 10)")
	output.register(cmd)

	return cmd
}

// runDatabaseFetch runs one catalog fetch behind a spinner and renders
// the result.
func (cli *CLI) runDatabaseFetch(ctx context.Context, format tabular.Format, output dataFlags, title, message string, fetch func(context.Context, *query.Service) (*tabular.Result, error)) error {
	client, manager, err := cli.authenticated()
	if err != nil {
		return err
	}
	service := query.NewService(client, manager)

	var result *tabular.Result
	err = withSpinner(message, func() error {
		var fetchErr error
		result, fetchErr = fetch(ctx, service)
		return fetchErr
	})
	if err != nil {
		return err
	}

	return renderResult(ctx, result, format, tui.Options{
		Title:        title,
		NoFullscreen: output.noFullscreen,
	})
}
