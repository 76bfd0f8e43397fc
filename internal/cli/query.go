package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mbrcli/mbr/internal/notify"
	"github.com/mbrcli/mbr/internal/query"
	"github.com/mbrcli/mbr/internal/tabular"
	"github.com/mbrcli/mbr/internal/tui"
)

// dataFlags are the output flags shared by every data command.
type dataFlags struct {
	format       string
	noFullscreen bool
}

// register adds the shared flags to cmd.
func (f *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "table", "Output format (table, json, csv, yaml)")
	cmd.Flags().BoolVar(&f.noFullscreen, "no-fullscreen", false, "Print the whole result instead of paging")
}

// parse validates the --format value.
func (f *dataFlags) parse() (tabular.Format, error) {
	return tabular.ParseFormat(f.format)
}

// renderResult writes result in the selected format. The table format
// pages interactively when stdout is a terminal; every other format
// streams to stdout unconditionally.
func renderResult(ctx context.Context, result *tabular.Result, format tabular.Format, opts tui.Options) error {
	if format == tabular.FormatTable {
		return tui.Run(ctx, os.Stdout, tabular.NewSliceSource(result), opts)
	}
	return tabular.Write(os.Stdout, result, format)
}

// newQueryCmd creates the query command.
func (cli *CLI) newQueryCmd() *cobra.Command {
	var (
		listFlag       bool
		searchFlag     string
		collectionFlag string
		limitFlag      int
		offsetFlag     int
		paramFlags     []string
		fullFlag       bool
		output         dataFlags
	)

	cmd := &cobra.Command{
		Use:   "query [ID]",
		Short: "Run saved questions and list them",
		Long: `Run a saved question by ID, or list the questions saved on the
server with --list.

Results page interactively in the terminal; pipe the output or pass
--no-fullscreen to print them statically. Use --format for
machine-readable encodings.

Examples:
  # List saved questions
  mbr query --list

  # Only questions mentioning revenue, at most 20
  mbr query --list --search revenue --limit 20

  # Run question 42
  mbr query 42

  # Run with parameters
  mbr query 42 --param region=emea --param year=2025

  # Full untruncated dump, no pager
  mbr query 42 --full

  # Export as CSV
  mbr query 42 --format csv > result.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.parse()
			if err != nil {
				return err
			}

			if listFlag {
				if len(args) > 0 {
					return &ArgError{
						Reason: "cannot combine --list with a question ID",
						Advice: "drop the ID to list questions, or drop --list to run one",
					}
				}
				filter := query.ListFilter{
					Search:     searchFlag,
					Collection: collectionFlag,
					Limit:      limitFlag,
				}
				return cli.runQueryList(cmd.Context(), format, filter, output)
			}

			if len(args) == 0 {
				return &ArgError{
					Reason: "question ID required",
					Advice: "pass a question ID, or use --list to see what is available",
				}
			}
			id, err := parseIDArg(args[0], "question ID")
			if err != nil {
				return err
			}
			params, err := parseParams(paramFlags)
			if err != nil {
				return err
			}
			return cli.runQueryExecute(cmd.Context(), format, queryExecuteArgs{
				id:     id,
				params: params,
				limit:  limitFlag,
				offset: offsetFlag,
				full:   fullFlag,
				output: output,
			})
		},
	}

	cmd.Flags().BoolVarP(&listFlag, "list", "l", false, "List saved questions instead of running one")
	cmd.Flags().StringVar(&searchFlag, "search", "", "Filter the listing by name substring")
	cmd.Flags().StringVar(&collectionFlag, "collection", "", "Restrict the listing to a collection ID")
	cmd.Flags().IntVar(&limitFlag, "limit", 0, "Maximum number of rows")
	cmd.Flags().IntVar(&offsetFlag, "offset", 0, "Skip the first N rows of the result")
	cmd.Flags().StringArrayVar(&paramFlags, "param", nil, "Question parameter as key=value (repeatable)")
	cmd.Flags().BoolVar(&fullFlag, "full", false, "Print every row untruncated, without the pager")
	output.register(cmd)

	return cmd
}

// runQueryList handles the question listing mode.
func (cli *CLI) runQueryList(ctx context.Context, format tabular.Format, filter query.ListFilter, output dataFlags) error {
	client, manager, err := cli.authenticated()
	if err != nil {
		return err
	}
	service := query.NewService(client, manager)

	var result *tabular.Result
	err = withSpinner("Fetching questions...", func() error {
		var fetchErr error
		result, fetchErr = service.ListQuestions(ctx, filter)
		return fetchErr
	})
	if err != nil {
		return err
	}

	return renderResult(ctx, result, format, tui.Options{
		Title:        "Questions",
		NoFullscreen: output.noFullscreen,
	})
}

// queryExecuteArgs bundles the inputs of one question execution.
type queryExecuteArgs struct {
	id     int
	params map[string]string
	limit  int
	offset int
	full   bool
	output dataFlags
}

// runQueryExecute handles running one saved question.
func (cli *CLI) runQueryExecute(ctx context.Context, format tabular.Format, args queryExecuteArgs) error {
	client, manager, err := cli.authenticated()
	if err != nil {
		return err
	}
	service := query.NewService(client, manager)
	notifier := notify.New(cli.Config.Notifications)

	start := time.Now()
	var execution *query.Execution
	err = withSpinner(fmt.Sprintf("Running question %d...", args.id), func() error {
		var execErr error
		execution, execErr = service.ExecuteQuestion(ctx, args.id, args.params, tabular.Options{Full: args.full})
		return execErr
	})
	elapsed := time.Since(start)

	if err != nil {
		if notifyErr := notifier.QueryFailed(fmt.Sprintf("question %d", args.id), elapsed, err); notifyErr != nil {
			cli.warnf("failed to send notification: %v", notifyErr)
		}
		return err
	}

	if notifyErr := notifier.QueryFinished(execution.Question.Name, execution.Result.RowCount(), elapsed); notifyErr != nil {
		cli.warnf("failed to send notification: %v", notifyErr)
	}

	result := execution.Result.Offset(args.offset).Limit(args.limit)

	return renderResult(ctx, result, format, tui.Options{
		Title:        execution.Question.Name,
		NoFullscreen: args.output.noFullscreen || args.full,
	})
}

// parseIDArg converts a numeric positional argument.
func parseIDArg(raw, what string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, &ArgError{
			Reason: fmt.Sprintf("invalid %s %q", what, raw),
			Advice: fmt.Sprintf("the %s must be a non-negative integer", what),
		}
	}
	return id, nil
}

// parseParams converts repeated --param key=value flags into a map.
func parseParams(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(raw))
	for _, entry := range raw {
		key, value, found := strings.Cut(entry, "=")
		if !found || key == "" {
			return nil, &ArgError{
				Reason: fmt.Sprintf("malformed --param %q", entry),
				Advice: "parameters are passed as --param key=value",
			}
		}
		params[key] = value
	}
	return params, nil
}
