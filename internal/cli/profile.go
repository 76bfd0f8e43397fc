package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mbrcli/mbr/internal/profile"
)

// ProfileListOutput represents profile list output for JSON.
type ProfileListOutput struct {
	Current  string         `json:"current"`
	Profiles []profile.Info `json:"profiles"`
}

// newProfileCmd creates the profile command group.
func (cli *CLI) newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"profiles"},
		Short:   "Inspect configured profiles",
		Long: `Inspect the profiles stored in the configuration file.

Profiles hold per-server settings so several Metabase instances can be
used without reconfiguring. Select one per invocation with --profile or
MBR_PROFILE; create or change one with 'mbr config set'.

Examples:
  # List all profiles
  mbr profile list

  # Status of the active profile
  mbr profile status

  # Status of a specific profile
  mbr profile status staging`,
	}

	cmd.AddCommand(
		cli.newProfileListCmd(),
		cli.newProfileStatusCmd(),
	)

	return cmd
}

// newProfileListCmd creates the profile list command.
func (cli *CLI) newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all configured profiles",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseOutputFormat(cli.outputFlag)
			if err != nil {
				return err
			}
			return cli.runProfileList(format)
		},
	}
}

// runProfileList displays all configured profiles.
func (cli *CLI) runProfileList(format OutputFormat) error {
	writer := NewOutputWriter(format)

	profiles := cli.Profiles.List()
	output := ProfileListOutput{
		Current:  cli.Profiles.ActiveName(),
		Profiles: profiles,
	}

	return writer.Write(output, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tURL\tEMAIL\tLOGGED IN")
		for _, p := range profiles {
			marker := ""
			if p.Current {
				marker = "* "
			}
			loggedIn := "no"
			if p.LoggedIn {
				loggedIn = "yes"
			}
			fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\n", marker, p.Name, p.URL, p.Email, loggedIn)
		}
		tw.Flush()
	})
}

// newProfileStatusCmd creates the profile status command.
func (cli *CLI) newProfileStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [NAME]",
		Short: "Show stored state for one profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseOutputFormat(cli.outputFlag)
			if err != nil {
				return err
			}

			name := cli.Profiles.ActiveName()
			if len(args) > 0 {
				name = args[0]
			}
			return cli.runProfileStatus(format, name)
		},
	}
}

// runProfileStatus displays the stored state of one profile.
func (cli *CLI) runProfileStatus(format OutputFormat, name string) error {
	writer := NewOutputWriter(format)
	status := cli.Profiles.GetStatus(name)

	return writer.Write(status, func(w io.Writer) {
		fmt.Fprintf(w, "Profile: %s%s\n", status.Name, storedNote(status.Stored))
		fmt.Fprintf(w, "  URL:    %s\n", status.URL)
		if status.Email != "" {
			fmt.Fprintf(w, "  Email:  %s\n", status.Email)
		}
		if status.Active {
			fmt.Fprintln(w, "  Active: yes")
		}
		if status.SessionStored {
			fmt.Fprintln(w, "  Session: stored")
		} else {
			fmt.Fprintln(w, "  Session: none")
		}
	})
}
