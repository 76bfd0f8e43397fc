package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mbrcli/mbr/internal/config"
	"github.com/mbrcli/mbr/internal/utils"
)

// configShowOutput represents config show output for JSON.
type configShowOutput struct {
	Profile       string `json:"profile"`
	ProfileStored bool   `json:"profile_stored"`
	URL           string `json:"url"`
	URLSource     string `json:"url_source"`
	Email         string `json:"email,omitempty"`
	APIKey        string `json:"api_key,omitempty"`
	APIKeySource  string `json:"api_key_source"`
	ConfigFile    string `json:"config_file"`
}

// configSetOutput represents config set output for JSON.
type configSetOutput struct {
	Profile    string `json:"profile"`
	URL        string `json:"url,omitempty"`
	Email      string `json:"email,omitempty"`
	ConfigFile string `json:"config_file"`
}

// configPathOutput represents config path output for JSON.
type configPathOutput struct {
	ConfigFile   string `json:"config_file"`
	ConfigDir    string `json:"config_dir"`
	ConfigExists bool   `json:"config_exists"`
}

// validationResult represents validation output for JSON.
type validationResult struct {
	Valid         bool                `json:"valid"`
	ConfigFile    string              `json:"config_file"`
	ConfigParsed  bool                `json:"config_parsed"`
	ActiveProfile string              `json:"active_profile"`
	ActiveStored  bool                `json:"active_stored"`
	Profiles      []profileValidation `json:"profiles"`
	Keyring       keyringValidation   `json:"keyring"`
	Errors        []string            `json:"errors,omitempty"`
}

// profileValidation represents profile validation for JSON.
type profileValidation struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	URLValid bool   `json:"url_valid"`
	Error    string `json:"error,omitempty"`
}

// keyringValidation represents keyring availability for JSON.
type keyringValidation struct {
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

// newConfigCmd creates the config command group.
func (cli *CLI) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage mbr configuration",
		Long: `Manage mbr configuration files and profiles.

Use 'mbr config show' to see the effective configuration.
Use 'mbr config set' to create or update the active profile.
Use 'mbr config validate' to check the configuration file.
Use 'mbr config path' to see the configuration file location.`,
	}

	cmd.AddCommand(
		cli.newConfigShowCmd(),
		cli.newConfigSetCmd(),
		cli.newConfigValidateCmd(),
		cli.newConfigPathCmd(),
	)

	return cmd
}

// newConfigShowCmd creates the config show command.
func (cli *CLI) newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration for the active profile",
		Long: `Show the configuration resolved for the active profile.

The API key is masked. With --verbose each value also notes the source
that supplied it (flag, env, profile, default).

Examples:
  # Effective configuration of the default profile
  mbr config show

  # Where does each value come from?
  mbr config show --verbose

  # A specific profile
  mbr config show --profile staging`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseOutputFormat(cli.outputFlag)
			if err != nil {
				return err
			}

			ec := cli.Effective
			output := configShowOutput{
				Profile:       ec.Profile,
				ProfileStored: ec.ProfileStored,
				URL:           ec.URL,
				URLSource:     string(ec.URLSource),
				Email:         ec.Email,
				APIKeySource:  string(ec.APIKeySource),
				ConfigFile:    cli.paths.ConfigFile,
			}
			if ec.APIKey != "" {
				output.APIKey = utils.Mask(ec.APIKey)
			}

			writer := NewOutputWriter(format)
			return writer.Write(output, func(w io.Writer) {
				fmt.Fprintf(w, "Profile: %s%s\n", output.Profile, storedNote(output.ProfileStored))
				fmt.Fprintf(w, "  URL:     %s%s\n", output.URL, cli.sourceNote(ec.URLSource))
				if output.Email != "" {
					fmt.Fprintf(w, "  Email:   %s\n", output.Email)
				}
				if output.APIKey != "" {
					fmt.Fprintf(w, "  API key: %s%s\n", output.APIKey, cli.sourceNote(ec.APIKeySource))
				} else {
					fmt.Fprintf(w, "  API key: (not set)\n")
				}
				fmt.Fprintf(w, "\nConfig file: %s\n", output.ConfigFile)
			})
		},
	}
}

// storedNote annotates a profile name that has no stored record.
func storedNote(stored bool) string {
	if stored {
		return ""
	}
	return " (not stored, using defaults)"
}

// sourceNote renders the origin of a resolved value under --verbose.
func (cli *CLI) sourceNote(source config.Source) string {
	if !cli.verboseFlag || source == config.SourceNone {
		return ""
	}
	return fmt.Sprintf(" (from %s)", source)
}

// newConfigSetCmd creates the config set command.
func (cli *CLI) newConfigSetCmd() *cobra.Command {
	var urlFlag, emailFlag string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update the active profile",
		Long: `Create or update the active profile and persist the configuration.

This is the only command that writes the config file. Secrets never go
in it; API keys come from --api-key or MBR_API_KEY, session tokens live
in the system keyring.

Examples:
  # Point the default profile at a server
  mbr config set --url https://metabase.example.com

  # Record the login email as well
  mbr config set --url https://metabase.example.com --email me@example.com

  # Configure a second profile
  mbr config set --profile staging --url https://staging.example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseOutputFormat(cli.outputFlag)
			if err != nil {
				return err
			}
			if err := cli.requireStore(); err != nil {
				return err
			}

			if urlFlag == "" && emailFlag == "" {
				return &ArgError{
					Reason: "nothing to set",
					Advice: "pass --url and/or --email",
				}
			}

			name := cli.Effective.Profile
			record, _ := cli.Config.GetProfile(name)

			if urlFlag != "" {
				if err := config.ValidateURL(urlFlag); err != nil {
					return err
				}
				record.URL = urlFlag
			}
			if emailFlag != "" {
				record.Email = emailFlag
			}

			cli.Config.SetProfile(name, record)
			if err := cli.Config.Save(); err != nil {
				return &storeError{err: err}
			}

			output := configSetOutput{
				Profile:    name,
				URL:        record.URL,
				Email:      record.Email,
				ConfigFile: cli.Config.FilePath(),
			}

			writer := NewOutputWriter(format)
			return writer.Write(output, func(w io.Writer) {
				fmt.Fprintf(w, "Profile %q saved.\n", output.Profile)
				if output.URL != "" {
					fmt.Fprintf(w, "  URL:   %s\n", output.URL)
				}
				if output.Email != "" {
					fmt.Fprintf(w, "  Email: %s\n", output.Email)
				}
				fmt.Fprintf(w, "\nConfiguration saved to: %s\n", output.ConfigFile)
			})
		},
	}

	cmd.Flags().StringVar(&urlFlag, "url", "", "Metabase server URL for the profile")
	cmd.Flags().StringVar(&emailFlag, "email", "", "Login email for the profile")

	return cmd
}

// newConfigValidateCmd creates the config validate command.
func (cli *CLI) newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseOutputFormat(cli.outputFlag)
			if err != nil {
				return err
			}

			result := validationResult{
				Valid:         true,
				ConfigFile:    cli.paths.ConfigFile,
				ConfigParsed:  cli.loadErr == nil,
				ActiveProfile: cli.Effective.Profile,
				ActiveStored:  cli.Effective.ProfileStored,
			}

			if cli.loadErr != nil {
				result.Valid = false
				result.Errors = append(result.Errors, cli.loadErr.Error())
			}

			for _, name := range cli.Config.ProfileNames() {
				record, _ := cli.Config.GetProfile(name)
				pv := profileValidation{
					Name:     name,
					URL:      record.URL,
					URLValid: true,
				}
				if err := config.ValidateURL(record.URL); err != nil {
					pv.URLValid = false
					pv.Error = err.Error()
					result.Valid = false
					result.Errors = append(result.Errors, fmt.Sprintf("profile %s: %v", name, err))
				}
				result.Profiles = append(result.Profiles, pv)
			}

			if err := cli.Keyring.IsAvailable(); err != nil {
				result.Keyring.Error = err.Error()
			} else {
				result.Keyring.Available = true
			}

			writer := NewOutputWriter(format)
			writeErr := writer.Write(result, func(w io.Writer) {
				fmt.Fprintln(w, "Configuration validation:")

				fmt.Fprintf(w, "\nConfig file: %s\n", result.ConfigFile)
				if result.ConfigParsed {
					fmt.Fprintf(w, "  Parses: yes\n")
				} else {
					fmt.Fprintf(w, "  Parses: no (%v)\n", cli.loadErr)
				}

				for _, pv := range result.Profiles {
					fmt.Fprintf(w, "\nProfile: %s\n", pv.Name)
					if pv.URLValid {
						fmt.Fprintf(w, "  URL: %s\n", pv.URL)
					} else {
						fmt.Fprintf(w, "  URL: %s (invalid)\n", pv.URL)
					}
				}

				fmt.Fprintf(w, "\nActive profile: %s%s\n", result.ActiveProfile, storedNote(result.ActiveStored))

				if result.Keyring.Available {
					fmt.Fprintf(w, "Keyring: available\n")
				} else {
					fmt.Fprintf(w, "Keyring: unavailable (%s)\n", result.Keyring.Error)
				}

				fmt.Fprintln(w)
				if result.Valid {
					fmt.Fprintln(w, "Configuration is valid")
				} else {
					fmt.Fprintln(w, "Configuration has errors")
				}
			})

			if writeErr != nil {
				return writeErr
			}

			if !result.Valid {
				return fmt.Errorf("configuration has errors")
			}
			return nil
		},
	}
}

// newConfigPathCmd creates the config path command.
func (cli *CLI) newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseOutputFormat(cli.outputFlag)
			if err != nil {
				return err
			}

			_, statErr := os.Stat(cli.paths.ConfigFile)
			output := configPathOutput{
				ConfigFile:   cli.paths.ConfigFile,
				ConfigDir:    cli.paths.ConfigDir,
				ConfigExists: statErr == nil,
			}

			writer := NewOutputWriter(format)
			return writer.Write(output, func(w io.Writer) {
				fmt.Fprintf(w, "Config file: %s\n", output.ConfigFile)
				fmt.Fprintf(w, "Config dir:  %s\n", output.ConfigDir)
				if output.ConfigExists {
					fmt.Fprintln(w, "\nConfig file exists")
				} else {
					fmt.Fprintln(w, "\nConfig file does not exist (created on first 'mbr config set')")
				}
			})
		},
	}
}
