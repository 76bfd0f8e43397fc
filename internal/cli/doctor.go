package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mbrcli/mbr/internal/config"
	"github.com/mbrcli/mbr/internal/keyring"
)

// CheckResult represents the result of a diagnostic check.
type CheckResult struct {
	Name    string      `json:"name"`
	Status  CheckStatus `json:"status"`
	Message string      `json:"message"`
	Fix     string      `json:"fix,omitempty"`
}

// CheckStatus represents the status of a diagnostic check.
type CheckStatus int

const (
	// CheckOK indicates the check passed.
	CheckOK CheckStatus = iota
	// CheckWarning indicates a non-critical issue.
	CheckWarning
	// CheckError indicates a critical failure.
	CheckError
	// CheckSkipped indicates the check was skipped.
	CheckSkipped
)

// String returns the status name.
func (s CheckStatus) String() string {
	switch s {
	case CheckOK:
		return "OK"
	case CheckWarning:
		return "WARN"
	case CheckError:
		return "ERROR"
	case CheckSkipped:
		return "SKIP"
	default:
		return "UNKNOWN"
	}
}

// Icon returns the status icon for display.
func (s CheckStatus) Icon() string {
	switch s {
	case CheckOK:
		return "[OK]"
	case CheckWarning:
		return "[!!]"
	case CheckError:
		return "[XX]"
	case CheckSkipped:
		return "[--]"
	default:
		return "[??]"
	}
}

// MarshalJSON implements json.Marshaler.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// DoctorOutput represents the doctor command output for JSON.
type DoctorOutput struct {
	Checks      []CheckResult `json:"checks"`
	HasErrors   bool          `json:"has_errors"`
	HasWarnings bool          `json:"has_warnings"`
}

// newDoctorCmd creates the doctor command.
func (cli *CLI) newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose common issues",
		Long: `Run diagnostic checks to identify and troubleshoot common issues.

The doctor command checks:
  - Configuration file validity
  - Keyring availability
  - Active profile and its server URL
  - Server reachability
  - Credential validity

Use --verbose for suggested fixes.

Examples:
  # Run diagnostics
  mbr doctor

  # Run with suggested fixes
  mbr doctor --verbose

  # Output as JSON
  mbr doctor -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseOutputFormat(cli.outputFlag)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			results := cli.runDiagnostics(ctx)

			hasErrors := false
			hasWarnings := false
			for _, r := range results {
				if r.Status == CheckError {
					hasErrors = true
				}
				if r.Status == CheckWarning {
					hasWarnings = true
				}
			}

			output := DoctorOutput{
				Checks:      results,
				HasErrors:   hasErrors,
				HasWarnings: hasWarnings,
			}

			writer := NewOutputWriter(format)
			writeErr := writer.Write(output, func(w io.Writer) {
				fmt.Fprintln(w, "mbr Diagnostics")
				fmt.Fprintln(w, "===============")
				fmt.Fprintln(w)

				for _, r := range results {
					fmt.Fprintf(w, "%s %s", r.Status.Icon(), r.Name)
					if r.Message != "" {
						fmt.Fprintf(w, ": %s", r.Message)
					}
					fmt.Fprintln(w)

					if (r.Status == CheckError || r.Status == CheckWarning) && r.Fix != "" && cli.verboseFlag {
						fmt.Fprintf(w, "      -> %s\n", r.Fix)
					}
				}

				fmt.Fprintln(w)
				if hasErrors {
					fmt.Fprintln(w, "Some checks failed. Run with --verbose for suggested fixes.")
				} else if hasWarnings {
					fmt.Fprintln(w, "All critical checks passed with some warnings.")
				} else {
					fmt.Fprintln(w, "All checks passed!")
				}
			})

			if writeErr != nil {
				return writeErr
			}

			if hasErrors {
				return fmt.Errorf("diagnostics failed")
			}
			return nil
		},
	}
}

func (cli *CLI) runDiagnostics(ctx context.Context) []CheckResult {
	var results []CheckResult

	// Check 1: Configuration file
	results = append(results, cli.checkConfigFile())

	// Check 2: Keyring
	results = append(results, cli.checkKeyring())

	// Check 3: Active profile
	results = append(results, cli.checkProfile())

	// Check 4: Server reachability
	results = append(results, cli.checkServerHealth(ctx))

	// Check 5: Credential
	results = append(results, cli.checkCredential(ctx))

	return results
}

func (cli *CLI) checkConfigFile() CheckResult {
	if cli.loadErr != nil {
		return CheckResult{
			Name:    "Configuration file",
			Status:  CheckError,
			Message: fmt.Sprintf("invalid: %v", cli.loadErr),
			Fix:     "Run 'mbr config validate' to see detailed errors",
		}
	}

	if _, err := os.Stat(cli.paths.ConfigFile); os.IsNotExist(err) {
		return CheckResult{
			Name:    "Configuration file",
			Status:  CheckWarning,
			Message: "not found",
			Fix:     "Run 'mbr config set --url URL' to create a profile",
		}
	}

	return CheckResult{
		Name:    "Configuration file",
		Status:  CheckOK,
		Message: fmt.Sprintf("found (%d profiles)", len(cli.Config.ProfileNames())),
	}
}

func (cli *CLI) checkKeyring() CheckResult {
	if err := cli.Keyring.IsAvailable(); err != nil {
		return CheckResult{
			Name:    "Keyring",
			Status:  CheckWarning,
			Message: fmt.Sprintf("unavailable: %v", err),
			Fix:     "Install a keyring service (gnome-keyring, kwallet, or macOS Keychain), or authenticate with an API key",
		}
	}

	var keyringType string
	switch cli.Keyring.(type) {
	case *keyring.FileStore:
		keyringType = "file-based (test mode)"
	default:
		keyringType = "OS keyring"
	}

	return CheckResult{
		Name:    "Keyring",
		Status:  CheckOK,
		Message: keyringType,
	}
}

func (cli *CLI) checkProfile() CheckResult {
	name := cli.Effective.Profile

	if err := config.ValidateURL(cli.Effective.URL); err != nil {
		return CheckResult{
			Name:    "Profile",
			Status:  CheckError,
			Message: fmt.Sprintf("%q has an invalid server URL: %v", name, err),
			Fix:     "Run 'mbr config set --url URL' to fix it",
		}
	}

	if !cli.Effective.ProfileStored {
		return CheckResult{
			Name:    "Profile",
			Status:  CheckWarning,
			Message: fmt.Sprintf("%q is not stored, using defaults (%s)", name, cli.Effective.URL),
			Fix:     "Run 'mbr config set --url URL' to store it",
		}
	}

	return CheckResult{
		Name:    "Profile",
		Status:  CheckOK,
		Message: fmt.Sprintf("%q -> %s", name, cli.Effective.URL),
	}
}

func (cli *CLI) checkServerHealth(ctx context.Context) CheckResult {
	if config.ValidateURL(cli.Effective.URL) != nil {
		return CheckResult{
			Name:    "Server",
			Status:  CheckSkipped,
			Message: "no valid server URL",
		}
	}

	client, _ := cli.remote()
	health := client.CheckHealth(ctx)
	if !health.Healthy() {
		return CheckResult{
			Name:    "Server",
			Status:  CheckError,
			Message: fmt.Sprintf("%s: %s", cli.Effective.URL, health.Message),
			Fix:     "Check that the Metabase server is running and the URL is correct",
		}
	}

	return CheckResult{
		Name:    "Server",
		Status:  CheckOK,
		Message: fmt.Sprintf("%s is reachable", cli.Effective.URL),
	}
}

func (cli *CLI) checkCredential(ctx context.Context) CheckResult {
	if config.ValidateURL(cli.Effective.URL) != nil {
		return CheckResult{
			Name:    "Credential",
			Status:  CheckSkipped,
			Message: "no valid server URL",
		}
	}

	_, manager := cli.remote()
	cred := manager.Credential()
	if cred == nil {
		return CheckResult{
			Name:    "Credential",
			Status:  CheckWarning,
			Message: "none configured",
			Fix:     "Run 'mbr auth login' or pass --api-key",
		}
	}

	user, err := manager.Validate(ctx)
	if err != nil {
		return CheckResult{
			Name:    "Credential",
			Status:  CheckError,
			Message: fmt.Sprintf("%s rejected: %v", cred.Kind(), err),
			Fix:     "Run 'mbr auth login' to re-authenticate",
		}
	}

	return CheckResult{
		Name:    "Credential",
		Status:  CheckOK,
		Message: fmt.Sprintf("%s accepted, authenticated as %s", cred.Kind(), user.Email),
	}
}
