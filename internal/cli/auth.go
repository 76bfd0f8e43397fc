package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mbrcli/mbr/internal/config"
	"github.com/mbrcli/mbr/internal/utils"
)

// Environment variables consumed by the login input resolution.
const (
	envUsername = "MBR_USERNAME"
	envPassword = "MBR_PASSWORD"
)

// authLoginOutput represents login output for JSON.
type authLoginOutput struct {
	Profile  string `json:"profile"`
	URL      string `json:"url"`
	Username string `json:"username"`
}

// authLogoutOutput represents logout output for JSON.
type authLogoutOutput struct {
	Profile        string `json:"profile"`
	SessionCleared bool   `json:"session_cleared"`
	APIKeyMode     bool   `json:"api_key_mode"`
}

// authStatusOutput represents auth status output for JSON.
type authStatusOutput struct {
	Profile    string                `json:"profile"`
	URL        string                `json:"url"`
	Keyring    keyringValidation     `json:"keyring"`
	Credential *credentialStatusInfo `json:"credential,omitempty"`
	Valid      bool                  `json:"valid"`
	User       *userStatusInfo       `json:"user,omitempty"`
	Error      string                `json:"error,omitempty"`
}

// credentialStatusInfo describes the credential in use without exposing it.
type credentialStatusInfo struct {
	Kind   string `json:"kind"`
	Source string `json:"source"`
	Masked string `json:"masked"`
}

// userStatusInfo represents the validated identity for JSON.
type userStatusInfo struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Superuser bool   `json:"superuser,omitempty"`
}

// newAuthCmd creates the auth command group.
func (cli *CLI) newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication for the active profile",
		Long: `Manage authentication for the active profile.

Use 'mbr auth login' to obtain a session with username and password.
Use 'mbr auth logout' to end the session and clear the stored token.
Use 'mbr auth status' to check the credential against the server.

An API key passed with --api-key or MBR_API_KEY always takes precedence
over a stored session.`,
	}

	cmd.AddCommand(
		cli.newAuthLoginCmd(),
		cli.newAuthLogoutCmd(),
		cli.newAuthStatusCmd(),
	)

	return cmd
}

// newAuthLoginCmd creates the auth login command.
func (cli *CLI) newAuthLoginCmd() *cobra.Command {
	var usernameFlag, passwordFlag string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token in the system keyring",
		Long: `Log in to the Metabase server with username and password and store
the returned session token in the system keyring.

The username comes from --username, then MBR_USERNAME, then the
profile's stored email, then an interactive prompt. The password comes
from --password, then MBR_PASSWORD, then an interactive no-echo prompt.
A set but empty environment variable is an error, not a fallthrough.

Examples:
  # Interactive login with the profile's stored email
  mbr auth login

  # Non-interactive login
  MBR_PASSWORD=secret mbr auth login --username me@example.com

  # Log in to a specific profile
  mbr auth login --profile staging`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseOutputFormat(cli.outputFlag)
			if err != nil {
				return err
			}
			return cli.runAuthLogin(cmd.Context(), format, usernameFlag, passwordFlag)
		},
	}

	cmd.Flags().StringVar(&usernameFlag, "username", "", "Login username (fallback: MBR_USERNAME, then profile email)")
	cmd.Flags().StringVar(&passwordFlag, "password", "", "Login password (fallback: MBR_PASSWORD, then prompt)")

	return cmd
}

// runAuthLogin handles the login command execution.
func (cli *CLI) runAuthLogin(ctx context.Context, format OutputFormat, usernameFlag, passwordFlag string) error {
	if err := config.ValidateURL(cli.Effective.URL); err != nil {
		return err
	}
	if err := cli.Keyring.IsAvailable(); err != nil {
		return fmt.Errorf("cannot store session token: %w", err)
	}

	env := utils.EnvMap(os.Environ())

	username, err := cli.resolveUsername(usernameFlag, env)
	if err != nil {
		return err
	}
	password, err := resolvePassword(passwordFlag, env)
	if err != nil {
		return err
	}

	_, manager := cli.remote()
	err = withSpinner("Logging in...", func() error {
		return manager.Login(ctx, username, password)
	})
	if err != nil {
		return err
	}

	output := authLoginOutput{
		Profile:  cli.Effective.Profile,
		URL:      cli.Effective.URL,
		Username: username,
	}

	writer := NewOutputWriter(format)
	return writer.Write(output, func(w io.Writer) {
		fmt.Fprintf(w, "Logged in to %s as %s (profile %q)\n", output.URL, output.Username, output.Profile)
		if cli.Effective.APIKey != "" {
			fmt.Fprintln(w, "Note: an API key is configured; it takes precedence over the stored session.")
		}
	})
}

// resolveUsername picks the login username: flag, MBR_USERNAME, profile
// email, interactive prompt.
func (cli *CLI) resolveUsername(flagValue string, env map[string]string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if value, set := env[envUsername]; set {
		if value == "" {
			return "", &ArgError{
				Reason: envUsername + " is set but empty",
				Advice: "give it a value or unset it",
			}
		}
		return value, nil
	}
	if cli.Effective.Email != "" {
		return cli.Effective.Email, nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", &ArgError{
			Reason: "no username available and stdin is not a terminal",
			Advice: "pass --username, set " + envUsername + ", or store an email with 'mbr config set --email'",
		}
	}

	fmt.Fprint(os.Stderr, "Username: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read username: %w", err)
	}
	username := strings.TrimSpace(line)
	if username == "" {
		return "", &ArgError{Reason: "username is required"}
	}
	return username, nil
}

// resolvePassword picks the login password: flag, MBR_PASSWORD, no-echo
// prompt.
func resolvePassword(flagValue string, env map[string]string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if value, set := env[envPassword]; set {
		if value == "" {
			return "", &ArgError{
				Reason: envPassword + " is set but empty",
				Advice: "give it a value or unset it",
			}
		}
		return value, nil
	}

	stdinFd := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFd) {
		return "", &ArgError{
			Reason: "no password available and stdin is not a terminal",
			Advice: "pass --password or set " + envPassword,
		}
	}

	fmt.Fprint(os.Stderr, "Password: ")
	passwordBytes, err := term.ReadPassword(stdinFd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if len(passwordBytes) == 0 {
		return "", &ArgError{Reason: "password is required"}
	}
	return string(passwordBytes), nil
}

// newAuthLogoutCmd creates the auth logout command.
func (cli *CLI) newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear the stored token",
		Long: `End the server-side session and clear the stored session token for
the active profile.

The server call is best-effort; the local token is cleared either way.
Logging out twice is not an error.

Examples:
  # Log out of the default profile
  mbr auth logout

  # Log out of a specific profile
  mbr auth logout --profile staging`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseOutputFormat(cli.outputFlag)
			if err != nil {
				return err
			}
			return cli.runAuthLogout(cmd.Context(), format)
		},
	}
}

// runAuthLogout handles the logout command execution.
func (cli *CLI) runAuthLogout(ctx context.Context, format OutputFormat) error {
	_, manager := cli.remote()

	output := authLogoutOutput{
		Profile:    cli.Effective.Profile,
		APIKeyMode: cli.Effective.APIKey != "",
	}

	if manager.HasStoredSession() {
		if err := manager.EndSession(ctx); err != nil {
			cli.warnf("failed to end server session: %v", err)
		}
		if err := manager.Invalidate(); err != nil {
			return fmt.Errorf("failed to clear session token: %w", err)
		}
		output.SessionCleared = true
	}

	writer := NewOutputWriter(format)
	return writer.Write(output, func(w io.Writer) {
		switch {
		case output.SessionCleared:
			fmt.Fprintf(w, "Logged out from profile %q\n", output.Profile)
		case output.APIKeyMode:
			fmt.Fprintf(w, "Profile %q authenticates with an API key; there is no stored session to clear.\n", output.Profile)
			fmt.Fprintf(w, "Unset %s or drop --api-key to stop using it.\n", config.EnvAPIKey)
		default:
			fmt.Fprintf(w, "No stored session for profile %q\n", output.Profile)
		}
	})
}

// newAuthStatusCmd creates the auth status command.
func (cli *CLI) newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the credential state for the active profile",
		Long: `Show which credential the active profile resolves to, where it came
from, and whether the server accepts it.

Examples:
  # Check the default profile
  mbr auth status

  # Machine-readable status
  mbr auth status -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseOutputFormat(cli.outputFlag)
			if err != nil {
				return err
			}
			return cli.runAuthStatus(cmd.Context(), format)
		},
	}
}

// runAuthStatus handles the auth status command execution.
func (cli *CLI) runAuthStatus(ctx context.Context, format OutputFormat) error {
	writer := NewOutputWriter(format)

	status := authStatusOutput{
		Profile: cli.Effective.Profile,
		URL:     cli.Effective.URL,
	}

	if err := cli.Keyring.IsAvailable(); err != nil {
		status.Keyring.Error = err.Error()
	} else {
		status.Keyring.Available = true
	}

	_, manager := cli.remote()
	cred := manager.Credential()
	if cred == nil {
		return writer.Write(status, func(w io.Writer) {
			cli.printAuthStatusHeader(w, status)
			fmt.Fprintln(w, "Credential: none")
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Run 'mbr auth login' or pass --api-key to authenticate.")
		})
	}

	status.Credential = &credentialStatusInfo{
		Kind:   cred.Kind(),
		Source: credentialSource(cli.Effective, cred.Kind()),
		Masked: utils.Mask(cred.Secret()),
	}

	var validateErr error
	err := withSpinner("Checking credential...", func() error {
		user, err := manager.Validate(ctx)
		if err != nil {
			validateErr = err
			return nil
		}
		status.Valid = true
		status.User = &userStatusInfo{
			ID:        user.ID,
			Email:     user.Email,
			Name:      user.DisplayName(),
			Superuser: user.IsSuperuser,
		}
		return nil
	})
	if err != nil {
		return err
	}
	if validateErr != nil {
		status.Error = validateErr.Error()
	}

	return writer.Write(status, func(w io.Writer) {
		cli.printAuthStatusHeader(w, status)
		fmt.Fprintf(w, "Credential: %s (%s, from %s)\n", status.Credential.Kind, status.Credential.Masked, status.Credential.Source)
		fmt.Fprintln(w)
		if status.Valid {
			fmt.Fprintf(w, "Authenticated as %s (%s)\n", status.User.Name, status.User.Email)
		} else {
			fmt.Fprintf(w, "Credential check failed: %s\n", status.Error)
			fmt.Fprintln(w, "Run 'mbr auth login' to re-authenticate.")
		}
	})
}

// printAuthStatusHeader writes the profile and keyring lines shared by
// every status rendering.
func (cli *CLI) printAuthStatusHeader(w io.Writer, status authStatusOutput) {
	fmt.Fprintf(w, "Profile: %s\n", status.Profile)
	fmt.Fprintf(w, "URL:     %s\n", status.URL)
	if status.Keyring.Available {
		fmt.Fprintln(w, "Keyring: available")
	} else {
		fmt.Fprintf(w, "Keyring: unavailable (%s)\n", status.Keyring.Error)
	}
	fmt.Fprintln(w)
}

// credentialSource names where the active credential came from.
func credentialSource(ec config.EffectiveConfig, kind string) string {
	if kind == "api-key" {
		return string(ec.APIKeySource)
	}
	return "keyring"
}
