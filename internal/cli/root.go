// Package cli implements the mbr command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mbrcli/mbr/internal/api"
	"github.com/mbrcli/mbr/internal/auth"
	"github.com/mbrcli/mbr/internal/config"
	"github.com/mbrcli/mbr/internal/keyring"
	"github.com/mbrcli/mbr/internal/profile"
	"github.com/mbrcli/mbr/internal/utils"
)

// CLI holds the application state for the command tree.
type CLI struct {
	Config    *config.Config
	Keyring   keyring.Store
	Effective config.EffectiveConfig
	Profiles  *profile.Manager

	paths   config.Paths
	rootCmd *cobra.Command

	// Flags
	profileFlag   string
	urlFlag       string
	apiKeyFlag    string
	configDirFlag string
	verboseFlag   bool
	outputFlag    string

	// Failures deferred from initialize: offline commands tolerate a
	// missing credential, and validate/doctor report a broken store as
	// a finding instead of dying before they run.
	loadErr    error
	resolveErr error
}

// New creates a new CLI instance.
func New() *CLI {
	cli := &CLI{
		Keyring: keyring.DefaultStore(),
	}

	cli.rootCmd = &cobra.Command{
		Use:   "mbr [command]",
		Short: "mbr - Metabase from your terminal",
		Long: `mbr is a command line client for Metabase.

It runs saved questions, browses collections and databases, and pages
results interactively, using the same profiles and credentials across
invocations.

Authentication uses an API key (--api-key or MBR_API_KEY) or a session
obtained with 'mbr auth login' and kept in the system keyring.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.initialize(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Global flags
	cli.rootCmd.PersistentFlags().StringVarP(&cli.profileFlag, "profile", "p", "", "Profile to use (fallback: MBR_PROFILE, default \"default\")")
	cli.rootCmd.PersistentFlags().StringVar(&cli.urlFlag, "url", "", "Metabase server URL (fallback: MBR_URL)")
	cli.rootCmd.PersistentFlags().StringVar(&cli.apiKeyFlag, "api-key", "", "API key (fallback: MBR_API_KEY)")
	cli.rootCmd.PersistentFlags().StringVar(&cli.configDirFlag, "config-dir", "", "Configuration directory (fallback: MBR_CONFIG_DIR)")
	cli.rootCmd.PersistentFlags().BoolVarP(&cli.verboseFlag, "verbose", "v", false, "Enable verbose output")
	cli.rootCmd.PersistentFlags().StringVarP(&cli.outputFlag, "output", "o", "text", "Output format for management commands (text, json)")

	cli.addCommands()

	return cli
}

// addCommands adds all subcommands to the root command.
func (cli *CLI) addCommands() {
	cli.rootCmd.AddCommand(
		cli.newVersionCmd(),
		cli.newConfigCmd(),
		cli.newProfileCmd(),
		cli.newAuthCmd(),
		cli.newQueryCmd(),
		cli.newCollectionCmd(),
		cli.newDatabaseCmd(),
		cli.newDoctorCmd(),
		cli.newCompletionCmd(),
	)
}

// initialize loads the config store and resolves the effective
// configuration for the active profile.
func (cli *CLI) initialize(cmd *cobra.Command) error {
	// Version and completion read nothing.
	if skipInitialization(cmd.Name()) {
		return nil
	}

	if _, err := ParseOutputFormat(cli.outputFlag); err != nil {
		return err
	}

	env := utils.EnvMap(os.Environ())
	cli.paths = config.PathsIn(cli.configDirFlag)

	cfg, err := config.LoadFrom(cli.paths.ConfigFile)
	if err != nil {
		// Keep going with an empty store so validate and doctor can
		// report the failure instead of dying here.
		cli.loadErr = &storeError{err: err}
		cli.warnf("config file unreadable: %v", err)
		cfg = config.Default()
	}
	cli.Config = cfg

	profileName := config.ResolveProfileName(cli.profileFlag, env)
	flags := config.Flags{
		URL:       cli.urlFlag,
		APIKey:    cli.apiKeyFlag,
		ConfigDir: cli.configDirFlag,
		Verbose:   cli.verboseFlag,
	}
	cli.Effective, cli.resolveErr = config.Resolve(flags, env, cfg, profileName)
	if cli.Effective.ConfigDir == "" {
		cli.Effective.ConfigDir = cli.paths.ConfigDir
	}

	cli.Profiles = profile.NewManager(cfg, cli.Keyring, profileName)

	return nil
}

// skipInitialization reports commands that run without any state.
func skipInitialization(name string) bool {
	return name == "version" || name == "completion"
}

// Execute runs the CLI.
func (cli *CLI) Execute(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

// requireStore surfaces a config store failure deferred by initialize.
// Commands that report store problems as findings skip this.
func (cli *CLI) requireStore() error {
	return cli.loadErr
}

// remote builds an API client for the active profile with the best
// available credential attached (resolved API key, else stored session).
func (cli *CLI) remote() (*api.Client, *auth.Manager) {
	client := api.New(cli.Effective.URL, nil)
	manager := auth.NewManager(client, cli.Keyring, cli.Effective.Profile)
	manager.LoadCredential(cli.Effective.APIKey)
	return client, manager
}

// authenticated is remote plus the precondition that a credential exists.
// Server URL and credential are both checked before any network call.
func (cli *CLI) authenticated() (*api.Client, *auth.Manager, error) {
	if err := cli.requireStore(); err != nil {
		return nil, nil, err
	}
	if err := config.ValidateURL(cli.Effective.URL); err != nil {
		return nil, nil, err
	}
	client, manager := cli.remote()
	if manager.Credential() == nil {
		return nil, nil, &auth.MissingCredentialError{Profile: cli.Effective.Profile}
	}
	return client, manager, nil
}

// withSpinner runs fn behind a stderr progress spinner when stderr is a
// terminal, so piped output stays clean.
func withSpinner(message string, fn func() error) error {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return fn()
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	s.Start()
	defer s.Stop()

	return fn()
}

// warnf prints a diagnostic line on stderr when --verbose is set.
func (cli *CLI) warnf(format string, args ...any) {
	if !cli.verboseFlag {
		return
	}
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}
