package config

import "fmt"

// Environment variable names consumed during resolution.
const (
	EnvURL     = "MBR_URL"
	EnvAPIKey  = "MBR_API_KEY"
	EnvProfile = "MBR_PROFILE"
)

// Source identifies the layer that supplied a resolved field.
type Source string

const (
	SourceFlag    Source = "flag"
	SourceEnv     Source = "env"
	SourceProfile Source = "profile"
	SourceDefault Source = "default"
	SourceNone    Source = "none"
)

// MissingFieldError reports a required configuration field that no
// source (flag, environment variable, profile record, default) supplied.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required configuration field %q", e.Field)
}

// Hint returns remediation text shown alongside the error.
func (e *MissingFieldError) Hint() string {
	if e.Field == "api_key" {
		return "pass --api-key, export " + EnvAPIKey + ", or log in with 'mbr auth login'"
	}
	return fmt.Sprintf("set %s with 'mbr config set'", e.Field)
}

// Flags carries the explicit CLI overrides visible to Resolve.
type Flags struct {
	URL       string
	APIKey    string
	ConfigDir string
	Verbose   bool
}

// EffectiveConfig is the configuration resolved for one invocation.
// It is rebuilt on every run and never persisted.
type EffectiveConfig struct {
	Profile       string
	ProfileStored bool
	URL           string
	URLSource     Source
	APIKey        string
	APIKeySource  Source
	Email         string
	ConfigDir     string
	Verbose       bool
}

// ResolveProfileName picks the active profile for this invocation:
// the --profile flag, then MBR_PROFILE, then "default".
func ResolveProfileName(flagValue string, env map[string]string) string {
	if flagValue != "" {
		return flagValue
	}
	if name := env[EnvProfile]; name != "" {
		return name
	}
	return DefaultProfileName
}

// Resolve merges CLI flags, an environment snapshot, and the stored
// profile record into the effective configuration. Precedence per field,
// highest first: flag, environment variable, profile record, built-in
// default. Resolve performs no I/O; it reads only its arguments, so the
// result is deterministic for a given input set.
//
// When the selected profile has no stored record, an in-memory default
// record is substituted (ProfileStored reports the substitution); the
// store itself is never written here.
//
// The api_key field has no default and is absent from profile records
// (secrets stay out of the config file). When nothing supplies it,
// Resolve returns the otherwise-complete configuration together with a
// MissingFieldError: commands that never touch the network may proceed
// with the credential absent, remote-calling paths must treat the error
// as fatal unless a stored session token covers it.
func Resolve(flags Flags, env map[string]string, cfg *Config, profileName string) (EffectiveConfig, error) {
	if profileName == "" {
		profileName = ResolveProfileName("", env)
	}

	profile, stored := cfg.GetProfile(profileName)
	if !stored {
		profile = DefaultProfile()
	}

	ec := EffectiveConfig{
		Profile:       profileName,
		ProfileStored: stored,
		Email:         profile.Email,
		Verbose:       flags.Verbose,
	}

	switch {
	case flags.ConfigDir != "":
		ec.ConfigDir = flags.ConfigDir
	default:
		ec.ConfigDir = env[ConfigDirEnvVar]
	}

	switch {
	case flags.URL != "":
		ec.URL, ec.URLSource = flags.URL, SourceFlag
	case env[EnvURL] != "":
		ec.URL, ec.URLSource = env[EnvURL], SourceEnv
	case profile.URL != "":
		ec.URL, ec.URLSource = profile.URL, SourceProfile
	default:
		ec.URL, ec.URLSource = DefaultURL, SourceDefault
	}

	switch {
	case flags.APIKey != "":
		ec.APIKey, ec.APIKeySource = flags.APIKey, SourceFlag
	case env[EnvAPIKey] != "":
		ec.APIKey, ec.APIKeySource = env[EnvAPIKey], SourceEnv
	default:
		ec.APIKeySource = SourceNone
		return ec, &MissingFieldError{Field: "api_key"}
	}

	return ec, nil
}
