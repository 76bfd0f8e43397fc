//go:build integration

// Package integration provides end-to-end tests that drive the mbr
// binary against a live Metabase server.
package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/mbrcli/mbr/internal/utils"
)

// TestEnv describes the Metabase instance the tests run against.
type TestEnv struct {
	Address  string
	Username string
	Password string
	APIKey   string
}

// MetabaseTestEnv returns the test environment described by the
// MBR_TEST_* variables, with a local default address.
func MetabaseTestEnv() *TestEnv {
	addr := os.Getenv("MBR_TEST_ADDR")
	if addr == "" {
		addr = "http://127.0.0.1:3000"
	}
	return &TestEnv{
		Address:  addr,
		Username: os.Getenv("MBR_TEST_USERNAME"),
		Password: os.Getenv("MBR_TEST_PASSWORD"),
		APIKey:   os.Getenv("MBR_TEST_API_KEY"),
	}
}

// IsAvailable checks if the server answers its health endpoint.
func (e *TestEnv) IsAvailable() bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(e.Address + "/api/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// WaitForReady waits for the server to answer its health endpoint.
func (e *TestEnv) WaitForReady(ctx context.Context) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("metabase not ready: %w", ctx.Err())
		case <-ticker.C:
			if e.IsAvailable() {
				return nil
			}
		}
	}
}

// SkipIfNotAvailable skips the test if the server is not reachable.
func (e *TestEnv) SkipIfNotAvailable(t *testing.T) {
	t.Helper()
	if !e.IsAvailable() {
		t.Skipf("metabase test server not available at %s", e.Address)
	}
}

// SkipIfNoLogin skips the test unless login credentials are configured.
func (e *TestEnv) SkipIfNoLogin(t *testing.T) {
	t.Helper()
	if e.Username == "" || e.Password == "" {
		t.Skip("MBR_TEST_USERNAME and MBR_TEST_PASSWORD not set")
	}
}

// SkipIfNoAPIKey skips the test unless an API key is configured.
func (e *TestEnv) SkipIfNoAPIKey(t *testing.T) {
	t.Helper()
	if e.APIKey == "" {
		t.Skip("MBR_TEST_API_KEY not set")
	}
}

// MbrBinaryPath returns the path to the mbr binary under test.
func MbrBinaryPath(t *testing.T) string {
	t.Helper()

	if path := os.Getenv("MBR_BINARY"); path != "" {
		return path
	}

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to get caller information")
	}

	// Go up from test/integration to the project root
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	binaryPath := filepath.Join(projectRoot, "bin", "mbr")

	if runtime.GOOS == "windows" {
		binaryPath += ".exe"
	}

	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Fatalf("mbr binary not found at %s - run 'make build' first", binaryPath)
	}

	return binaryPath
}

// TestHome is an isolated home for one test: its own config directory
// and a file-based keyring, so nothing leaks into the real environment.
type TestHome struct {
	Dir        string
	ConfigDir  string
	KeyringDir string
	env        []string
}

// NewTestHome creates an isolated home. When address is non-empty a
// config file with a default profile pointing at it is written.
func NewTestHome(t *testing.T, address string) *TestHome {
	t.Helper()

	dir := t.TempDir()
	configDir := filepath.Join(dir, "config", "mbr")
	keyringDir := filepath.Join(dir, "keyring")
	for _, d := range []string{configDir, keyringDir} {
		if err := os.MkdirAll(d, 0700); err != nil {
			t.Fatalf("failed to create %s: %v", d, err)
		}
	}

	if address != "" {
		configContent := "[profiles.default]\nurl = \"" + address + "\"\n"
		configFile := filepath.Join(configDir, "config.toml")
		if err := os.WriteFile(configFile, []byte(configContent), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
	}

	env := os.Environ()
	env = utils.SetEnv(env, "HOME", dir)
	env = utils.SetEnv(env, "XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	env = utils.SetEnv(env, "MBR_CONFIG_DIR", configDir)
	env = utils.SetEnv(env, "MBR_TEST_KEYRING_DIR", keyringDir)

	return &TestHome{
		Dir:        dir,
		ConfigDir:  configDir,
		KeyringDir: keyringDir,
		env:        env,
	}
}

// Setenv sets an environment variable for subsequent Run calls.
func (h *TestHome) Setenv(key, value string) {
	h.env = utils.SetEnv(h.env, key, value)
}

// WriteConfig replaces the config file content.
func (h *TestHome) WriteConfig(t *testing.T, content string) {
	t.Helper()
	configFile := filepath.Join(h.ConfigDir, "config.toml")
	if err := os.WriteFile(configFile, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

// Run executes the mbr binary inside the test home.
func (h *TestHome) Run(ctx context.Context, t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.CommandContext(ctx, MbrBinaryPath(t), args...)
	cmd.Env = h.env

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// exitCode extracts the process exit code from a Run error. A nil error
// is exit 0.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
