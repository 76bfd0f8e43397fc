package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestGetPaths(t *testing.T) {
	paths := GetPaths()

	if paths.ConfigDir == "" {
		t.Error("ConfigDir should not be empty")
	}
	if paths.ConfigFile == "" {
		t.Error("ConfigFile should not be empty")
	}

	// ConfigFile should be within ConfigDir
	if !strings.HasPrefix(paths.ConfigFile, paths.ConfigDir) {
		t.Errorf("ConfigFile %s should be within ConfigDir %s", paths.ConfigFile, paths.ConfigDir)
	}

	// ConfigFile should end with config.toml
	if filepath.Base(paths.ConfigFile) != ConfigFileName {
		t.Errorf("ConfigFile should end with %s, got %s", ConfigFileName, filepath.Base(paths.ConfigFile))
	}
}

func TestGetPathsWithEnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	oldEnv := os.Getenv(ConfigDirEnvVar)
	os.Setenv(ConfigDirEnvVar, tmpDir)
	defer os.Setenv(ConfigDirEnvVar, oldEnv)

	paths := GetPaths()

	if paths.ConfigDir != tmpDir {
		t.Errorf("expected ConfigDir %s, got %s", tmpDir, paths.ConfigDir)
	}
}

func TestPathsIn(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "custom")
	paths := PathsIn(dir)

	if paths.ConfigDir != dir {
		t.Errorf("expected ConfigDir %s, got %s", dir, paths.ConfigDir)
	}
	if paths.ConfigFile != filepath.Join(dir, ConfigFileName) {
		t.Errorf("expected ConfigFile under %s, got %s", dir, paths.ConfigFile)
	}
}

func TestPathsInEmptyFallsBackToDefault(t *testing.T) {
	tmpDir := t.TempDir()
	oldEnv := os.Getenv(ConfigDirEnvVar)
	os.Setenv(ConfigDirEnvVar, tmpDir)
	defer os.Setenv(ConfigDirEnvVar, oldEnv)

	paths := PathsIn("")
	if paths.ConfigDir != tmpDir {
		t.Errorf("PathsIn(\"\") should resolve the default dir %s, got %s", tmpDir, paths.ConfigDir)
	}
}

func TestGetPathsXDGConfigHome(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG not applicable on Windows")
	}

	tmpDir := t.TempDir()
	oldEnv := os.Getenv("XDG_CONFIG_HOME")
	oldOverride := os.Getenv(ConfigDirEnvVar)
	os.Setenv("XDG_CONFIG_HOME", tmpDir)
	os.Unsetenv(ConfigDirEnvVar)
	defer func() {
		os.Setenv("XDG_CONFIG_HOME", oldEnv)
		os.Setenv(ConfigDirEnvVar, oldOverride)
	}()

	paths := GetPaths()

	expected := filepath.Join(tmpDir, AppName)
	if paths.ConfigDir != expected {
		t.Errorf("expected ConfigDir %s, got %s", expected, paths.ConfigDir)
	}
}

func TestGetConfigDirPlatformSpecific(t *testing.T) {
	envVars := []string{ConfigDirEnvVar, "XDG_CONFIG_HOME", "HOME", "APPDATA", "USERPROFILE"}
	oldVals := make(map[string]string)
	for _, env := range envVars {
		oldVals[env] = os.Getenv(env)
		os.Unsetenv(env)
	}
	defer func() {
		for env, val := range oldVals {
			if val != "" {
				os.Setenv(env, val)
			} else {
				os.Unsetenv(env)
			}
		}
	}()

	tests := []struct {
		name        string
		goos        string
		envSetup    map[string]string
		expectedDir string
	}{
		{
			name: "windows with APPDATA",
			goos: "windows",
			envSetup: map[string]string{
				"APPDATA": "C:\\Users\\test\\AppData\\Roaming",
			},
			expectedDir: filepath.Join("C:\\Users\\test\\AppData\\Roaming", AppName),
		},
		{
			name: "windows with USERPROFILE fallback",
			goos: "windows",
			envSetup: map[string]string{
				"USERPROFILE": "C:\\Users\\test",
			},
			expectedDir: filepath.Join("C:\\Users\\test", "AppData", "Roaming", AppName),
		},
		{
			name: "darwin with XDG_CONFIG_HOME",
			goos: "darwin",
			envSetup: map[string]string{
				"XDG_CONFIG_HOME": "/tmp/xdg",
			},
			expectedDir: filepath.Join("/tmp/xdg", AppName),
		},
		{
			name: "darwin with HOME only",
			goos: "darwin",
			envSetup: map[string]string{
				"HOME": "/Users/test",
			},
			expectedDir: filepath.Join("/Users/test", "Library", "Application Support", AppName),
		},
		{
			name: "linux with XDG_CONFIG_HOME",
			goos: "linux",
			envSetup: map[string]string{
				"XDG_CONFIG_HOME": "/home/test/.config",
			},
			expectedDir: filepath.Join("/home/test/.config", AppName),
		},
		{
			name: "linux with HOME fallback",
			goos: "linux",
			envSetup: map[string]string{
				"HOME": "/home/test",
			},
			expectedDir: filepath.Join("/home/test", ".config", AppName),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if runtime.GOOS != tt.goos {
				t.Skipf("skipping %s test on %s", tt.goos, runtime.GOOS)
			}

			for _, env := range envVars {
				os.Unsetenv(env)
			}
			for k, v := range tt.envSetup {
				os.Setenv(k, v)
			}

			dir := getConfigDir()
			if dir != tt.expectedDir {
				t.Errorf("getConfigDir() = %s, expected %s", dir, tt.expectedDir)
			}
		})
	}
}

func TestGetConfigDirUltimateFallback(t *testing.T) {
	envVars := []string{ConfigDirEnvVar, "XDG_CONFIG_HOME", "HOME", "APPDATA", "USERPROFILE"}
	oldVals := make(map[string]string)
	for _, env := range envVars {
		oldVals[env] = os.Getenv(env)
		os.Unsetenv(env)
	}
	defer func() {
		for env, val := range oldVals {
			if val != "" {
				os.Setenv(env, val)
			}
		}
	}()

	dir := getConfigDir()
	expected := filepath.Join(".", "."+AppName)
	if dir != expected {
		t.Errorf("getConfigDir() should fall back to %s when all env vars missing, got %s", expected, dir)
	}
}

func TestEnsureDirs(t *testing.T) {
	tmpDir := t.TempDir()
	paths := PathsIn(filepath.Join(tmpDir, "config"))

	if err := paths.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs() failed: %v", err)
	}

	info, err := os.Stat(paths.ConfigDir)
	if err != nil {
		t.Fatalf("directory %s should exist: %v", paths.ConfigDir, err)
	}
	if !info.IsDir() {
		t.Fatalf("%s should be a directory", paths.ConfigDir)
	}
	if runtime.GOOS != "windows" {
		if perm := info.Mode().Perm(); perm != 0700 {
			t.Errorf("directory should have 0700 permissions, got %o", perm)
		}
	}

	// Second call is idempotent
	if err := paths.EnsureDirs(); err != nil {
		t.Errorf("second EnsureDirs() failed: %v", err)
	}
}

func TestEnsureDirsError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Permission tests are unreliable on Windows")
	}

	tmpDir := t.TempDir()

	// Create a file where we'll try to create a directory
	filePath := filepath.Join(tmpDir, "blockingfile")
	if err := os.WriteFile(filePath, []byte("test"), 0600); err != nil {
		t.Fatalf("failed to create blocking file: %v", err)
	}

	paths := PathsIn(filepath.Join(filePath, "config"))
	if err := paths.EnsureDirs(); err == nil {
		t.Error("EnsureDirs() should fail when directory cannot be created")
	}
}
