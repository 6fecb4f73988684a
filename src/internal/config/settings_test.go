package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/maksimkurb/apimanctl/src/internal/errors"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.Server.Address != DefaultAddress || s.Server.Version != DefaultServerVersion {
		t.Errorf("Unexpected server defaults: %+v", s.Server)
	}
	if s.Apply.Workers != DefaultWorkers {
		t.Errorf("Expected %d workers, got %d", DefaultWorkers, s.Apply.Workers)
	}
	if s.Timeout() != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %v", s.Timeout())
	}
	if s.Path() != "" {
		t.Errorf("Expected no settings path, got %q", s.Path())
	}
}

func TestLoadSettings_FileOverridesDefaults(t *testing.T) {
	path := writeSettings(t, `
[server]
address = "https://apiman.example.com/apiman"
version = "v11x"

[apply]
workers = 4
`)

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.Server.Address != "https://apiman.example.com/apiman" || s.Server.Version != "v11x" {
		t.Errorf("File values not applied: %+v", s.Server)
	}
	if s.Server.Username != DefaultUsername {
		t.Errorf("Expected untouched default username, got %q", s.Server.Username)
	}
	if s.Apply.Workers != 4 {
		t.Errorf("Expected 4 workers, got %d", s.Apply.Workers)
	}
	if s.Path() != path {
		t.Errorf("Expected path %q, got %q", path, s.Path())
	}
}

func TestLoadSettings_EnvOverridesFile(t *testing.T) {
	path := writeSettings(t, `
[server]
username = "from-file"
max_retries = 5
`)
	t.Setenv("APIMAN_SERVER_USERNAME", "from-env")
	t.Setenv("APIMAN_LOG_VERBOSE", "true")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.Server.Username != "from-env" {
		t.Errorf("Expected env username, got %q", s.Server.Username)
	}
	if s.Server.MaxRetries != 5 {
		t.Errorf("Expected file max_retries, got %d", s.Server.MaxRetries)
	}
	if !s.Log.Verbose {
		t.Error("Expected verbose from env")
	}
}

func TestLoadSettings_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		env      map[string]string
		contains string
	}{
		{
			name:     "invalid toml",
			content:  "[server\naddress = 1",
			contains: "line 1",
		},
		{
			name:     "unknown key",
			content:  "[server]\nendpoint = \"http://x\"",
			contains: "unknown keys",
		},
		{
			name:     "bad version",
			content:  "[server]\nversion = \"v13x\"",
			contains: "server.version: must be one of: v11x v12x",
		},
		{
			name:     "bad address",
			content:  "[server]\naddress = \"not a url\"",
			contains: "server.address: must be a valid URL",
		},
		{
			name:     "bad env value",
			content:  "",
			env:      map[string]string{"APIMAN_APPLY_WORKERS": "many"},
			contains: "environment",
		},
		{
			name:     "env fails validation",
			content:  "",
			env:      map[string]string{"APIMAN_APPLY_WORKERS": "0"},
			contains: "apply.workers: must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadSettings(writeSettings(t, tt.content))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !apperrors.HasCode(err, apperrors.ErrCodeConfig) {
				t.Errorf("Expected CONFIG_ERROR, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("Expected error to contain %q, got %v", tt.contains, err)
			}
		})
	}
}

func TestLoadSettings_MissingFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil || !strings.Contains(err.Error(), "settings file not found") {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	s := DefaultSettings()
	s.Server.Address = ""
	s.Server.TimeoutSeconds = 0
	s.Apply.Workers = 100

	err := s.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	for _, want := range []string{"server.address", "server.timeout_seconds", "apply.workers: must be at most 64"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected %q in %v", want, err)
		}
	}
}

func TestLoadSettings_PropertiesFileRelativeToSettings(t *testing.T) {
	path := writeSettings(t, "[apply]\nproperties_file = \"values.properties\"\n")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := filepath.Join(filepath.Dir(path), "values.properties")
	if s.Apply.PropertiesFile != want {
		t.Errorf("Expected %q, got %q", want, s.Apply.PropertiesFile)
	}
}
