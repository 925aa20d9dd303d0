package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sambeau/quill/pkg/quill/settings"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Profile != ProfileSandbox {
		t.Errorf("expected default profile 'sandbox', got %q", cfg.Profile)
	}
	if cfg.Limits != settings.DefaultLimits() {
		t.Errorf("expected sandbox limits, got %+v", cfg.Limits)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level 'info', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestInterpolateEnv(t *testing.T) {
	getenv := func(key string) string {
		switch key {
		case "QUILL_LOCALE":
			return "de-DE"
		case "QUILL_DEPTH":
			return "40"
		default:
			return ""
		}
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple substitution",
			input:    "locale: ${QUILL_LOCALE}",
			expected: "locale: de-DE",
		},
		{
			name:     "with default (env set)",
			input:    "locale: ${QUILL_LOCALE:-en}",
			expected: "locale: de-DE",
		},
		{
			name:     "with default (env not set)",
			input:    "locale: ${UNSET_VAR:-en}",
			expected: "locale: en",
		},
		{
			name:     "multiple substitutions",
			input:    "pair: ${QUILL_LOCALE}/${QUILL_DEPTH}",
			expected: "pair: de-DE/40",
		},
		{
			name:     "no substitution needed",
			input:    "static: value",
			expected: "static: value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := string(interpolateEnv([]byte(tt.input), getenv))
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func writeConfig(t *testing.T, content string) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "quill.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return dir, path
}

func TestLoad(t *testing.T) {
	dir, configPath := writeConfig(t, `
locale: en-GB

limits:
  max_call_stack: 40
  max_loop_limit: -1

logging:
  level: debug
  format: json

scripts:
  - main.qs
  - lib/util.qs

history: .history
`)

	cfg, resolved, err := LoadWithPath(configPath, os.Getenv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %q, want %q", resolved, configPath)
	}
	if cfg.BaseDir != dir {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, dir)
	}

	// explicit keys override, the rest keep the sandbox values
	if cfg.Limits.MaxCallStack != 40 {
		t.Errorf("expected max_call_stack 40, got %d", cfg.Limits.MaxCallStack)
	}
	if cfg.Limits.HasMaxLoopLimit() {
		t.Errorf("expected unbounded loops, got %d", cfg.Limits.MaxLoopLimit)
	}
	if cfg.Limits.MaxStatements != 200 {
		t.Errorf("expected sandbox max_statements 200, got %d", cfg.Limits.MaxStatements)
	}

	if cfg.Locale != "en-GB" || cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected config: %+v", cfg)
	}

	wantScripts := []string{filepath.Join(dir, "main.qs"), filepath.Join(dir, "lib", "util.qs")}
	if len(cfg.Scripts) != 2 || cfg.Scripts[0] != wantScripts[0] || cfg.Scripts[1] != wantScripts[1] {
		t.Errorf("scripts = %q, want %q", cfg.Scripts, wantScripts)
	}
	if cfg.History != filepath.Join(dir, ".history") {
		t.Errorf("history = %q", cfg.History)
	}
}

func TestLoadUnboundedProfile(t *testing.T) {
	_, configPath := writeConfig(t, `
profile: unbounded
limits:
  max_script_length: ${QUILL_MAX_SCRIPT:-1000}
`)

	cfg, err := Load(configPath, func(string) string { return "" })
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Limits.MaxScriptLength != 1000 {
		t.Errorf("expected max_script_length 1000, got %d", cfg.Limits.MaxScriptLength)
	}
	if cfg.Limits.HasMaxCallStack() || cfg.Limits.HasMaxStatements() {
		t.Errorf("unbounded profile should leave other limits off: %+v", cfg.Limits)
	}

	cfg, err = Load(configPath, func(key string) string {
		if key == "QUILL_MAX_SCRIPT" {
			return "50"
		}
		return ""
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Limits.MaxScriptLength != 50 {
		t.Errorf("expected max_script_length 50, got %d", cfg.Limits.MaxScriptLength)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad profile", "profile: strict", "invalid profile"},
		{"bad limit", "limits:\n  max_call_stack: -5", "limits.max_call_stack"},
		{"bad locale", "locale: not_a_locale!", "invalid locale"},
		{"bad level", "logging:\n  level: loud", "invalid log level"},
		{"bad format", "logging:\n  format: xml", "invalid log format"},
		{"bad yaml", "limits: [", "failed to parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, configPath := writeConfig(t, tt.content)
			_, err := Load(configPath, os.Getenv)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestResolveConfigPath(t *testing.T) {
	_, configPath := writeConfig(t, "locale: fr\n")

	got, err := resolveConfigPath("", func(key string) string {
		if key == "QUILL_CONFIG" {
			return configPath
		}
		return ""
	})
	if err != nil || got != configPath {
		t.Errorf("QUILL_CONFIG: got %q, %v", got, err)
	}

	if _, err := resolveConfigPath(filepath.Join(t.TempDir(), "missing.yaml"), os.Getenv); err == nil {
		t.Error("missing explicit path should fail")
	}

	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	if _, err := resolveConfigPath("", func(string) string { return "" }); !errors.Is(err, ErrNoConfig) {
		t.Errorf("err = %v, want ErrNoConfig", err)
	}
}
