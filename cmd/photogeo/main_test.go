package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NERVsystems/photogeo/pkg/config"
)

func TestGenerateClientConfig(t *testing.T) {
	tmpDir := t.TempDir()

	// Change to temp directory for relative path tests
	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}
	defer os.Chdir(oldDir)
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}

	tests := []struct {
		name      string
		path      string
		existing  map[string]any
		mergeOnly bool
		wantErr   bool
	}{
		{
			name: "valid path",
			path: "config.json",
		},
		{
			name: "nested path",
			path: filepath.Join("sub", "dir", "config.json"),
		},
		{
			name:    "empty path",
			path:    "",
			wantErr: true,
		},
		{
			name:    "non-json extension",
			path:    "config.txt",
			wantErr: true,
		},
		{
			name:    "path with ..",
			path:    filepath.Join("..", "config.json"),
			wantErr: true,
		},
		{
			name:      "merge with existing",
			path:      "merge.json",
			existing:  map[string]any{"existing_key": "existing_value"},
			mergeOnly: true,
		},
		{
			name:      "merge without existing",
			path:      "missing.json",
			mergeOnly: true,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.existing != nil {
				data, err := json.Marshal(tt.existing)
				if err != nil {
					t.Fatalf("Failed to marshal existing config: %v", err)
				}
				if err := os.WriteFile(tt.path, data, 0644); err != nil {
					t.Fatalf("Failed to write existing config: %v", err)
				}
			}

			err := generateClientConfig(tt.path, tt.mergeOnly)
			if (err != nil) != tt.wantErr {
				t.Fatalf("generateClientConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			info, err := os.Stat(tt.path)
			if err != nil {
				t.Fatalf("Failed to stat config file: %v", err)
			}
			if mode := info.Mode().Perm(); mode != 0600 {
				t.Errorf("Config file has wrong permissions: %v, want 0600", mode)
			}

			data, err := os.ReadFile(tt.path)
			if err != nil {
				t.Fatalf("Failed to read config file: %v", err)
			}
			var cfg map[string]any
			if err := json.Unmarshal(data, &cfg); err != nil {
				t.Fatalf("Failed to parse config JSON: %v", err)
			}

			servers, ok := cfg["mcpServers"].(map[string]any)
			if !ok {
				t.Fatal("Config missing 'mcpServers' section")
			}
			entry, ok := servers["photogeo"].(map[string]any)
			if !ok {
				t.Fatal("Config missing 'photogeo' server")
			}
			if cmd, _ := entry["command"].(string); !filepath.IsAbs(cmd) {
				t.Errorf("command %q is not absolute", cmd)
			}

			if tt.existing != nil {
				if val, ok := cfg["existing_key"]; !ok || val != "existing_value" {
					t.Error("Merge failed to preserve existing content")
				}
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)

	newLogger(&buf, "json", level).Info("hello", "k", "v")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("json format produced %q", buf.String())
	}

	buf.Reset()
	newLogger(&buf, "text", level).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug line written at info level: %q", buf.String())
	}
	level.Set(slog.LevelDebug)
	newLogger(&buf, "text", level).Debug("shown")
	if !strings.Contains(buf.String(), "msg=shown") {
		t.Errorf("text format produced %q", buf.String())
	}
}

func TestSetLevel(t *testing.T) {
	level := new(slog.LevelVar)
	cfg := config.Default()

	cfg.Log.Level = "warn"
	setLevel(level, cfg)
	if level.Level() != slog.LevelWarn {
		t.Errorf("level = %v, want WARN", level.Level())
	}

	cfg.Log.Level = "bogus"
	setLevel(level, cfg)
	if level.Level() != slog.LevelInfo {
		t.Errorf("level = %v, want INFO fallback", level.Level())
	}
}
