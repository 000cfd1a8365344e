package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// freePort returns a TCP port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func offlineConfig(t *testing.T, dbPath string) string {
	t.Helper()
	return writeConfig(t, fmt.Sprintf(`
database:
  path: %q
mqtt:
  enabled: false
influxdb:
  enabled: false
api:
  host: "127.0.0.1"
  port: %d
logging:
  level: error
  format: text
`, dbPath, freePort(t)))
}

func TestRun_InvalidConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, []string{"-config", "/nonexistent/path/config.yaml"})
	if err == nil {
		t.Fatal("run() should fail with an explicit config path that does not exist")
	}
	if !strings.Contains(err.Error(), "loading config") {
		t.Errorf("error = %v, want loading config error", err)
	}
}

func TestRun_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "api: [not: a map")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx, []string{"-config", path}); err == nil {
		t.Fatal("run() should fail with malformed YAML")
	}
}

func TestRun_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
mqtt:
  enabled: false
api:
  port: 0
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, []string{"-config", path})
	if err == nil {
		t.Fatal("run() should reject port 0")
	}
	if !strings.Contains(err.Error(), "api.port") {
		t.Errorf("error = %v, want api.port validation error", err)
	}
}

func TestRun_UnknownFlag(t *testing.T) {
	if err := run(context.Background(), []string{"-bogus"}); err == nil {
		t.Fatal("run() should fail on an unknown flag")
	}
}

func TestRun_StartsAndShutsDown(t *testing.T) {
	tests := []struct {
		name string
		args func(path string) []string
	}{
		{"sqlite", func(path string) []string { return []string{"-config", path} }},
		{"memory", func(path string) []string { return []string{"-config", path, "-memory"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath := filepath.Join(t.TempDir(), "data", "devices.db")
			path := offlineConfig(t, dbPath)

			ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
			defer cancel()

			if err := run(ctx, tt.args(path)); err != nil {
				t.Fatalf("run() error = %v", err)
			}
		})
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv(configPathEnv, "")

	if path, explicit := getConfigPath(""); path != defaultConfigPath || explicit {
		t.Errorf("getConfigPath() = %q, %v; want default, false", path, explicit)
	}

	t.Setenv(configPathEnv, "/etc/devicescfg/config.yaml")
	if path, explicit := getConfigPath(""); path != "/etc/devicescfg/config.yaml" || !explicit {
		t.Errorf("getConfigPath() = %q, %v; want env path, true", path, explicit)
	}

	if path, _ := getConfigPath("/tmp/flag.yaml"); path != "/tmp/flag.yaml" {
		t.Errorf("getConfigPath() = %q, flag should win", path)
	}
}

func TestLoadConfig_FallsBackToDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Chdir(t.TempDir())

	cfg, source, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if source != "(built-in defaults)" {
		t.Errorf("source = %q, want built-in defaults", source)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want 8080", cfg.API.Port)
	}
}
