package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.DefaultOutput != "table" {
		t.Errorf("DefaultOutput = %q, want %q", cfg.DefaultOutput, "table")
	}
	if cfg.Profiles == nil || len(cfg.Profiles) != 0 {
		t.Errorf("Profiles = %v, want empty map", cfg.Profiles)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if !filepath.IsAbs(path) {
		t.Errorf("path %q should be absolute", path)
	}
	if filepath.Base(filepath.Dir(path)) != ".xlremote" || filepath.Base(path) != "cli.yaml" {
		t.Errorf("path = %q, want .../.xlremote/cli.yaml", path)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load should not error for a missing file: %v", err)
	}
	if cfg.DefaultOutput != "table" {
		t.Error("Load should return the defaults for a missing file")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	content := `default_output: json
current_profile: prod
profiles:
  prod:
    server: https://xl.example.com
    token: Bearer abc
    ca_file: /etc/ca.pem
  dev:
    insecure: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultOutput != "json" || cfg.CurrentProfile != "prod" {
		t.Errorf("cfg = %+v", cfg)
	}

	prod, err := cfg.Profile("")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if prod.Server != "https://xl.example.com" || prod.Token != "Bearer abc" || prod.CAFile != "/etc/ca.pem" {
		t.Errorf("prod = %+v", prod)
	}

	dev, err := cfg.Profile("dev")
	if err != nil {
		t.Fatal(err)
	}
	if dev.Server != DefaultServer || !dev.Insecure {
		t.Errorf("dev = %+v", dev)
	}

	if _, err := cfg.Profile("staging"); err == nil {
		t.Error("unknown profile should fail")
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	if err := os.WriteFile(path, []byte("profiles: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load should fail for invalid YAML")
	}
}

func TestProfile_NoCurrent(t *testing.T) {
	p, err := Default().Profile("")
	if err != nil {
		t.Fatal(err)
	}
	if p.Server != DefaultServer {
		t.Errorf("Server = %q, want %q", p.Server, DefaultServer)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "cli.yaml")

	cfg := Default()
	cfg.CurrentProfile = "local"
	cfg.Profiles["local"] = Profile{Server: "https://localhost:8000", Token: "Bearer t"}
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("permissions = %o, want 600", perm)
		}
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Profiles["local"] != cfg.Profiles["local"] {
		t.Errorf("profile = %+v, want %+v", loaded.Profiles["local"], cfg.Profiles["local"])
	}
}
