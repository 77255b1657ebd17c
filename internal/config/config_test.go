package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points TADA_HOME at a temp dir and clears the TADA_* env.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TADA_HOME", dir)
	for _, k := range []string{"TADA_CONFIG", "TADA_BASE_URL", "TADA_TENANT", "TADA_THEME", "TADA_LANG", "TADA_LOG_LEVEL", "TADA_LOG_FILE", "TADA_TIMEOUT"} {
		t.Setenv(k, "")
	}
	return dir
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL: got %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.Tenant != DefaultTenant || cfg.TenantSource != SourceDefault {
		t.Errorf("Tenant: got %q (%s), want %q (default)", cfg.Tenant, cfg.TenantSource, DefaultTenant)
	}
	if cfg.Timeout != 0 {
		t.Errorf("Timeout: got %v, want 0", cfg.Timeout)
	}
	if cfg.Path != "" {
		t.Errorf("Path: got %q, want empty", cfg.Path)
	}
}

func TestLoad_FileValues(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `
base_url = "http://localhost:8080/"
tenant = "team"
timeout = "5s"
theme = "neon"
lang = "ko"
`)
	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL: got %q", cfg.BaseURL)
	}
	if cfg.Tenant != "team" || cfg.TenantSource != SourceFile {
		t.Errorf("Tenant: got %q (%s)", cfg.Tenant, cfg.TenantSource)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout: got %v", cfg.Timeout)
	}
	if cfg.Theme != "neon" || cfg.Lang != "ko" {
		t.Errorf("Theme/Lang: got %q/%q", cfg.Theme, cfg.Lang)
	}
}

func TestLoad_UnknownKeyFails(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `tenat = "typo"`)
	if _, err := Load(Overrides{}); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	isolate(t)
	if _, err := Load(Overrides{ConfigPath: filepath.Join(t.TempDir(), "missing.toml")}); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestLoad_TenantPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		state      string
		env        string
		flag       string
		want       string
		wantSource Source
	}{
		{"file only", "f", "", "", "", "f", SourceFile},
		{"state beats file", "f", "s", "", "", "s", SourceState},
		{"env beats state", "f", "s", "e", "", "e", SourceEnv},
		{"flag beats env", "f", "s", "e", "x", "x", SourceFlag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			if tt.file != "" {
				writeConfig(t, dir, `tenant = "`+tt.file+`"`)
			}
			if tt.state != "" {
				if err := SaveTenant(tt.state); err != nil {
					t.Fatalf("SaveTenant: %v", err)
				}
			}
			if tt.env != "" {
				t.Setenv("TADA_TENANT", tt.env)
			}
			cfg, err := Load(Overrides{Tenant: tt.flag})
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Tenant != tt.want || cfg.TenantSource != tt.wantSource {
				t.Errorf("got %q (%s), want %q (%s)", cfg.Tenant, cfg.TenantSource, tt.want, tt.wantSource)
			}
		})
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	isolate(t)
	if _, err := Load(Overrides{Tenant: "a/b"}); err == nil {
		t.Errorf("expected error for tenant with slash")
	}
	if _, err := Load(Overrides{BaseURL: "ftp://x"}); err == nil {
		t.Errorf("expected error for non-http base url")
	}
}

func TestLoad_EnvTimeout(t *testing.T) {
	isolate(t)
	t.Setenv("TADA_TIMEOUT", "5s")
	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("timeout = %v, want 5s", cfg.Timeout)
	}

	for _, bad := range []string{"soon", "5", "-1s"} {
		t.Setenv("TADA_TIMEOUT", bad)
		if _, err := Load(Overrides{}); err == nil {
			t.Errorf("TADA_TIMEOUT=%q: expected an error", bad)
		}
	}
}

func TestState_SaveLoadClear(t *testing.T) {
	isolate(t)
	st, err := LoadState()
	if err != nil || st != nil {
		t.Fatalf("fresh state: %v, %v", st, err)
	}
	if err := SaveTenant("  demo  "); err != nil {
		t.Fatalf("SaveTenant: %v", err)
	}
	st, err = LoadState()
	if err != nil || st == nil || st.Tenant != "demo" {
		t.Fatalf("after save: %+v, %v", st, err)
	}
	if err := ClearState(); err != nil {
		t.Fatalf("ClearState: %v", err)
	}
	st, err = LoadState()
	if err != nil || st != nil {
		t.Fatalf("after clear: %+v, %v", st, err)
	}
	if err := SaveTenant(" "); err == nil {
		t.Fatalf("expected error for blank tenant")
	}
}
