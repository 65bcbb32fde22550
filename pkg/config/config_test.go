package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// chdir runs the test from an empty directory so no stray .env is picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("environment = %q", cfg.Environment)
	}
	if cfg.Catalog.Path != "data/device-database.json" || cfg.Catalog.Watch {
		t.Errorf("catalog = %+v", cfg.Catalog)
	}
	if cfg.Server.Addr() != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr())
	}
	if cfg.RateLimit.RPS != 20 || cfg.RateLimit.Burst != 40 {
		t.Errorf("rate limit = %+v", cfg.RateLimit)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"*"}) {
		t.Errorf("origins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Export.Format != "table" || cfg.CurrentYear != 0 {
		t.Errorf("export = %q, year = %d", cfg.Export.Format, cfg.CurrentYear)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	chdir(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CATALOG_PATH", "/srv/devices.json")
	t.Setenv("CATALOG_WATCH", "true")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CURRENT_YEAR", "2024")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Environment != "production" || cfg.Catalog.Path != "/srv/devices.json" || !cfg.Catalog.Watch {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Server.Port != "9090" || cfg.CurrentYear != 2024 {
		t.Errorf("port = %q, year = %d", cfg.Server.Port, cfg.CurrentYear)
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(cfg.CORS.AllowedOrigins, want) {
		t.Errorf("origins = %v, want %v", cfg.CORS.AllowedOrigins, want)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdir(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("EXPORT_FORMAT=html\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// godotenv sets real process variables; register cleanup through Setenv.
	t.Setenv("EXPORT_FORMAT", "")
	os.Unsetenv("EXPORT_FORMAT")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Export.Format != "html" {
		t.Errorf("export format = %q", cfg.Export.Format)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "assess.yaml")
	if err := os.WriteFile(path, []byte("SERVER_PORT: \"7070\"\nRATE_LIMIT_BURST: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "7070" || cfg.RateLimit.Burst != 5 {
		t.Errorf("server = %+v, rate limit = %+v", cfg.Server, cfg.RateLimit)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Errorf("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{RateLimit: RateLimitConfig{RPS: 1, Burst: 1}}, false},
		{"zero rps", Config{RateLimit: RateLimitConfig{RPS: 0, Burst: 1}}, true},
		{"zero burst", Config{RateLimit: RateLimitConfig{RPS: 1, Burst: 0}}, true},
		{"negative year", Config{RateLimit: RateLimitConfig{RPS: 1, Burst: 1}, CurrentYear: -1}, true},
	}
	for _, tt := range tests {
		if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList([]string{"a, b", "", " c "})
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("splitList = %v, want %v", got, want)
	}
}
