package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	c := Defaults()

	if c.AppPort != "8080" {
		t.Errorf("AppPort = %q, want 8080", c.AppPort)
	}
	if c.DBDriver != "mysql" {
		t.Errorf("DBDriver = %q, want mysql", c.DBDriver)
	}
	if c.SessionTTL() != 72*time.Hour {
		t.Errorf("SessionTTL() = %v, want 72h", c.SessionTTL())
	}
	if len(c.AllowedOrigins) != 1 || c.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v, want [*]", c.AllowedOrigins)
	}
	if c.PostsRequireAuth || c.SanitizeHTML {
		t.Error("expected write protection and sanitizing to be off by default")
	}
}

func TestSessionTTLDisabled(t *testing.T) {
	c := AppConfig{SessionTTLHours: -1}
	if got := c.SessionTTL(); got != 0 {
		t.Errorf("SessionTTL() = %v, want 0", got)
	}
}

func TestLoadJSONConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
		"app": {"AppPort": "9090", "AllowedOrigins": ["http://a.test", "http://b.test"], "PostsRequireAuth": true},
		"database": {"Driver": "sqlite", "SQLitePath": "/tmp/x.db"},
		"redis": {"Enabled": true, "RedisPort": 6380},
		"session": {"TTLHours": 1, "CacheMinutes": 2},
		"log": {"Level": "debug", "Compress": true}
	}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	var c AppConfig
	if err := loadJSONConfig(path, &c); err != nil {
		t.Fatalf("loadJSONConfig() error: %v", err)
	}

	if c.AppPort != "9090" {
		t.Errorf("AppPort = %q, want 9090", c.AppPort)
	}
	if len(c.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v, want 2 entries", c.AllowedOrigins)
	}
	if !c.PostsRequireAuth {
		t.Error("PostsRequireAuth = false, want true")
	}
	if c.DBDriver != "sqlite" || c.SQLitePath != "/tmp/x.db" {
		t.Errorf("database section not applied: %+v", c)
	}
	if !c.RedisEnabled || c.RedisPort != 6380 {
		t.Errorf("redis section not applied: enabled=%v port=%d", c.RedisEnabled, c.RedisPort)
	}
	if c.SessionTTLHours != 1 || c.SessionCacheMinutes != 2 {
		t.Errorf("session section not applied: %+v", c)
	}
	if c.LogLevel != "debug" || !c.LogCompress {
		t.Errorf("log section not applied: level=%q compress=%v", c.LogLevel, c.LogCompress)
	}
}

func TestLoadJSONConfigMissingFile(t *testing.T) {
	var c AppConfig
	if err := loadJSONConfig(filepath.Join(t.TempDir(), "nope.json"), &c); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}

func TestLoadJSONConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	var c AppConfig
	if err := loadJSONConfig(path, &c); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "7000")
	t.Setenv("DB_DRIVER", "SQLITE")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://x.test , ,http://y.test")
	t.Setenv("SESSION_TTL_HOURS", "5")
	t.Setenv("REDIS_ENABLED", "true")

	c := Defaults()
	applyEnvOverrides(&c)

	if c.AppPort != "7000" {
		t.Errorf("AppPort = %q, want 7000", c.AppPort)
	}
	if c.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q, want sqlite", c.DBDriver)
	}
	if len(c.AllowedOrigins) != 2 || c.AllowedOrigins[0] != "http://x.test" || c.AllowedOrigins[1] != "http://y.test" {
		t.Errorf("AllowedOrigins = %v", c.AllowedOrigins)
	}
	if c.SessionTTLHours != 5 {
		t.Errorf("SessionTTLHours = %d, want 5", c.SessionTTLHours)
	}
	if !c.RedisEnabled {
		t.Error("RedisEnabled = false, want true")
	}
}
