package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GRPCAddr != ":8080" {
		t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, ":8080")
	}
	if cfg.JWTAccessTTL != 10*time.Minute {
		t.Errorf("JWTAccessTTL = %v, want 10m", cfg.JWTAccessTTL)
	}
	if cfg.JWTRefreshTTL != 720*time.Hour {
		t.Errorf("JWTRefreshTTL = %v, want 720h", cfg.JWTRefreshTTL)
	}
	if cfg.SessionLifetime != 8*time.Hour {
		t.Errorf("SessionLifetime = %v, want 8h", cfg.SessionLifetime)
	}
	if cfg.RefreshGraceWindow != 0 {
		t.Errorf("RefreshGraceWindow = %v, want 0", cfg.RefreshGraceWindow)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.LockoutThreshold != 4 || cfg.LockoutWindow != 15*time.Minute {
		t.Errorf("lockout = %d/%v, want 4/15m", cfg.LockoutThreshold, cfg.LockoutWindow)
	}
	if cfg.ServiceName != "credential-lifecycle" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	t.Setenv("GRPC_ADDR", ":9090")
	t.Setenv("BCRYPT_COST", "14")
	t.Setenv("SESSION_LIFETIME", "2h")
	t.Setenv("REFRESH_GRACE_WINDOW", "30s")
	t.Setenv("LOCKOUT_THRESHOLD", "6")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GRPCAddr != ":9090" || cfg.BcryptCost != 14 || cfg.LockoutThreshold != 6 || !cfg.OTLPInsecure {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.SessionLifetime != 2*time.Hour || cfg.RefreshGraceWindow != 30*time.Second {
		t.Errorf("durations = %v, %v", cfg.SessionLifetime, cfg.RefreshGraceWindow)
	}
	s := cfg.AuthSettings()
	if s.SessionLifetime != 2*time.Hour || s.RefreshGraceWindow != 30*time.Second || s.BcryptCost != 14 || s.LockoutThreshold != 6 {
		t.Errorf("AuthSettings = %+v", s)
	}
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"bcrypt cost too low", "BCRYPT_COST", "3", "BCRYPT_COST"},
		{"bcrypt cost too high", "BCRYPT_COST", "32", "BCRYPT_COST"},
		{"zero session lifetime", "SESSION_LIFETIME", "0s", "SESSION_LIFETIME"},
		{"negative access ttl", "JWT_ACCESS_TTL", "-1m", "JWT_ACCESS_TTL"},
		{"unparseable duration", "LOCKOUT_WINDOW", "soon", "config:"},
		{"zero lockout threshold", "LOCKOUT_THRESHOLD", "0", "LOCKOUT_THRESHOLD"},
		{"negative grace window", "REFRESH_GRACE_WINDOW", "-5s", "REFRESH_GRACE_WINDOW"},
		{"negative hash concurrency", "HASH_CONCURRENCY", "-1", "HASH_CONCURRENCY"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if err == nil {
				t.Fatalf("Load with %s=%s should fail", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q should mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoad_ProductionRequirements(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("production without DATABASE_URL: %v", err)
	}
	t.Setenv("DATABASE_URL", "postgres://localhost/auth")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("production without JWT_SECRET: %v", err)
	}
	t.Setenv("JWT_SECRET", strings.Repeat("k", 32))
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction should be true")
	}
}

func TestSigningKey(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "jwt.key")
	if err := os.WriteFile(keyFile, []byte(strings.Repeat("f", 40)+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	testCases := []struct {
		name    string
		cfg     Config
		wantLen int
		wantErr bool
	}{
		{"unset in development", Config{}, 0, false},
		{"unset in production", Config{Env: EnvProduction}, 0, true},
		{"inline", Config{JWTSecret: strings.Repeat("s", 32)}, 32, false},
		{"file", Config{JWTSecret: keyFile}, 40, false},
		{"too short", Config{JWTSecret: "short"}, 0, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			key, err := tc.cfg.SigningKey()
			if (err != nil) != tc.wantErr {
				t.Fatalf("SigningKey error = %v, wantErr %v", err, tc.wantErr)
			}
			if len(key) != tc.wantLen {
				t.Errorf("key length = %d, want %d", len(key), tc.wantLen)
			}
		})
	}
}
