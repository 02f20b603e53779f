package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("TOURNAMENT_API_BASE_URL", "https://tournament.example.com")
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "false")
	t.Setenv("SESSION_STORE", "")
	t.Setenv("SUBMISSION_STORE", "")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.SessionStore != StoreMemory || cfg.SubmissionStore != StoreMemory {
		t.Fatalf("expected memory stores, got session=%q submission=%q", cfg.SessionStore, cfg.SubmissionStore)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("unexpected SessionTTL: %s", cfg.SessionTTL)
	}
	if !cfg.TournamentAPICircuitEnabled || cfg.TournamentAPIMaxRetries != 2 {
		t.Fatalf("unexpected tournament api defaults: %+v", cfg)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected CORSAllowedOrigins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_AppEnvValidation(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_TournamentBaseURLRequired(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TOURNAMENT_API_BASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without TOURNAMENT_API_BASE_URL")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "foo=bar, uptrace-dsn='https://token@api.uptrace.dev?grpc=4317'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_StoreSelection(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{name: "redis without url", env: map[string]string{"SESSION_STORE": "redis", "REDIS_URL": ""}, wantErr: true},
		{name: "redis with url", env: map[string]string{"SESSION_STORE": "redis", "REDIS_URL": "redis://localhost:6379/0"}},
		{name: "unknown session store", env: map[string]string{"SESSION_STORE": "etcd"}, wantErr: true},
		{name: "postgres without url", env: map[string]string{"SUBMISSION_STORE": "postgres", "DB_URL": ""}, wantErr: true},
		{name: "postgres with url", env: map[string]string{"SUBMISSION_STORE": "postgres", "DB_URL": "postgres://u:p@localhost/lineups"}},
		{name: "invalid prepared binary flag", env: map[string]string{"DB_DISABLE_PREPARED_BINARY_RESULT": "not-bool"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setBaseEnv(t)
			for key, value := range tc.env {
				t.Setenv(key, value)
			}

			_, err := Load()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoad_RosterSettings(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ROSTER_WARM_TEAM_IDS", " t1, t2 ,,t3")
	t.Setenv("ROSTER_WARM_WORKERS", "8")
	t.Setenv("ROSTER_CACHE_TTL", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.RosterWarmTeamIDs) != 3 || cfg.RosterWarmTeamIDs[1] != "t2" {
		t.Fatalf("unexpected RosterWarmTeamIDs: %v", cfg.RosterWarmTeamIDs)
	}
	if cfg.RosterWarmWorkers != 8 || cfg.RosterCacheTTL != 90*time.Second {
		t.Fatalf("unexpected roster settings: workers=%d ttl=%s", cfg.RosterWarmWorkers, cfg.RosterCacheTTL)
	}

	t.Setenv("ROSTER_WARM_WORKERS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for ROSTER_WARM_WORKERS=0")
	}
}

func TestLoad_DotEnvFillsUnsetKeys(t *testing.T) {
	setBaseEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	content := "APP_HTTP_ADDR=:9999\nTOURNAMENT_API_TOKEN=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENV_FILE", path)
	t.Setenv("APP_HTTP_ADDR", "")
	if err := os.Unsetenv("APP_HTTP_ADDR"); err != nil {
		t.Fatalf("unset APP_HTTP_ADDR: %v", err)
	}
	t.Setenv("TOURNAMENT_API_TOKEN", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.TournamentAPIToken != "from-env" {
		t.Fatalf("process env must win over env file, got %q", cfg.TournamentAPIToken)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Fatalf("expected addr from env file, got %q", cfg.HTTPAddr)
	}
}
