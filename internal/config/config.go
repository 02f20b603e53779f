package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/lineup-builder/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	LogLevel       logging.Level
	LogFormat      string

	CORSAllowedOrigins []string

	TournamentAPIBaseURL               string
	TournamentAPIToken                 string
	TournamentAPITimeout               time.Duration
	TournamentAPIMaxRetries            int
	TournamentAPIRetryBackoff          time.Duration
	TournamentAPICircuitEnabled        bool
	TournamentAPICircuitFailureCount   int
	TournamentAPICircuitOpenTimeout    time.Duration
	TournamentAPICircuitHalfOpenMaxReq int

	RosterCacheTTL    time.Duration
	RosterWarmTeamIDs []string
	RosterWarmWorkers int
	MatchCacheTTL     time.Duration

	SessionStore      string
	SessionTTL        time.Duration
	RedisURL          string
	RedisPoolSize     int
	RedisMinIdleConns int

	SubmissionStore         string
	DBURL                   string
	DBDisablePreparedBinary bool

	FormationCatalogPath string

	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	PprofEnabled               bool
	PprofAddr                  string
}

// Load reads the process environment. Values from ENV_FILE (default .env)
// fill keys that are not already set.
func Load() (Config, error) {
	if err := loadDotEnv(getEnv("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "lineup-builder"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("APP_HTTP_ADDR", ":8080"),
		LogLevel:                   logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		TournamentAPIToken:         strings.TrimSpace(getEnv("TOURNAMENT_API_TOKEN", "")),
		RosterWarmTeamIDs:          splitCSV(getEnv("ROSTER_WARM_TEAM_IDS", "")),
		FormationCatalogPath:       strings.TrimSpace(getEnv("FORMATION_CATALOG_PATH", "")),
		PyroscopeAppName:           getEnv("PYROSCOPE_APP_NAME", "lineup-builder"),
		PyroscopeAuthToken:         getEnv("PYROSCOPE_AUTH_TOKEN", ""),
		PyroscopeBasicAuthUser:     getEnv("PYROSCOPE_BASIC_AUTH_USER", ""),
		PyroscopeBasicAuthPassword: getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""),
	}

	cfg.LogFormat = strings.ToLower(strings.TrimSpace(getEnv("APP_LOG_FORMAT", "json")))
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return Config{}, fmt.Errorf("invalid APP_LOG_FORMAT %q: valid values are json, console", cfg.LogFormat)
	}

	if cfg.ReadTimeout, err = time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s")); err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	if cfg.WriteTimeout, err = time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "30s")); err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	if err := loadTournamentAPI(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadRoster(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadStores(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadTournamentAPI(cfg *Config) error {
	cfg.TournamentAPIBaseURL = strings.TrimSpace(getEnv("TOURNAMENT_API_BASE_URL", ""))
	if cfg.TournamentAPIBaseURL == "" {
		return fmt.Errorf("TOURNAMENT_API_BASE_URL is required")
	}

	var err error
	if cfg.TournamentAPITimeout, err = time.ParseDuration(getEnv("TOURNAMENT_API_TIMEOUT", "10s")); err != nil {
		return fmt.Errorf("parse TOURNAMENT_API_TIMEOUT: %w", err)
	}
	if cfg.TournamentAPITimeout <= 0 {
		return fmt.Errorf("TOURNAMENT_API_TIMEOUT must be > 0")
	}

	if cfg.TournamentAPIMaxRetries, err = getEnvAsInt("TOURNAMENT_API_MAX_RETRIES", 2); err != nil {
		return fmt.Errorf("parse TOURNAMENT_API_MAX_RETRIES: %w", err)
	}
	if cfg.TournamentAPIMaxRetries < 0 {
		return fmt.Errorf("TOURNAMENT_API_MAX_RETRIES must be >= 0")
	}

	if cfg.TournamentAPIRetryBackoff, err = time.ParseDuration(getEnv("TOURNAMENT_API_RETRY_BACKOFF", "500ms")); err != nil {
		return fmt.Errorf("parse TOURNAMENT_API_RETRY_BACKOFF: %w", err)
	}

	if cfg.TournamentAPICircuitEnabled, err = strconv.ParseBool(getEnv("TOURNAMENT_API_CIRCUIT_ENABLED", "true")); err != nil {
		return fmt.Errorf("parse TOURNAMENT_API_CIRCUIT_ENABLED: %w", err)
	}
	if cfg.TournamentAPICircuitFailureCount, err = getEnvAsInt("TOURNAMENT_API_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return fmt.Errorf("parse TOURNAMENT_API_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.TournamentAPICircuitFailureCount < 1 {
		return fmt.Errorf("TOURNAMENT_API_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if cfg.TournamentAPICircuitOpenTimeout, err = time.ParseDuration(getEnv("TOURNAMENT_API_CIRCUIT_OPEN_TIMEOUT", "15s")); err != nil {
		return fmt.Errorf("parse TOURNAMENT_API_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if cfg.TournamentAPICircuitOpenTimeout <= 0 {
		return fmt.Errorf("TOURNAMENT_API_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	if cfg.TournamentAPICircuitHalfOpenMaxReq, err = getEnvAsInt("TOURNAMENT_API_CIRCUIT_HALF_OPEN_MAX_REQ", 2); err != nil {
		return fmt.Errorf("parse TOURNAMENT_API_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.TournamentAPICircuitHalfOpenMaxReq < 1 {
		return fmt.Errorf("TOURNAMENT_API_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	return nil
}

func loadRoster(cfg *Config) error {
	var err error
	if cfg.RosterCacheTTL, err = time.ParseDuration(getEnv("ROSTER_CACHE_TTL", "1m")); err != nil {
		return fmt.Errorf("parse ROSTER_CACHE_TTL: %w", err)
	}
	if cfg.RosterCacheTTL < 0 {
		return fmt.Errorf("ROSTER_CACHE_TTL must be >= 0")
	}
	if cfg.RosterWarmWorkers, err = getEnvAsInt("ROSTER_WARM_WORKERS", 4); err != nil {
		return fmt.Errorf("parse ROSTER_WARM_WORKERS: %w", err)
	}
	if cfg.RosterWarmWorkers < 1 {
		return fmt.Errorf("ROSTER_WARM_WORKERS must be >= 1")
	}
	if cfg.MatchCacheTTL, err = time.ParseDuration(getEnv("MATCH_CACHE_TTL", "30s")); err != nil {
		return fmt.Errorf("parse MATCH_CACHE_TTL: %w", err)
	}
	if cfg.MatchCacheTTL < 0 {
		return fmt.Errorf("MATCH_CACHE_TTL must be >= 0")
	}
	return nil
}

func loadStores(cfg *Config) error {
	var err error

	cfg.SessionStore = strings.ToLower(strings.TrimSpace(getEnv("SESSION_STORE", StoreMemory)))
	switch cfg.SessionStore {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("invalid SESSION_STORE %q: valid values are %s, %s", cfg.SessionStore, StoreMemory, StoreRedis)
	}
	if cfg.SessionTTL, err = time.ParseDuration(getEnv("SESSION_TTL", "2h")); err != nil {
		return fmt.Errorf("parse SESSION_TTL: %w", err)
	}
	if cfg.SessionTTL < 0 {
		return fmt.Errorf("SESSION_TTL must be >= 0")
	}

	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))
	if cfg.SessionStore == StoreRedis && cfg.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when SESSION_STORE=redis")
	}
	if cfg.RedisPoolSize, err = getEnvAsInt("REDIS_POOL_SIZE", 10); err != nil {
		return fmt.Errorf("parse REDIS_POOL_SIZE: %w", err)
	}
	if cfg.RedisMinIdleConns, err = getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2); err != nil {
		return fmt.Errorf("parse REDIS_MIN_IDLE_CONNS: %w", err)
	}

	cfg.SubmissionStore = strings.ToLower(strings.TrimSpace(getEnv("SUBMISSION_STORE", StoreMemory)))
	switch cfg.SubmissionStore {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("invalid SUBMISSION_STORE %q: valid values are %s, %s", cfg.SubmissionStore, StoreMemory, StorePostgres)
	}
	cfg.DBURL = strings.TrimSpace(getEnv("DB_URL", ""))
	if cfg.SubmissionStore == StorePostgres && cfg.DBURL == "" {
		return fmt.Errorf("DB_URL is required when SUBMISSION_STORE=postgres")
	}
	if cfg.DBDisablePreparedBinary, err = strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true")); err != nil {
		return fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	return nil
}

func loadObservability(cfg *Config) error {
	var err error

	if cfg.UptraceEnabled, err = strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false")); err != nil {
		return fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false")); err != nil {
		return fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if cfg.PyroscopeUploadRate, err = time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s")); err != nil {
		return fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if cfg.PyroscopeUploadRate <= 0 {
		return fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	if cfg.PprofEnabled, err = strconv.ParseBool(getEnv("PPROF_ENABLED", "false")); err != nil {
		return fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	return nil
}

func loadDotEnv(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	for _, item := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(parts[1]), "\"'")
		}
	}
	return ""
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
