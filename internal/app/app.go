package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/lineup-builder/external/tournamentapi"
	"github.com/riskibarqy/lineup-builder/internal/config"
	"github.com/riskibarqy/lineup-builder/internal/domain/formation"
	"github.com/riskibarqy/lineup-builder/internal/domain/lineup"
	"github.com/riskibarqy/lineup-builder/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/lineup-builder/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/lineup-builder/internal/infrastructure/repository/postgres"
	redisrepo "github.com/riskibarqy/lineup-builder/internal/infrastructure/repository/redis"
	"github.com/riskibarqy/lineup-builder/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/lineup-builder/internal/platform/id"
	"github.com/riskibarqy/lineup-builder/internal/platform/logging"
	"github.com/riskibarqy/lineup-builder/internal/platform/resilience"
	"github.com/riskibarqy/lineup-builder/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

// App owns the HTTP server and every resource it needs to release on exit.
type App struct {
	Server *http.Server

	cfg     config.Config
	logger  *logging.Logger
	rosters *usecase.RosterService
	closers []func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{cfg: cfg, logger: logger}
	if err := a.build(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	catalog, err := loadFormationCatalog(a.cfg.FormationCatalogPath)
	if err != nil {
		return err
	}

	client, err := tournamentapi.NewClient(tournamentapi.ClientConfig{
		BaseURL:      a.cfg.TournamentAPIBaseURL,
		Token:        a.cfg.TournamentAPIToken,
		Timeout:      a.cfg.TournamentAPITimeout,
		MaxRetries:   a.cfg.TournamentAPIMaxRetries,
		RetryBackoff: a.cfg.TournamentAPIRetryBackoff,
		Logger:       a.logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          a.cfg.TournamentAPICircuitEnabled,
			FailureThreshold: a.cfg.TournamentAPICircuitFailureCount,
			OpenTimeout:      a.cfg.TournamentAPICircuitOpenTimeout,
			HalfOpenMaxReq:   a.cfg.TournamentAPICircuitHalfOpenMaxReq,
		},
	})
	if err != nil {
		return crerr.Wrap(err, "build tournament api client")
	}

	sessions, err := a.sessionRepository(ctx)
	if err != nil {
		return err
	}
	submissions, err := a.submissionRepository(ctx)
	if err != nil {
		return err
	}

	a.rosters = usecase.NewRosterService(client, a.cfg.RosterCacheTTL, a.logger.Named("roster"))
	builder := usecase.NewLineupBuilderService(
		catalog,
		a.rosters,
		cache.NewMatchReader(client, a.cfg.MatchCacheTTL),
		client,
		sessions,
		submissions,
		idgen.NewRandomGenerator("ls"),
		a.logger.Named("lineup"),
	)

	handler := httpapi.NewHandler(builder, a.logger)
	router := httpapi.NewRouter(handler, a.logger.Named("http"), a.cfg.CORSAllowedOrigins)

	a.Server = &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
	}
	a.logger.Info("lineup builder wired",
		"formations", catalog.Len(),
		"session_store", a.cfg.SessionStore,
		"submission_store", a.cfg.SubmissionStore,
	)
	return nil
}

// WarmUp preloads the configured rosters. It never fails the process.
func (a *App) WarmUp(ctx context.Context) {
	if len(a.cfg.RosterWarmTeamIDs) == 0 {
		return
	}
	if _, err := a.rosters.WarmUp(ctx, a.cfg.RosterWarmTeamIDs, a.cfg.RosterWarmWorkers); err != nil {
		a.logger.WarnContext(ctx, "roster warm-up aborted", "error", err)
	}
}

// Close releases stores in reverse order of creation.
func (a *App) Close() error {
	var errs error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = crerr.CombineErrors(errs, err)
		}
	}
	a.closers = nil
	return errs
}

func (a *App) sessionRepository(ctx context.Context) (lineup.SessionRepository, error) {
	switch a.cfg.SessionStore {
	case config.StoreRedis:
		// The session lock is held across the lineup POST.
		lockTTL := max(redisrepo.DefaultConfig().LockTTL, 2*a.cfg.TournamentAPITimeout)
		repo, err := redisrepo.NewSessionRepository(ctx, redisrepo.Config{
			URL:          a.cfg.RedisURL,
			PoolSize:     a.cfg.RedisPoolSize,
			MinIdleConns: a.cfg.RedisMinIdleConns,
			SessionTTL:   a.cfg.SessionTTL,
			LockTTL:      lockTTL,
		})
		if err != nil {
			return nil, crerr.Wrap(err, "connect session store")
		}
		a.closers = append(a.closers, repo.Close)
		return repo, nil
	default:
		return memory.NewSessionRepository(a.cfg.SessionTTL), nil
	}
}

func (a *App) submissionRepository(ctx context.Context) (lineup.SubmissionRepository, error) {
	switch a.cfg.SubmissionStore {
	case config.StorePostgres:
		db, err := openDB(ctx, a.cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return postgres.NewSubmissionRepository(db), nil
	default:
		return memory.NewSubmissionRepository(), nil
	}
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, crerr.Wrap(err, "open postgres")
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, crerr.Wrap(err, "ping postgres")
	}
	otelsql.ReportDBStatsMetrics(db.DB)
	return db, nil
}

func loadFormationCatalog(path string) (formation.Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return formation.DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return formation.Catalog{}, crerr.Wrapf(err, "read formation catalog %s", path)
	}
	catalog, err := formation.ParseCatalogJSON(raw)
	if err != nil {
		return formation.Catalog{}, crerr.Wrapf(err, "parse formation catalog %s", path)
	}
	return catalog, nil
}
