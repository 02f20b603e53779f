package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/lineup-builder/internal/domain/player"
	"github.com/riskibarqy/lineup-builder/internal/platform/cache"
	"github.com/riskibarqy/lineup-builder/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const rosterCacheKeyPrefix = "roster:"

type RosterWarmUpResult struct {
	TeamCount   int
	WorkerCount int
	LoadedCount int
	FailedCount int
}

// RosterService reads team rosters through a short-lived cache.
type RosterService struct {
	reader player.RosterReader
	cache  *cache.Store[[]player.Player]
	logger *logging.Logger
}

func NewRosterService(reader player.RosterReader, ttl time.Duration, logger *logging.Logger) *RosterService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RosterService{
		reader: reader,
		cache:  cache.NewStore[[]player.Player](ttl),
		logger: logger,
	}
}

func (s *RosterService) ListByTeam(ctx context.Context, teamID string) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ListByTeam")
	defer span.End()

	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, fmt.Errorf("%w: team_id is required", ErrInvalidInput)
	}
	span.SetAttributes(attribute.String("team.id", teamID))

	players, err := s.cache.GetOrLoad(ctx, rosterCacheKeyPrefix+teamID, func(ctx context.Context) ([]player.Player, error) {
		items, err := s.reader.ListByTeam(ctx, teamID)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if err := item.Validate(); err != nil {
				return nil, fmt.Errorf("%w: roster of team %s: %v", ErrDependencyUnavailable, teamID, err)
			}
		}
		return items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list roster team_id=%s: %w", teamID, err)
	}

	return append([]player.Player(nil), players...), nil
}

func (s *RosterService) Invalidate(ctx context.Context, teamID string) {
	s.cache.Delete(ctx, rosterCacheKeyPrefix+strings.TrimSpace(teamID))
}

// WarmUp preloads rosters with a bounded worker pool. Individual failures are
// logged and counted, never returned.
func (s *RosterService) WarmUp(ctx context.Context, teamIDs []string, workers int) (RosterWarmUpResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.WarmUp")
	defer span.End()

	unique := make([]string, 0, len(teamIDs))
	seen := make(map[string]struct{}, len(teamIDs))
	for _, teamID := range teamIDs {
		teamID = strings.TrimSpace(teamID)
		if teamID == "" {
			continue
		}
		if _, ok := seen[teamID]; ok {
			continue
		}
		seen[teamID] = struct{}{}
		unique = append(unique, teamID)
	}

	result := RosterWarmUpResult{
		TeamCount:   len(unique),
		WorkerCount: normalizeWorkerCount(workers, len(unique)),
	}
	if len(unique) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(result.WorkerCount)
	if err != nil {
		return RosterWarmUpResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var loaded atomic.Int32
	var failed atomic.Int32
	var wg sync.WaitGroup
	for _, teamID := range unique {
		teamID := teamID
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if _, err := s.ListByTeam(ctx, teamID); err != nil {
				failed.Add(1)
				s.logger.WarnContext(ctx, "roster warm-up failed", "team_id", teamID, "error", err)
				return
			}
			loaded.Add(1)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return RosterWarmUpResult{}, fmt.Errorf("submit warm-up task: %w", err)
		}
	}
	wg.Wait()

	result.LoadedCount = int(loaded.Load())
	result.FailedCount = int(failed.Load())
	s.logger.InfoContext(ctx, "roster warm-up finished",
		"teams", result.TeamCount,
		"workers", result.WorkerCount,
		"loaded", result.LoadedCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

func normalizeWorkerCount(requested, tasks int) int {
	if requested <= 0 {
		requested = 4
	}
	if tasks > 0 && requested > tasks {
		requested = tasks
	}
	if requested < 1 {
		requested = 1
	}
	return requested
}
