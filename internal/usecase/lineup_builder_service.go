package usecase

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/lineup-builder/internal/domain/formation"
	"github.com/riskibarqy/lineup-builder/internal/domain/lineup"
	"github.com/riskibarqy/lineup-builder/internal/domain/match"
	"github.com/riskibarqy/lineup-builder/internal/domain/player"
	"github.com/riskibarqy/lineup-builder/internal/platform/id"
	"github.com/riskibarqy/lineup-builder/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const sessionLockStripes = 64

type StartSessionInput struct {
	MatchID     string
	TeamID      string
	RequestedBy string
}

// LineupSession is the read model of one builder session.
type LineupSession struct {
	ID          string
	Session     lineup.Session
	FormationID string
	Slots       []lineup.PositionSlot
	Players     []lineup.PlayerState
	CaptainID   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type SubmitOutcome struct {
	Record  lineup.SubmissionRecord
	Message string
}

// RosterInvalidator drops a cached roster so the next read hits the backend.
type RosterInvalidator interface {
	Invalidate(ctx context.Context, teamID string)
}

// LineupBuilderService runs lineup engines as persisted sessions. Calls on the
// same session are serialized, across processes when the session store
// implements lineup.SessionLocker; different sessions run in parallel.
type LineupBuilderService struct {
	catalog     formation.Catalog
	rosters     player.RosterReader
	matches     match.Reader
	submitter   lineup.Submitter
	sessions    lineup.SessionRepository
	submissions lineup.SubmissionRepository
	ids         id.Generator
	logger      *logging.Logger
	now         func() time.Time

	locks [sessionLockStripes]sync.Mutex
}

func NewLineupBuilderService(
	catalog formation.Catalog,
	rosters player.RosterReader,
	matches match.Reader,
	submitter lineup.Submitter,
	sessions lineup.SessionRepository,
	submissions lineup.SubmissionRepository,
	ids id.Generator,
	logger *logging.Logger,
) *LineupBuilderService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LineupBuilderService{
		catalog:     catalog,
		rosters:     rosters,
		matches:     matches,
		submitter:   submitter,
		sessions:    sessions,
		submissions: submissions,
		ids:         ids,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *LineupBuilderService) ListFormations(context.Context) []formation.Formation {
	return s.catalog.List()
}

// StartSession fetches the match and the team roster concurrently and opens
// a fresh builder session.
func (s *LineupBuilderService) StartSession(ctx context.Context, input StartSessionInput) (LineupSession, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupBuilderService.StartSession")
	defer span.End()

	session := lineup.Session{
		MatchID:     strings.TrimSpace(input.MatchID),
		TeamID:      strings.TrimSpace(input.TeamID),
		RequestedBy: strings.TrimSpace(input.RequestedBy),
	}
	if err := session.Validate(); err != nil {
		return LineupSession{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	span.SetAttributes(
		attribute.String("match.id", session.MatchID),
		attribute.String("team.id", session.TeamID),
	)

	var (
		fixture match.Match
		roster  []player.Player
	)
	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		item, err := s.matches.GetByID(ctx, session.MatchID)
		if err != nil {
			return fmt.Errorf("get match id=%s: %w", session.MatchID, err)
		}
		fixture = item
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.rosters.ListByTeam(ctx, session.TeamID)
		if err != nil {
			return fmt.Errorf("get roster team_id=%s: %w", session.TeamID, err)
		}
		roster = items
		return nil
	})
	if err := p.Wait(); err != nil {
		return LineupSession{}, err
	}

	if !fixture.HasTeam(session.TeamID) {
		return LineupSession{}, fmt.Errorf("%w: team %s does not play in match %s", ErrInvalidInput, session.TeamID, session.MatchID)
	}
	if !fixture.AcceptsLineups() {
		return LineupSession{}, fmt.Errorf("%w: match %s is %s and no longer accepts lineups", ErrConflict, fixture.ID, match.NormalizeStatus(fixture.Status))
	}

	engine := lineup.NewEngine(session, s.catalog)
	if err := engine.LoadRoster(roster); err != nil {
		return LineupSession{}, fmt.Errorf("%w: %w", ErrDependencyUnavailable, err)
	}

	sessionID, err := s.ids.NewID()
	if err != nil {
		return LineupSession{}, fmt.Errorf("generate session id: %w", err)
	}
	now := s.now().UTC()
	record := lineup.SessionRecord{
		ID:        sessionID,
		Draft:     engine.Snapshot(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Save(ctx, record); err != nil {
		return LineupSession{}, fmt.Errorf("save session: %w", err)
	}

	s.logger.InfoContext(ctx, "lineup session started",
		"session_id", sessionID,
		"match_id", session.MatchID,
		"team_id", session.TeamID,
		"roster_size", len(roster),
	)
	return buildSessionView(record, engine), nil
}

func (s *LineupBuilderService) GetSession(ctx context.Context, sessionID string) (LineupSession, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupBuilderService.GetSession")
	defer span.End()

	record, engine, err := s.load(ctx, sessionID)
	if err != nil {
		return LineupSession{}, err
	}
	return buildSessionView(record, engine), nil
}

func (s *LineupBuilderService) AbandonSession(ctx context.Context, sessionID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupBuilderService.AbandonSession")
	defer span.End()

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}

	unlock, err := s.lock(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unlock()

	if _, _, err := s.load(ctx, sessionID); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ReloadRoster refetches the team roster, bypassing the cache, and resets
// every selection while keeping the formation.
func (s *LineupBuilderService) ReloadRoster(ctx context.Context, sessionID string) (LineupSession, error) {
	return s.mutate(ctx, sessionID, "ReloadRoster", func(ctx context.Context, engine *lineup.Engine) error {
		teamID := engine.Session().TeamID
		if invalidator, ok := s.rosters.(RosterInvalidator); ok {
			invalidator.Invalidate(ctx, teamID)
		}
		roster, err := s.rosters.ListByTeam(ctx, teamID)
		if err != nil {
			return fmt.Errorf("get roster team_id=%s: %w", teamID, err)
		}
		if err := engine.LoadRoster(roster); err != nil {
			return fmt.Errorf("%w: %w", ErrDependencyUnavailable, err)
		}
		return nil
	})
}

func (s *LineupBuilderService) SelectFormation(ctx context.Context, sessionID, formationID string) (LineupSession, error) {
	return s.mutate(ctx, sessionID, "SelectFormation", func(_ context.Context, engine *lineup.Engine) error {
		return engine.SelectFormation(formationID)
	})
}

func (s *LineupBuilderService) AssignToPosition(ctx context.Context, sessionID, playerID, position string) (LineupSession, error) {
	return s.mutate(ctx, sessionID, "AssignToPosition", func(_ context.Context, engine *lineup.Engine) error {
		return engine.AssignToPosition(playerID, position)
	})
}

func (s *LineupBuilderService) RemoveFromPosition(ctx context.Context, sessionID, position string) (LineupSession, error) {
	return s.mutate(ctx, sessionID, "RemoveFromPosition", func(_ context.Context, engine *lineup.Engine) error {
		return engine.RemoveFromPosition(position)
	})
}

func (s *LineupBuilderService) AddToBench(ctx context.Context, sessionID, playerID string) (LineupSession, error) {
	return s.mutate(ctx, sessionID, "AddToBench", func(_ context.Context, engine *lineup.Engine) error {
		return engine.AddToBench(playerID)
	})
}

func (s *LineupBuilderService) RemoveFromBench(ctx context.Context, sessionID, playerID string) (LineupSession, error) {
	return s.mutate(ctx, sessionID, "RemoveFromBench", func(_ context.Context, engine *lineup.Engine) error {
		return engine.RemoveFromBench(playerID)
	})
}

func (s *LineupBuilderService) SetCaptain(ctx context.Context, sessionID, playerID string) (LineupSession, error) {
	return s.mutate(ctx, sessionID, "SetCaptain", func(_ context.Context, engine *lineup.Engine) error {
		return engine.SetCaptain(playerID)
	})
}

func (s *LineupBuilderService) ClearCaptain(ctx context.Context, sessionID string) (LineupSession, error) {
	return s.mutate(ctx, sessionID, "ClearCaptain", func(_ context.Context, engine *lineup.Engine) error {
		engine.ClearCaptain()
		return nil
	})
}

func (s *LineupBuilderService) AutoAssign(ctx context.Context, sessionID string) (LineupSession, error) {
	return s.mutate(ctx, sessionID, "AutoAssign", func(_ context.Context, engine *lineup.Engine) error {
		return engine.AutoAssign()
	})
}

func (s *LineupBuilderService) ClearAll(ctx context.Context, sessionID string) (LineupSession, error) {
	return s.mutate(ctx, sessionID, "ClearAll", func(_ context.Context, engine *lineup.Engine) error {
		engine.ClearAll()
		return nil
	})
}

// Validate returns the first unmet submission rule, or nil when the lineup
// can be submitted.
func (s *LineupBuilderService) Validate(ctx context.Context, sessionID string) (*lineup.ValidationError, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupBuilderService.Validate")
	defer span.End()

	_, engine, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return engine.Validate(), nil
}

// Submit validates the lineup, sends it to the tournament backend at most
// once, records it and closes the session. Concurrent submits of the same
// session are serialized, so a second caller finds the session gone.
func (s *LineupBuilderService) Submit(ctx context.Context, sessionID string) (SubmitOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupBuilderService.Submit")
	defer span.End()

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return SubmitOutcome{}, fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}

	unlock, err := s.lock(ctx, sessionID)
	if err != nil {
		return SubmitOutcome{}, err
	}
	defer unlock()

	record, engine, err := s.load(ctx, sessionID)
	if err != nil {
		return SubmitOutcome{}, err
	}
	if verr := engine.Validate(); verr != nil {
		return SubmitOutcome{}, fmt.Errorf("%w: %w", ErrInvalidInput, verr)
	}

	submission := engine.BuildSubmission()
	result, err := s.submitter.Submit(ctx, submission)
	if err != nil {
		return SubmitOutcome{}, fmt.Errorf("submit lineup session_id=%s: %w", sessionID, err)
	}
	if !result.Success {
		message := strings.TrimSpace(result.Message)
		if message == "" {
			message = "lineup request was not accepted"
		}
		s.logger.WarnContext(ctx, "lineup submission rejected", "session_id", sessionID, "message", message)
		return SubmitOutcome{}, fmt.Errorf("%w: %s", ErrLineupRejected, message)
	}

	submissionID, err := s.ids.NewID()
	if err != nil {
		return SubmitOutcome{}, fmt.Errorf("generate submission id: %w", err)
	}
	session := engine.Session()
	audit := lineup.SubmissionRecord{
		ID:            submissionID,
		MatchID:       submission.MatchID,
		TeamID:        session.TeamID,
		FormationID:   submission.Formation,
		Entries:       submission.Players,
		RequestedBy:   session.RequestedBy,
		RemoteMessage: strings.TrimSpace(result.Message),
		SubmittedAt:   s.now().UTC(),
	}

	// The backend already accepted the lineup; storage failures past this
	// point are logged so the caller does not resubmit.
	if err := s.submissions.Create(ctx, audit); err != nil {
		s.logger.ErrorContext(ctx, "record lineup submission failed", "session_id", sessionID, "submission_id", submissionID, "error", err)
	}
	if err := s.sessions.Delete(ctx, record.ID); err != nil {
		s.logger.ErrorContext(ctx, "delete submitted session failed", "session_id", sessionID, "error", err)
	}

	s.logger.InfoContext(ctx, "lineup submitted",
		"session_id", sessionID,
		"submission_id", submissionID,
		"match_id", audit.MatchID,
		"team_id", audit.TeamID,
		"entries", len(audit.Entries),
	)
	return SubmitOutcome{Record: audit, Message: audit.RemoteMessage}, nil
}

func (s *LineupBuilderService) ListSubmissions(ctx context.Context, matchID string) ([]lineup.SubmissionRecord, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupBuilderService.ListSubmissions")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, fmt.Errorf("%w: match_id is required", ErrInvalidInput)
	}

	items, err := s.submissions.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list submissions match_id=%s: %w", matchID, err)
	}
	return items, nil
}

func (s *LineupBuilderService) mutate(
	ctx context.Context,
	sessionID string,
	name string,
	op func(context.Context, *lineup.Engine) error,
) (LineupSession, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupBuilderService."+name)
	defer span.End()

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return LineupSession{}, fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}

	unlock, err := s.lock(ctx, sessionID)
	if err != nil {
		return LineupSession{}, err
	}
	defer unlock()

	record, engine, err := s.load(ctx, sessionID)
	if err != nil {
		return LineupSession{}, err
	}
	if err := op(ctx, engine); err != nil {
		return LineupSession{}, mapEngineError(err)
	}

	record.Draft = engine.Snapshot()
	record.UpdatedAt = s.now().UTC()
	if err := s.sessions.Save(ctx, record); err != nil {
		return LineupSession{}, fmt.Errorf("save session: %w", err)
	}
	return buildSessionView(record, engine), nil
}

func (s *LineupBuilderService) load(ctx context.Context, sessionID string) (lineup.SessionRecord, *lineup.Engine, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return lineup.SessionRecord{}, nil, fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}

	record, exists, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return lineup.SessionRecord{}, nil, fmt.Errorf("get session: %w", err)
	}
	if !exists {
		return lineup.SessionRecord{}, nil, fmt.Errorf("%w: lineup session %s", ErrNotFound, sessionID)
	}

	engine, err := lineup.Restore(record.Draft, s.catalog)
	if err != nil {
		return lineup.SessionRecord{}, nil, fmt.Errorf("%w: stored session %s is inconsistent: %w", ErrConflict, sessionID, err)
	}
	return record, engine, nil
}

// lock serializes calls on one session inside this process and, when the
// session store is shared, across every process using it.
func (s *LineupBuilderService) lock(ctx context.Context, sessionID string) (func(), error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	mu := &s.locks[h.Sum32()%sessionLockStripes]
	mu.Lock()

	locker, ok := s.sessions.(lineup.SessionLocker)
	if !ok {
		return mu.Unlock, nil
	}
	release, err := locker.Lock(ctx, sessionID)
	if err != nil {
		mu.Unlock()
		if errors.Is(err, lineup.ErrSessionBusy) {
			return nil, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return nil, fmt.Errorf("lock session: %w", err)
	}
	return func() {
		release()
		mu.Unlock()
	}, nil
}

func mapEngineError(err error) error {
	switch {
	case errors.Is(err, ErrDependencyUnavailable), errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, lineup.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, lineup.ErrConfig), errors.Is(err, lineup.ErrInvalidSelection), errors.Is(err, lineup.ErrInvalidRoster):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	default:
		return err
	}
}

func buildSessionView(record lineup.SessionRecord, engine *lineup.Engine) LineupSession {
	out := LineupSession{
		ID:        record.ID,
		Session:   engine.Session(),
		Slots:     engine.PositionSlots(),
		Players:   engine.Players(),
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	if f, ok := engine.Formation(); ok {
		out.FormationID = f.ID
	}
	if captain, ok := engine.Captain(); ok {
		out.CaptainID = captain.ID
	}
	return out
}
