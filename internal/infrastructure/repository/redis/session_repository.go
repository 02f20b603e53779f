package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/lineup-builder/internal/domain/lineup"
	"github.com/riskibarqy/lineup-builder/internal/domain/player"
)

// SessionRepository stores builder session drafts as JSON strings.
type SessionRepository struct {
	client *redis.Client
	cfg    Config
}

var _ lineup.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(ctx context.Context, cfg Config) (*SessionRepository, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &SessionRepository{client: client, cfg: cfg.withLockDefaults()}, nil
}

// NewSessionRepositoryWithClient wraps an existing client.
func NewSessionRepositoryWithClient(client *redis.Client, cfg Config) *SessionRepository {
	return &SessionRepository{client: client, cfg: cfg.withLockDefaults()}
}

func (r *SessionRepository) Close() error {
	return r.client.Close()
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (lineup.SessionRecord, bool, error) {
	data, err := r.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return lineup.SessionRecord{}, false, nil
		}
		return lineup.SessionRecord{}, false, fmt.Errorf("get session %s: %w", sessionID, err)
	}

	var stored sessionDocument
	if err := sonic.Unmarshal(data, &stored); err != nil {
		return lineup.SessionRecord{}, false, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return stored.toDomain(sessionID), true, nil
}

func (r *SessionRepository) Save(ctx context.Context, record lineup.SessionRecord) error {
	data, err := sonic.Marshal(newSessionDocument(record))
	if err != nil {
		return fmt.Errorf("encode session %s: %w", record.ID, err)
	}
	if err := r.client.Set(ctx, sessionKey(record.ID), data, r.cfg.SessionTTL).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", record.ID, err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

type sessionDocument struct {
	MatchID     string            `json:"matchId"`
	TeamID      string            `json:"teamId"`
	RequestedBy string            `json:"requestedBy"`
	Roster      []playerDocument  `json:"roster"`
	FormationID string            `json:"formationId,omitempty"`
	Starting    map[string]string `json:"starting,omitempty"`
	Bench       []string          `json:"bench,omitempty"`
	CaptainID   string            `json:"captainId,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type playerDocument struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Number      int    `json:"number"`
	Position    string `json:"position"`
	IsAvailable bool   `json:"isAvailable"`
}

func newSessionDocument(record lineup.SessionRecord) sessionDocument {
	draft := record.Draft
	out := sessionDocument{
		MatchID:     draft.Session.MatchID,
		TeamID:      draft.Session.TeamID,
		RequestedBy: draft.Session.RequestedBy,
		Roster:      make([]playerDocument, 0, len(draft.Roster)),
		FormationID: draft.FormationID,
		Starting:    draft.Starting,
		Bench:       draft.Bench,
		CaptainID:   draft.CaptainID,
		CreatedAt:   record.CreatedAt.UTC(),
		UpdatedAt:   record.UpdatedAt.UTC(),
	}
	for _, p := range draft.Roster {
		out.Roster = append(out.Roster, playerDocument{
			ID:          p.ID,
			Name:        p.Name,
			Number:      p.Number,
			Position:    p.Position,
			IsAvailable: p.IsAvailable,
		})
	}
	return out
}

func (d sessionDocument) toDomain(sessionID string) lineup.SessionRecord {
	roster := make([]player.Player, 0, len(d.Roster))
	for _, p := range d.Roster {
		roster = append(roster, player.Player{
			ID:          p.ID,
			Name:        p.Name,
			Number:      p.Number,
			Position:    p.Position,
			IsAvailable: p.IsAvailable,
		})
	}
	starting := d.Starting
	if starting == nil {
		starting = map[string]string{}
	}

	return lineup.SessionRecord{
		ID: sessionID,
		Draft: lineup.Draft{
			Session: lineup.Session{
				MatchID:     d.MatchID,
				TeamID:      d.TeamID,
				RequestedBy: d.RequestedBy,
			},
			Roster:      roster,
			FormationID: d.FormationID,
			Starting:    starting,
			Bench:       d.Bench,
			CaptainID:   d.CaptainID,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
