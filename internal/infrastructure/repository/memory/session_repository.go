package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/lineup-builder/internal/domain/lineup"
	"github.com/riskibarqy/lineup-builder/internal/domain/player"
)

// SessionRepository keeps builder sessions in process. Sessions idle longer
// than ttl are dropped on read; ttl <= 0 keeps them forever.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]lineup.SessionRecord
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]lineup.SessionRecord),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *SessionRepository) Get(_ context.Context, sessionID string) (lineup.SessionRecord, bool, error) {
	r.mu.RLock()
	item, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return lineup.SessionRecord{}, false, nil
	}

	if r.expired(item) {
		return r.evict(sessionID)
	}

	return cloneSession(item), true, nil
}

// evict drops the session unless a Save refreshed it after the read lock was
// released, in which case the fresh record is returned.
func (r *SessionRepository) evict(sessionID string) (lineup.SessionRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[sessionID]
	if !ok {
		return lineup.SessionRecord{}, false, nil
	}
	if !r.expired(current) {
		return cloneSession(current), true, nil
	}
	delete(r.sessions, sessionID)
	return lineup.SessionRecord{}, false, nil
}

func (r *SessionRepository) expired(item lineup.SessionRecord) bool {
	return r.ttl > 0 && r.now().Sub(item.UpdatedAt) >= r.ttl
}

func (r *SessionRepository) Save(_ context.Context, record lineup.SessionRecord) error {
	r.mu.Lock()
	r.sessions[record.ID] = cloneSession(record)
	r.mu.Unlock()
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.sessions, sessionID)
	r.mu.Unlock()
	return nil
}

func cloneSession(record lineup.SessionRecord) lineup.SessionRecord {
	out := record
	out.Draft.Roster = append([]player.Player(nil), record.Draft.Roster...)
	out.Draft.Bench = append([]string(nil), record.Draft.Bench...)
	out.Draft.Starting = make(map[string]string, len(record.Draft.Starting))
	for code, playerID := range record.Draft.Starting {
		out.Draft.Starting[code] = playerID
	}
	return out
}
