package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/lineup-builder/internal/domain/lineup"
)

type SubmissionRepository struct {
	mu      sync.RWMutex
	byMatch map[string][]lineup.SubmissionRecord
}

func NewSubmissionRepository() *SubmissionRepository {
	return &SubmissionRepository{byMatch: make(map[string][]lineup.SubmissionRecord)}
}

func (r *SubmissionRepository) Create(_ context.Context, record lineup.SubmissionRecord) error {
	record.Entries = append([]lineup.SubmissionEntry(nil), record.Entries...)

	r.mu.Lock()
	r.byMatch[record.MatchID] = append(r.byMatch[record.MatchID], record)
	r.mu.Unlock()
	return nil
}

// ListByMatch returns the newest submission first.
func (r *SubmissionRepository) ListByMatch(_ context.Context, matchID string) ([]lineup.SubmissionRecord, error) {
	r.mu.RLock()
	items := r.byMatch[matchID]
	out := make([]lineup.SubmissionRecord, 0, len(items))
	for _, item := range items {
		item.Entries = append([]lineup.SubmissionEntry(nil), item.Entries...)
		out = append(out, item)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}
