package cache

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/lineup-builder/internal/domain/match"
	basecache "github.com/riskibarqy/lineup-builder/internal/platform/cache"
)

const matchKeyPrefix = "match:id:"

// MatchReader keeps recently fetched matches so that a burst of sessions for
// the same fixture reaches the tournament backend once.
type MatchReader struct {
	next  match.Reader
	cache *basecache.Store[match.Match]
}

func NewMatchReader(next match.Reader, ttl time.Duration) *MatchReader {
	return &MatchReader{next: next, cache: basecache.NewStore[match.Match](ttl)}
}

func (r *MatchReader) GetByID(ctx context.Context, matchID string) (match.Match, error) {
	key := matchKeyPrefix + strings.TrimSpace(matchID)
	return r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (match.Match, error) {
		return r.next.GetByID(ctx, matchID)
	})
}

func (r *MatchReader) Invalidate(ctx context.Context, matchID string) {
	r.cache.Delete(ctx, matchKeyPrefix+strings.TrimSpace(matchID))
}
