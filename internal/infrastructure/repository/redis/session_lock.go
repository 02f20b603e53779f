package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/lineup-builder/internal/domain/lineup"
)

var _ lineup.SessionLocker = (*SessionRepository)(nil)

// releaseLock deletes the lock only while it still carries the holder's token,
// so an expired holder cannot release a lock someone else took since.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock takes the per-session lock shared by every process using this store.
// It retries until LockWait elapses and then returns lineup.ErrSessionBusy.
func (r *SessionRepository) Lock(ctx context.Context, sessionID string) (func(), error) {
	token, err := lockToken()
	if err != nil {
		return nil, err
	}
	key := sessionLockKey(sessionID)

	deadline := time.Now().Add(r.cfg.LockWait)
	for {
		acquired, err := r.client.SetNX(ctx, key, token, r.cfg.LockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("lock session %s: %w", sessionID, err)
		}
		if acquired {
			return r.unlockFunc(ctx, key, token), nil
		}
		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("%w: %s", lineup.ErrSessionBusy, sessionID)
		}

		timer := time.NewTimer(r.cfg.LockInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *SessionRepository) unlockFunc(ctx context.Context, key, token string) func() {
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		// A failed release expires after LockTTL.
		_ = releaseLock.Run(releaseCtx, r.client, []string{key}, token).Err()
	}
}

func lockToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
