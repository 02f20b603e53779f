package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_CoalescesConcurrentLoads(t *testing.T) {
	t.Parallel()

	store := NewStore[[]string](time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) ([]string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return []string{"p1", "p2"}, nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "team:1", loader)
			if err != nil {
				errCh <- err
				return
			}
			if len(v) != 2 {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute)
	var calls atomic.Int32
	loadErr := errors.New("upstream down")

	loader := func(context.Context) (int, error) {
		if calls.Add(1) == 1 {
			return 0, loadErr
		}
		return 7, nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); !errors.Is(err, loadErr) {
		t.Fatalf("expected load error, got %v", err)
	}
	got, err := store.GetOrLoad(context.Background(), "k", loader)
	if err != nil || got != 7 {
		t.Fatalf("expected reload to succeed with 7, got %d, %v", got, err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("cached read: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 loader calls, got %d", calls.Load())
	}
}

func TestStore_GetOrLoad_CallerCancelDoesNotFailSharedLoad(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	loader := func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "roster", nil
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := store.GetOrLoad(firstCtx, "roster:t1", loader)
		firstErr <- err
	}()
	<-started

	secondDone := make(chan error, 1)
	var second string
	go func() {
		v, err := store.GetOrLoad(context.Background(), "roster:t1", loader)
		second = v
		secondDone <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected first caller canceled, got %v", err)
	}

	close(release)
	if err := <-secondDone; err != nil {
		t.Fatalf("expected live caller to get the shared value, got %v", err)
	}
	if second != "roster" {
		t.Fatalf("unexpected value %q", second)
	}
	if calls.Load() != 1 {
		t.Fatalf("loader called %d times, want 1", calls.Load())
	}
	if v, ok := store.Get(context.Background(), "roster:t1"); !ok || v != "roster" {
		t.Fatalf("expected shared load cached, got %q %v", v, ok)
	}
}

func TestStore_GetOrLoad_SharedLoadIsBounded(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute)
	store.loadTimeout = 10 * time.Millisecond

	_, err := store.GetOrLoad(context.Background(), "k", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected load deadline, got %v", err)
	}
}

func TestStore_Expiry(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "roster:a", "v")
	if _, ok := store.Get(context.Background(), "roster:a"); !ok {
		t.Fatalf("expected fresh entry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := store.Get(context.Background(), "roster:a"); ok {
		t.Fatalf("expected entry to expire")
	}
	if store.Len() != 0 {
		t.Fatalf("expired entry should be evicted on read")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore[int](0)
	ctx := context.Background()
	store.Set(ctx, "roster:a", 1)
	store.Set(ctx, "roster:b", 2)
	store.Set(ctx, "match:a", 3)

	store.DeletePrefix(ctx, "roster:")

	if _, ok := store.Get(ctx, "roster:a"); ok {
		t.Fatalf("expected roster:a removed")
	}
	if v, ok := store.Get(ctx, "match:a"); !ok || v != 3 {
		t.Fatalf("expected match:a kept, got %d %v", v, ok)
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
