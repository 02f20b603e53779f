package tournamentapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/lineup-builder/internal/domain/lineup"
	"github.com/riskibarqy/lineup-builder/internal/platform/logging"
	"github.com/riskibarqy/lineup-builder/internal/platform/resilience"
	"github.com/riskibarqy/lineup-builder/internal/usecase"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*ClientConfig)) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := ClientConfig{
		HTTPClient:   server.Client(),
		BaseURL:      server.URL + "/",
		Token:        "secret-token",
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
		Logger:       logging.NewNop(),
	}
	if mutate != nil {
		mutate(&cfg)
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClient_RejectsInvalidBaseURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "ftp://example.com", "http://"} {
		if _, err := NewClient(ClientConfig{BaseURL: raw, Logger: logging.NewNop()}); err == nil {
			t.Fatalf("expected error for base url %q", raw)
		}
	}
}

func TestClientListByTeam_ParsesEnvelopeAndBareArray(t *testing.T) {
	t.Parallel()

	bodies := map[string]string{
		"/v1/teams/t1/players": `{"data":[{"id":"p1","name":"Alex","number":1,"position":"GK"},{"id":2,"name":"Ben","number":4,"position":"CB","isAvailable":false}]}`,
		"/v1/teams/t2/players": `[{"id":"p9","name":"Cole","number":9,"position":"ST","isAvailable":true}]`,
	}

	var authHeader atomic.Value
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		authHeader.Store(r.Header.Get("Authorization"))
		body, ok := bodies[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, body)
	}, nil)

	players, err := client.ListByTeam(context.Background(), "t1")
	if err != nil {
		t.Fatalf("list t1: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("expected 2 players, got=%d", len(players))
	}
	if !players[0].IsAvailable {
		t.Fatalf("missing availability should default to available")
	}
	if players[1].ID != "2" || players[1].IsAvailable {
		t.Fatalf("unexpected second player: %+v", players[1])
	}
	if got := authHeader.Load(); got != "Bearer secret-token" {
		t.Fatalf("unexpected authorization header: %v", got)
	}

	players, err = client.ListByTeam(context.Background(), "t2")
	if err != nil {
		t.Fatalf("list t2: %v", err)
	}
	if len(players) != 1 || players[0].Position != "ST" {
		t.Fatalf("unexpected bare array roster: %+v", players)
	}
}

func TestClientListByTeam_NotFound(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}, nil)

	_, err := client.ListByTeam(context.Background(), "missing")
	if !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("404 must not be retried, hits=%d", hits.Load())
	}
}

func TestClientListByTeam_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `[{"id":"p1","name":"Alex","number":1,"position":"GK"}]`)
	}, nil)

	players, err := client.ListByTeam(context.Background(), "t1")
	if err != nil {
		t.Fatalf("expected success after retries, got=%v", err)
	}
	if len(players) != 1 {
		t.Fatalf("expected 1 player, got=%d", len(players))
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 3 attempts, got=%d", hits.Load())
	}
}

func TestClientListByTeam_CoalescedCallerSurvivesFirstCallerCancel(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			close(started)
		}
		<-release
		_, _ = io.WriteString(w, `[{"id":"p1","name":"Alex","number":1,"position":"GK"}]`)
	}, nil)
	defer func() {
		select {
		case <-release:
		default:
			close(release)
		}
	}()

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := client.ListByTeam(firstCtx, "t1")
		firstErr <- err
	}()
	<-started

	type result struct {
		players int
		err     error
	}
	second := make(chan result, 1)
	go func() {
		players, err := client.ListByTeam(context.Background(), "t1")
		second <- result{players: len(players), err: err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected first caller canceled, got=%v", err)
	}

	close(release)
	got := <-second
	if got.err != nil {
		t.Fatalf("expected live caller to succeed, got=%v", got.err)
	}
	if got.players != 1 {
		t.Fatalf("expected 1 player, got=%d", got.players)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one shared request, got=%d", hits.Load())
	}
}

func TestReadBudget(t *testing.T) {
	t.Parallel()

	if got := readBudget(time.Second, 2, 100*time.Millisecond); got != 3300*time.Millisecond {
		t.Fatalf("unexpected read budget: %v", got)
	}
	if got := readBudget(time.Second, 0, time.Second); got != time.Second {
		t.Fatalf("unexpected read budget without retries: %v", got)
	}
}

func TestClientListByTeam_MalformedPayload(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"","name":"Nobody"}]`)
	}, nil)

	_, err := client.ListByTeam(context.Background(), "t1")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got=%v", err)
	}
}

func TestClientGetByID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/matches/m1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"id":"m1","homeTeamId":10,"awayTeamId":"20","status":"scheduled","kickoffAt":"2026-09-05T18:00:00+07:00"}}`)
	}, nil)

	item, err := client.GetByID(context.Background(), "m1")
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if item.HomeTeamID != "10" || item.AwayTeamID != "20" {
		t.Fatalf("unexpected teams: %+v", item)
	}
	if item.KickoffAt == nil || item.KickoffAt.Hour() != 11 {
		t.Fatalf("expected kickoff normalized to UTC, got=%v", item.KickoffAt)
	}
}

func TestClientSubmit(t *testing.T) {
	t.Parallel()

	submission := lineup.Submission{
		MatchID:   "m1",
		Formation: "4-3-3",
		Players: []lineup.SubmissionEntry{
			{PlayerID: "p1", Position: "GK", Role: lineup.RoleStarting, IsCaptain: true},
			{PlayerID: "p12", Position: "GK", Role: lineup.RoleBench},
		},
	}

	tests := []struct {
		name        string
		status      int
		body        string
		wantSuccess bool
		wantMessage string
		wantErr     error
	}{
		{name: "accepted", status: http.StatusOK, body: `{"success":true,"message":"lineup received"}`, wantSuccess: true, wantMessage: "lineup received"},
		{name: "rejected", status: http.StatusUnprocessableEntity, body: `{"success":false,"message":"deadline passed"}`, wantMessage: "deadline passed"},
		{name: "unparseable 4xx", status: http.StatusBadRequest, body: `oops`, wantErr: usecase.ErrDependencyUnavailable},
		{name: "server error", status: http.StatusBadGateway, body: `{}`, wantErr: usecase.ErrDependencyUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var hits atomic.Int32
			var received atomic.Value
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				if r.Method != http.MethodPost || r.URL.Path != "/v1/lineups/requests" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				raw, _ := io.ReadAll(r.Body)
				received.Store(string(raw))
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}, nil)

			result, err := client.Submit(context.Background(), submission)
			if hits.Load() != 1 {
				t.Fatalf("submit must be sent exactly once, hits=%d", hits.Load())
			}
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got=%v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Success != tc.wantSuccess || result.Message != tc.wantMessage {
				t.Fatalf("unexpected result: %+v", result)
			}

			body, _ := received.Load().(string)
			for _, fragment := range []string{`"matchId":"m1"`, `"formation":"4-3-3"`, `"role":"STARTING"`, `"isCaptain":true`, `"role":"BENCH"`} {
				if !strings.Contains(body, fragment) {
					t.Fatalf("request body %s missing %s", body, fragment)
				}
			}
		})
	}
}

func TestClient_CircuitBreakerOpensOnTransientFailures(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, func(cfg *ClientConfig) {
		cfg.MaxRetries = 0
		cfg.CircuitBreaker = resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		}
	})

	if _, err := client.ListByTeam(context.Background(), "t1"); !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got=%v", err)
	}
	if _, err := client.ListByTeam(context.Background(), "t1"); !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable while open, got=%v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("open breaker must short-circuit, hits=%d", hits.Load())
	}
}

func TestBuildCurlPreview_MasksToken(t *testing.T) {
	t.Parallel()

	preview := buildCurlPreview(http.MethodPost, "https://api.example.com/v1/lineups/requests", true, `{"note":"it's"}`)
	if strings.Contains(preview, "secret") {
		t.Fatalf("preview leaked token: %s", preview)
	}
	if !strings.Contains(preview, "Bearer ***") {
		t.Fatalf("expected masked bearer header: %s", preview)
	}
	if !strings.HasPrefix(preview, "curl -X POST 'https://api.example.com/v1/lineups/requests'") {
		t.Fatalf("unexpected preview prefix: %s", preview)
	}
	if !strings.Contains(preview, `'{"note":"it'"'"'s"}'`) {
		t.Fatalf("body not shell-quoted: %s", preview)
	}
}
