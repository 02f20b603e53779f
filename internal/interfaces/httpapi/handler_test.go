package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/lineup-builder/internal/domain/formation"
	"github.com/riskibarqy/lineup-builder/internal/domain/lineup"
	"github.com/riskibarqy/lineup-builder/internal/domain/match"
	"github.com/riskibarqy/lineup-builder/internal/domain/player"
	"github.com/riskibarqy/lineup-builder/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/lineup-builder/internal/platform/id"
	"github.com/riskibarqy/lineup-builder/internal/platform/logging"
	"github.com/riskibarqy/lineup-builder/internal/usecase"
)

type stubRosters struct{}

func (stubRosters) ListByTeam(_ context.Context, teamID string) ([]player.Player, error) {
	if teamID != "t-home" {
		return nil, fmt.Errorf("%w: team %s", usecase.ErrNotFound, teamID)
	}
	positions := []string{"GK", "LB", "CB", "CB", "RB", "CM", "CM", "CM", "LW", "ST", "RW", "GK", "CM"}
	out := make([]player.Player, 0, len(positions))
	for i, pos := range positions {
		out = append(out, player.Player{
			ID:          fmt.Sprintf("p%02d", i+1),
			Name:        fmt.Sprintf("Player %d", i+1),
			Number:      i + 1,
			Position:    pos,
			IsAvailable: true,
		})
	}
	return out, nil
}

type stubMatches struct{}

func (stubMatches) GetByID(_ context.Context, matchID string) (match.Match, error) {
	if matchID != "m-1" {
		return match.Match{}, fmt.Errorf("%w: match %s", usecase.ErrNotFound, matchID)
	}
	return match.Match{ID: "m-1", HomeTeamID: "t-home", AwayTeamID: "t-away", Status: match.StatusScheduled}, nil
}

type recordingSubmitter struct {
	mu    sync.Mutex
	calls []lineup.Submission
}

func (s *recordingSubmitter) Submit(_ context.Context, submission lineup.Submission) (lineup.SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, submission)
	return lineup.SubmitResult{Success: true, Message: "lineup received"}, nil
}

type apiResponse struct {
	APIVersion string           `json:"apiVersion"`
	Error      *googleErrorBody `json:"error"`
}

func newTestRouter(t *testing.T) (http.Handler, *recordingSubmitter) {
	t.Helper()

	submitter := &recordingSubmitter{}
	builder := usecase.NewLineupBuilderService(
		formation.DefaultCatalog(),
		stubRosters{},
		stubMatches{},
		submitter,
		memory.NewSessionRepository(time.Hour),
		memory.NewSubmissionRepository(),
		id.NewRandomGenerator("ls"),
		logging.NewNop(),
	)
	return NewRouter(NewHandler(builder, logging.NewNop()), logging.NewNop(), []string{"*"}), submitter
}

func doRequest(t *testing.T, router http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var body struct {
		Data T `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v body=%s", err, rec.Body.String())
	}
	return body.Data
}

func startTestSession(t *testing.T, router http.Handler) lineupSessionDTO {
	t.Helper()

	rec := doRequest(t, router, http.MethodPost, "/v1/lineup-sessions",
		`{"match_id":"m-1","team_id":"t-home"}`, requesterHeader, "coach-ana")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	return decodeData[lineupSessionDTO](t, rec)
}

func TestHandler_Healthz(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestHandler_ListFormations(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/formations", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	items := decodeData[[]formationDTO](t, rec)
	if len(items) != formation.DefaultCatalog().Len() {
		t.Fatalf("unexpected formation count: %d", len(items))
	}
	for _, item := range items {
		if item.Size != 11 {
			t.Fatalf("formation %s has %d positions", item.ID, item.Size)
		}
	}
}

func TestHandler_StartSession(t *testing.T) {
	router, _ := newTestRouter(t)

	session := startTestSession(t, router)
	if session.ID == "" {
		t.Fatalf("expected session id")
	}
	if session.RequestedBy != "coach-ana" {
		t.Fatalf("expected requester from header, got %q", session.RequestedBy)
	}
	if len(session.Players) != 13 {
		t.Fatalf("expected 13 players, got %d", len(session.Players))
	}
	if len(session.Slots) != 0 {
		t.Fatalf("expected no slots before a formation is chosen, got %d", len(session.Slots))
	}
}

func TestHandler_StartSession_BadRequests(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "malformed json", body: `{"match_id":`, status: http.StatusBadRequest},
		{name: "unknown field", body: `{"match_id":"m-1","team_id":"t-home","extra":1}`, status: http.StatusBadRequest},
		{name: "missing team", body: `{"match_id":"m-1"}`, status: http.StatusBadRequest},
		{name: "team not in match", body: `{"match_id":"m-1","team_id":"t-other"}`, status: http.StatusNotFound},
		{name: "unknown match", body: `{"match_id":"m-9","team_id":"t-home"}`, status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/v1/lineup-sessions", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d body=%s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandler_SessionNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/lineup-sessions/ls-missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestHandler_ValidateIncompleteLineup(t *testing.T) {
	router, _ := newTestRouter(t)
	session := startTestSession(t, router)

	rec := doRequest(t, router, http.MethodPut, "/v1/lineup-sessions/"+session.ID+"/formation", `{"formation_id":"4-3-3"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("select formation: status %d body=%s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/lineup-sessions/"+session.ID+"/validation", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("validate: status %d", rec.Code)
	}
	result := decodeData[validationDTO](t, rec)
	if result.Valid {
		t.Fatalf("expected invalid lineup")
	}
	if result.Code != lineup.ValidationMissingPositions {
		t.Fatalf("unexpected code %q", result.Code)
	}
	if len(result.MissingPositions) != 11 {
		t.Fatalf("expected 11 missing positions, got %d", len(result.MissingPositions))
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/lineup-sessions/"+session.ID+"/submit", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422 on incomplete submit, got %d", rec.Code)
	}
	var body apiResponse
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Error == nil || len(body.Error.Errors) != 12 {
		t.Fatalf("expected one item per missing position plus the summary, got %+v", body.Error)
	}
}

func TestHandler_BuildAndSubmitLineup(t *testing.T) {
	router, submitter := newTestRouter(t)
	session := startTestSession(t, router)
	base := "/v1/lineup-sessions/" + session.ID

	steps := []struct {
		method string
		path   string
		body   string
	}{
		{method: http.MethodPut, path: base + "/formation", body: `{"formation_id":"4-3-3"}`},
		{method: http.MethodPost, path: base + "/auto-assign"},
		{method: http.MethodPut, path: base + "/bench/p12"},
		{method: http.MethodPut, path: base + "/bench/p13"},
		{method: http.MethodPut, path: base + "/captain", body: `{"player_id":"p01"}`},
	}
	for _, step := range steps {
		rec := doRequest(t, router, step.method, step.path, step.body)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s %s: status %d body=%s", step.method, step.path, rec.Code, rec.Body.String())
		}
	}

	rec := doRequest(t, router, http.MethodGet, base+"/validation", "")
	if result := decodeData[validationDTO](t, rec); !result.Valid {
		t.Fatalf("expected valid lineup, got %+v", result)
	}

	rec = doRequest(t, router, http.MethodPost, base+"/submit", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: status %d body=%s", rec.Code, rec.Body.String())
	}
	record := decodeData[submissionDTO](t, rec)
	if record.FormationID != "4-3-3" || len(record.Players) != 13 {
		t.Fatalf("unexpected submission: %+v", record)
	}
	if len(submitter.calls) != 1 {
		t.Fatalf("expected one backend call, got %d", len(submitter.calls))
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/matches/m-1/lineup-submissions", "")
	if items := decodeData[[]submissionDTO](t, rec); len(items) != 1 || items[0].RequestedBy != "coach-ana" {
		t.Fatalf("unexpected submissions: %+v", items)
	}

	rec = doRequest(t, router, http.MethodGet, base, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected submitted session to be gone, got %d", rec.Code)
	}
}

func TestHandler_AssignAndRemovePosition(t *testing.T) {
	router, _ := newTestRouter(t)
	session := startTestSession(t, router)
	base := "/v1/lineup-sessions/" + session.ID

	doRequest(t, router, http.MethodPut, base+"/formation", `{"formation_id":"4-4-2"}`)

	rec := doRequest(t, router, http.MethodPut, base+"/positions/gk", `{"player_id":"p01"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("assign: status %d body=%s", rec.Code, rec.Body.String())
	}
	view := decodeData[lineupSessionDTO](t, rec)
	if view.Slots[0].Code != "GK" || view.Slots[0].PlayerID != "p01" {
		t.Fatalf("unexpected first slot: %+v", view.Slots[0])
	}

	rec = doRequest(t, router, http.MethodPut, base+"/positions/XX", `{"player_id":"p02"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown position, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodDelete, base+"/positions/GK", "")
	view = decodeData[lineupSessionDTO](t, rec)
	if view.Slots[0].PlayerID != "" {
		t.Fatalf("expected GK to be empty, got %q", view.Slots[0].PlayerID)
	}
}

func TestHandler_AbandonSession(t *testing.T) {
	router, _ := newTestRouter(t)
	session := startTestSession(t, router)

	rec := doRequest(t, router, http.MethodDelete, "/v1/lineup-sessions/"+session.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("abandon: status %d", rec.Code)
	}
	rec = doRequest(t, router, http.MethodGet, "/v1/lineup-sessions/"+session.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after abandon, got %d", rec.Code)
	}
}
