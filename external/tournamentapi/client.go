package tournamentapi

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/lineup-builder/internal/domain/lineup"
	"github.com/riskibarqy/lineup-builder/internal/domain/match"
	"github.com/riskibarqy/lineup-builder/internal/domain/player"
	"github.com/riskibarqy/lineup-builder/internal/platform/logging"
	"github.com/riskibarqy/lineup-builder/internal/platform/resilience"
	"github.com/riskibarqy/lineup-builder/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const (
	maxResponseBytes   = 4 << 20
	defaultTimeout     = 15 * time.Second
	defaultRetryPeriod = time.Second
)

var (
	errTournamentTransient = crerr.New("tournament api transient failure")
	errTournamentNotFound  = crerr.New("tournament api resource not found")
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the tournament backend: rosters and matches are read with
// retries, lineup requests are posted exactly once.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	retryBackoff   time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	readBudget     time.Duration
	flight         singleflight.Group
}

func NewClient(cfg ClientConfig) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("tournamentapi")

	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid TOURNAMENT_API_BASE_URL")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	retryBackoff := cfg.RetryBackoff
	if retryBackoff <= 0 {
		retryBackoff = defaultRetryPeriod
	}
	maxRetries := max(cfg.MaxRetries, 0)

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	breaker := resilience.NewCircuitBreaker("tournament-api", breakerCfg)
	breaker.OnStateChange(func(name string, from, to resilience.CircuitState) {
		logger.Warn("circuit breaker state changed", "breaker", name, "from", from, "to", to)
	})

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxRetries,
		retryBackoff:   retryBackoff,
		logger:         logger,
		breaker:        breaker,
		circuitEnabled: breakerCfg.Enabled,
		readBudget:     readBudget(httpClient.Timeout, maxRetries, retryBackoff),
	}, nil
}

// readBudget covers every attempt of one read plus the backoff between them.
func readBudget(timeout time.Duration, retries int, backoff time.Duration) time.Duration {
	attempts := time.Duration(retries + 1)
	waits := time.Duration(retries*(retries+1)/2) * backoff
	return attempts*timeout + waits
}

// ListByTeam implements player.RosterReader.
func (c *Client) ListByTeam(ctx context.Context, teamID string) ([]player.Player, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, fmt.Errorf("%w: team id is required", usecase.ErrInvalidInput)
	}

	raw, err := c.get(ctx, "/v1/teams/"+url.PathEscape(teamID)+"/players")
	if err != nil {
		return nil, c.mapError("team", teamID, err)
	}

	players, err := parseRoster(raw)
	if err != nil {
		c.logger.WarnContext(ctx, "malformed roster payload", "team_id", teamID, "error", err, "body", abbreviateBody(raw))
		return nil, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	}
	return players, nil
}

// GetByID implements match.Reader.
func (c *Client) GetByID(ctx context.Context, matchID string) (match.Match, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", usecase.ErrInvalidInput)
	}

	raw, err := c.get(ctx, "/v1/matches/"+url.PathEscape(matchID))
	if err != nil {
		return match.Match{}, c.mapError("match", matchID, err)
	}

	item, err := parseMatch(raw)
	if err != nil {
		c.logger.WarnContext(ctx, "malformed match payload", "match_id", matchID, "error", err, "body", abbreviateBody(raw))
		return match.Match{}, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	}
	return item, nil
}

// Submit implements lineup.Submitter. A 4xx answer carrying
// {"success":false,"message":...} is a rejection, not an error.
func (c *Client) Submit(ctx context.Context, submission lineup.Submission) (lineup.SubmitResult, error) {
	body, err := sonic.Marshal(toSubmissionDTO(submission))
	if err != nil {
		return lineup.SubmitResult{}, crerr.Wrap(err, "marshal lineup submission")
	}

	fullURL := c.baseURL + "/v1/lineups/requests"
	preview := buildCurlPreview(http.MethodPost, fullURL, c.token != "", truncateForLog(string(body), 4096))
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("tournament.match_id", submission.MatchID),
			attribute.String("tournament.formation", submission.Formation),
			attribute.Int("tournament.entries", len(submission.Players)),
		)
	}
	c.logger.DebugContext(ctx, "tournament lineup request", "match_id", submission.MatchID, "curl_preview", preview)

	var status int
	var raw []byte
	callErr := c.guard(ctx, func() error {
		status, raw, err = c.do(ctx, http.MethodPost, fullURL, body)
		if err != nil {
			return err
		}
		if isRetryableStatus(status) {
			return fmt.Errorf("%w: status=%d body=%s", errTournamentTransient, status, abbreviateBody(raw))
		}
		return nil
	})
	if callErr != nil {
		return lineup.SubmitResult{}, c.mapError("lineup request for match", submission.MatchID, callErr)
	}

	result, parseErr := parseSubmitResponse(raw)
	if status/100 == 2 {
		if parseErr != nil {
			return lineup.SubmitResult{}, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, parseErr)
		}
		return result, nil
	}
	if parseErr == nil && !result.Success {
		return result, nil
	}
	return lineup.SubmitResult{}, fmt.Errorf("%w: lineup request status=%d body=%s", usecase.ErrDependencyUnavailable, status, abbreviateBody(raw))
}

// get coalesces identical in-flight reads and retries transient failures
// with linear backoff. The shared read is detached from the caller that
// started it and bounded by readBudget; each caller stops waiting when its
// own context ends.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	fullURL := c.baseURL + path
	results := c.flight.DoChan(fullURL, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.readBudget)
		defer cancel()

		var raw []byte
		callErr := c.guard(shared, func() error {
			var err error
			raw, err = c.getWithRetry(shared, fullURL)
			return err
		})
		return raw, callErr
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}
		raw, _ := res.Val.([]byte)
		return raw, nil
	}
}

func (c *Client) getWithRetry(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		status, raw, err := c.do(ctx, http.MethodGet, fullURL, nil)
		switch {
		case err != nil:
			lastErr = err
		case status/100 == 2:
			return raw, nil
		case status == http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", errTournamentNotFound, abbreviateBody(raw))
		case isRetryableStatus(status):
			lastErr = fmt.Errorf("%w: status=%d body=%s", errTournamentTransient, status, abbreviateBody(raw))
		default:
			return nil, crerr.Newf("tournament api status=%d body=%s", status, abbreviateBody(raw))
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "tournament api request failed", "url", fullURL, "attempts", c.maxRetries+1, "error", lastErr)
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, method, fullURL string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return 0, nil, crerr.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		return 0, nil, fmt.Errorf("%w: send request: %s", errTournamentTransient, redactToken(err.Error(), c.token))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read response body: %v", errTournamentTransient, err)
	}
	return resp.StatusCode, raw, nil
}

func (c *Client) guard(ctx context.Context, fn func() error) error {
	if !c.circuitEnabled {
		return fn()
	}
	err := c.breaker.Execute(fn, isCircuitFailure)
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "tournament api circuit breaker rejected request", "state", c.breaker.State())
	}
	return err
}

func (c *Client) mapError(resource, id string, err error) error {
	switch {
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return err
	case stderrors.Is(err, errTournamentNotFound):
		return fmt.Errorf("%w: %s %s", usecase.ErrNotFound, resource, id)
	case stderrors.Is(err, resilience.ErrCircuitOpen):
		return fmt.Errorf("%w: tournament backend is temporarily unavailable", usecase.ErrDependencyUnavailable)
	default:
		return fmt.Errorf("%w: %s %s: %v", usecase.ErrDependencyUnavailable, resource, id, err)
	}
}

func isCircuitFailure(err error) bool {
	return stderrors.Is(err, errTournamentTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}
