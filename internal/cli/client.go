package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

const requesterHeader = "X-Requested-By"

// Client calls the lineup builder HTTP API and unwraps its response envelope.
type Client struct {
	baseURL     string
	requestedBy string
	httpClient  *http.Client
}

func NewClient(baseURL, requestedBy string) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		requestedBy: strings.TrimSpace(requestedBy),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is the error half of the response envelope.
type APIError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Status  string          `json:"status"`
	Errors  []APIErrorIssue `json:"errors"`
}

type APIErrorIssue struct {
	Reason   string `json:"reason"`
	Message  string `json:"message"`
	Location string `json:"location"`
}

func (e *APIError) Error() string {
	var missing []string
	for _, issue := range e.Errors {
		if issue.Location != "" {
			missing = append(missing, issue.Location)
		}
	}
	if len(missing) > 0 {
		return fmt.Sprintf("%s (%s): missing %s", e.Message, e.Status, strings.Join(missing, ", "))
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Status)
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return crerr.Wrap(err, "marshal request")
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return crerr.Wrap(err, "create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.requestedBy != "" {
		req.Header.Set(requesterHeader, c.requestedBy)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return crerr.Wrap(err, "request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return crerr.Wrap(err, "read response")
	}

	var env envelope
	if err := sonic.Unmarshal(respBody, &env); err != nil {
		if resp.StatusCode >= 400 {
			return crerr.Newf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		}
		return crerr.Wrap(err, "parse response")
	}
	if env.Error != nil {
		return env.Error
	}
	if resp.StatusCode >= 400 {
		return crerr.Newf("HTTP %d", resp.StatusCode)
	}

	if result != nil && len(env.Data) > 0 {
		if err := sonic.Unmarshal(env.Data, result); err != nil {
			return crerr.Wrap(err, "parse response data")
		}
	}
	return nil
}

func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.Do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.Do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.Do(ctx, http.MethodPut, path, body, result)
}

func (c *Client) Delete(ctx context.Context, path string, result any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, result)
}
