package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"crewkit/core"
)

// Option configures the Client.
type Option func(*Client)

// Client provides typed access to the CrewKit HTTP + WebSocket API.
type Client struct {
	baseURL    string
	wsURL      string
	httpClient *http.Client
	headers    http.Header
}

// NewClient constructs a new SDK client targeting the given baseURL (e.g., http://localhost:8080/api).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("baseURL is required")
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	c := &Client{
		baseURL:    baseURL,
		wsURL:      deriveWSURL(baseURL),
		httpClient: http.DefaultClient,
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithAuthToken adds an Authorization: Bearer token header to all requests (HTTP + WS).
func WithAuthToken(token string) Option {
	return func(c *Client) {
		if strings.TrimSpace(token) != "" {
			c.headers.Set("Authorization", "Bearer "+token)
		}
	}
}

// WithAPIKey adds an X-API-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		if strings.TrimSpace(key) != "" {
			c.headers.Set("X-API-Key", key)
		}
	}
}

// WithHeader sets an arbitrary header applied to HTTP and WS calls.
func WithHeader(k, v string) Option {
	return func(c *Client) {
		if k != "" {
			c.headers.Set(k, v)
		}
	}
}

// GetUser fetches the current evaluation for a crew member without
// persisting anything server-side.
func (c *Client) GetUser(ctx context.Context, userID string) (Evaluation, error) {
	if strings.TrimSpace(userID) == "" {
		return Evaluation{}, ErrEmptyUserID
	}
	u := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(userID))
	return c.doEvaluation(ctx, http.MethodGet, u, nil)
}

// Evaluate runs a full scoring pass for the user, persisting derived
// state and emitting notifications for new unlocks or rank ups.
func (c *Client) Evaluate(ctx context.Context, userID string) (Evaluation, error) {
	if strings.TrimSpace(userID) == "" {
		return Evaluation{}, ErrEmptyUserID
	}
	u := fmt.Sprintf("%s/users/%s/evaluate", c.baseURL, url.PathEscape(userID))
	return c.doEvaluation(ctx, http.MethodPost, u, nil)
}

// CompleteQuiz marks the onboarding quiz done and re-evaluates.
func (c *Client) CompleteQuiz(ctx context.Context, userID string) (Evaluation, error) {
	if strings.TrimSpace(userID) == "" {
		return Evaluation{}, ErrEmptyUserID
	}
	u := fmt.Sprintf("%s/users/%s/quiz/complete", c.baseURL, url.PathEscape(userID))
	return c.doEvaluation(ctx, http.MethodPost, u, nil)
}

// CompleteAssignment marks the survey assignment done and re-evaluates.
func (c *Client) CompleteAssignment(ctx context.Context, userID string) (Evaluation, error) {
	if strings.TrimSpace(userID) == "" {
		return Evaluation{}, ErrEmptyUserID
	}
	u := fmt.Sprintf("%s/users/%s/assignment/complete", c.baseURL, url.PathEscape(userID))
	return c.doEvaluation(ctx, http.MethodPost, u, nil)
}

// CompleteChallenge marks a challenge completed and re-evaluates.
func (c *Client) CompleteChallenge(ctx context.Context, userID, challengeID string) (Evaluation, error) {
	if strings.TrimSpace(userID) == "" {
		return Evaluation{}, ErrEmptyUserID
	}
	if strings.TrimSpace(challengeID) == "" {
		return Evaluation{}, errors.New("challenge id is required")
	}
	u := fmt.Sprintf("%s/users/%s/challenges/%s/complete",
		c.baseURL, url.PathEscape(userID), url.PathEscape(challengeID))
	return c.doEvaluation(ctx, http.MethodPost, u, nil)
}

// RecordTask appends a rated learning task and re-evaluates.
func (c *Client) RecordTask(ctx context.Context, userID, dimension string, rating int, comments []string) (Evaluation, error) {
	if strings.TrimSpace(userID) == "" {
		return Evaluation{}, ErrEmptyUserID
	}
	payload, err := json.Marshal(map[string]any{
		"dimension": dimension,
		"rating":    rating,
		"comments":  comments,
	})
	if err != nil {
		return Evaluation{}, err
	}
	u := fmt.Sprintf("%s/users/%s/tasks", c.baseURL, url.PathEscape(userID))
	return c.doEvaluation(ctx, http.MethodPost, u, payload)
}

func (c *Client) doEvaluation(ctx context.Context, method, u string, payload []byte) (Evaluation, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return Evaluation{}, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Evaluation{}, err
	}
	defer resp.Body.Close()

	var ev Evaluation
	if err := decodeJSON(resp, &ev); err != nil {
		return Evaluation{}, err
	}
	return ev, nil
}

// Health probes /healthz and returns status + storage check.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	u := c.baseURL + "/healthz"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return HealthStatus{}, err
	}
	c.applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HealthStatus{}, err
	}
	defer resp.Body.Close()

	var hs HealthStatus
	if err := decodeJSON(resp, &hs); err != nil {
		return HealthStatus{}, err
	}
	return hs, nil
}

// SubscribeEvents connects to the WebSocket stream and emits core.Event values.
// The returned channel closes when ctx is done or the connection drops.
func (c *Client) SubscribeEvents(ctx context.Context) (<-chan core.Event, error) {
	if c.wsURL == "" {
		return nil, errors.New("wsURL is not set; ensure baseURL is http/https")
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, c.wsURL, c.headers)
	if err != nil {
		return nil, err
	}

	out := make(chan core.Event, 32)
	go func() {
		defer close(out)
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				return
			default:
				var evt core.Event
				if err := conn.ReadJSON(&evt); err != nil {
					return
				}
				select {
				case out <- evt:
				default:
					// drop if consumer is slow
				}
			}
		}
	}()
	return out, nil
}

func (c *Client) applyHeaders(r *http.Request) {
	for k, vals := range c.headers {
		for _, v := range vals {
			r.Header.Add(k, v)
		}
	}
}

func deriveWSURL(httpBase string) string {
	u, err := url.Parse(httpBase)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		// leave as-is for custom schemes
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String()
}
