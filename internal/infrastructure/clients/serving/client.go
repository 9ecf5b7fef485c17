package serving

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
	"github.com/riversideu/studentrisk/backend/internal/domain/providers"
	"github.com/riversideu/studentrisk/backend/internal/infrastructure/observability"
	"github.com/riversideu/studentrisk/backend/pkg/config"
)

const (
	// DefaultTaskType is assumed when the endpoint's metadata cannot be read.
	DefaultTaskType = "chat/completions"

	// TaskTypeAgentResponses marks multi-agent endpoints speaking the
	// responses protocol.
	TaskTypeAgentResponses = "agent/v1/responses"

	defaultMaxOutputTokens = 500
	requestTimeout         = 120 * time.Second
)

// Client talks to the model-serving endpoint with the advisor's forwarded
// token. Requests are issued exactly once; a failed call surfaces to the
// caller without retry.
type Client struct {
	endpoint   string
	baseURL    string
	httpClient *http.Client

	mu       sync.Mutex
	taskType string
}

// NewClient builds a serving client from config. An empty endpoint name is
// allowed and yields a client whose calls report ErrServingNotConfigured.
func NewClient(cfg *config.ServingConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		baseURL:  cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Configured reports whether an endpoint name is set.
func (c *Client) Configured() bool {
	return c.endpoint != ""
}

type endpointMetadata struct {
	Task string `json:"task"`
}

// TaskType returns the endpoint's declared task type, fetched once and
// memoized. Any failure falls back to DefaultTaskType.
func (c *Client) TaskType(ctx context.Context, creds entities.Credentials) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.taskType != "" {
		return c.taskType
	}

	c.taskType = DefaultTaskType
	url := fmt.Sprintf("%s/api/2.0/serving-endpoints/%s", c.baseURL, c.endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return c.taskType
	}
	req.Header.Set("Authorization", "Bearer "+creds.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("endpoint", c.endpoint).
			Msg("task type lookup failed, assuming chat/completions")
		return c.taskType
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var meta endpointMetadata
		if err := json.NewDecoder(resp.Body).Decode(&meta); err == nil && meta.Task != "" {
			c.taskType = meta.Task
		}
	}
	return c.taskType
}

// Query issues a single-shot request and returns the reply payload with the
// serving envelope stripped.
func (c *Client) Query(ctx context.Context, creds entities.Credentials, req providers.QueryRequest) ([]byte, error) {
	if !c.Configured() {
		return nil, providers.ErrServingNotConfigured
	}
	if !creds.Valid() {
		return nil, providers.ErrServingPermissionDenied
	}

	body := c.buildPayload(ctx, creds, req, false)
	raw, err := c.invoke(ctx, creds, body)
	if err != nil {
		return nil, err
	}
	return unwrapEnvelope(raw), nil
}

// QueryStream issues a streaming request. Events arrive as server-sent
// "data:" lines; the returned iterator decodes them one at a time.
func (c *Client) QueryStream(ctx context.Context, creds entities.Credentials, req providers.QueryRequest) (providers.StreamIterator, error) {
	if !c.Configured() {
		return nil, providers.ErrServingNotConfigured
	}
	if !creds.Valid() {
		return nil, providers.ErrServingPermissionDenied
	}

	body := c.buildPayload(ctx, creds, req, true)
	resp, err := c.send(ctx, creds, body)
	if err != nil {
		return nil, err
	}
	return newSSEIterator(resp.Body), nil
}

// buildPayload shapes the request body for the endpoint's task type. Agent
// endpoints take an input list with max_output_tokens; chat endpoints take
// messages with max_tokens.
func (c *Client) buildPayload(ctx context.Context, creds entities.Credentials, req providers.QueryRequest, stream bool) map[string]interface{} {
	maxTokens := req.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxOutputTokens
	}

	taskType := c.TaskType(ctx, creds)
	if taskType == TaskTypeAgentResponses {
		payload := map[string]interface{}{
			"input":             messages(req),
			"max_output_tokens": maxTokens,
			"temperature":       0.7,
		}
		if req.ResponseFormat != nil {
			payload["custom_inputs"] = map[string]interface{}{
				"response_format": req.ResponseFormat,
			}
		}
		if stream {
			payload["stream"] = true
			payload["context"] = map[string]interface{}{}
		}
		return payload
	}

	payload := map[string]interface{}{
		"messages":   messages(req),
		"max_tokens": maxTokens,
	}
	if req.ResponseFormat != nil {
		payload["response_format"] = req.ResponseFormat
	}
	if stream {
		payload["stream"] = true
	}
	return payload
}

func messages(req providers.QueryRequest) []map[string]string {
	var msgs []map[string]string
	if req.SystemPrompt != "" {
		msgs = append(msgs, map[string]string{"role": "system", "content": req.SystemPrompt})
	}
	return append(msgs, map[string]string{"role": "user", "content": req.Prompt})
}

func (c *Client) invoke(ctx context.Context, creds entities.Credentials, payload map[string]interface{}) ([]byte, error) {
	resp, err := c.send(ctx, creds, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// send performs one POST to the invocations URL. Permission failures map to
// ErrServingPermissionDenied so callers can degrade instead of erroring.
func (c *Client) send(ctx context.Context, creds entities.Credentials, payload map[string]interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/serving-endpoints/%s/invocations", c.baseURL, c.endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+creds.Token)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordServingMetric(ctx, c.endpoint, 0, time.Since(start), err)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		recordServingMetric(ctx, c.endpoint, resp.StatusCode, time.Since(start), fmt.Errorf("status %d", resp.StatusCode))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("%w: status %d", providers.ErrServingPermissionDenied, resp.StatusCode)
		}
		return nil, fmt.Errorf("serving request failed with status %d", resp.StatusCode)
	}

	recordServingMetric(ctx, c.endpoint, resp.StatusCode, time.Since(start), nil)
	return resp, nil
}

// unwrapEnvelope strips the serving response wrapper, preferring predictions
// over choices. Unrecognized shapes pass through untouched.
func unwrapEnvelope(raw []byte) []byte {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return raw
	}
	for _, key := range []string{"predictions", "choices"} {
		if inner, ok := envelope[key]; ok && len(inner) > 0 && string(inner) != "null" {
			return inner
		}
	}
	return raw
}
