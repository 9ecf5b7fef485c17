package providers

import (
	"context"
	"errors"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
)

// ErrServingNotConfigured indicates no serving endpoint is configured for
// this deployment. Callers degrade to a feature-disabled result.
var ErrServingNotConfigured = errors.New("serving endpoint not configured")

// ErrServingPermissionDenied indicates the forwarded access token was
// rejected by the serving endpoint.
var ErrServingPermissionDenied = errors.New("serving endpoint denied access")

// QueryRequest is one prompt bound for the serving endpoint.
type QueryRequest struct {
	SystemPrompt    string
	Prompt          string
	MaxOutputTokens int
	// ResponseFormat optionally constrains the reply to a JSON schema.
	ResponseFormat map[string]interface{}
}

// StreamPart is one content segment inside a streamed message event.
type StreamPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// StreamDelta is the incremental payload of one chat-style stream chunk.
type StreamDelta struct {
	Content string `json:"content"`
}

// StreamChoice is one entry of a chat-style stream chunk's choices list.
type StreamChoice struct {
	Delta StreamDelta `json:"delta"`
}

// StreamEvent is one decoded event from a serving stream. Agent streams emit
// typed events; envelope events carry the completed item they announce in
// Item. Chat streams emit untyped chunks whose token deltas arrive under
// Choices. Agent output_text delta events are not modeled: the completed
// item repeats the full text, so consuming both would double-count.
type StreamEvent struct {
	Type      string         `json:"type"`
	CallID    string         `json:"call_id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Arguments interface{}    `json:"arguments,omitempty"`
	Output    interface{}    `json:"output,omitempty"`
	Content   []StreamPart   `json:"content,omitempty"`
	Item      *StreamEvent   `json:"item,omitempty"`
	Choices   []StreamChoice `json:"choices,omitempty"`
}

// StreamIterator yields events until the stream is exhausted, signalled by
// io.EOF from Next. Close releases the underlying connection and is safe to
// call more than once.
type StreamIterator interface {
	Next() (StreamEvent, error)
	Close() error
}

// ServingProvider sends prompts to the model-serving endpoint on behalf of
// the authenticated advisor. Implementations must not retry failed requests.
type ServingProvider interface {
	// Query issues a single-shot request and returns the raw reply payload
	// for normalization.
	Query(ctx context.Context, creds entities.Credentials, req QueryRequest) ([]byte, error)

	// QueryStream issues a streaming request. The caller owns the iterator
	// and must close it.
	QueryStream(ctx context.Context, creds entities.Credentials, req QueryRequest) (StreamIterator, error)
}
