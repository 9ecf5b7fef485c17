package normalize

import (
	"strings"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
	"github.com/riversideu/studentrisk/backend/internal/domain/providers"
)

// FlushThreshold is how many renderable items accumulate before they are
// drained to the sink. Batching bounds the downstream update frequency.
const FlushThreshold = 5

// RenderableKind distinguishes the items a streaming reply surfaces
// incrementally.
type RenderableKind string

const (
	RenderableMessage    RenderableKind = "message"
	RenderableToolCall   RenderableKind = "tool_call"
	RenderableToolResult RenderableKind = "tool_result"
)

// Renderable is one display-worthy item produced while consuming a stream.
type Renderable struct {
	Kind RenderableKind `json:"kind"`
	Text string         `json:"text,omitempty"`
	Tool string         `json:"tool,omitempty"`
}

// Sink receives batched renderables as the stream progresses. Implementations
// must not retain the slice past the call.
type Sink interface {
	Flush(items []Renderable) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(items []Renderable) error

func (f SinkFunc) Flush(items []Renderable) error { return f(items) }

// Accumulator folds an ordered event sequence into the same uniform result
// the single-shot path produces. It is a single-pass state machine: message
// text appends to a running buffer, tool calls pend by call id until a
// matching output arrives, and renderables drain to the sink every
// FlushThreshold items.
type Accumulator struct {
	sink    Sink
	content strings.Builder
	calls   []entities.ToolCall
	pending []Renderable
}

// NewAccumulator returns an accumulator draining to sink. A nil sink is
// valid and discards renderables.
func NewAccumulator(sink Sink) *Accumulator {
	return &Accumulator{sink: sink}
}

// OnEvent folds one stream event into the accumulated state. Unrecognized
// event types are ignored.
func (a *Accumulator) OnEvent(event providers.StreamEvent) error {
	// Envelope events wrap the completed item they announce.
	if event.Item != nil {
		return a.OnEvent(*event.Item)
	}

	// Chat-style chunks are untyped; token deltas arrive under choices.
	for _, choice := range event.Choices {
		if choice.Delta.Content == "" {
			continue
		}
		a.content.WriteString(choice.Delta.Content)
		a.queue(Renderable{Kind: RenderableMessage, Text: choice.Delta.Content})
	}

	switch event.Type {
	case "message":
		var segment strings.Builder
		for _, part := range event.Content {
			if part.Type == "output_text" || part.Type == "text" {
				segment.WriteString(part.Text)
			}
		}
		if segment.Len() > 0 {
			a.content.WriteString(segment.String())
			a.queue(Renderable{Kind: RenderableMessage, Text: segment.String()})
		}

	case "function_call":
		name := event.Name
		if name == "" {
			name = "Unknown"
		}
		a.calls = appendToolCall(a.calls, entities.ToolCall{
			Tool:   name,
			Input:  event.Arguments,
			CallID: event.CallID,
		})
		a.queue(Renderable{Kind: RenderableToolCall, Tool: name})

	case "function_call_output":
		if !attachToolOutput(a.calls, event.CallID, event.Output) && event.Output != nil {
			a.calls = appendToolCall(a.calls, entities.ToolCall{
				Tool:   entities.OrphanToolName,
				Output: event.Output,
				CallID: event.CallID,
			})
		}
		a.queue(Renderable{Kind: RenderableToolResult, Text: stringify(event.Output)})
	}

	if len(a.pending) >= FlushThreshold {
		return a.flush()
	}
	return nil
}

// Finalize drains any queued renderables and returns the accumulated result.
// The content buffer is returned verbatim; candidate-JSON extraction is the
// caller's concern.
func (a *Accumulator) Finalize() (Result, error) {
	err := a.flush()
	result := EmptyResult()
	result.Content = strings.TrimSpace(a.content.String())
	result.ToolCalls = append(result.ToolCalls, a.calls...)
	return result, err
}

func (a *Accumulator) queue(item Renderable) {
	a.pending = append(a.pending, item)
}

func (a *Accumulator) flush() error {
	if len(a.pending) == 0 || a.sink == nil {
		a.pending = a.pending[:0]
		return nil
	}
	batch := a.pending
	a.pending = nil
	return a.sink.Flush(batch)
}
