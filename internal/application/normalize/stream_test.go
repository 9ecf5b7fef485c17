package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
	"github.com/riversideu/studentrisk/backend/internal/domain/providers"
)

type recordingSink struct {
	batches [][]Renderable
}

func (s *recordingSink) Flush(items []Renderable) error {
	s.batches = append(s.batches, items)
	return nil
}

func messageEvent(text string) providers.StreamEvent {
	return providers.StreamEvent{
		Type:    "message",
		Content: []providers.StreamPart{{Type: "output_text", Text: text}},
	}
}

func TestAccumulatorBatchesEveryFiveItems(t *testing.T) {
	sink := &recordingSink{}
	acc := NewAccumulator(sink)

	for i := 0; i < 7; i++ {
		require.NoError(t, acc.OnEvent(messageEvent("x")))
	}

	require.Len(t, sink.batches, 1)
	assert.Len(t, sink.batches[0], 5)

	_, err := acc.Finalize()
	require.NoError(t, err)
	require.Len(t, sink.batches, 2)
	assert.Len(t, sink.batches[1], 2)
}

func TestAccumulatorAppendsMessageText(t *testing.T) {
	acc := NewAccumulator(nil)

	require.NoError(t, acc.OnEvent(messageEvent("Recommend ")))
	require.NoError(t, acc.OnEvent(messageEvent("weekly tutoring.")))

	result, err := acc.Finalize()
	require.NoError(t, err)
	assert.Equal(t, "Recommend weekly tutoring.", result.Content)
}

func TestAccumulatorPairsFunctionCallOutput(t *testing.T) {
	acc := NewAccumulator(nil)

	require.NoError(t, acc.OnEvent(providers.StreamEvent{
		Type:      "function_call",
		Name:      "lookup_grades",
		CallID:    "call-7",
		Arguments: `{"student_id":"S004"}`,
	}))
	require.NoError(t, acc.OnEvent(providers.StreamEvent{
		Type:   "function_call_output",
		CallID: "call-7",
		Output: "2 failing grades",
	}))

	result, err := acc.Finalize()
	require.NoError(t, err)
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "lookup_grades", result.ToolCalls[0].Tool)
	assert.Equal(t, "2 failing grades", result.ToolCalls[0].Output)
}

func TestAccumulatorOrphanOutput(t *testing.T) {
	acc := NewAccumulator(nil)

	require.NoError(t, acc.OnEvent(providers.StreamEvent{
		Type:   "function_call_output",
		CallID: "abc",
		Output: "late result",
	}))

	result, err := acc.Finalize()
	require.NoError(t, err)
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, entities.OrphanToolName, result.ToolCalls[0].Tool)
	assert.Equal(t, "late result", result.ToolCalls[0].Output)
}

func TestAccumulatorUnwrapsItemEnvelope(t *testing.T) {
	acc := NewAccumulator(nil)

	require.NoError(t, acc.OnEvent(providers.StreamEvent{
		Type: "response.output_item.done",
		Item: &providers.StreamEvent{
			Type:   "function_call",
			Name:   "fetch_attendance",
			CallID: "c-1",
		},
	}))

	result, err := acc.Finalize()
	require.NoError(t, err)
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "fetch_attendance", result.ToolCalls[0].Tool)
}

func TestAccumulatorIgnoresUnknownEvents(t *testing.T) {
	acc := NewAccumulator(nil)

	require.NoError(t, acc.OnEvent(providers.StreamEvent{Type: "response.created"}))
	require.NoError(t, acc.OnEvent(messageEvent("hello")))

	result, err := acc.Finalize()
	require.NoError(t, err)
	assert.Equal(t, "hello", result.Content)
	assert.Empty(t, result.ToolCalls)
}

func chatChunk(text string) providers.StreamEvent {
	return providers.StreamEvent{
		Choices: []providers.StreamChoice{{Delta: providers.StreamDelta{Content: text}}},
	}
}

func TestAccumulatorAppendsChatDeltas(t *testing.T) {
	acc := NewAccumulator(nil)

	require.NoError(t, acc.OnEvent(chatChunk("Recommend ")))
	require.NoError(t, acc.OnEvent(chatChunk("weekly ")))
	require.NoError(t, acc.OnEvent(chatChunk("tutoring.")))
	// Role-only chunks carry no content and are skipped.
	require.NoError(t, acc.OnEvent(providers.StreamEvent{
		Choices: []providers.StreamChoice{{}},
	}))

	result, err := acc.Finalize()
	require.NoError(t, err)
	assert.Equal(t, "Recommend weekly tutoring.", result.Content)
	assert.Empty(t, result.ToolCalls)
}

func TestAccumulatorFlushesChatDeltaRenderables(t *testing.T) {
	sink := &recordingSink{}
	acc := NewAccumulator(sink)

	for i := 0; i < 5; i++ {
		require.NoError(t, acc.OnEvent(chatChunk("x")))
	}

	require.Len(t, sink.batches, 1)
	require.Len(t, sink.batches[0], 5)
	assert.Equal(t, RenderableMessage, sink.batches[0][0].Kind)
	assert.Equal(t, "x", sink.batches[0][0].Text)
}
