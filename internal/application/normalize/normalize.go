package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
)

// Result is the uniform record every reply shape normalizes into.
type Result struct {
	Content        string
	ThinkingStages []entities.ThinkingStage
	ToolCalls      []entities.ToolCall
}

// EmptyResult returns a well-formed result with no content. It is the value
// produced for absent replies and for any reply the chain cannot make sense
// of.
func EmptyResult() Result {
	return Result{
		ThinkingStages: []entities.ThinkingStage{},
		ToolCalls:      []entities.ToolCall{},
	}
}

// Normalize converts a resolved reply into the uniform result. It never
// returns an error and never panics outward: any failure inside the fallback
// chain degrades to an empty result.
func Normalize(reply Reply) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = EmptyResult()
		}
	}()

	switch reply.Kind() {
	case KindText:
		result = EmptyResult()
		result.Content = strings.TrimSpace(reply.text)
	case KindBlockList:
		result = normalizeBlocks(reply.blocks)
	case KindMapping:
		result = normalizeMapping(reply.mapping)
	default:
		result = EmptyResult()
	}
	return result
}

// normalizeBlocks walks an ordered content-block list. Thinking blocks are
// numbered into stages, tool calls are matched to their outputs by call id,
// and the LAST text block wins as final content (last-writer-wins).
func normalizeBlocks(blocks []interface{}) Result {
	result := EmptyResult()
	finalContent := ""

	for _, raw := range blocks {
		block, ok := raw.(map[string]interface{})
		if !ok {
			if s, isStr := raw.(string); isStr && strings.TrimSpace(s) != "" {
				finalContent = s
			}
			continue
		}

		blockType, _ := block["type"].(string)
		role, _ := block["role"].(string)

		switch {
		case blockType == "thinking" || blockType == "reasoning":
			if text := blockText(block); text != "" {
				result.ThinkingStages = appendStage(result.ThinkingStages, text)
			}

		case blockType == "tool_use":
			result.ToolCalls = appendToolCall(result.ToolCalls, entities.ToolCall{
				Tool:   stringField(block, "name", "Unknown Tool"),
				Input:  block["input"],
				CallID: stringify(block["id"]),
			})

		case blockType == "tool_result" || blockType == "function_call_output" || blockType == "tool_call_output":
			callID := stringify(firstOf(block, "call_id", "tool_call_id"))
			output := firstOf(block, "output", "content")
			if !attachToolOutput(result.ToolCalls, callID, output) && output != nil {
				result.ToolCalls = appendToolCall(result.ToolCalls, entities.ToolCall{
					Tool:   entities.OrphanToolName,
					Output: output,
					CallID: callID,
				})
			}

		case blockType == "text":
			if text := strings.TrimSpace(blockText(block)); text != "" {
				finalContent = text
			}

		case role == "assistant" || role == "tool":
			finalContent = mergeRoleBlock(block, &result, finalContent)

		// Chat-style choice entries have no type or top-level role; the
		// payload lives under the message key.
		case block["message"] != nil:
			if message, ok := block["message"].(map[string]interface{}); ok {
				finalContent = mergeRoleBlock(message, &result, finalContent)
			}
		}
	}

	if finalContent == "" {
		finalContent = extractActionableText(blocks)
	}
	if finalContent == "" {
		finalContent = concatTextBlocks(blocks)
	}
	if finalContent == "" {
		if data, err := json.Marshal(blocks); err == nil {
			finalContent = string(data)
		}
	}

	result.Content = strings.TrimSpace(finalContent)
	return result
}

// mergeRoleBlock handles role-tagged message blocks whose content may itself
// be a nested block list. Nesting is one level deep in every observed reply.
func mergeRoleBlock(block map[string]interface{}, result *Result, finalContent string) string {
	switch content := block["content"].(type) {
	case []interface{}:
		for _, rawNested := range content {
			nested, ok := rawNested.(map[string]interface{})
			if !ok {
				continue
			}
			nestedType, _ := nested["type"].(string)
			switch nestedType {
			case "thinking", "reasoning":
				if text := blockText(nested); text != "" {
					result.ThinkingStages = appendStage(result.ThinkingStages, text)
				}
			case "tool_use":
				result.ToolCalls = appendToolCall(result.ToolCalls, entities.ToolCall{
					Tool:   stringField(nested, "name", "Unknown"),
					Input:  nested["input"],
					CallID: stringify(nested["id"]),
				})
			case "text":
				if text := strings.TrimSpace(blockText(nested)); text != "" {
					finalContent = text
				}
			}
		}
	case string:
		if trimmed := strings.TrimSpace(content); trimmed != "" {
			finalContent = trimmed
		}
	}

	// Assistant messages may carry OpenAI-style tool_calls alongside content.
	if rawCalls, ok := block["tool_calls"].([]interface{}); ok {
		for _, rawCall := range rawCalls {
			call, ok := rawCall.(map[string]interface{})
			if !ok {
				continue
			}
			fn, _ := call["function"].(map[string]interface{})
			result.ToolCalls = appendToolCall(result.ToolCalls, entities.ToolCall{
				Tool:   stringField(fn, "name", "Unknown"),
				Input:  fn["arguments"],
				CallID: stringify(call["id"]),
			})
		}
	}

	return finalContent
}

// normalizeMapping handles single-object replies: content is taken from the
// first present key in priority order, thinking and tool call side-channels
// are lifted when the object carries them.
func normalizeMapping(mapping map[string]interface{}) Result {
	result := EmptyResult()

	if thinking := firstOf(mapping, "thinking", "reasoning"); thinking != nil {
		if list, ok := thinking.([]interface{}); ok {
			for _, item := range list {
				result.ThinkingStages = appendStage(result.ThinkingStages, stringify(item))
			}
		} else {
			result.ThinkingStages = appendStage(result.ThinkingStages, stringify(thinking))
		}
	}

	if rawCalls, ok := mapping["tool_calls"].([]interface{}); ok {
		for _, rawCall := range rawCalls {
			call, ok := rawCall.(map[string]interface{})
			if !ok {
				continue
			}
			name := stringField(call, "tool_name", "")
			if name == "" {
				name = stringField(call, "name", "Unknown")
			}
			result.ToolCalls = appendToolCall(result.ToolCalls, entities.ToolCall{
				Tool:   name,
				Input:  firstOf(call, "input", "arguments"),
				Output: firstOf(call, "output", "result"),
				CallID: stringify(call["id"]),
			})
		}
	}

	// A single chat-style choice carries its payload under the message key.
	if message, ok := mapping["message"].(map[string]interface{}); ok {
		if content := strings.TrimSpace(mergeRoleBlock(message, &result, "")); content != "" {
			result.Content = content
			return result
		}
	}

	if content := firstOf(mapping, "text", "content", "output", "response"); content != nil {
		result.Content = strings.TrimSpace(stringify(content))
		return result
	}

	if data, err := json.Marshal(mapping); err == nil {
		result.Content = string(data)
	}
	return result
}

// concatTextBlocks joins every text-typed block, the last-resort path when
// no single block qualified as final content.
func concatTextBlocks(blocks []interface{}) string {
	var parts []string
	for _, raw := range blocks {
		block, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if blockType, _ := block["type"].(string); blockType != "text" {
			continue
		}
		if text := strings.TrimSpace(blockText(block)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

func appendStage(stages []entities.ThinkingStage, content string) []entities.ThinkingStage {
	return append(stages, entities.ThinkingStage{Step: len(stages) + 1, Content: content})
}

func appendToolCall(calls []entities.ToolCall, call entities.ToolCall) []entities.ToolCall {
	call.Step = len(calls) + 1
	return append(calls, call)
}

func attachToolOutput(calls []entities.ToolCall, callID string, output interface{}) bool {
	for i := range calls {
		if calls[i].CallID == callID && callID != "" {
			calls[i].Output = output
			return true
		}
	}
	return false
}

// blockText returns the textual payload of a block, preferring "text" over
// "content".
func blockText(block map[string]interface{}) string {
	if v := firstOf(block, "text", "content"); v != nil {
		return stringify(v)
	}
	return ""
}

// firstOf returns the value of the first present key, or nil.
func firstOf(m map[string]interface{}, keys ...string) interface{} {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func stringField(m map[string]interface{}, key, fallback string) string {
	if m == nil {
		return fallback
	}
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// stringify renders any decoded JSON value as display text.
func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", v)
	}
}
