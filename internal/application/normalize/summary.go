package normalize

import (
	"strings"
)

// actionKeywords mark sentences worth surfacing when a reply only carries
// raw reasoning summaries instead of a final text block.
var actionKeywords = []string{
	"recommend", "suggest", "should", "need", "priority", "timeline",
	"action", "meeting", "tutoring", "counseling", "academic", "intervention",
}

// metaPhrases identify model self-talk that must never reach the advisor.
var metaPhrases = []string{
	"we need to", "let's", "probably", "perhaps", "but we need to choose",
}

// extractActionableText scans nested summary lists for advisor-facing
// sentences, falling back to any raw text-bearing field per block.
func extractActionableText(blocks []interface{}) string {
	var parts []string
	for _, raw := range blocks {
		block, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if summary, ok := block["summary"].([]interface{}); ok {
			for _, rawItem := range summary {
				item, ok := rawItem.(map[string]interface{})
				if !ok {
					continue
				}
				text, _ := item["text"].(string)
				if cleaned := cleanReasoningText(text); cleaned != "" {
					parts = append(parts, cleaned)
				}
			}
		} else if text, ok := block["text"]; ok {
			if s := strings.TrimSpace(stringify(text)); s != "" {
				parts = append(parts, s)
			}
		} else if content, ok := block["content"]; ok {
			if s := strings.TrimSpace(stringify(content)); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// cleanReasoningText keeps sentences that carry an action keyword and no
// meta phrase. When nothing survives the filter, the text is returned with
// one known boilerplate line stripped.
func cleanReasoningText(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}

	var kept []string
	for _, sentence := range strings.Split(trimmed, ". ") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		lower := strings.ToLower(sentence)
		if !containsAny(lower, actionKeywords) || containsAny(lower, metaPhrases) {
			continue
		}
		kept = append(kept, sentence)
	}
	if len(kept) > 0 {
		joined := strings.Join(kept, ". ")
		if !strings.HasSuffix(joined, ".") {
			joined += "."
		}
		return joined
	}

	stripped := strings.ReplaceAll(trimmed, "We need to produce structured recommendation.", "")
	return strings.TrimSpace(stripped)
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
