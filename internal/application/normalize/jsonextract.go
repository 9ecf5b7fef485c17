package normalize

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
)

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)\\n```")

// ExtractCandidateJSON pulls the most likely JSON payload out of a streamed
// text buffer. Extraction order: fenced code block interior, then the first
// brace-delimited object containing the key "recommendations", then the text
// with single backticks stripped.
func ExtractCandidateJSON(text string) string {
	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if obj := findRecommendationsObject(text); obj != "" {
		return obj
	}
	return strings.TrimSpace(strings.ReplaceAll(text, "`", ""))
}

// findRecommendationsObject scans for a balanced brace-delimited object whose
// body mentions the recommendations key. String literals are honored so braces
// inside quoted values do not break the scan.
func findRecommendationsObject(text string) string {
	for start := 0; start < len(text); start++ {
		if text[start] != '{' {
			continue
		}
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(text); i++ {
			c := text[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case c == '\\':
					escaped = true
				case c == '"':
					inString = false
				}
				continue
			}
			switch c {
			case '"':
				inString = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					candidate := text[start : i+1]
					if strings.Contains(candidate, `"recommendations"`) {
						return candidate
					}
					start = i
					i = len(text)
				}
			}
		}
	}
	return ""
}

type recommendationPayload struct {
	Recommendations []map[string]interface{} `json:"recommendations"`
}

// ParseRecommendations decodes a candidate JSON payload into structured
// recommendation entries. Missing fields get display-safe defaults; a payload
// that does not parse, or parses without a recommendations list, returns nil.
func ParseRecommendations(candidate string) []entities.Recommendation {
	var payload recommendationPayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return nil
	}
	if len(payload.Recommendations) == 0 {
		return nil
	}

	recs := make([]entities.Recommendation, 0, len(payload.Recommendations))
	for _, entry := range payload.Recommendations {
		recs = append(recs, entities.Recommendation{
			InterventionType: stringField(entry, "intervention_type", "Unknown"),
			Priority:         stringField(entry, "priority", "Medium"),
			Action:           stringField(entry, "action", "N/A"),
			Timeline:         stringField(entry, "timeline", "N/A"),
			Goal:             stringField(entry, "goal", "N/A"),
		})
	}
	return recs
}
