package entities

import "time"

// Recommendation is one structured intervention suggestion produced by the
// model. All five fields are always populated: missing values are replaced
// with placeholder defaults at parse time, never left absent.
type Recommendation struct {
	InterventionType string `json:"intervention_type"`
	Priority         string `json:"priority"`
	Action           string `json:"action"`
	Timeline         string `json:"timeline"`
	Goal             string `json:"goal"`
}

// ThinkingStage is a reasoning fragment surfaced for UI transparency. It is
// never folded into the final content.
type ThinkingStage struct {
	Step    int    `json:"step"`
	Content string `json:"content"`
}

// ToolCall records a model-initiated tool invocation. Output stays nil until
// a later event carrying the same call id attaches it; unmatched outputs are
// recorded as orphan entries with a placeholder tool name.
type ToolCall struct {
	Step   int         `json:"step"`
	Tool   string      `json:"tool"`
	Input  interface{} `json:"input"`
	Output interface{} `json:"output"`
	CallID string      `json:"call_id"`
}

// OrphanToolName labels tool outputs that arrive without a matching call,
// typically agent handoff messages.
const OrphanToolName = "System (handoff)"

// RecommendationSource labels which path produced a recommendation result.
type RecommendationSource string

const (
	SourceStructured      RecommendationSource = "supervisor_structured"
	SourceTextFallback    RecommendationSource = "supervisor_fallback"
	SourceStreaming       RecommendationSource = "supervisor_streaming"
	SourceStreamingText   RecommendationSource = "supervisor_streaming_text"
	SourceStreamingEmpty  RecommendationSource = "supervisor_streaming_empty"
	SourceUnavailable     RecommendationSource = "llm_unavailable"
	SourceEmptyResponse   RecommendationSource = "llm_empty_response"
	SourceFeatureDisabled RecommendationSource = "llm_disabled"
)

// RecommendationResult is the per-call, in-memory record handed to the UI.
// It is discarded at end of session or on regeneration.
type RecommendationResult struct {
	DisplayText    string               `json:"llm_recommendations"`
	Structured     []Recommendation     `json:"structured_recommendations"`
	ThinkingStages []ThinkingStage      `json:"thinking_process"`
	ToolCalls      []ToolCall           `json:"tool_calls"`
	StudentContext *Student             `json:"student_context,omitempty"`
	GeneratedAt    time.Time            `json:"generated_at"`
	Source         RecommendationSource `json:"source"`
}

// FormPrefill is the intervention-form pre-fill derived from a chosen
// recommendation.
type FormPrefill struct {
	StudentID        string    `json:"student_id"`
	InterventionType string    `json:"intervention_type"`
	Priority         string    `json:"priority"`
	Details          string    `json:"details"`
	MeetingType      string    `json:"meeting_type,omitempty"`
	MeetingDate      string    `json:"meeting_date,omitempty"`
	MeetingTime      string    `json:"meeting_time,omitempty"`
	SuggestedAt      time.Time `json:"suggested_at"`
}
