package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/riversideu/studentrisk/backend/internal/application/normalize"
	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
	"github.com/riversideu/studentrisk/backend/internal/domain/providers"
	"github.com/riversideu/studentrisk/backend/internal/domain/repositories"
	"github.com/riversideu/studentrisk/backend/internal/infrastructure/observability"
	apperrors "github.com/riversideu/studentrisk/backend/pkg/errors"
	"github.com/riversideu/studentrisk/backend/pkg/utils"
)

const (
	unavailableMessage = "AI recommendations are currently unavailable. Please try again later."
	disabledMessage    = "AI recommendations are not configured for this deployment."

	recommendationMaxTokens = 800
	detailsMaxTokens        = 600
)

// Endpoint abstracts the serving client so the service can be tested with a
// stub. The production implementation is serving.Client.
type Endpoint interface {
	providers.ServingProvider
	Configured() bool
}

// RecommendationService turns model replies into advisor-facing
// recommendations. Model failures never surface as request errors: every
// path degrades to a well-formed result whose Source says what happened.
type RecommendationService struct {
	endpoint Endpoint
	students repositories.StudentRepository
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(endpoint Endpoint, students repositories.StudentRepository) *RecommendationService {
	return &RecommendationService{
		endpoint: endpoint,
		students: students,
	}
}

// Generate produces recommendations for one student via a single-shot call.
func (s *RecommendationService) Generate(ctx context.Context, creds entities.Credentials, studentID string) (*entities.RecommendationResult, error) {
	if !creds.Valid() {
		return nil, apperrors.NewUnauthorizedError("missing user credentials")
	}
	student, err := s.students.GetByID(ctx, creds, studentID)
	if err != nil {
		return nil, err
	}

	if !s.endpoint.Configured() {
		return degradedResult(student, disabledMessage, entities.SourceFeatureDisabled), nil
	}

	raw, err := s.endpoint.Query(ctx, creds, providers.QueryRequest{
		Prompt:          BuildRecommendationPrompt(student),
		MaxOutputTokens: recommendationMaxTokens,
		ResponseFormat:  RecommendationResponseFormat(),
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("student_id", studentID).
			Msg("recommendation query failed")
		return degradedResult(student, unavailableMessage, entities.SourceUnavailable), nil
	}

	normalized := normalize.Normalize(normalize.ResolveJSON(raw))
	if strings.TrimSpace(normalized.Content) == "" {
		return degradedResult(student, unavailableMessage, entities.SourceEmptyResponse), nil
	}

	result := resultFromNormalized(student, normalized)
	return result, nil
}

// GenerateStream produces recommendations by consuming the endpoint's event
// stream, draining renderables to sink as they accumulate.
func (s *RecommendationService) GenerateStream(ctx context.Context, creds entities.Credentials, studentID string, sink normalize.Sink) (*entities.RecommendationResult, error) {
	if !creds.Valid() {
		return nil, apperrors.NewUnauthorizedError("missing user credentials")
	}
	student, err := s.students.GetByID(ctx, creds, studentID)
	if err != nil {
		return nil, err
	}

	if !s.endpoint.Configured() {
		return degradedResult(student, disabledMessage, entities.SourceFeatureDisabled), nil
	}

	iter, err := s.endpoint.QueryStream(ctx, creds, providers.QueryRequest{
		Prompt:          BuildRecommendationPrompt(student),
		MaxOutputTokens: recommendationMaxTokens,
		ResponseFormat:  RecommendationResponseFormat(),
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("student_id", studentID).
			Msg("recommendation stream failed to start")
		return degradedResult(student, unavailableMessage, entities.SourceUnavailable), nil
	}
	defer iter.Close()

	acc := normalize.NewAccumulator(sink)
	for {
		event, err := iter.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("student_id", studentID).
				Msg("recommendation stream broke mid-sequence")
			return degradedResult(student, unavailableMessage, entities.SourceUnavailable), nil
		}
		if err := acc.OnEvent(event); err != nil {
			return nil, err
		}
	}

	accumulated, err := acc.Finalize()
	if err != nil {
		return nil, err
	}

	result := resultFromStream(student, accumulated)
	return result, nil
}

// GenerateDetails produces a plain-text action plan for a chosen
// intervention, prefixed with its priority label.
func (s *RecommendationService) GenerateDetails(ctx context.Context, creds entities.Credentials, studentID, interventionType, priority string) (string, error) {
	if !creds.Valid() {
		return "", apperrors.NewUnauthorizedError("missing user credentials")
	}
	student, err := s.students.GetByID(ctx, creds, studentID)
	if err != nil {
		return "", err
	}

	fallback := fmt.Sprintf(
		"Priority: %s\n\nAI intervention details are currently unavailable. Please provide manual details for this %s.",
		priority, interventionType,
	)
	if !s.endpoint.Configured() {
		return fallback, nil
	}

	raw, err := s.endpoint.Query(ctx, creds, providers.QueryRequest{
		Prompt:          BuildDetailsPrompt(student, interventionType, priority),
		MaxOutputTokens: detailsMaxTokens,
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("student_id", studentID).
			Msg("details query failed")
		return fallback, nil
	}

	normalized := normalize.Normalize(normalize.ResolveJSON(raw))
	content := strings.TrimSpace(normalized.Content)
	if content == "" {
		return fallback, nil
	}
	return fmt.Sprintf("Priority: %s\n\n%s", priority, utils.CleanDisplayText(content)), nil
}

// PrefillForm derives intervention-form defaults from a chosen
// recommendation. High priority books an in-person meeting next day at
// 10:00; medium a virtual one in three days at 14:00; anything else a
// virtual one in a week at 15:00.
func (s *RecommendationService) PrefillForm(rec entities.Recommendation, student *entities.Student) entities.FormPrefill {
	now := time.Now()
	prefill := entities.FormPrefill{
		StudentID:        student.StudentID,
		InterventionType: rec.InterventionType,
		Priority:         rec.Priority,
		Details:          prefillDetails(rec, student),
		SuggestedAt:      now,
	}

	switch strings.ToLower(rec.Priority) {
	case "high":
		prefill.MeetingType = "In-Person"
		prefill.MeetingDate = now.AddDate(0, 0, 1).Format("2006-01-02")
		prefill.MeetingTime = "10:00"
	case "medium":
		prefill.MeetingType = "Virtual"
		prefill.MeetingDate = now.AddDate(0, 0, 3).Format("2006-01-02")
		prefill.MeetingTime = "14:00"
	default:
		prefill.MeetingType = "Virtual"
		prefill.MeetingDate = now.AddDate(0, 0, 7).Format("2006-01-02")
		prefill.MeetingTime = "15:00"
	}

	return prefill
}

// prefillDetails builds an agenda from the recommendation and the student's
// standing.
func prefillDetails(rec entities.Recommendation, student *entities.Student) string {
	items := []string{
		fmt.Sprintf("Review academic standing: %s, GPA: %.2f", student.RiskCategory, student.GPA),
	}
	if student.FailingGrades > 0 {
		items = append(items, fmt.Sprintf("Address %d failing course(s)", student.FailingGrades))
	}
	if rec.Action != "" && rec.Action != "N/A" {
		items = append(items, "Action plan: "+rec.Action)
	}
	if rec.Goal != "" && rec.Goal != "N/A" {
		items = append(items, "Success goals: "+rec.Goal)
	}
	if rec.Timeline != "" && rec.Timeline != "N/A" {
		items = append(items, "Timeline: "+rec.Timeline)
	}
	items = append(items,
		"Establish regular check-in schedule",
		"Identify additional support resources needed",
	)

	var b strings.Builder
	fmt.Fprintf(&b, "Priority: %s\n\n", rec.Priority)
	for _, item := range items {
		b.WriteString("• " + item + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// degradedResult is the empty-but-well-formed result returned when the model
// cannot contribute.
func degradedResult(student *entities.Student, message string, source entities.RecommendationSource) *entities.RecommendationResult {
	return &entities.RecommendationResult{
		DisplayText:    message,
		Structured:     []entities.Recommendation{},
		ThinkingStages: []entities.ThinkingStage{},
		ToolCalls:      []entities.ToolCall{},
		StudentContext: student,
		GeneratedAt:    time.Now(),
		Source:         source,
	}
}

// resultFromNormalized classifies a single-shot reply: structured JSON wins,
// otherwise the cleaned text is surfaced as-is.
func resultFromNormalized(student *entities.Student, normalized normalize.Result) *entities.RecommendationResult {
	result := &entities.RecommendationResult{
		Structured:     []entities.Recommendation{},
		ThinkingStages: normalized.ThinkingStages,
		ToolCalls:      normalized.ToolCalls,
		StudentContext: student,
		GeneratedAt:    time.Now(),
	}

	candidate := normalize.ExtractCandidateJSON(normalized.Content)
	if recs := normalize.ParseRecommendations(candidate); len(recs) > 0 {
		result.Structured = recs
		result.DisplayText = utils.FormatRecommendations(recs)
		result.Source = entities.SourceStructured
		return result
	}

	result.DisplayText = utils.CleanDisplayText(normalized.Content)
	result.Source = entities.SourceTextFallback
	return result
}

// resultFromStream classifies an accumulated stream: structured JSON, then
// raw text, then empty.
func resultFromStream(student *entities.Student, accumulated normalize.Result) *entities.RecommendationResult {
	result := &entities.RecommendationResult{
		Structured:     []entities.Recommendation{},
		ThinkingStages: accumulated.ThinkingStages,
		ToolCalls:      accumulated.ToolCalls,
		StudentContext: student,
		GeneratedAt:    time.Now(),
	}

	content := strings.TrimSpace(accumulated.Content)
	if content == "" {
		result.DisplayText = unavailableMessage
		result.Source = entities.SourceStreamingEmpty
		return result
	}

	candidate := normalize.ExtractCandidateJSON(content)
	if recs := normalize.ParseRecommendations(candidate); len(recs) > 0 {
		result.Structured = recs
		result.DisplayText = utils.FormatRecommendations(recs)
		result.Source = entities.SourceStreaming
		return result
	}

	result.DisplayText = utils.CleanDisplayText(content)
	result.Source = entities.SourceStreamingText
	return result
}
