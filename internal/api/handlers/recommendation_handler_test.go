package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riversideu/studentrisk/backend/internal/api/handlers"
	"github.com/riversideu/studentrisk/backend/internal/application/normalize"
	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
	apperrors "github.com/riversideu/studentrisk/backend/pkg/errors"
)

type stubRecommendationService struct {
	result      *entities.RecommendationResult
	details     string
	renderables [][]normalize.Renderable
	err         error
}

func (s *stubRecommendationService) Generate(ctx context.Context, creds entities.Credentials, studentID string) (*entities.RecommendationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubRecommendationService) GenerateStream(ctx context.Context, creds entities.Credentials, studentID string, sink normalize.Sink) (*entities.RecommendationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, batch := range s.renderables {
		if err := sink.Flush(batch); err != nil {
			return nil, err
		}
	}
	return s.result, nil
}

func (s *stubRecommendationService) GenerateDetails(ctx context.Context, creds entities.Credentials, studentID, interventionType, priority string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.details, nil
}

func (s *stubRecommendationService) PrefillForm(rec entities.Recommendation, student *entities.Student) entities.FormPrefill {
	return entities.FormPrefill{
		StudentID:        student.StudentID,
		InterventionType: rec.InterventionType,
		Priority:         rec.Priority,
		MeetingType:      "In-Person",
		MeetingTime:      "10:00",
		SuggestedAt:      time.Now(),
	}
}

func streamedResult() *entities.RecommendationResult {
	return &entities.RecommendationResult{
		DisplayText: "1. Tutoring Referral (High Priority)",
		Structured: []entities.Recommendation{
			{InterventionType: "Tutoring Referral", Priority: "High", Action: "a", Timeline: "t", Goal: "g"},
		},
		Source:      entities.SourceStreaming,
		GeneratedAt: time.Now(),
	}
}

func TestRecommendationHandler_Generate(t *testing.T) {
	service := &stubRecommendationService{result: streamedResult()}
	handler := handlers.NewRecommendationHandler(service, &stubStudentService{})

	req := withCreds(httptest.NewRequest("POST", "/api/students/S001/recommendations", nil))
	req.SetPathValue("id", "S001")
	w := httptest.NewRecorder()

	handler.GenerateRecommendations(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var result entities.RecommendationResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, entities.SourceStreaming, result.Source)
	require.Len(t, result.Structured, 1)
}

func TestRecommendationHandler_Generate_MissingID(t *testing.T) {
	handler := handlers.NewRecommendationHandler(&stubRecommendationService{}, &stubStudentService{})

	req := withCreds(httptest.NewRequest("POST", "/api/students//recommendations", nil))
	w := httptest.NewRecorder()

	handler.GenerateRecommendations(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecommendationHandler_Stream(t *testing.T) {
	service := &stubRecommendationService{
		result: streamedResult(),
		renderables: [][]normalize.Renderable{
			{
				{Kind: normalize.RenderableToolCall, Tool: "lookup_grades"},
				{Kind: normalize.RenderableMessage, Text: "Reviewing transcript."},
			},
		},
	}
	handler := handlers.NewRecommendationHandler(service, &stubStudentService{})

	req := withCreds(httptest.NewRequest("GET", "/api/students/S001/recommendations/stream", nil))
	req.SetPathValue("id", "S001")
	w := httptest.NewRecorder()

	handler.StreamRecommendations(w, req)

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "event: renderables\n")
	assert.Contains(t, body, "lookup_grades")
	assert.Contains(t, body, "event: result\n")
	assert.Contains(t, body, "Tutoring Referral")
}

func TestRecommendationHandler_Stream_ErrorEvent(t *testing.T) {
	service := &stubRecommendationService{err: apperrors.NewNotFoundError("student with id S404 not found")}
	handler := handlers.NewRecommendationHandler(service, &stubStudentService{})

	req := withCreds(httptest.NewRequest("GET", "/api/students/S404/recommendations/stream", nil))
	req.SetPathValue("id", "S404")
	w := httptest.NewRecorder()

	handler.StreamRecommendations(w, req)

	assert.Contains(t, w.Body.String(), "event: error\n")
}

func TestRecommendationHandler_GenerateDetails(t *testing.T) {
	service := &stubRecommendationService{details: "Priority: High\n\n1. Weekly tutoring sessions"}
	handler := handlers.NewRecommendationHandler(service, &stubStudentService{})

	body := `{"student_id":"S001","intervention_type":"Tutoring Referral","priority":"High"}`
	req := withCreds(httptest.NewRequest("POST", "/api/recommendations/details", strings.NewReader(body)))
	w := httptest.NewRecorder()

	handler.GenerateDetails(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Contains(t, response["details"], "Weekly tutoring")
}

func TestRecommendationHandler_GenerateDetails_MissingFields(t *testing.T) {
	handler := handlers.NewRecommendationHandler(&stubRecommendationService{}, &stubStudentService{})

	body := `{"student_id":"S001"}`
	req := withCreds(httptest.NewRequest("POST", "/api/recommendations/details", strings.NewReader(body)))
	w := httptest.NewRecorder()

	handler.GenerateDetails(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecommendationHandler_PrefillForm(t *testing.T) {
	service := &stubRecommendationService{}
	students := &stubStudentService{students: []*entities.Student{rosterStudent()}}
	handler := handlers.NewRecommendationHandler(service, students)

	body := `{"student_id":"S001","recommendation":{"intervention_type":"Academic Meeting","priority":"High"}}`
	req := withCreds(httptest.NewRequest("POST", "/api/recommendations/prefill", strings.NewReader(body)))
	w := httptest.NewRecorder()

	handler.PrefillForm(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var prefill entities.FormPrefill
	require.NoError(t, json.NewDecoder(w.Body).Decode(&prefill))
	assert.Equal(t, "S001", prefill.StudentID)
	assert.Equal(t, "In-Person", prefill.MeetingType)
}

func TestRecommendationHandler_PrefillForm_UnknownStudent(t *testing.T) {
	handler := handlers.NewRecommendationHandler(&stubRecommendationService{}, &stubStudentService{})

	body := `{"student_id":"S404","recommendation":{"intervention_type":"Academic Meeting","priority":"High"}}`
	req := withCreds(httptest.NewRequest("POST", "/api/recommendations/prefill", strings.NewReader(body)))
	w := httptest.NewRecorder()

	handler.PrefillForm(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
