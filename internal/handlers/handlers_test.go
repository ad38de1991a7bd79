package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"examtrack-backend/internal/models"
	"examtrack-backend/internal/repository"
	"examtrack-backend/internal/services"
)

// ─── Shared Helper Tests ───

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	writeJSON(rr, http.StatusCreated, map[string]string{"message": "ok"})

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", ct)
	}

	var result map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result["message"] != "ok" {
		t.Errorf("Expected message 'ok', got %q", result["message"])
	}
}

func TestErrorResp_CarriesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/student/profile", nil)
	req.Header.Set("X-Request-ID", "req-123")

	resp := errorResp("NOT_FOUND", "Profile not found", req)

	if resp.Error.Code != "NOT_FOUND" {
		t.Errorf("Expected code NOT_FOUND, got %q", resp.Error.Code)
	}
	if resp.Error.Message != "Profile not found" {
		t.Errorf("Expected message 'Profile not found', got %q", resp.Error.Message)
	}
	if resp.Error.RequestID != "req-123" {
		t.Errorf("Expected request ID 'req-123', got %q", resp.Error.RequestID)
	}
}

func TestHandleServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"email": "Email is required"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"conflict", &services.ConflictError{Message: "Email already registered"}, http.StatusConflict, "CONFLICT"},
		{"not found", &services.NotFoundError{Message: "Exam not found"}, http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", &services.UnauthorizedError{Message: "Invalid credentials"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", &services.ForbiddenError{Message: "Admin access required"}, http.StatusForbidden, "FORBIDDEN"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", nil)
			rr := httptest.NewRecorder()

			handleServiceError(rr, req, tt.err)

			if rr.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rr.Code)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("Expected code %q, got %q", tt.wantCode, resp.Error.Code)
			}
		})
	}
}

func TestHandleServiceError_ValidationFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", nil)
	rr := httptest.NewRecorder()

	handleServiceError(rr, req, &services.ValidationError{Fields: map[string]string{
		"password": "Password must be at least 8 characters",
	}})

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Error.Fields["password"] == "" {
		t.Error("Expected field-level error for password")
	}
}

// ─── Session View Tests ───

func TestViewOf_HidesCorrectAnswers(t *testing.T) {
	questions := []models.SessionQuestion{
		{
			Question: models.Question{
				Text:         "Capital of France?",
				Options:      []string{"Berlin", "Paris", "Rome"},
				CorrectIndex: 1,
				Explanation:  "Paris has been the capital since 508.",
			},
			Ordinal:              1,
			OriginalCorrectIndex: 2,
		},
	}

	views := viewOf(questions)
	if len(views) != 1 {
		t.Fatalf("Expected 1 view, got %d", len(views))
	}

	data, err := json.Marshal(views)
	if err != nil {
		t.Fatalf("Failed to marshal views: %v", err)
	}
	payload := string(data)

	if strings.Contains(payload, "correct") {
		t.Errorf("Active-session view leaks correct answer fields: %s", payload)
	}
	if strings.Contains(payload, "Explanation") || strings.Contains(payload, "explanation") {
		t.Errorf("Active-session view leaks explanation: %s", payload)
	}
	if !strings.Contains(payload, "Capital of France?") {
		t.Error("View should still carry the question text")
	}
}

func TestViewOf_LettersMatchOptionCount(t *testing.T) {
	questions := []models.SessionQuestion{
		{
			Question: models.Question{Text: "q", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 0},
			Ordinal:  1,
		},
	}

	views := viewOf(questions)
	want := []string{"A", "B", "C", "D"}
	if len(views[0].Letters) != len(want) {
		t.Fatalf("Expected %d letters, got %d", len(want), len(views[0].Letters))
	}
	for i, l := range want {
		if views[0].Letters[i] != l {
			t.Errorf("Letters[%d] = %q, want %q", i, views[0].Letters[i], l)
		}
	}
}

// ─── Session State Tests ───

func TestSessionState_RejectsCorruptedData(t *testing.T) {
	valid, _ := json.Marshal([]models.SessionQuestion{
		{Question: models.Question{Text: "q", Options: []string{"a", "b"}, CorrectIndex: 0}, Ordinal: 1},
	})

	tests := []struct {
		name      string
		questions string
		answers   string
	}{
		{"corrupted questions", `{not json`, `[]`},
		{"corrupted answers", string(valid), `{not json`},
		{"questions not an array", `{"text":"q"}`, `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &models.QuizSession{
				QuestionsJSON: json.RawMessage(tt.questions),
				AnswersJSON:   json.RawMessage(tt.answers),
			}
			if _, _, err := sessionState(session); err == nil {
				t.Error("Expected error for corrupted session data, got nil")
			}
		})
	}
}

func TestSessionState_PadsAnswerVector(t *testing.T) {
	questions := []models.SessionQuestion{
		{Question: models.Question{Text: "q1", Options: []string{"a", "b"}, CorrectIndex: 0}, Ordinal: 1},
		{Question: models.Question{Text: "q2", Options: []string{"a", "b"}, CorrectIndex: 1}, Ordinal: 2},
	}
	questionsJSON, _ := json.Marshal(questions)

	session := &models.QuizSession{
		QuestionsJSON: questionsJSON,
		AnswersJSON:   json.RawMessage(`[1]`),
	}

	got, answers, err := sessionState(session)
	if err != nil {
		t.Fatalf("sessionState() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 questions, got %d", len(got))
	}
	if len(answers) != 2 {
		t.Fatalf("Expected answer vector padded to 2, got %d", len(answers))
	}
	if answers[0] == nil || *answers[0] != 1 {
		t.Errorf("Expected answers[0] = 1, got %v", answers[0])
	}
	if answers[1] != nil {
		t.Errorf("Expected padded slot to be nil, got %v", *answers[1])
	}
}

// ─── Completion Claim Tests ───

func TestCompletionErrorResponse_AlreadyClaimed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/abc/complete", nil)
	rr := httptest.NewRecorder()

	completionErrorResponse(rr, req, repository.ErrSessionCompleted)

	if rr.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for an already-claimed completion, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Error.Code != "CONFLICT" {
		t.Errorf("Expected code CONFLICT, got %q", resp.Error.Code)
	}
}

func TestCompletionErrorResponse_OtherErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/abc/complete", nil)
	rr := httptest.NewRecorder()

	completionErrorResponse(rr, req, errors.New("connection reset"))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500 for unexpected errors, got %d", rr.Code)
	}
}

// ─── Request Parsing Tests ───

func TestStartRequest_ParsesExamIDs(t *testing.T) {
	body := map[string]interface{}{
		"exam_ids": []string{"Calculus_2024-2025 Fall Midterm"},
	}
	jsonBody, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/start", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	var parsed struct {
		ExamIDs []string `json:"exam_ids"`
	}
	if err := json.NewDecoder(req.Body).Decode(&parsed); err != nil {
		t.Fatalf("Failed to parse request body: %v", err)
	}
	if len(parsed.ExamIDs) != 1 || parsed.ExamIDs[0] != "Calculus_2024-2025 Fall Midterm" {
		t.Errorf("Unexpected exam IDs: %v", parsed.ExamIDs)
	}
}

func TestAnswerRequest_NullAnswerMeansSkip(t *testing.T) {
	jsonBody := []byte(`{"ordinal": 3, "answer_index": null}`)

	var parsed struct {
		Ordinal     int  `json:"ordinal"`
		AnswerIndex *int `json:"answer_index"`
	}
	if err := json.NewDecoder(bytes.NewReader(jsonBody)).Decode(&parsed); err != nil {
		t.Fatalf("Failed to parse request body: %v", err)
	}
	if parsed.Ordinal != 3 {
		t.Errorf("Expected ordinal 3, got %d", parsed.Ordinal)
	}
	if parsed.AnswerIndex != nil {
		t.Errorf("Expected nil answer index for skip, got %v", *parsed.AnswerIndex)
	}
}
