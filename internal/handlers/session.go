package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"examtrack-backend/internal/middleware"
	"examtrack-backend/internal/models"
	"examtrack-backend/internal/quiz"
	"examtrack-backend/internal/repository"
	"examtrack-backend/internal/services"
	"examtrack-backend/internal/stats"
	"examtrack-backend/internal/streak"
)

type SessionHandler struct {
	sessionRepo *repository.SessionRepo
	profileRepo *repository.ProfileRepo
	examService *services.ExamService
	redis       *redis.Client
	rng         *rand.Rand
}

func NewSessionHandler(sessionRepo *repository.SessionRepo, profileRepo *repository.ProfileRepo, examService *services.ExamService, redisClient *redis.Client) *SessionHandler {
	return &SessionHandler{
		sessionRepo: sessionRepo,
		profileRepo: profileRepo,
		examService: examService,
		redis:       redisClient,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// sessionQuestionView is what an active session exposes to the client:
// everything except the correct answer.
type sessionQuestionView struct {
	Ordinal int      `json:"ordinal"`
	Letters []string `json:"letters"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Number  int      `json:"number,omitempty"`
}

func viewOf(questions []models.SessionQuestion) []sessionQuestionView {
	views := make([]sessionQuestionView, len(questions))
	for i, q := range questions {
		letters := make([]string, len(q.Options))
		for j := range q.Options {
			letters[j] = quiz.OptionLetter(j)
		}
		views[i] = sessionQuestionView{
			Ordinal: q.Ordinal,
			Letters: letters,
			Text:    q.Text,
			Options: q.Options,
			Number:  q.Number,
		}
	}
	return views
}

// sessionState decodes the persisted question and answer vectors. The answer
// vector is padded so it always matches the question count.
func sessionState(session *models.QuizSession) ([]models.SessionQuestion, models.AnswerVector, error) {
	var questions []models.SessionQuestion
	if err := json.Unmarshal(session.QuestionsJSON, &questions); err != nil {
		return nil, nil, fmt.Errorf("corrupted questions for session %s: %w", session.ID, err)
	}

	var answers models.AnswerVector
	if err := json.Unmarshal(session.AnswersJSON, &answers); err != nil {
		return nil, nil, fmt.Errorf("corrupted answers for session %s: %w", session.ID, err)
	}

	for len(answers) < len(questions) {
		answers = append(answers, nil)
	}
	return questions, answers, nil
}

func completionErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, repository.ErrSessionCompleted) {
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "Session already completed", r))
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to complete session", r))
}

func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		ExamIDs []string `json:"exam_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if len(req.ExamIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "exam_ids must not be empty", r))
		return
	}

	questions, course, examTypes, err := h.examService.LoadQuestions(r.Context(), req.ExamIDs)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	sessionQuestions, err := quiz.RandomizeSession(h.rng, questions)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to prepare session", r))
		return
	}

	questionsJSON, _ := json.Marshal(sessionQuestions)
	answersJSON, _ := json.Marshal(make(models.AnswerVector, len(sessionQuestions)))

	session := &models.QuizSession{
		UserID:        userID,
		Course:        course,
		ExamTypes:     examTypes,
		QuestionsJSON: questionsJSON,
		AnswersJSON:   answersJSON,
	}
	if err := h.sessionRepo.Create(r.Context(), session); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to start session", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"session_id": session.ID,
		"course":     course,
		"exam_types": examTypes,
		"started_at": session.StartedAt,
		"questions":  viewOf(sessionQuestions),
	})
}

func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownedSession(w, r)
	if !ok {
		return
	}
	if session.CompletedAt != nil {
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "Session already completed", r))
		return
	}

	var req struct {
		Ordinal     int  `json:"ordinal"`
		AnswerIndex *int `json:"answer_index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	questions, answers, err := sessionState(session)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Corrupted session data", r))
		return
	}

	if req.Ordinal < 1 || req.Ordinal > len(questions) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Ordinal out of range", r))
		return
	}
	question := questions[req.Ordinal-1]
	if req.AnswerIndex != nil && (*req.AnswerIndex < 0 || *req.AnswerIndex >= len(question.Options)) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Answer index out of range", r))
		return
	}

	answers[req.Ordinal-1] = req.AnswerIndex

	answersJSON, _ := json.Marshal(answers)
	if err := h.sessionRepo.SaveAnswers(r.Context(), session.ID, answersJSON); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save answer", r))
		return
	}

	// Immediate feedback; skipping (null) gets none.
	resp := map[string]interface{}{"message": "Answer recorded"}
	if req.AnswerIndex != nil {
		resp["correct"] = *req.AnswerIndex == question.CorrectIndex
		resp["correct_index"] = question.CorrectIndex
		resp["correct_letter"] = quiz.OptionLetter(question.CorrectIndex)
		resp["correct_answer"] = question.Options[question.CorrectIndex]
		resp["explanation"] = question.Explanation
	}
	writeJSON(w, http.StatusOK, resp)
}

// Complete grades the session and folds the result into the student's
// persisted streak and statistics. The completion claim lands first: the
// conditional completed_at UPDATE admits exactly one caller, so a concurrent
// completion or a client retry can never fold the same result twice. The
// fold itself is a read-modify-write under a row lock, so a concurrent
// completion for the same student cannot lose an update. "Now" is captured
// once and used for every date in the update.
func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownedSession(w, r)
	if !ok {
		return
	}
	if session.CompletedAt != nil {
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "Session already completed", r))
		return
	}

	questions, answers, err := sessionState(session)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Corrupted session data", r))
		return
	}

	now := time.Now()
	timeSpent := int(now.Sub(session.StartedAt).Seconds())

	result, err := quiz.CalculateResults(questions, answers, timeSpent)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to grade session", r))
		return
	}

	resultJSON, _ := json.Marshal(result)
	if err := h.sessionRepo.Complete(r.Context(), session.ID, resultJSON, now); err != nil {
		completionErrorResponse(w, r, err)
		return
	}

	userID := middleware.GetUserID(r.Context())
	profile, err := h.profileRepo.UpdateLocked(r.Context(), userID, func(p models.StudentProfile) (models.StudentProfile, error) {
		p.Streak = streak.RecordActivity(p.Streak, now)
		return stats.Apply(p, *result, session.Course, session.ExamTypes, now), nil
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update statistics", r))
		return
	}

	h.publish(r, userID, models.WSMessage{
		Type: "session_completed",
		Payload: map[string]interface{}{
			"session_id": session.ID,
			"score":      result.Score,
			"percentage": result.Percentage,
			"streak":     profile.Streak.Current,
		},
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"result": result,
		"streak": map[string]interface{}{
			"state":   profile.Streak,
			"message": streak.MessageFor(profile.Streak.Current),
		},
		"statistics": profile.Stats,
	})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownedSession(w, r)
	if !ok {
		return
	}

	questions, _, err := sessionState(session)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Corrupted session data", r))
		return
	}

	resp := map[string]interface{}{
		"session_id":   session.ID,
		"course":       session.Course,
		"exam_types":   session.ExamTypes,
		"started_at":   session.StartedAt,
		"completed_at": session.CompletedAt,
		"answers":      json.RawMessage(session.AnswersJSON),
	}

	// Correct answers stay hidden until the session is completed.
	if session.CompletedAt != nil {
		resp["questions"] = questions
		resp["result"] = json.RawMessage(session.ResultJSON)
	} else {
		resp["questions"] = viewOf(questions)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	sessions, err := h.sessionRepo.ListByUser(r.Context(), userID, 20)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch sessions", r))
		return
	}

	type summary struct {
		ID          uuid.UUID       `json:"id"`
		Course      string          `json:"course"`
		ExamTypes   string          `json:"exam_types"`
		StartedAt   time.Time       `json:"started_at"`
		CompletedAt *time.Time      `json:"completed_at"`
		Result      json.RawMessage `json:"result,omitempty"`
	}
	summaries := make([]summary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, summary{
			ID: s.ID, Course: s.Course, ExamTypes: s.ExamTypes,
			StartedAt: s.StartedAt, CompletedAt: s.CompletedAt, Result: s.ResultJSON,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": summaries})
}

func (h *SessionHandler) ownedSession(w http.ResponseWriter, r *http.Request) (*models.QuizSession, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return nil, false
	}

	session, err := h.sessionRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return nil, false
	}

	if session.UserID != middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return nil, false
	}
	return session, true
}

func (h *SessionHandler) publish(r *http.Request, userID uuid.UUID, msg models.WSMessage) {
	if h.redis == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.redis.Publish(r.Context(), "student_updates:"+userID.String(), data)
}
