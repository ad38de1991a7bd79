package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"examtrack-backend/internal/middleware"
	"examtrack-backend/internal/models"
	"examtrack-backend/internal/repository"
	"examtrack-backend/internal/streak"
)

type StudentHandler struct {
	profileRepo *repository.ProfileRepo
}

func NewStudentHandler(profileRepo *repository.ProfileRepo) *StudentHandler {
	return &StudentHandler{profileRepo: profileRepo}
}

func (h *StudentHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	profile, err := h.profileRepo.Get(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Profile not found", r))
		return
	}

	// Lapsed streaks read as zero without being rewritten; the next
	// completed session persists the reset anyway.
	profile.Streak = streak.Validate(profile.Streak, time.Now())

	writeJSON(w, http.StatusOK, profile)
}

func (h *StudentHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		DisplayName *string `json:"display_name"`
		Status      *string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.DisplayName != nil && *req.DisplayName == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Display name must not be empty", r))
		return
	}

	profile, err := h.profileRepo.UpdateLocked(r.Context(), userID, func(p models.StudentProfile) (models.StudentProfile, error) {
		if req.DisplayName != nil {
			p.DisplayName = *req.DisplayName
		}
		if req.Status != nil {
			p.Status = *req.Status
		}
		return p, nil
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update profile", r))
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *StudentHandler) Streak(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	profile, err := h.profileRepo.Get(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Profile not found", r))
		return
	}

	now := time.Now()
	state := streak.Validate(profile.Streak, now)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"streak":             state,
		"has_activity_today": streak.HasActivityToday(state, now),
		"at_risk":            streak.IsAtRisk(state, now),
		"message":            streak.MessageFor(state.Current),
	})
}

// ResetStats is the explicit external reset: statistics and streak go back
// to the zero state, only the display name survives.
func (h *StudentHandler) ResetStats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	profile, err := h.profileRepo.UpdateLocked(r.Context(), userID, func(p models.StudentProfile) (models.StudentProfile, error) {
		return models.NewStudentProfile(p.DisplayName), nil
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to reset statistics", r))
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *StudentHandler) WrongQuestions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	profile, err := h.profileRepo.Get(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Profile not found", r))
		return
	}

	course := r.URL.Query().Get("course")
	if course != "" {
		cs, ok := profile.Courses[course]
		if !ok {
			writeJSON(w, http.StatusOK, map[string]interface{}{"wrong_questions": []models.WrongQuestionEntry{}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"wrong_questions": cs.WrongQuestions})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"wrong_questions": profile.AllWrongQuestions})
}
