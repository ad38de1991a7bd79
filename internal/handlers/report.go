package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"examtrack-backend/internal/middleware"
	"examtrack-backend/internal/models"
	"examtrack-backend/internal/repository"
	"examtrack-backend/internal/worker"
)

type ReportHandler struct {
	reportRepo *repository.ReportRepo
	redis      *redis.Client
}

func NewReportHandler(reportRepo *repository.ReportRepo, redisClient *redis.Client) *ReportHandler {
	return &ReportHandler{reportRepo: reportRepo, redis: redisClient}
}

// Submit queues a flagged-question report. Persistence happens on the
// worker pool; the student gets an immediate acknowledgement.
func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		ExamID   string          `json:"exam_id"`
		Question json.RawMessage `json:"question"`
		Reason   string          `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.ExamID == "" || len(req.Question) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "exam_id and question are required", r))
		return
	}

	job := models.ReportJob{
		ID:          uuid.New(),
		UserID:      userID,
		ExamID:      req.ExamID,
		Question:    req.Question,
		Reason:      req.Reason,
		SubmittedAt: time.Now(),
	}

	jobBytes, _ := json.Marshal(job)
	if err := h.redis.LPush(r.Context(), worker.ReportQueue, string(jobBytes)).Err(); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to queue report", r))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"report_id": job.ID,
		"message":   "Report received",
	})
}

// Admin endpoints

func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reportRepo.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch reports", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": reports})
}

func (h *ReportHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid report ID", r))
		return
	}

	if err := h.reportRepo.Resolve(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to resolve report", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Report resolved"})
}
