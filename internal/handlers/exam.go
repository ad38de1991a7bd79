package handlers

import (
	"net/http"

	"examtrack-backend/internal/models"
	"examtrack-backend/internal/services"
)

type ExamHandler struct {
	examService *services.ExamService
}

func NewExamHandler(examService *services.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

func (h *ExamHandler) List(w http.ResponseWriter, r *http.Request) {
	exams, err := h.examService.Catalog(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load exam catalog", r))
		return
	}

	if course := r.URL.Query().Get("course"); course != "" {
		filtered := make([]models.Exam, 0, len(exams))
		for _, exam := range exams {
			if exam.Course == course {
				filtered = append(filtered, exam)
			}
		}
		exams = filtered
	}

	// Group for the course picker.
	courses := map[string][]models.Exam{}
	for _, exam := range exams {
		courses[exam.Course] = append(courses[exam.Course], exam)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"exams":   exams,
		"courses": courses,
	})
}

// Refresh drops the cached catalog so newly uploaded exam files show up.
// Admin only.
func (h *ExamHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.examService.InvalidateCatalog(r.Context())

	exams, err := h.examService.Catalog(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to rescan exam catalog", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Catalog refreshed",
		"count":   len(exams),
	})
}
