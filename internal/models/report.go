package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// QuestionReport is a student-flagged faulty question awaiting admin review.
type QuestionReport struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	ExamID       string          `json:"exam_id"`
	QuestionJSON json.RawMessage `json:"question"`
	Reason       string          `json:"reason"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	ResolvedAt   *time.Time      `json:"resolved_at"`
}

// ReportJob is the queue payload a report submission produces.
type ReportJob struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	ExamID      string          `json:"exam_id"`
	Question    json.RawMessage `json:"question"`
	Reason      string          `json:"reason"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// WSMessage is the envelope pushed to connected clients.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
