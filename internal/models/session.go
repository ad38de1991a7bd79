package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AnswerVector holds one slot per session question. A nil slot is an
// explicitly unanswered question; JSON null round-trips it.
type AnswerVector []*int

// QuizSession is one attempt at a selected set of exams, from start to
// explicit completion.
type QuizSession struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	Course        string          `json:"course"`
	ExamTypes     string          `json:"exam_types"`
	QuestionsJSON json.RawMessage `json:"questions"`
	AnswersJSON   json.RawMessage `json:"answers"`
	ResultJSON    json.RawMessage `json:"result,omitempty"`
	StartedAt     time.Time       `json:"started_at"`
	CompletedAt   *time.Time      `json:"completed_at"`
}

// PerformanceTier is presentational metadata for a percentage band. It is
// attached to results for the UI and never feeds back into any computation.
type PerformanceTier struct {
	Level  string `json:"level"`
	Emblem string `json:"emblem"`
	Color  string `json:"color"`
}

type WrongAnswer struct {
	Ordinal       int    `json:"ordinal"`
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// SessionResult is computed exactly once per completed session and is
// immutable afterwards.
type SessionResult struct {
	Correct          int             `json:"correct"`
	Wrong            int             `json:"wrong"`
	Skipped          int             `json:"skipped"`
	Total            int             `json:"total"`
	Net              float64         `json:"net"`
	Score            float64         `json:"score"`
	Percentage       int             `json:"percentage"`
	Performance      PerformanceTier `json:"performance"`
	TimeSpentSeconds int             `json:"time_spent_seconds"`
	WrongAnswers     []WrongAnswer   `json:"wrong_answers"`
}

// MarshalJSON reports net and score with exactly two decimal digits.
func (r SessionResult) MarshalJSON() ([]byte, error) {
	type alias SessionResult
	return json.Marshal(struct {
		alias
		Net   json.Number `json:"net"`
		Score json.Number `json:"score"`
	}{
		alias: alias(r),
		Net:   json.Number(fmt.Sprintf("%.2f", r.Net)),
		Score: json.Number(fmt.Sprintf("%.2f", r.Score)),
	})
}
