package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"examtrack-backend/internal/models"
)

// ErrSessionCompleted reports a completion claim on a session that was
// already completed.
var ErrSessionCompleted = errors.New("session already completed")

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Create(ctx context.Context, s *models.QuizSession) error {
	s.ID = uuid.New()
	if len(s.QuestionsJSON) == 0 {
		s.QuestionsJSON = json.RawMessage("[]")
	}
	if len(s.AnswersJSON) == 0 {
		s.AnswersJSON = json.RawMessage("[]")
	}

	query := `INSERT INTO quiz_sessions (id, user_id, course, exam_types, questions_json, answers_json)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING started_at`

	return r.pool.QueryRow(ctx, query,
		s.ID, s.UserID, s.Course, s.ExamTypes, s.QuestionsJSON, s.AnswersJSON,
	).Scan(&s.StartedAt)
}

func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.QuizSession, error) {
	s := &models.QuizSession{}
	query := `SELECT id, user_id, course, exam_types, questions_json, answers_json, result_json, started_at, completed_at
		FROM quiz_sessions WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.Course, &s.ExamTypes, &s.QuestionsJSON,
		&s.AnswersJSON, &s.ResultJSON, &s.StartedAt, &s.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SessionRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.QuizSession, error) {
	query := `SELECT id, user_id, course, exam_types, questions_json, answers_json, result_json, started_at, completed_at
		FROM quiz_sessions WHERE user_id = $1 ORDER BY started_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.QuizSession
	for rows.Next() {
		s := &models.QuizSession{}
		err := rows.Scan(
			&s.ID, &s.UserID, &s.Course, &s.ExamTypes, &s.QuestionsJSON,
			&s.AnswersJSON, &s.ResultJSON, &s.StartedAt, &s.CompletedAt,
		)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (r *SessionRepo) SaveAnswers(ctx context.Context, sessionID uuid.UUID, answers json.RawMessage) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE quiz_sessions SET answers_json = $1 WHERE id = $2 AND completed_at IS NULL",
		answers, sessionID,
	)
	return err
}

// Complete claims the session: exactly one caller can move it from active
// to completed. Everyone else gets ErrSessionCompleted.
func (r *SessionRepo) Complete(ctx context.Context, sessionID uuid.UUID, result json.RawMessage, completedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE quiz_sessions SET result_json = $1, completed_at = $2 WHERE id = $3 AND completed_at IS NULL`,
		result, completedAt, sessionID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionCompleted
	}
	return nil
}
