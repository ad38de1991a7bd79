package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"examtrack-backend/internal/models"
)

type ReportRepo struct {
	pool *pgxpool.Pool
}

func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

func (r *ReportRepo) Create(ctx context.Context, report *models.QuestionReport) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if len(report.QuestionJSON) == 0 {
		report.QuestionJSON = json.RawMessage("{}")
	}
	report.Status = "open"

	query := `INSERT INTO question_reports (id, user_id, exam_id, question_json, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		report.ID, report.UserID, report.ExamID, report.QuestionJSON, report.Reason, report.Status,
	).Scan(&report.CreatedAt)
}

func (r *ReportRepo) List(ctx context.Context, status string) ([]*models.QuestionReport, error) {
	query := `SELECT id, user_id, exam_id, question_json, reason, status, created_at, resolved_at
		FROM question_reports`
	args := []interface{}{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*models.QuestionReport
	for rows.Next() {
		report := &models.QuestionReport{}
		err := rows.Scan(
			&report.ID, &report.UserID, &report.ExamID, &report.QuestionJSON,
			&report.Reason, &report.Status, &report.CreatedAt, &report.ResolvedAt,
		)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (r *ReportRepo) Resolve(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE question_reports SET status = 'resolved', resolved_at = NOW() WHERE id = $1",
		id,
	)
	return err
}
