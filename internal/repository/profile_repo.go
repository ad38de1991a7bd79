package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"examtrack-backend/internal/models"
)

// ProfileRepo stores one StudentProfile document per user. Updates at
// session completion go through UpdateLocked so two concurrent completions
// for the same student can never both fold into the same pre-update state.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Create(ctx context.Context, userID uuid.UUID, profile models.StudentProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO student_profiles (user_id, profile_json)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, data)
	return err
}

func (r *ProfileRepo) Get(ctx context.Context, userID uuid.UUID) (models.StudentProfile, error) {
	var data []byte
	err := r.pool.QueryRow(ctx,
		"SELECT profile_json FROM student_profiles WHERE user_id = $1", userID,
	).Scan(&data)
	if err != nil {
		return models.StudentProfile{}, err
	}

	var profile models.StudentProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return models.StudentProfile{}, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	if profile.Courses == nil {
		profile.Courses = map[string]*models.CourseStats{}
	}
	return profile, nil
}

func (r *ProfileRepo) Put(ctx context.Context, userID uuid.UUID, profile models.StudentProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		UPDATE student_profiles SET profile_json = $1, updated_at = NOW() WHERE user_id = $2
	`, data, userID)
	return err
}

// ProfileEntry pairs a stored profile with its owner.
type ProfileEntry struct {
	UserID  uuid.UUID
	Profile models.StudentProfile
}

func (r *ProfileRepo) ListAll(ctx context.Context) ([]ProfileEntry, error) {
	rows, err := r.pool.Query(ctx, "SELECT user_id, profile_json FROM student_profiles")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ProfileEntry
	for rows.Next() {
		var entry ProfileEntry
		var data []byte
		if err := rows.Scan(&entry.UserID, &data); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &entry.Profile); err != nil {
			return nil, fmt.Errorf("failed to unmarshal profile for %s: %w", entry.UserID, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// UpdateLocked runs apply against the current persisted profile inside a
// transaction holding a row lock, then writes the result back. Concurrent
// updates for the same user serialize on the lock.
func (r *ProfileRepo) UpdateLocked(ctx context.Context, userID uuid.UUID, apply func(models.StudentProfile) (models.StudentProfile, error)) (models.StudentProfile, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return models.StudentProfile{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var data []byte
	err = tx.QueryRow(ctx,
		"SELECT profile_json FROM student_profiles WHERE user_id = $1 FOR UPDATE", userID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.StudentProfile{}, err
	}
	if err != nil {
		return models.StudentProfile{}, fmt.Errorf("failed to lock profile: %w", err)
	}

	var profile models.StudentProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return models.StudentProfile{}, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	if profile.Courses == nil {
		profile.Courses = map[string]*models.CourseStats{}
	}

	updated, err := apply(profile)
	if err != nil {
		return models.StudentProfile{}, err
	}

	out, err := json.Marshal(updated)
	if err != nil {
		return models.StudentProfile{}, fmt.Errorf("failed to marshal profile: %w", err)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE student_profiles SET profile_json = $1, updated_at = NOW() WHERE user_id = $2",
		out, userID,
	); err != nil {
		return models.StudentProfile{}, fmt.Errorf("failed to write profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.StudentProfile{}, fmt.Errorf("failed to commit profile update: %w", err)
	}
	return updated, nil
}
