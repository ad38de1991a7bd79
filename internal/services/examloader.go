package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"examtrack-backend/internal/models"
)

const catalogCacheKey = "exam_catalog"

// ExamService loads past-exam question files from a directory tree shaped
// like exams/<Course Name>/<2024-2025 Fall Midterm>.json and keeps the
// parsed catalog in Redis.
type ExamService struct {
	dir   string
	redis *redis.Client
	ttl   time.Duration
}

func NewExamService(dir string, redisClient *redis.Client, cacheTTL time.Duration) *ExamService {
	return &ExamService{dir: dir, redis: redisClient, ttl: cacheTTL}
}

var yearRangeRegex = regexp.MustCompile(`(\d{4})-(\d{4})`)

// Catalog returns all known exams, grouped flat, cache-first.
func (s *ExamService) Catalog(ctx context.Context) ([]models.Exam, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, catalogCacheKey).Bytes(); err == nil {
			var exams []models.Exam
			if json.Unmarshal(cached, &exams) == nil {
				return exams, nil
			}
		}
	}

	exams, err := s.scan()
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(exams); err == nil {
			if err := s.redis.Set(ctx, catalogCacheKey, data, s.ttl).Err(); err != nil {
				log.Printf("exam catalog: cache write failed: %v", err)
			}
		}
	}
	return exams, nil
}

// InvalidateCatalog drops the cached catalog, forcing a rescan on next read.
func (s *ExamService) InvalidateCatalog(ctx context.Context) {
	if s.redis != nil {
		s.redis.Del(ctx, catalogCacheKey)
	}
}

// LoadQuestions reads and validates the question sets for the chosen exam
// IDs, concatenated in catalog order. It also reports the course and the
// joined exam-type label for the selection.
func (s *ExamService) LoadQuestions(ctx context.Context, examIDs []string) ([]models.Question, string, string, error) {
	if len(examIDs) == 0 {
		return nil, "", "", &NotFoundError{Message: "No exams selected"}
	}

	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, "", "", err
	}

	byID := make(map[string]models.Exam, len(catalog))
	for _, exam := range catalog {
		byID[exam.ID] = exam
	}

	var questions []models.Question
	course := ""
	seenTypes := []string{}

	for _, id := range examIDs {
		exam, ok := byID[id]
		if !ok {
			return nil, "", "", &NotFoundError{Message: fmt.Sprintf("Exam %q not found", id)}
		}

		qs, err := s.readExamFile(exam.Path)
		if err != nil {
			return nil, "", "", err
		}

		questions = append(questions, qs...)
		if course == "" {
			course = exam.Course
		}
		if !contains(seenTypes, exam.ExamType) {
			seenTypes = append(seenTypes, exam.ExamType)
		}
	}

	examTypes := strings.Join(seenTypes, ", ")
	if len(seenTypes) > 1 {
		examTypes = "Mixed: " + examTypes
	}
	return questions, course, examTypes, nil
}

func (s *ExamService) scan() ([]models.Exam, error) {
	var exams []models.Exam

	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		// Files parked in a "faulty" folder are awaiting correction.
		if strings.Contains(strings.ToLower(path), "faulty") {
			return nil
		}

		questions, err := s.readExamFile(path)
		if err != nil {
			log.Printf("exam catalog: skipping %s: %v", path, err)
			return nil
		}
		if len(questions) == 0 {
			return nil
		}

		exam := s.parseMetadata(path)
		exam.QuestionCount = len(questions)
		exams = append(exams, exam)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan exam directory: %w", err)
	}

	sort.Slice(exams, func(i, j int) bool {
		if exams[i].Course != exams[j].Course {
			return exams[i].Course < exams[j].Course
		}
		return exams[i].Filename < exams[j].Filename
	})
	return exams, nil
}

// parseMetadata derives catalog fields from the file's location and name,
// e.g. "exams/Programming Basics/2024-2025 Fall Midterm.json".
func (s *ExamService) parseMetadata(path string) models.Exam {
	rel, err := filepath.Rel(s.dir, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	parts := strings.Split(rel, "/")
	filename := strings.TrimSuffix(parts[len(parts)-1], ".json")

	course := "General"
	if len(parts) >= 2 {
		course = parts[0]
	}

	year := ""
	if m := yearRangeRegex.FindStringSubmatch(filename); m != nil {
		year = m[1] + "-" + m[2]
	}

	semester := ""
	switch {
	case strings.Contains(filename, "Fall"):
		semester = "Fall"
	case strings.Contains(filename, "Spring"):
		semester = "Spring"
	}

	examType := "Other"
	switch {
	case strings.Contains(filename, "Midterm"):
		examType = "Midterm"
	case strings.Contains(filename, "Final"):
		examType = "Final"
	case strings.Contains(filename, "Resit"):
		examType = "Resit"
	case strings.Contains(filename, "Summer School"):
		examType = "Summer School"
	}

	return models.Exam{
		ID:       course + "_" + filename,
		Filename: filename,
		Course:   course,
		Year:     year,
		Semester: semester,
		ExamType: examType,
		Path:     path,
	}
}

// readExamFile is the schema-validation boundary: everything past it can
// assume well-formed questions.
func (s *ExamService) readExamFile(path string) ([]models.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read exam file %s: %w", path, err)
	}

	var questions []models.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("exam file %s is not a question array: %w", path, err)
	}

	if err := ValidateQuestions(questions); err != nil {
		return nil, fmt.Errorf("exam file %s: %w", path, err)
	}
	return questions, nil
}

// ValidateQuestions enforces the question invariants at ingestion: a
// non-empty text, 2-5 options and an in-range correct index.
func ValidateQuestions(questions []models.Question) error {
	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("question %d: empty text", i+1)
		}
		if len(q.Options) < 2 || len(q.Options) > 5 {
			return fmt.Errorf("question %d: expected 2-5 options, got %d", i+1, len(q.Options))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("question %d: correct index %d out of range for %d options", i+1, q.CorrectIndex, len(q.Options))
		}
	}
	return nil
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}
