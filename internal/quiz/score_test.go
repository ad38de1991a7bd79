package quiz

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"examtrack-backend/internal/models"
)

func intPtr(i int) *int { return &i }

func TestCalculateNet(t *testing.T) {
	tests := []struct {
		name     string
		correct  int
		wrong    int
		expected float64
	}{
		{"negative marking", 9, 3, 8},
		{"no wrong", 10, 0, 10},
		{"all wrong goes negative", 0, 6, -2},
		{"empty", 0, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CalculateNet(tc.correct, tc.wrong); math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("Expected net %.4f, got %.4f", tc.expected, got)
			}
		})
	}
}

func TestCalculateScore_FlooredAtZero(t *testing.T) {
	tests := []struct {
		name     string
		correct  int
		wrong    int
		expected float64
	}{
		{"doubled net", 9, 3, 16},
		{"negative net floors to zero", 0, 9, 0},
		{"zero", 0, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CalculateScore(tc.correct, tc.wrong); math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("Expected score %.4f, got %.4f", tc.expected, got)
			}
		})
	}
}

func TestCalculatePercentage(t *testing.T) {
	tests := []struct {
		name     string
		correct  int
		total    int
		expected int
	}{
		{"zero total", 0, 0, 0},
		{"half", 5, 10, 50},
		{"rounds up", 2, 3, 67},
		{"rounds down", 1, 3, 33},
		{"full", 10, 10, 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CalculatePercentage(tc.correct, tc.total); got != tc.expected {
				t.Errorf("Expected %d%%, got %d%%", tc.expected, got)
			}
		})
	}
}

func TestPerformanceFor_TierBands(t *testing.T) {
	tests := []struct {
		percentage int
		level      string
	}{
		{100, "excellent"},
		{90, "excellent"},
		{89, "very good"},
		{80, "very good"},
		{79, "good"},
		{70, "good"},
		{69, "average"},
		{60, "average"},
		{59, "passing"},
		{50, "passing"},
		{49, "insufficient"},
		{0, "insufficient"},
	}

	for _, tc := range tests {
		if got := PerformanceFor(tc.percentage).Level; got != tc.level {
			t.Errorf("PerformanceFor(%d): expected %q, got %q", tc.percentage, tc.level, got)
		}
	}
}

func TestCalculateResults_EmptySession(t *testing.T) {
	result, err := CalculateResults(nil, models.AnswerVector{}, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Correct != 0 || result.Wrong != 0 || result.Skipped != 0 {
		t.Errorf("Expected all-zero counts, got %+v", result)
	}
	if result.Net != 0 || result.Score != 0 || result.Percentage != 0 {
		t.Errorf("Expected zero scores, got net=%.2f score=%.2f pct=%d", result.Net, result.Score, result.Percentage)
	}
	if result.Performance.Level != "insufficient" {
		t.Errorf("Expected tier insufficient, got %q", result.Performance.Level)
	}
}

func TestCalculateResults_CountsAndWrongCapture(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	session, err := RandomizeSession(rng, []models.Question{
		{Text: "Q1", Options: []string{"a", "b", "c"}, CorrectIndex: 0, Explanation: "because"},
		{Text: "Q2", Options: []string{"d", "e", "f"}, CorrectIndex: 1},
		{Text: "Q3", Options: []string{"g", "h", "i"}, CorrectIndex: 2},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Answer the first question correctly, the second wrongly, skip the third.
	answers := make(models.AnswerVector, 3)
	answers[0] = intPtr(session[0].CorrectIndex)
	wrongIndex := (session[1].CorrectIndex + 1) % len(session[1].Options)
	answers[1] = intPtr(wrongIndex)

	result, err := CalculateResults(session, answers, 120)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Correct != 1 || result.Wrong != 1 || result.Skipped != 1 {
		t.Fatalf("Expected 1/1/1 counts, got %d/%d/%d", result.Correct, result.Wrong, result.Skipped)
	}
	if len(result.WrongAnswers) != 1 {
		t.Fatalf("Expected exactly one wrong-answer record, got %d", len(result.WrongAnswers))
	}

	// The record must carry the shuffled option texts at the recorded
	// indices, not the pre-shuffle texts.
	wa := result.WrongAnswers[0]
	if wa.UserAnswer != session[1].Options[wrongIndex] {
		t.Errorf("Expected user answer %q, got %q", session[1].Options[wrongIndex], wa.UserAnswer)
	}
	if wa.CorrectAnswer != session[1].Options[session[1].CorrectIndex] {
		t.Errorf("Expected correct answer %q, got %q", session[1].Options[session[1].CorrectIndex], wa.CorrectAnswer)
	}
	if wa.Ordinal != session[1].Ordinal {
		t.Errorf("Expected ordinal %d, got %d", session[1].Ordinal, wa.Ordinal)
	}
	if result.TimeSpentSeconds != 120 {
		t.Errorf("Expected 120 seconds, got %d", result.TimeSpentSeconds)
	}
}

func TestCalculateResults_LengthMismatch(t *testing.T) {
	session := []models.SessionQuestion{
		{Question: models.Question{Text: "Q", Options: []string{"a", "b"}, CorrectIndex: 0}, Ordinal: 1},
	}

	_, err := CalculateResults(session, models.AnswerVector{}, 0)
	if !errors.Is(err, ErrAnswerCountMismatch) {
		t.Fatalf("Expected ErrAnswerCountMismatch, got %v", err)
	}
}

func TestCalculateResults_OutOfRangeAnswer(t *testing.T) {
	session := []models.SessionQuestion{
		{Question: models.Question{Text: "Q", Options: []string{"a", "b"}, CorrectIndex: 0}, Ordinal: 1},
	}

	_, err := CalculateResults(session, models.AnswerVector{intPtr(9)}, 0)
	if !errors.Is(err, ErrAnswerOutOfRange) {
		t.Fatalf("Expected ErrAnswerOutOfRange, got %v", err)
	}
}

func TestSessionResult_TwoDecimalSerialization(t *testing.T) {
	result := models.SessionResult{Correct: 9, Wrong: 3, Net: CalculateNet(9, 3), Score: CalculateScore(9, 3)}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	body := string(data)
	if !strings.Contains(body, `"net":8.00`) {
		t.Errorf("Expected net serialized as 8.00, got %s", body)
	}
	if !strings.Contains(body, `"score":16.00`) {
		t.Errorf("Expected score serialized as 16.00, got %s", body)
	}
}
