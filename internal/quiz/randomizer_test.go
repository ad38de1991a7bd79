package quiz

import (
	"errors"
	"math/rand"
	"testing"

	"examtrack-backend/internal/models"
)

func sampleQuestions() []models.Question {
	return []models.Question{
		{Text: "Q1", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 2, Number: 1},
		{Text: "Q2", Options: []string{"e", "f", "g"}, CorrectIndex: 0, Number: 2},
		{Text: "Q3", Options: []string{"h", "i"}, CorrectIndex: 1, Number: 3},
	}
}

func TestRandomizeSession_PreservesCorrectAnswer(t *testing.T) {
	for seed := int64(0); seed < 25; seed++ {
		rng := rand.New(rand.NewSource(seed))
		questions := sampleQuestions()

		correctBySourceText := map[string]string{}
		for _, q := range questions {
			correctBySourceText[q.Text] = q.Options[q.CorrectIndex]
		}

		session, err := RandomizeSession(rng, questions)
		if err != nil {
			t.Fatalf("seed %d: unexpected error: %v", seed, err)
		}

		for _, sq := range session {
			want := correctBySourceText[sq.Text]
			got := sq.Options[sq.CorrectIndex]
			if got != want {
				t.Errorf("seed %d: question %q: expected correct option %q, got %q", seed, sq.Text, want, got)
			}
		}
	}
}

func TestRandomizeSession_AssignsSequentialOrdinals(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	session, err := RandomizeSession(rng, sampleQuestions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for i, sq := range session {
		if sq.Ordinal != i+1 {
			t.Errorf("Position %d: expected ordinal %d, got %d", i, i+1, sq.Ordinal)
		}
	}
}

func TestRandomizeSession_RetainsOriginalCorrectIndex(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	questions := sampleQuestions()

	originalByText := map[string]int{}
	for _, q := range questions {
		originalByText[q.Text] = q.CorrectIndex
	}

	session, err := RandomizeSession(rng, questions)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, sq := range session {
		if sq.OriginalCorrectIndex != originalByText[sq.Text] {
			t.Errorf("Question %q: expected original index %d, got %d",
				sq.Text, originalByText[sq.Text], sq.OriginalCorrectIndex)
		}
	}
}

func TestRandomizeSession_SingleOptionQuestion(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	questions := []models.Question{
		{Text: "Only", Options: []string{"the one"}, CorrectIndex: 0},
	}

	session, err := RandomizeSession(rng, questions)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if session[0].CorrectIndex != 0 {
		t.Errorf("Expected correct index 0, got %d", session[0].CorrectIndex)
	}
}

func TestRandomizeSession_RejectsOutOfRangeCorrectIndex(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	questions := []models.Question{
		{Text: "Broken", Options: []string{"a", "b"}, CorrectIndex: 5},
	}

	_, err := RandomizeSession(rng, questions)
	if !errors.Is(err, ErrCorrectIndexOutOfRange) {
		t.Fatalf("Expected ErrCorrectIndexOutOfRange, got %v", err)
	}
}

func TestRandomizeSession_EmptyInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	session, err := RandomizeSession(rng, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(session) != 0 {
		t.Errorf("Expected empty session, got %d questions", len(session))
	}
}

func TestOptionLetter(t *testing.T) {
	tests := []struct {
		index    int
		expected string
	}{
		{0, "A"},
		{1, "B"},
		{2, "C"},
		{3, "D"},
		{4, "E"},
	}

	for _, tc := range tests {
		if got := OptionLetter(tc.index); got != tc.expected {
			t.Errorf("OptionLetter(%d): expected %q, got %q", tc.index, tc.expected, got)
		}
	}
}
