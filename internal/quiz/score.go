package quiz

import (
	"errors"
	"fmt"
	"math"

	"examtrack-backend/internal/models"
)

var (
	ErrCorrectIndexOutOfRange = errors.New("correct answer index out of range")
	ErrAnswerCountMismatch    = errors.New("answer count does not match question count")
	ErrAnswerOutOfRange       = errors.New("selected answer index out of range")
)

// CalculateNet applies negative marking: every 3 wrong answers cancel one
// correct answer. The result may be negative.
func CalculateNet(correct, wrong int) float64 {
	return float64(correct) - float64(wrong)/3
}

// CalculateScore doubles the net and floors the result at zero.
func CalculateScore(correct, wrong int) float64 {
	return math.Max(0, CalculateNet(correct, wrong)*2)
}

func CalculatePercentage(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// PerformanceFor maps a percentage to its display tier.
func PerformanceFor(percentage int) models.PerformanceTier {
	switch {
	case percentage >= 90:
		return models.PerformanceTier{Level: "excellent", Emblem: "🎉", Color: "#22c55e"}
	case percentage >= 80:
		return models.PerformanceTier{Level: "very good", Emblem: "⭐", Color: "#3b82f6"}
	case percentage >= 70:
		return models.PerformanceTier{Level: "good", Emblem: "👍", Color: "#8b5cf6"}
	case percentage >= 60:
		return models.PerformanceTier{Level: "average", Emblem: "📚", Color: "#f59e0b"}
	case percentage >= 50:
		return models.PerformanceTier{Level: "passing", Emblem: "😐", Color: "#f97316"}
	default:
		return models.PerformanceTier{Level: "insufficient", Emblem: "😔", Color: "#ef4444"}
	}
}

// CalculateResults grades a completed session. The answer vector must have
// exactly one slot per question; a nil slot counts as skipped. An empty
// session is valid and yields all-zero results.
func CalculateResults(questions []models.SessionQuestion, answers models.AnswerVector, timeSpentSeconds int) (*models.SessionResult, error) {
	if len(answers) != len(questions) {
		return nil, fmt.Errorf("%w: %d answers for %d questions", ErrAnswerCountMismatch, len(answers), len(questions))
	}

	var correct, wrong, skipped int
	wrongAnswers := []models.WrongAnswer{}

	for i, q := range questions {
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return nil, fmt.Errorf("question %d: %w", q.Ordinal, ErrCorrectIndexOutOfRange)
		}

		answer := answers[i]
		switch {
		case answer == nil:
			skipped++
		case *answer == q.CorrectIndex:
			correct++
		default:
			if *answer < 0 || *answer >= len(q.Options) {
				return nil, fmt.Errorf("question %d: %w (index %d)", q.Ordinal, ErrAnswerOutOfRange, *answer)
			}
			wrong++
			wrongAnswers = append(wrongAnswers, models.WrongAnswer{
				Ordinal:       q.Ordinal,
				Question:      q.Text,
				UserAnswer:    q.Options[*answer],
				CorrectAnswer: q.Options[q.CorrectIndex],
				Explanation:   q.Explanation,
			})
		}
	}

	percentage := CalculatePercentage(correct, len(questions))
	return &models.SessionResult{
		Correct:          correct,
		Wrong:            wrong,
		Skipped:          skipped,
		Total:            len(questions),
		Net:              CalculateNet(correct, wrong),
		Score:            CalculateScore(correct, wrong),
		Percentage:       percentage,
		Performance:      PerformanceFor(percentage),
		TimeSpentSeconds: timeSpentSeconds,
		WrongAnswers:     wrongAnswers,
	}, nil
}
