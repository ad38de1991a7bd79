package quiz

import (
	"fmt"
	"math/rand"

	"examtrack-backend/internal/models"
)

// RandomizeSession shuffles question order, shuffles each question's options
// independently while remapping the correct-answer index, and assigns display
// ordinals 1..n in the final order. Only presentation order changes; the set
// of option texts and which one is correct are preserved.
func RandomizeSession(rng *rand.Rand, questions []models.Question) ([]models.SessionQuestion, error) {
	shuffled := Shuffle(rng, questions)

	session := make([]models.SessionQuestion, 0, len(shuffled))
	for i, q := range shuffled {
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return nil, fmt.Errorf("question %q: %w (index %d, %d options)",
				q.Text, ErrCorrectIndexOutOfRange, q.CorrectIndex, len(q.Options))
		}

		sq, err := shuffleOptions(rng, q)
		if err != nil {
			return nil, err
		}
		sq.Ordinal = i + 1
		session = append(session, sq)
	}
	return session, nil
}

// shuffleOptions reorders one question's options and locates where the
// original correct index landed in the shuffled index permutation.
func shuffleOptions(rng *rand.Rand, q models.Question) (models.SessionQuestion, error) {
	indices := make([]int, len(q.Options))
	for i := range indices {
		indices[i] = i
	}
	perm := Shuffle(rng, indices)

	options := make([]string, len(perm))
	newCorrect := -1
	for pos, orig := range perm {
		options[pos] = q.Options[orig]
		if orig == q.CorrectIndex {
			newCorrect = pos
		}
	}
	if newCorrect == -1 {
		return models.SessionQuestion{}, fmt.Errorf("question %q: %w", q.Text, ErrCorrectIndexOutOfRange)
	}

	sq := models.SessionQuestion{Question: q, OriginalCorrectIndex: q.CorrectIndex}
	sq.Options = options
	sq.CorrectIndex = newCorrect
	return sq, nil
}

// OptionLetter labels the option at display position i, starting at 'A'.
// Labels always reflect the final display order, not the pre-shuffle order.
func OptionLetter(i int) string {
	return string(rune('A' + i))
}
