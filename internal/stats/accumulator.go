// Package stats folds completed session results into a student's lifetime
// and per-course aggregates.
package stats

import (
	"time"

	"examtrack-backend/internal/models"
)

// Apply returns a new profile with one session's results folded in. The
// input profile is not modified; the caller persists the returned value.
// now is captured once by the caller and stamps the wrong-question log and
// last-exam snapshot.
func Apply(p models.StudentProfile, result models.SessionResult, course, examType string, now time.Time) models.StudentProfile {
	next := clone(p)

	prevCount := next.Stats.TotalSessions
	next.Stats.TotalSessions++
	next.Stats.TotalTimeSeconds += result.TimeSpentSeconds
	next.Stats.TotalCorrect += result.Correct
	next.Stats.TotalWrong += result.Wrong
	next.Stats.TotalSkipped += result.Skipped
	next.Stats.AverageScore = runningAverage(next.Stats.AverageScore, prevCount, result.Score)

	next.Status = StatusFor(next.Stats.AverageScore)

	cs, ok := next.Courses[course]
	if !ok {
		cs = &models.CourseStats{WrongQuestions: []models.WrongQuestionEntry{}}
		next.Courses[course] = cs
	}

	prevSessions := cs.Sessions
	cs.Sessions++
	cs.TotalCorrect += result.Correct
	cs.TotalWrong += result.Wrong
	cs.AverageScore = runningAverage(cs.AverageScore, prevSessions, result.Score)
	if result.Score > cs.HighestScore {
		cs.HighestScore = result.Score
	}
	// The first session seeds the lowest score; a zero floor would stick
	// forever otherwise.
	if prevSessions == 0 || result.Score < cs.LowestScore {
		cs.LowestScore = result.Score
	}

	for _, wa := range result.WrongAnswers {
		entry := models.WrongQuestionEntry{
			Question:      wa.Question,
			UserAnswer:    wa.UserAnswer,
			CorrectAnswer: wa.CorrectAnswer,
			Explanation:   wa.Explanation,
			RecordedAt:    now,
		}
		cs.WrongQuestions = append(cs.WrongQuestions, entry)

		entry.Course = course
		next.AllWrongQuestions = append(next.AllWrongQuestions, entry)
	}

	next.LastExam = models.LastExam{
		Date:             now,
		Course:           course,
		ExamType:         examType,
		Score:            result.Score,
		Correct:          result.Correct,
		Wrong:            result.Wrong,
		Skipped:          result.Skipped,
		TimeSpentSeconds: result.TimeSpentSeconds,
	}

	return next
}

// StatusFor maps a lifetime average score to the motivational status line.
func StatusFor(averageScore float64) string {
	switch {
	case averageScore == 0:
		return "just getting started 🚀"
	case averageScore >= 85:
		return "outstanding performance! 🎉"
	case averageScore >= 75:
		return "studying well ⭐"
	case averageScore >= 60:
		return "making progress 👍"
	case averageScore >= 40:
		return "needs more practice 📚"
	default:
		return "needs to study a lot more 😔"
	}
}

// runningAverage folds one new sample into an incremental mean: the old
// average is weighted by the pre-increment count and divided by the
// post-increment count.
func runningAverage(oldAvg float64, oldCount int, sample float64) float64 {
	return (oldAvg*float64(oldCount) + sample) / float64(oldCount+1)
}

func clone(p models.StudentProfile) models.StudentProfile {
	next := p

	next.Streak.History = append([]string{}, p.Streak.History...)
	next.AllWrongQuestions = append([]models.WrongQuestionEntry{}, p.AllWrongQuestions...)

	next.Courses = make(map[string]*models.CourseStats, len(p.Courses))
	for name, cs := range p.Courses {
		copied := *cs
		copied.WrongQuestions = append([]models.WrongQuestionEntry{}, cs.WrongQuestions...)
		next.Courses[name] = &copied
	}
	return next
}
