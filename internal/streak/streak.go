// Package streak maintains a day-resolution consecutive-activity counter.
// All functions are pure: callers capture "now" once per update and pass it
// in, so a single update never straddles a midnight boundary.
package streak

import (
	"time"

	"examtrack-backend/internal/models"
)

const (
	dateLayout   = "2006-01-02"
	historyLimit = 30
)

// Validate checks a stored streak before display. A gap of two or more days
// means a day was missed: the current count resets to zero while the longest
// count and last-activity date survive as historical record.
func Validate(s models.StreakState, today time.Time) models.StreakState {
	if s.LastActivityDate == "" {
		return models.StreakState{Longest: s.Longest, History: []string{}}
	}

	gap, ok := dayGap(s.LastActivityDate, today)
	if !ok {
		return models.StreakState{Longest: s.Longest, History: []string{}}
	}

	if gap >= 2 {
		return models.StreakState{
			Longest:          s.Longest,
			LastActivityDate: s.LastActivityDate,
			History:          []string{},
		}
	}
	return s
}

// RecordActivity folds one completed session into the streak. Recording is
// idempotent within a calendar day: a second session the same day changes
// nothing.
func RecordActivity(s models.StreakState, today time.Time) models.StreakState {
	todayStr := dateString(today)

	if s.LastActivityDate == "" {
		return models.StreakState{
			Current:          1,
			Longest:          max(s.Longest, 1),
			LastActivityDate: todayStr,
			History:          []string{todayStr},
		}
	}

	gap, ok := dayGap(s.LastActivityDate, today)
	if !ok {
		gap = 2 // unparseable stored date, start over
	}

	switch {
	case gap == 0:
		return s
	case gap == 1:
		current := s.Current + 1
		history := append(append([]string{}, s.History...), todayStr)
		if len(history) > historyLimit {
			history = history[len(history)-historyLimit:]
		}
		return models.StreakState{
			Current:          current,
			Longest:          max(s.Longest, current),
			LastActivityDate: todayStr,
			History:          history,
		}
	default:
		return models.StreakState{
			Current:          1,
			Longest:          max(s.Longest, 1),
			LastActivityDate: todayStr,
			History:          []string{todayStr},
		}
	}
}

// HasActivityToday reports whether activity was already recorded today.
func HasActivityToday(s models.StreakState, today time.Time) bool {
	return s.LastActivityDate != "" && s.LastActivityDate == dateString(today)
}

// IsAtRisk reports whether the streak will lapse unless activity is recorded
// before the next day boundary. A streak with a gap of two or more days has
// already lapsed and is not at risk.
func IsAtRisk(s models.StreakState, today time.Time) bool {
	if s.LastActivityDate == "" || s.Current == 0 {
		return false
	}
	gap, ok := dayGap(s.LastActivityDate, today)
	if !ok {
		return false
	}
	return gap == 1 || (gap == 0 && !HasActivityToday(s, today))
}

// MessageFor returns the cosmetic emblem and phrase for a streak count.
func MessageFor(current int) models.StreakMessage {
	switch {
	case current == 0:
		return models.StreakMessage{Emblem: "🔥", Message: "Start your streak!"}
	case current == 1:
		return models.StreakMessage{Emblem: "🔥", Message: "Great start!"}
	case current < 3:
		return models.StreakMessage{Emblem: "🔥", Message: "Keep it going!"}
	case current < 7:
		return models.StreakMessage{Emblem: "🔥🔥", Message: "You're on a roll!"}
	case current < 14:
		return models.StreakMessage{Emblem: "🔥🔥🔥", Message: "Over a week strong!"}
	case current < 30:
		return models.StreakMessage{Emblem: "⚡🔥⚡", Message: "You're on fire!"}
	case current < 60:
		return models.StreakMessage{Emblem: "👑🔥👑", Message: "Legendary!"}
	default:
		return models.StreakMessage{Emblem: "🏆🔥🏆", Message: "Unstoppable!"}
	}
}

func dateString(t time.Time) string {
	return t.Format(dateLayout)
}

// dayGap returns whole calendar days between the stored date and today,
// comparing at day granularity. A clock that moved backwards yields a
// negative difference; that is clamped to zero so a streak never regresses.
func dayGap(last string, today time.Time) (int, bool) {
	lastDay, err := time.Parse(dateLayout, last)
	if err != nil {
		return 0, false
	}
	y, m, d := today.Date()
	todayDay := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	gap := int(todayDay.Sub(lastDay).Hours() / 24)
	if gap < 0 {
		gap = 0
	}
	return gap, true
}
