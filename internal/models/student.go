package models

import "time"

// StreakState tracks consecutive-day activity at calendar-day granularity.
// Dates are stored as YYYY-MM-DD strings; an empty LastActivityDate means no
// activity has ever been recorded.
type StreakState struct {
	Current          int      `json:"current_streak"`
	Longest          int      `json:"longest_streak"`
	LastActivityDate string   `json:"last_activity_date"`
	History          []string `json:"streak_dates"`
}

type StreakMessage struct {
	Emblem  string `json:"emblem"`
	Message string `json:"message"`
}

// Statistics holds lifetime aggregate counters for one student.
type Statistics struct {
	TotalSessions    int     `json:"total_sessions"`
	TotalTimeSeconds int     `json:"total_time_seconds"`
	TotalCorrect     int     `json:"total_correct"`
	TotalWrong       int     `json:"total_wrong"`
	TotalSkipped     int     `json:"total_skipped"`
	AverageScore     float64 `json:"average_score"`
}

type WrongQuestionEntry struct {
	Question      string    `json:"question"`
	UserAnswer    string    `json:"user_answer"`
	CorrectAnswer string    `json:"correct_answer"`
	Explanation   string    `json:"explanation"`
	Course        string    `json:"course,omitempty"`
	RecordedAt    time.Time `json:"recorded_at"`
}

type CourseStats struct {
	Sessions       int                  `json:"sessions"`
	AverageScore   float64              `json:"average_score"`
	HighestScore   float64              `json:"highest_score"`
	LowestScore    float64              `json:"lowest_score"`
	TotalCorrect   int                  `json:"total_correct"`
	TotalWrong     int                  `json:"total_wrong"`
	WrongQuestions []WrongQuestionEntry `json:"wrong_questions"`
}

// LastExam is a snapshot of the most recent completed session. It is fully
// overwritten on every completion, never merged.
type LastExam struct {
	Date             time.Time `json:"date"`
	Course           string    `json:"course"`
	ExamType         string    `json:"exam_type"`
	Score            float64   `json:"score"`
	Correct          int       `json:"correct"`
	Wrong            int       `json:"wrong"`
	Skipped          int       `json:"skipped"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
}

// StudentProfile is the persisted per-student state: streak, statistics and
// a free-form display name/status.
type StudentProfile struct {
	DisplayName        string                  `json:"display_name"`
	Status             string                  `json:"status"`
	Streak             StreakState             `json:"streak"`
	Stats              Statistics              `json:"statistics"`
	Courses            map[string]*CourseStats `json:"courses"`
	LastExam           LastExam                `json:"last_exam"`
	AllWrongQuestions  []WrongQuestionEntry    `json:"all_wrong_questions"`
}

// NewStudentProfile returns the zero-activity profile a student starts with.
func NewStudentProfile(displayName string) StudentProfile {
	return StudentProfile{
		DisplayName:       displayName,
		Status:            "just getting started 🚀",
		Streak:            StreakState{History: []string{}},
		Courses:           map[string]*CourseStats{},
		AllWrongQuestions: []WrongQuestionEntry{},
	}
}
