package models

// Question is one multiple-choice question as loaded from an exam file.
// CorrectIndex is always a valid index into Options; the exam loader
// rejects files where it is not.
type Question struct {
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation,omitempty"`
	Number       int      `json:"number,omitempty"`
}

// SessionQuestion is a Question prepared for one quiz session: options are
// shuffled, CorrectIndex points into the shuffled order, and Ordinal is the
// 1-based display position within the session.
type SessionQuestion struct {
	Question
	Ordinal              int `json:"ordinal"`
	OriginalCorrectIndex int `json:"original_correct_index"`
}

// Exam is a catalog entry for one exam file.
type Exam struct {
	ID            string `json:"id"`
	Filename      string `json:"filename"`
	Course        string `json:"course"`
	Year          string `json:"year,omitempty"`
	Semester      string `json:"semester,omitempty"`
	ExamType      string `json:"exam_type"`
	QuestionCount int    `json:"question_count"`
	Path          string `json:"-"`
}
