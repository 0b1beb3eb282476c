package domain

// Question is the authoritative form of a bank question, answer key included.
// Never serialized toward a session; use Redact for anything client-facing.
type Question struct {
	ID            string   `json:"id"`
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// Redact strips the answer key, producing the only representation a session
// is allowed to see.
func (q Question) Redact() PublicQuestion {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	return PublicQuestion{
		ID:      q.ID,
		Prompt:  q.Prompt,
		Options: options,
	}
}

// PublicQuestion is a Question with the correct answer withheld.
type PublicQuestion struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
}

// AnswerSubmission carries one attempt's collected answers and timings to the
// scorer. Answers holds only questions that were actually displayed, in
// display order.
type AnswerSubmission struct {
	Category   string         `json:"category"`
	Difficulty string         `json:"difficulty"`
	Answers    AnswerMap      `json:"answers"`
	TimeSpent  map[string]int `json:"timeSpent"`
}

// OutcomeRow is one scored question's comparison result.
type OutcomeRow struct {
	QuestionID    string `json:"questionId"`
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	TimeSpent     int    `json:"timeSpent"`
}

// ScoreResult is the final report for one submission. CorrectCount plus
// IncorrectCount always equals TotalQuestions, and TotalQuestions counts
// submitted answer keys rather than the bank size.
type ScoreResult struct {
	Results        []OutcomeRow   `json:"results"`
	CorrectCount   int            `json:"correctCount"`
	IncorrectCount int            `json:"incorrectCount"`
	TotalQuestions int            `json:"totalQuestions"`
	Score          float64        `json:"score"`
	TimeSpent      map[string]int `json:"timeSpent"`
}
