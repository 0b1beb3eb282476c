package app

import (
	"context"
	"math"

	"timed-quiz-service/internal/domain"
)

// ScoringEngine reconciles submitted answers against the authoritative
// question bank. Stateless: scoring the same submission twice yields the
// identical result.
type ScoringEngine struct {
	banks BankRepository
}

func NewScoringEngine(banks BankRepository) *ScoringEngine {
	return &ScoringEngine{banks: banks}
}

// Score computes per-question correctness and the aggregate report for one
// submission. Only questions present in the submission count: the total is
// the number of submitted answer keys, never the bank size. Ids unknown to
// the bank are skipped rather than fabricated into rows, but they still
// weigh on the total so the client's denominator holds.
func (e *ScoringEngine) Score(ctx context.Context, submission domain.AnswerSubmission) (domain.ScoreResult, error) {
	questions, err := e.banks.GetBank(ctx, submission.Category, submission.Difficulty)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	if len(questions) == 0 {
		return domain.ScoreResult{}, domain.ErrBankNotFound
	}

	byID := make(map[string]domain.Question, len(questions))
	for _, question := range questions {
		byID[question.ID] = question
	}

	times := make(map[string]int, len(submission.TimeSpent))
	for id, elapsed := range submission.TimeSpent {
		times[id] = elapsed
	}

	result := domain.ScoreResult{
		Results:   make([]domain.OutcomeRow, 0, submission.Answers.Len()),
		TimeSpent: times,
	}
	for _, id := range submission.Answers.Keys() {
		question, ok := byID[id]
		if !ok {
			// Stale or mismatched client state; tolerate, don't raise.
			continue
		}
		answer, _ := submission.Answers.Get(id)
		isCorrect := answer == question.CorrectAnswer
		if isCorrect {
			result.CorrectCount++
		} else {
			result.IncorrectCount++
		}
		result.Results = append(result.Results, domain.OutcomeRow{
			QuestionID:    id,
			Question:      question.Prompt,
			UserAnswer:    answer,
			CorrectAnswer: question.CorrectAnswer,
			IsCorrect:     isCorrect,
			TimeSpent:     submission.TimeSpent[id],
		})
	}

	result.TotalQuestions = submission.Answers.Len()
	if result.TotalQuestions > 0 {
		result.Score = roundTwoDecimals(float64(result.CorrectCount) / float64(result.TotalQuestions) * 100)
	}
	return result, nil
}

func roundTwoDecimals(v float64) float64 {
	return math.Round(v*100) / 100
}
