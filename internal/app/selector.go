package app

import (
	"context"
	"math/rand"
	"time"

	"timed-quiz-service/internal/domain"
)

// DefaultQuestionsPerRound caps how many questions a single attempt sees.
const DefaultQuestionsPerRound = 10

// BankRepository loads question-bank partitions (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, category, difficulty string) ([]domain.Question, error)
}

// QuestionSelector draws a bounded random subset of a bank partition and
// redacts answer keys before exposing it.
type QuestionSelector struct {
	banks   BankRepository
	limit   int
	newRand func() *rand.Rand
}

func NewQuestionSelector(banks BankRepository, limit int) *QuestionSelector {
	if limit <= 0 {
		limit = DefaultQuestionsPerRound
	}
	return &QuestionSelector{
		banks: banks,
		limit: limit,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// NewQuestionSelectorWithRand is test-only for deterministic shuffles.
func NewQuestionSelectorWithRand(banks BankRepository, limit int, newRand func() *rand.Rand) *QuestionSelector {
	selector := NewQuestionSelector(banks, limit)
	selector.newRand = newRand
	return selector
}

// Select returns at most the configured number of questions for the
// partition, uniformly shuffled, answer keys stripped. A partition smaller
// than the cap is not an error; an unknown or empty partition is.
func (s *QuestionSelector) Select(ctx context.Context, category, difficulty string) ([]domain.PublicQuestion, error) {
	questions, err := s.banks.GetBank(ctx, category, difficulty)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, domain.ErrBankNotFound
	}

	shuffled := make([]domain.Question, len(questions))
	copy(shuffled, questions)

	// Call-scoped source: concurrent selections never share rand state.
	rnd := s.newRand()
	rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	limit := s.limit
	if limit > len(shuffled) {
		limit = len(shuffled)
	}

	public := make([]domain.PublicQuestion, 0, limit)
	for _, question := range shuffled[:limit] {
		public = append(public, question.Redact())
	}
	return public, nil
}
