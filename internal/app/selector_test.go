package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
)

// staticBanks is a minimal BankRepository for unit tests, keyed by
// "category/difficulty".
type staticBanks map[string][]domain.Question

func (b staticBanks) GetBank(_ context.Context, category, difficulty string) ([]domain.Question, error) {
	questions, ok := b[category+"/"+difficulty]
	if !ok {
		return nil, domain.ErrBankNotFound
	}
	return questions, nil
}

func bankOf(n int) []domain.Question {
	questions := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, domain.Question{
			ID:            fmt.Sprintf("q%d", i+1),
			Prompt:        fmt.Sprintf("Question %d", i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: "B",
		})
	}
	return questions
}

func TestSelectCapsAtTen(t *testing.T) {
	banks := staticBanks{"general/easy": bankOf(15)}
	selector := app.NewQuestionSelector(banks, 10)

	questions, err := selector.Select(context.Background(), "general", "easy")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(questions) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(questions))
	}

	seen := make(map[string]bool)
	for _, q := range questions {
		if seen[q.ID] {
			t.Fatalf("duplicate question id %s", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestSelectSmallPartitionReturnsAll(t *testing.T) {
	banks := staticBanks{"general/easy": bankOf(3)}
	selector := app.NewQuestionSelector(banks, 10)

	questions, err := selector.Select(context.Background(), "general", "easy")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
}

func TestSelectNeverLeaksAnswerKey(t *testing.T) {
	banks := staticBanks{"general/easy": bankOf(5)}
	selector := app.NewQuestionSelector(banks, 10)

	questions, err := selector.Select(context.Background(), "general", "easy")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	data, err := json.Marshal(questions)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "correct_answer") {
		t.Fatalf("selection output leaks the answer key: %s", data)
	}
}

func TestSelectUnknownPartition(t *testing.T) {
	selector := app.NewQuestionSelector(staticBanks{}, 10)

	_, err := selector.Select(context.Background(), "history", "hard")
	if !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected ErrBankNotFound, got %v", err)
	}
}

func TestSelectSeededDeterminism(t *testing.T) {
	banks := staticBanks{"general/easy": bankOf(8)}
	newRand := func() *rand.Rand { return rand.New(rand.NewSource(42)) }

	first, err := app.NewQuestionSelectorWithRand(banks, 10, newRand).Select(context.Background(), "general", "easy")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	second, err := app.NewQuestionSelectorWithRand(banks, 10, newRand).Select(context.Background(), "general", "easy")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("same seed produced different orders at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestSelectDoesNotMutateBank(t *testing.T) {
	original := bankOf(6)
	order := make([]string, len(original))
	for i, q := range original {
		order[i] = q.ID
	}
	banks := staticBanks{"general/easy": original}
	selector := app.NewQuestionSelector(banks, 10)

	if _, err := selector.Select(context.Background(), "general", "easy"); err != nil {
		t.Fatalf("select: %v", err)
	}
	for i, q := range original {
		if q.ID != order[i] {
			t.Fatalf("selection shuffled the bank in place at %d", i)
		}
	}
}
