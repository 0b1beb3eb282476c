package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"timed-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// BankLoader fetches a question-bank partition from a backing store
// (e.g., Postgres JSONB).
type BankLoader interface {
	LoadBank(ctx context.Context, category, difficulty string) ([]domain.Question, error)
}

// BankRepository caches partitions with TTL to avoid repeated store hits.
type BankRepository struct {
	loader BankLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedBank
}

type cachedBank struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewBankRepository(loader BankLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedBank),
	}
}

func (r *BankRepository) GetBank(ctx context.Context, category, difficulty string) ([]domain.Question, error) {
	key := partitionKey(category, difficulty)
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[key]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.questions, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[key]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.questions, nil
		}
		r.mu.RUnlock()

		questions, err := r.loader.LoadBank(ctx, category, difficulty)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[key] = cachedBank{
			questions: questions,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func partitionKey(category, difficulty string) string {
	return category + "/" + difficulty
}

// StaticBankLoader serves partitions from an in-memory map, keyed by
// category then difficulty (useful for tests/demos).
type StaticBankLoader struct {
	banks map[string]map[string][]domain.Question
}

func NewStaticBankLoader(banks map[string]map[string][]domain.Question) *StaticBankLoader {
	return &StaticBankLoader{banks: banks}
}

func (l *StaticBankLoader) LoadBank(_ context.Context, category, difficulty string) ([]domain.Question, error) {
	difficulties, ok := l.banks[category]
	if !ok {
		return nil, domain.ErrBankNotFound
	}
	questions, ok := difficulties[difficulty]
	if !ok || len(questions) == 0 {
		return nil, domain.ErrBankNotFound
	}
	return questions, nil
}
