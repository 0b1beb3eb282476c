package app

import (
	"context"
	"sync"
	"time"

	"timed-quiz-service/internal/domain"
)

// SessionState enumerates the lifecycle of one quiz attempt.
type SessionState int

const (
	StateLoading SessionState = iota
	StateActive
	StateSubmitting
	StateSubmitted
	StateFailed
	StateAbandoned
)

func (s SessionState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateActive:
		return "active"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	case StateFailed:
		return "failed"
	case StateAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Snapshot is the view of a session pushed to subscribers on every change.
type Snapshot struct {
	State     SessionState
	Index     int
	Total     int
	Remaining int
	Question  domain.PublicQuestion
	Selected  string
}

// SessionConfig tunes one session's countdown behavior. Zero values fall
// back to the 30-second budget with one tick per second.
type SessionConfig struct {
	QuestionSeconds int
	TickInterval    time.Duration
	Clock           func() time.Time
}

const defaultQuestionSeconds = 30

// Session is the timed state machine for exactly one quiz attempt. All
// state sits behind one mutex; the countdown is a single ticker goroutine
// owned by the session and replaced on every question entry, so no two
// timers ever race on the same attempt.
type Session struct {
	id         string
	category   string
	difficulty string

	budget    int
	tickEvery time.Duration
	now       func() time.Time

	mu          sync.Mutex
	state       SessionState
	questions   []domain.PublicQuestion
	index       int
	answers     domain.AnswerMap
	timeSpent   map[string]int
	remaining   int
	enteredAt   time.Time
	timerGen    uint64
	timerCancel context.CancelFunc
	subscribers map[chan Snapshot]struct{}
}

// NewSession builds a session in Loading over an already-selected question
// set. Begin moves it to the first question.
func NewSession(id, category, difficulty string, questions []domain.PublicQuestion, cfg SessionConfig) *Session {
	budget := cfg.QuestionSeconds
	if budget <= 0 {
		budget = defaultQuestionSeconds
	}
	tickEvery := cfg.TickInterval
	if tickEvery <= 0 {
		tickEvery = time.Second
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Session{
		id:          id,
		category:    category,
		difficulty:  difficulty,
		budget:      budget,
		tickEvery:   tickEvery,
		now:         now,
		state:       StateLoading,
		questions:   questions,
		timeSpent:   make(map[string]int),
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

func (s *Session) ID() string         { return s.id }
func (s *Session) Category() string   { return s.category }
func (s *Session) Difficulty() string { return s.difficulty }

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Begin moves Loading to Active(0) and starts the first countdown. An empty
// question set fails the session; it never proceeds without questions.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoading {
		return domain.ErrInvalidTransition
	}
	if len(s.questions) == 0 {
		s.state = StateFailed
		return domain.ErrEmptyQuestionSet
	}
	s.state = StateActive
	s.enterLocked(0)
	s.broadcastLocked()
	return nil
}

// SelectOption records an answer for the currently visible question. Last
// choice wins; the state machine does not advance.
func (s *Session) SelectOption(questionID, option string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return domain.ErrInvalidTransition
	}
	if s.questions[s.index].ID != questionID {
		return domain.ErrQuestionNotActive
	}
	s.answers.Set(questionID, option)
	s.broadcastLocked()
	return nil
}

// Advance records elapsed time for the current question and moves forward,
// into Submitting when leaving the last question.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return domain.ErrInvalidTransition
	}
	s.recordTimeLocked(s.questions[s.index].ID, s.elapsedLocked())
	s.advanceLocked()
	s.broadcastLocked()
	return nil
}

// Retreat records elapsed time and moves back one question. Answers and
// timings for both questions stay as they were.
func (s *Session) Retreat() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive || s.index == 0 {
		return domain.ErrInvalidTransition
	}
	s.recordTimeLocked(s.questions[s.index].ID, s.elapsedLocked())
	s.enterLocked(s.index - 1)
	s.broadcastLocked()
	return nil
}

// BeginSubmit finalizes the attempt and returns the submission to hand to
// the scorer. Valid from the last question or from Submitting (when a
// timeout already moved the session there).
func (s *Session) BeginSubmit() (domain.AnswerSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateActive:
		if s.index != len(s.questions)-1 {
			return domain.AnswerSubmission{}, domain.ErrInvalidTransition
		}
		s.recordTimeLocked(s.questions[s.index].ID, s.elapsedLocked())
		s.state = StateSubmitting
		s.stopTimerLocked()
		s.broadcastLocked()
	case StateSubmitting:
	default:
		return domain.AnswerSubmission{}, domain.ErrInvalidTransition
	}
	return s.submissionLocked(), nil
}

// CompleteSubmit resolves a pending submission: success terminates the
// session, transport failure returns it to the last question so the caller
// can retry.
func (s *Session) CompleteSubmit(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSubmitting {
		return
	}
	if ok {
		s.state = StateSubmitted
		s.stopTimerLocked()
	} else {
		s.state = StateActive
		s.enterLocked(len(s.questions) - 1)
	}
	s.broadcastLocked()
}

// Abandon cancels any pending timer and terminates the session. Safe to call
// at any point, including after submission.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitted || s.state == StateFailed || s.state == StateAbandoned {
		return
	}
	s.state = StateAbandoned
	s.stopTimerLocked()
	s.broadcastLocked()
}

// Subscribe returns a channel of state snapshots, primed with the current
// one. The caller must invoke cancel to avoid leaks.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// enterLocked makes question i the active one: fresh countdown, fresh
// wall-clock origin, replacement timer.
func (s *Session) enterLocked(i int) {
	s.index = i
	s.remaining = s.budget
	s.enteredAt = s.now()
	s.startTimerLocked()
}

func (s *Session) startTimerLocked() {
	if s.timerCancel != nil {
		s.timerCancel()
	}
	s.timerGen++
	gen := s.timerGen
	ctx, cancel := context.WithCancel(context.Background())
	s.timerCancel = cancel
	go s.runTimer(ctx, gen)
}

func (s *Session) stopTimerLocked() {
	if s.timerCancel != nil {
		s.timerCancel()
		s.timerCancel = nil
	}
	// Bump the generation so a tick already past its select is stale.
	s.timerGen++
}

func (s *Session) runTimer(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(s.tickEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.tick(gen) {
				return
			}
		}
	}
}

// tick decrements the countdown and fires the timeout transition at zero.
// Returns true once this timer generation is finished or superseded.
func (s *Session) tick(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.timerGen || s.state != StateActive {
		return true
	}
	s.remaining--
	if s.remaining > 0 {
		s.broadcastLocked()
		return false
	}
	s.remaining = 0
	s.timeoutLocked()
	s.broadcastLocked()
	return true
}

// timeoutLocked applies the auto-advance: elapsed is the full budget minus
// whatever countdown remained, then the ordinary advance path runs.
func (s *Session) timeoutLocked() {
	s.recordTimeLocked(s.questions[s.index].ID, s.budget-s.remaining)
	s.advanceLocked()
}

func (s *Session) advanceLocked() {
	if s.index == len(s.questions)-1 {
		s.state = StateSubmitting
		s.stopTimerLocked()
		return
	}
	s.enterLocked(s.index + 1)
}

// recordTimeLocked stores elapsed seconds for a question exactly once,
// clamped to the countdown budget. A prior record (e.g. from a timeout)
// is never overwritten.
func (s *Session) recordTimeLocked(questionID string, elapsed int) {
	if _, ok := s.timeSpent[questionID]; ok {
		return
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > s.budget {
		elapsed = s.budget
	}
	s.timeSpent[questionID] = elapsed
}

func (s *Session) elapsedLocked() int {
	return int(s.now().Sub(s.enteredAt) / time.Second)
}

func (s *Session) submissionLocked() domain.AnswerSubmission {
	var answers domain.AnswerMap
	for _, id := range s.answers.Keys() {
		answer, _ := s.answers.Get(id)
		answers.Set(id, answer)
	}
	times := make(map[string]int, len(s.timeSpent))
	for id, elapsed := range s.timeSpent {
		times[id] = elapsed
	}
	return domain.AnswerSubmission{
		Category:   s.category,
		Difficulty: s.difficulty,
		Answers:    answers,
		TimeSpent:  times,
	}
}

func (s *Session) broadcastLocked() {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so a slow consumer cannot block
			// the state machine.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:     s.state,
		Index:     s.index,
		Total:     len(s.questions),
		Remaining: s.remaining,
	}
	if len(s.questions) > 0 && s.index < len(s.questions) {
		question := s.questions[s.index]
		snap.Question = question
		snap.Selected, _ = s.answers.Get(question.ID)
	}
	return snap
}
