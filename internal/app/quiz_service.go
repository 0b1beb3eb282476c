package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"timed-quiz-service/internal/domain"
)

// SessionRepository abstracts how live sessions are stored (in-memory,
// Redis-backed, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(id string) (*Session, bool)
	Delete(id string)
}

// ServiceConfig carries the tunables shared by all attempts.
type ServiceConfig struct {
	QuestionsPerRound int
	QuestionSeconds   int
	TickInterval      time.Duration
	Clock             func() time.Time
}

// QuizService contains the quiz use cases: fetching redacted question sets,
// driving timed attempts, and scoring submissions.
type QuizService struct {
	selector *QuestionSelector
	scorer   *ScoringEngine
	sessions SessionRepository
	cfg      ServiceConfig
}

func NewQuizService(sessions SessionRepository, banks BankRepository, cfg ServiceConfig) *QuizService {
	return &QuizService{
		selector: NewQuestionSelector(banks, cfg.QuestionsPerRound),
		scorer:   NewScoringEngine(banks),
		sessions: sessions,
		cfg:      cfg,
	}
}

// FetchQuestions returns a randomized, redacted question set for stateless
// clients that run the attempt themselves.
func (s *QuizService) FetchQuestions(ctx context.Context, category, difficulty string) ([]domain.PublicQuestion, error) {
	return s.selector.Select(ctx, category, difficulty)
}

// CheckAnswers scores a finished submission.
func (s *QuizService) CheckAnswers(ctx context.Context, submission domain.AnswerSubmission) (domain.ScoreResult, error) {
	return s.scorer.Score(ctx, submission)
}

// StartSession selects questions and begins a server-driven timed attempt.
// Selection failure aborts: no session is registered.
func (s *QuizService) StartSession(ctx context.Context, category, difficulty string) (*Session, error) {
	questions, err := s.selector.Select(ctx, category, difficulty)
	if err != nil {
		return nil, err
	}
	session := NewSession(newSessionID(), category, difficulty, questions, SessionConfig{
		QuestionSeconds: s.cfg.QuestionSeconds,
		TickInterval:    s.cfg.TickInterval,
		Clock:           s.cfg.Clock,
	})
	if err := session.Begin(); err != nil {
		return nil, err
	}
	s.sessions.Put(session)
	return session, nil
}

// GetSession resolves a live session by id.
func (s *QuizService) GetSession(id string) (*Session, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// SubmitSession finalizes an attempt and scores it. On scoring failure the
// session returns to its last question and stays registered so the caller
// can retry; on success it is removed.
func (s *QuizService) SubmitSession(ctx context.Context, session *Session) (domain.ScoreResult, error) {
	submission, err := session.BeginSubmit()
	if err != nil {
		return domain.ScoreResult{}, err
	}
	result, err := s.scorer.Score(ctx, submission)
	session.CompleteSubmit(err == nil)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	s.sessions.Delete(session.ID())
	return result, nil
}

// AbandonSession cancels a session's timer and drops it from the store.
func (s *QuizService) AbandonSession(session *Session) {
	session.Abandon()
	s.sessions.Delete(session.ID())
}

func newSessionID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
