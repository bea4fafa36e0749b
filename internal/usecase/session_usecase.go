package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/meanly/wordtrack/internal/entity"
)

// Evaluator scores a learner's sentence for a vocabulary item. External
// collaborator; it may fail or time out and the session degrades to the local
// heuristic instead of surfacing the failure.
type Evaluator interface {
	Evaluate(ctx context.Context, sentence string, item *entity.VocabularyItem) (*entity.Evaluation, error)
}

// SessionUsecase starts bounded practice sessions over a queue of items.
type SessionUsecase interface {
	StartSession(ctx context.Context, userID string, items []*entity.VocabularyItem) (*Session, error)
}

// NewSessionUsecase wires the orchestrator dependencies.
func NewSessionUsecase(progress ProgressUsecase, evaluator Evaluator, fallback FallbackConfig, evalTimeout time.Duration, logger *logrus.Logger) SessionUsecase {
	return &sessionUsecase{
		progress:    progress,
		evaluator:   evaluator,
		fallback:    fallback,
		evalTimeout: evalTimeout,
		clock:       time.Now,
		logger:      logger,
	}
}

type sessionUsecase struct {
	progress    ProgressUsecase
	evaluator   Evaluator
	fallback    FallbackConfig
	evalTimeout time.Duration
	clock       func() time.Time
	logger      *logrus.Logger
}

func (u *sessionUsecase) StartSession(ctx context.Context, userID string, items []*entity.VocabularyItem) (*Session, error) {
	if len(items) == 0 {
		return nil, entity.ErrEmptySession
	}
	return &Session{
		usecase:   u,
		userID:    userID,
		items:     items,
		startedAt: u.clock(),
	}, nil
}

// Session sequences practice attempts over its item queue. It is owned by a
// single caller; methods must not be invoked concurrently.
type Session struct {
	usecase *sessionUsecase
	userID  string
	items   []*entity.VocabularyItem
	index   int
	results []entity.SessionResult

	lastSentence string
	lastEval     *entity.Evaluation
	ended        bool
	startedAt    time.Time
}

// Current returns the item being practiced, or nil once the session ended.
func (s *Session) Current() *entity.VocabularyItem {
	if s.ended {
		return nil
	}
	return s.items[s.index]
}

// Progress reports the 1-based position and the queue length.
func (s *Session) Progress() (current, total int) {
	pos := s.index + 1
	if pos > len(s.items) {
		pos = len(s.items)
	}
	return pos, len(s.items)
}

// Ended reports whether the queue is exhausted.
func (s *Session) Ended() bool { return s.ended }

// Submit evaluates a sentence for the current item. Evaluator failures are
// recovered transparently with the local heuristic; the session never blocks
// on the network.
func (s *Session) Submit(ctx context.Context, sentence string) (*entity.Evaluation, error) {
	if s.ended {
		return nil, entity.ErrSessionEnded
	}
	item := s.items[s.index]

	evalCtx, cancel := context.WithTimeout(ctx, s.usecase.evalTimeout)
	defer cancel()

	eval, err := s.usecase.evaluator.Evaluate(evalCtx, sentence, item)
	if err != nil {
		s.usecase.logger.WithError(err).WithField("item_id", item.ID).
			Warn("evaluator unavailable, falling back to local scoring")
		eval = fallbackEvaluate(sentence, item, s.usecase.fallback)
	}

	s.lastSentence = sentence
	s.lastEval = eval
	return eval, nil
}

// Advance applies the last evaluation to the item's progress record, stores
// the session result and moves to the next item.
func (s *Session) Advance(ctx context.Context) error {
	if s.ended {
		return entity.ErrSessionEnded
	}
	if s.lastEval == nil {
		return entity.ErrNoEvaluation
	}
	item := s.items[s.index]

	if _, err := s.usecase.progress.RecordPractice(ctx, s.userID, item.ID, s.lastEval.IsCorrect); err != nil {
		return err
	}
	s.results = append(s.results, entity.SessionResult{
		ItemID:     item.ID,
		Sentence:   s.lastSentence,
		Evaluation: *s.lastEval,
		At:         s.usecase.clock(),
	})
	s.next()
	return nil
}

// Skip records the current item as skipped without touching its progress
// record; a skip is tracked separately, never counted as a wrong attempt.
func (s *Session) Skip(ctx context.Context) error {
	if s.ended {
		return entity.ErrSessionEnded
	}
	item := s.items[s.index]
	s.results = append(s.results, entity.SessionResult{
		ItemID:  item.ID,
		Skipped: true,
		At:      s.usecase.clock(),
	})
	s.next()
	return nil
}

func (s *Session) next() {
	s.lastSentence = ""
	s.lastEval = nil
	s.index++
	if s.index >= len(s.items) {
		s.ended = true
	}
}

// Summary aggregates the session so far and suggests a next action based on
// how the scored attempts went.
func (s *Session) Summary() entity.SessionSummary {
	summary := entity.SessionSummary{
		TotalItems: len(s.items),
		Completed:  len(s.results),
	}
	for _, result := range s.results {
		if result.Skipped {
			summary.Skipped++
			continue
		}
		switch result.Evaluation.Verdict() {
		case entity.VerdictExcellent:
			summary.Excellent++
		case entity.VerdictGood:
			summary.Good++
		case entity.VerdictPartial:
			summary.Partial++
		default:
			summary.NeedsWork++
		}
	}

	scored := summary.Completed - summary.Skipped
	low := summary.Partial + summary.NeedsWork
	switch {
	case scored == 0:
		summary.SuggestedNextAction = entity.NextRest
	case low*2 >= scored:
		summary.SuggestedNextAction = entity.NextReviewWeak
	default:
		summary.SuggestedNextAction = entity.NextContinue
	}
	return summary
}
