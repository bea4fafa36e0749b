package entity

import "time"

// Evaluation is the outcome of scoring one submitted sentence. Fallback marks
// outcomes produced by the local heuristic instead of the remote evaluator.
type Evaluation struct {
	Score       int
	IsCorrect   bool
	Feedback    string
	Suggestions []string
	Fallback    bool
}

// Verdict buckets an evaluation score for session reporting.
type Verdict string

const (
	VerdictExcellent Verdict = "excellent"
	VerdictGood      Verdict = "good"
	VerdictPartial   Verdict = "partial"
	VerdictNeedsWork Verdict = "needs_work"
)

const (
	excellentScore = 85
	goodScore      = 60
	partialScore   = 40
)

// Verdict maps the score to its reporting bucket.
func (e Evaluation) Verdict() Verdict {
	switch {
	case e.Score >= excellentScore:
		return VerdictExcellent
	case e.Score >= goodScore:
		return VerdictGood
	case e.Score >= partialScore:
		return VerdictPartial
	default:
		return VerdictNeedsWork
	}
}

// SessionResult is one practice attempt inside a session. It lives only for
// the session's lifetime and is not persisted beyond the summary.
type SessionResult struct {
	ItemID     string
	Sentence   string
	Evaluation Evaluation
	Skipped    bool
	At         time.Time
}

// NextAction is the suggested follow-up after a session.
type NextAction string

const (
	NextContinue   NextAction = "continue"
	NextReviewWeak NextAction = "review_weak"
	NextRest       NextAction = "rest"
)

// SessionSummary aggregates a finished (or in-flight) practice session.
// Skipped items are tracked separately and never counted as wrong attempts.
type SessionSummary struct {
	TotalItems          int
	Completed           int
	Excellent           int
	Good                int
	Partial             int
	NeedsWork           int
	Skipped             int
	SuggestedNextAction NextAction
}
