// Package srs implements the strength state machine that drives spaced
// repetition scheduling. Intervals are fixed per tier rather than adaptive
// per-item ease factors; forgetting is modeled by demotion, so the machine
// is cyclic and has no terminal state.
package srs

import (
	"time"

	"github.com/meanly/wordtrack/internal/entity"
)

// Promotion thresholds. A tier moves at most one step per attempt.
const (
	familiarMinPractice = 3
	familiarMinRate     = 0.7
	masteredMinPractice = 5
	masteredMinRate     = 0.8
)

var intervals = map[entity.Strength]time.Duration{
	entity.StrengthNew:      4 * time.Hour,
	entity.StrengthLearning: 24 * time.Hour,
	entity.StrengthFamiliar: 72 * time.Hour,
	entity.StrengthMastered: 168 * time.Hour,
}

// Interval returns the review delay for a tier.
func Interval(s entity.Strength) time.Duration {
	return intervals[s]
}

// Advance returns the record after one practice attempt. Pure: the input is
// not modified and the same (record, isCorrect, now) always yields the same
// output.
func Advance(rec entity.ProgressRecord, isCorrect bool, now time.Time) entity.ProgressRecord {
	rec.PracticeCount++
	if isCorrect {
		rec.CorrectCount++
	}
	rate := float64(rec.CorrectCount) / float64(rec.PracticeCount)
	rec.Strength = nextStrength(rec.Strength, isCorrect, rec.PracticeCount, rate)

	due := now.Add(Interval(rec.Strength))
	rec.NextDueAt = &due
	practiced := now
	rec.LastPracticedAt = &practiced
	return rec
}

func nextStrength(current entity.Strength, isCorrect bool, practiceCount int, successRate float64) entity.Strength {
	if !isCorrect {
		// A single failure only demotes the upper tiers.
		switch current {
		case entity.StrengthMastered:
			return entity.StrengthFamiliar
		case entity.StrengthFamiliar:
			return entity.StrengthLearning
		}
		return current
	}

	switch current {
	case entity.StrengthNew:
		return entity.StrengthLearning
	case entity.StrengthLearning:
		if practiceCount >= familiarMinPractice && successRate >= familiarMinRate {
			return entity.StrengthFamiliar
		}
	case entity.StrengthFamiliar:
		if practiceCount >= masteredMinPractice && successRate >= masteredMinRate {
			return entity.StrengthMastered
		}
	}
	return current
}
