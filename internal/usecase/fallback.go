package usecase

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/meanly/wordtrack/internal/entity"
)

// FallbackConfig holds the point weights for the local scoring heuristic used
// when the evaluator is unreachable. The weights are product-tunable
// configuration, not derived values.
type FallbackConfig struct {
	WordPresencePoints   int
	LengthPoints         int
	PunctuationPoints    int
	CapitalizationPoints int
	ContextPoints        int
	MinWords             int
	PassScore            int
}

// DefaultFallbackConfig mirrors the weights the mobile client shipped with.
func DefaultFallbackConfig() FallbackConfig {
	return FallbackConfig{
		WordPresencePoints:   40,
		LengthPoints:         20,
		PunctuationPoints:    10,
		CapitalizationPoints: 10,
		ContextPoints:        20,
		MinWords:             5,
		PassScore:            60,
	}
}

// fallbackEvaluate scores a sentence without any network dependency so a
// practice session can always complete. Deterministic.
func fallbackEvaluate(sentence string, item *entity.VocabularyItem, cfg FallbackConfig) *entity.Evaluation {
	trimmed := strings.TrimSpace(sentence)
	wordLower := strings.ToLower(item.Word)
	sentenceLower := strings.ToLower(trimmed)
	containsWord := wordLower != "" && strings.Contains(sentenceLower, wordLower)
	wordCount := len(strings.Fields(trimmed))

	score := 0
	var feedback []string
	var suggestions []string

	if containsWord {
		score += cfg.WordPresencePoints
		feedback = append(feedback, "The word is used in the sentence.")
	} else {
		feedback = append(feedback, "The word was not found in the sentence.")
		suggestions = append(suggestions, fmt.Sprintf("Include the word %q in your sentence.", item.Word))
	}

	if wordCount >= cfg.MinWords {
		score += cfg.LengthPoints
		feedback = append(feedback, "The sentence has enough substance.")
	} else {
		suggestions = append(suggestions, "Try writing a fuller sentence.")
	}

	if strings.HasSuffix(trimmed, ".") || strings.HasSuffix(trimmed, "!") || strings.HasSuffix(trimmed, "?") {
		score += cfg.PunctuationPoints
	} else {
		suggestions = append(suggestions, "End the sentence with punctuation.")
	}

	if startsUpper(trimmed) {
		score += cfg.CapitalizationPoints
	} else {
		suggestions = append(suggestions, "Start the sentence with a capital letter.")
	}

	// The word counts as integrated when other text surrounds it.
	if idx := strings.Index(sentenceLower, wordLower); containsWord && idx > 0 && idx+len(wordLower) < len(sentenceLower) {
		score += cfg.ContextPoints
		feedback = append(feedback, "The word is woven into context.")
	}

	if score > 100 {
		score = 100
	}
	return &entity.Evaluation{
		Score:       score,
		IsCorrect:   score >= cfg.PassScore,
		Feedback:    strings.Join(feedback, " "),
		Suggestions: suggestions,
		Fallback:    true,
	}
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
