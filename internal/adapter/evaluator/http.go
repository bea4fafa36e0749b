package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/meanly/wordtrack/internal/entity"
	"github.com/meanly/wordtrack/internal/usecase"
)

// evaluateRequest is the payload sent to the sentence-scoring service.
type evaluateRequest struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
	Sentence   string `json:"sentence"`
}

// evaluateResponse mirrors the scoring service's JSON reply.
type evaluateResponse struct {
	Score       int      `json:"score"`
	IsCorrect   bool     `json:"is_correct"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
	Error       *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// HTTPEvaluator scores practice sentences against a remote language service.
// Any error it returns is recoverable: callers fall back to local scoring.
type HTTPEvaluator struct {
	url    string
	client *http.Client
}

// NewHTTP creates an evaluator client for the given endpoint.
func NewHTTP(url string) *HTTPEvaluator {
	return &HTTPEvaluator{
		url:    url,
		client: &http.Client{},
	}
}

var _ usecase.Evaluator = (*HTTPEvaluator)(nil)

// Evaluate submits the sentence for scoring and decodes the verdict.
func (e *HTTPEvaluator) Evaluate(ctx context.Context, sentence string, item *entity.VocabularyItem) (*entity.Evaluation, error) {
	body, err := json.Marshal(evaluateRequest{
		Word:       item.Word,
		Definition: item.Definition,
		Sentence:   sentence,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("evaluator returned status %d", resp.StatusCode)
	}

	var response evaluateResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if response.Error != nil {
		return nil, fmt.Errorf("evaluator error: %s", response.Error.Message)
	}
	if response.Score < 0 || response.Score > 100 {
		return nil, fmt.Errorf("evaluator returned score %d out of range", response.Score)
	}

	return &entity.Evaluation{
		Score:       response.Score,
		IsCorrect:   response.IsCorrect,
		Feedback:    response.Feedback,
		Suggestions: response.Suggestions,
	}, nil
}
