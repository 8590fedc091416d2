package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dgallion1/flashgest/internal/flashcard"
)

// Remote delegates generation to an HTTP service that accepts
// {"text", "max_q"} and answers with {"flashcards": [...]} or a bare array.
type Remote struct {
	url        string
	httpClient *http.Client
}

func NewRemote(url string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Remote{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (r *Remote) Name() string { return "remote" }

type remoteRequest struct {
	Text string `json:"text"`
	MaxQ int    `json:"max_q"`
}

// Generate posts text to the service and returns its cards.
func (r *Remote) Generate(ctx context.Context, text string, maxQuestions int) ([]flashcard.Candidate, error) {
	body, err := json.Marshal(remoteRequest{Text: text, MaxQ: maxQuestions})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("remote generator: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote generator status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var wrapped struct {
		Flashcards []flashcard.Candidate `json:"flashcards"`
	}
	if err := json.Unmarshal(respBody, &wrapped); err == nil {
		return limit(wrapped.Flashcards, maxQuestions), nil
	}
	var bare []flashcard.Candidate
	if err := json.Unmarshal(respBody, &bare); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return limit(bare, maxQuestions), nil
}

func limit(c []flashcard.Candidate, n int) []flashcard.Candidate {
	if n > 0 && len(c) > n {
		return c[:n]
	}
	return c
}
