package generate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"

	"github.com/dgallion1/flashgest/internal/flashcard"
)

// Ollama writes flashcards with a local model served by Ollama.
type Ollama struct {
	client *api.Client
	model  string
}

// NewOllama creates a client for host, falling back to OLLAMA_HOST and the
// Ollama default when host is empty.
func NewOllama(host, model string) (*Ollama, error) {
	hostURL := envconfig.Host()
	if host != "" {
		u, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("parse ollama host: %w", err)
		}
		hostURL = u
	}
	return &Ollama{
		client: api.NewClient(hostURL, http.DefaultClient),
		model:  model,
	}, nil
}

func (o *Ollama) Name() string { return "ollama:" + o.model }

// Generate asks the model for up to maxQuestions cards about text.
func (o *Ollama) Generate(ctx context.Context, text string, maxQuestions int) ([]flashcard.Candidate, error) {
	req := api.GenerateRequest{
		Model:  o.model,
		Prompt: BuildPrompt(text, maxQuestions),
		Options: map[string]interface{}{
			"temperature": 0.2,
			"num_predict": 1024,
		},
	}

	var responseBuilder strings.Builder
	err := o.client.Generate(ctx, &req, func(resp api.GenerateResponse) error {
		_, err := responseBuilder.WriteString(resp.Response)
		return err
	})
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500) {
			return nil, &RetryableError{StatusCode: statusErr.StatusCode, Message: statusErr.ErrorMessage}
		}
		return nil, fmt.Errorf("ollama generate: %w", err)
	}

	return flashcard.Parse(responseBuilder.String(), maxQuestions), nil
}
