package llm

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Client is an abstraction over LLM providers
type Client interface {
	// Complete sends an ordered list of messages and returns the reply
	Complete(ctx context.Context, messages []Message) (*Response, error)
	// Model returns the provider model the client is bound to
	Model() string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a provider client bound to the model of a tier
func NewClient(ctx context.Context, config *Config, tier ModelTier, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, tier, apiKey)
	case ProviderOpenAI, "":
		return NewOpenAIClient(config, tier, apiKey)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", config.Provider)
	}
}

// Generate sends a single user prompt and returns the reply text
func Generate(ctx context.Context, client Client, prompt string) (string, error) {
	resp, err := client.Complete(ctx, []Message{UserMessage(prompt)})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
