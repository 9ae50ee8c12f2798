package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultHTTPTimeout bounds a single chat completion request.
const DefaultHTTPTimeout = 120 * time.Second

// OpenAIClient implements Client for OpenAI-compatible chat completion endpoints
type OpenAIClient struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	http        *http.Client
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	ID                string         `json:"id"`
	Model             string         `json:"model"`
	SystemFingerprint string         `json:"system_fingerprint"`
	Choices           []openAIChoice `json:"choices"`
	Usage             openAIUsage    `json:"usage"`
}

type openAIChoice struct {
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type openAIErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// NewOpenAIClient creates a new OpenAI-compatible client bound to the model of a tier
func NewOpenAIClient(config *Config, tier ModelTier, apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := config.GetModel(tier)
	if model == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	return &OpenAIClient{
		apiKey:      apiKey,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		model:       model,
		temperature: config.Temperature,
		http:        &http.Client{Timeout: DefaultHTTPTimeout},
	}, nil
}

// Complete sends the messages to /chat/completions and returns the first choice
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (*Response, error) {
	body, err := json.Marshal(c.mapRequest(messages))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyHTTPError(resp, respBody)
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode chat completion: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("openai api returned no choices")
	}

	choice := parsed.Choices[0]
	return &Response{
		ID:      parsed.ID,
		Content: choice.Message.Content,
		Metadata: Metadata{
			Model:             parsed.Model,
			FinishReason:      choice.FinishReason,
			SystemFingerprint: parsed.SystemFingerprint,
		},
		Usage: Usage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
			TotalTokens:  parsed.Usage.TotalTokens,
		},
	}, nil
}

// Model returns the model name the client sends requests to
func (c *OpenAIClient) Model() string {
	return c.model
}

// Close releases resources held by the client
func (c *OpenAIClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *OpenAIClient) mapRequest(messages []Message) openAIRequest {
	mapped := make([]openAIMessage, len(messages))
	for i, m := range messages {
		mapped[i] = openAIMessage{Role: m.Role, Content: m.Content}
	}
	return openAIRequest{
		Model:       c.model,
		Messages:    mapped,
		Temperature: c.temperature,
	}
}

// classifyHTTPError turns a non-200 reply into a RateLimitError when the
// provider explains the 429, and a StatusError otherwise.
func classifyHTTPError(resp *http.Response, body []byte) error {
	statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	if resp.StatusCode != http.StatusTooManyRequests {
		return statusErr
	}

	var apiErr openAIErrorBody
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Message == "" {
		return statusErr
	}

	return &RateLimitError{
		Message:    apiErr.Error.Message,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		Cause:      statusErr,
	}
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
