package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/config"
)

// OpenAIClient handles interaction with the OpenAI chat completions API.
type OpenAIClient struct {
	httpClient     *http.Client
	logger         *logrus.Logger
	apiKey         string
	baseURL        string
	model          string
	maxTokens      int
	temperature    float64
	rateLimiter    *time.Ticker
	circuitBreaker *gobreaker.CircuitBreaker
	retryAttempts  int
	usage          *usageTracker
	mu             sync.Mutex
}

// usageTracker tracks request and token consumption against API limits.
type usageTracker struct {
	mu             sync.Mutex
	lastReset      time.Time
	minuteRequests int
	hourlyTokens   int64
	requestLimit   int
	tokenLimit     int64
}

// ChatMessage is one message in a chat completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the request payload for the chat completions endpoint.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

// ChatResponse is the chat completions response.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   ChatUsage    `json:"usage"`
}

// ChatChoice is one completion candidate.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatUsage reports token consumption for a completion.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type openAIErrorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewOpenAIClient creates a client with rate limiting and a circuit breaker.
func NewOpenAIClient(cfg config.OpenAIConfig, logger *logrus.Logger) *OpenAIClient {
	tracker := &usageTracker{
		requestLimit: 60,
		tokenLimit:   100000,
		lastReset:    time.Now(),
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openai-api",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Info("OpenAI API circuit breaker state changed")
		},
	})

	return &OpenAIClient{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger:         logger,
		apiKey:         cfg.APIKey,
		baseURL:        cfg.BaseURL,
		model:          cfg.Model,
		maxTokens:      cfg.MaxTokens,
		temperature:    cfg.Temperature,
		rateLimiter:    time.NewTicker(1 * time.Second),
		circuitBreaker: cb,
		retryAttempts:  3,
		usage:          tracker,
	}
}

// Configured reports whether an API key is present. An unconfigured client
// never makes requests; callers substitute the placeholder narrative.
func (c *OpenAIClient) Configured() bool {
	return c.apiKey != ""
}

// Complete sends a system prompt plus user prompt and returns the
// completion text.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("openai API key not configured")
	}

	if err := c.checkRateLimits(); err != nil {
		return "", fmt.Errorf("rate limit exceeded: %w", err)
	}

	request := ChatRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	response, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.makeRequest(ctx, request)
	})
	if err != nil {
		return "", fmt.Errorf("openai API request failed: %w", err)
	}

	chatResp := response.(*ChatResponse)
	c.trackTokenUsage(chatResp.Usage.TotalTokens)

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("openai API returned no choices")
	}
	return chatResp.Choices[0].Message.Content, nil
}

// makeRequest handles the HTTP round trip with retries.
func (c *OpenAIClient) makeRequest(ctx context.Context, request ChatRequest) (*ChatResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.rateLimiter.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	c.trackRequest()

	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(requestBody))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var chatResp ChatResponse
			err := json.NewDecoder(resp.Body).Decode(&chatResp)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("failed to decode response: %w", err)
			}
			return &chatResp, nil
		}

		var apiErr openAIErrorEnvelope
		decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr)
		resp.Body.Close()
		if decodeErr != nil {
			lastErr = fmt.Errorf("API request failed with status %d", resp.StatusCode)
			continue
		}

		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return nil, fmt.Errorf("invalid API credentials: %s", apiErr.Error.Message)
		case http.StatusBadRequest:
			return nil, fmt.Errorf("bad request: %s", apiErr.Error.Message)
		case http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limit exceeded: %s", apiErr.Error.Message)
		default:
			lastErr = fmt.Errorf("unexpected error (status %d): %s", resp.StatusCode, apiErr.Error.Message)
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", c.retryAttempts, lastErr)
}

func (c *OpenAIClient) checkRateLimits() error {
	c.usage.mu.Lock()
	defer c.usage.mu.Unlock()

	now := time.Now()
	if now.Minute() != c.usage.lastReset.Minute() {
		c.usage.minuteRequests = 0
		c.usage.lastReset = now
	}
	if now.Hour() != c.usage.lastReset.Hour() {
		c.usage.hourlyTokens = 0
	}

	if c.usage.minuteRequests >= c.usage.requestLimit {
		return fmt.Errorf("request rate limit exceeded (%d/%d per minute)",
			c.usage.minuteRequests, c.usage.requestLimit)
	}
	if c.usage.hourlyTokens >= c.usage.tokenLimit {
		return fmt.Errorf("token rate limit exceeded (%d/%d per hour)",
			c.usage.hourlyTokens, c.usage.tokenLimit)
	}

	return nil
}

func (c *OpenAIClient) trackRequest() {
	c.usage.mu.Lock()
	defer c.usage.mu.Unlock()
	c.usage.minuteRequests++
}

func (c *OpenAIClient) trackTokenUsage(tokens int) {
	c.usage.mu.Lock()
	defer c.usage.mu.Unlock()

	c.usage.hourlyTokens += int64(tokens)

	c.logger.WithFields(logrus.Fields{
		"tokens_used":  tokens,
		"hourly_total": c.usage.hourlyTokens,
		"hourly_limit": c.usage.tokenLimit,
	}).Debug("Tracked OpenAI API token usage")
}

// UsageStats returns current request and token counters.
func (c *OpenAIClient) UsageStats() (minuteRequests int, hourlyTokens int64) {
	c.usage.mu.Lock()
	defer c.usage.mu.Unlock()
	return c.usage.minuteRequests, c.usage.hourlyTokens
}

// IsHealthy reports whether the circuit breaker is closed.
func (c *OpenAIClient) IsHealthy() bool {
	return c.circuitBreaker.State() == gobreaker.StateClosed
}
