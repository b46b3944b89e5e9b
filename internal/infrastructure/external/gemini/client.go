package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
	"github.com/AmelieAvondet/tutoria/pkg/circuitbreaker"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the Gemini client.
type ClientConfig struct {
	// APIKey is the Gemini API key
	APIKey string

	// Model is the model name (e.g. "gemini-2.0-flash")
	Model string

	// Timeout is the per-request timeout
	Timeout time.Duration

	// RateLimiterConfig for client-side throttling
	RateLimiterConfig RateLimiterConfig

	// Logger for structured logging
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(apiKey string) ClientConfig {
	return ClientConfig{
		APIKey:            apiKey,
		Model:             "gemini-2.0-flash",
		Timeout:           60 * time.Second,
		RateLimiterConfig: DefaultRateLimiterConfig(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client calls the Gemini API. It satisfies the tutor.ModelClient port.
// There is deliberately no retry here: a failed teacher turn surfaces to the
// orchestrator, which answers the student with a safe fallback instead of
// making them wait through backoff cycles.
type Client struct {
	config         ClientConfig
	genai          *genai.Client
	logger         *slog.Logger
	rateLimiter    *RateLimiter
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, config ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if config.Model == "" {
		config.Model = "gemini-2.0-flash"
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	logger := config.Logger
	breaker := circuitbreaker.ModelAPIBreaker(func(name string, from, to circuitbreaker.State) {
		logger.Warn("circuit breaker state change",
			"breaker", name,
			"from", from.String(),
			"to", to.String(),
		)
	})

	return &Client{
		config:         config,
		genai:          genaiClient,
		logger:         logger,
		rateLimiter:    NewRateLimiter(config.RateLimiterConfig),
		circuitBreaker: breaker,
	}, nil
}

// Generate sends a prompt and returns the raw reply text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", shared.ErrModelEmptyResponse
	}

	if err := c.rateLimiter.Allow(ctx); err != nil {
		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			return "", shared.WrapError("gemini", "Generate", shared.ErrModelRateLimited, "client-side rate limit", err)
		}
		return "", err
	}

	var text string
	err := c.circuitBreaker.Execute(ctx, func(ctx context.Context) error {
		if c.config.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
			defer cancel()
		}

		start := time.Now()
		resp, err := c.genai.Models.GenerateContent(
			ctx,
			c.config.Model,
			[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
			nil,
		)
		if err != nil {
			return err
		}

		text = resp.Text()
		c.logger.Debug("model call completed",
			"model", c.config.Model,
			"duration", time.Since(start),
			"prompt_chars", len(prompt),
			"reply_chars", len(text),
		)
		return nil
	})
	if err != nil {
		return "", mapGenerateError(err, c.rateLimiter)
	}

	if strings.TrimSpace(text) == "" {
		return "", shared.ErrModelEmptyResponse
	}

	return text, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.config.Model
}

// BreakerState returns the current circuit breaker state for health checks.
func (c *Client) BreakerState() circuitbreaker.State {
	return c.circuitBreaker.State()
}

// mapGenerateError translates transport and API failures into domain errors
// so the orchestrator can treat every model failure uniformly. A 429 from the
// API also tells the client-side limiter to back off.
func mapGenerateError(err error, limiter *RateLimiter) error {
	switch {
	case errors.Is(err, circuitbreaker.ErrCircuitOpen),
		errors.Is(err, circuitbreaker.ErrTooManyRequests):
		return shared.WrapError("gemini", "Generate", shared.ErrModelUnavailable, "circuit breaker open", err)

	case errors.Is(err, context.DeadlineExceeded):
		return shared.WrapError("gemini", "Generate", shared.ErrModelTimeout, "model call timed out", err)

	case errors.Is(err, context.Canceled):
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			if limiter != nil {
				limiter.RecordRateLimitHit()
			}
			return shared.WrapError("gemini", "Generate", shared.ErrModelRateLimited, "API rate limit exceeded", err)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return shared.WrapError("gemini", "Generate", shared.ErrModelTimeout, "model call timed out", err)
		default:
			return shared.WrapError("gemini", "Generate", shared.ErrModelUnavailable, apiErr.Message, err)
		}
	}

	return shared.WrapError("gemini", "Generate", shared.ErrModelUnavailable, "model call failed", err)
}
