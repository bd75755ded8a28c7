package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"polyscout/internal/apicache"
)

// ErrBlocked is returned while the credit guard has AI calls suspended.
var ErrBlocked = errors.New("ai calls suspended by credit guard")

const maxAttempts = 3

// Client wraps the Anthropic API with rate limiting, credit guarding and
// retry on transient failures. All three AI services share one Client.
type Client struct {
	sdk       anthropic.Client
	model     string
	maxTokens int64

	Limiter *apicache.RateLimiter
	Guard   *CreditGuard
	Logger  *zap.Logger
}

func NewClient(apiKey, model string, maxTokens int, limiter *apicache.RateLimiter, guard *CreditGuard, logger *zap.Logger) *Client {
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	return &Client{
		sdk:       anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: int64(maxTokens),
		Limiter:   limiter,
		Guard:     guard,
		Logger:    logger,
	}
}

// Complete sends one prompt and returns the concatenated text blocks of the
// reply. webSearchMax > 0 enables the web search tool with that use budget.
func (c *Client) Complete(ctx context.Context, system, prompt string, webSearchMax int) (string, error) {
	if c == nil {
		return "", fmt.Errorf("ai client is nil")
	}
	if reason, blocked := c.Guard.Check(); blocked {
		return "", fmt.Errorf("%w: %s", ErrBlocked, reason)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if webSearchMax > 0 {
		params.Tools = []anthropic.ToolUnionParam{{
			OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{
				MaxUses: anthropic.Int(int64(webSearchMax)),
			},
		}}
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.Limiter.Wait(ctx); err != nil {
			return "", err
		}
		msg, err := c.sdk.Messages.New(ctx, params)
		if err == nil {
			c.Limiter.ReportSuccess()
			return collectText(msg), nil
		}
		lastErr = err

		if IsCreditError(err.Error()) {
			c.Guard.Trip(err.Error())
			return "", fmt.Errorf("%w: %v", ErrBlocked, err)
		}
		var apierr *anthropic.Error
		if errors.As(err, &apierr) {
			switch {
			case apierr.StatusCode == 429:
				c.Limiter.ReportRateLimit(0)
				if c.Logger != nil {
					c.Logger.Warn("ai rate limited", zap.Int("attempt", attempt))
				}
				continue
			case apierr.StatusCode >= 500:
				if c.Logger != nil {
					c.Logger.Warn("ai server error", zap.Int("status", apierr.StatusCode), zap.Int("attempt", attempt))
				}
				if err := sleepCtx(ctx, time.Duration(attempt)*2*time.Second); err != nil {
					return "", err
				}
				continue
			}
		}
		return "", err
	}
	return "", lastErr
}

func collectText(msg *anthropic.Message) string {
	if msg == nil {
		return ""
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
