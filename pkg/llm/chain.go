package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"store-locator-be/internal/pkg/logger"
)

const module = "LLM"

// ErrEmptyAnswer is recorded when a provider replies with blank text.
var ErrEmptyAnswer = errors.New("empty answer")

// Named pairs a provider with the label used in logs.
type Named struct {
	Name     string
	Provider LLMProvider
	Timeout  time.Duration
}

// ChainError lists every failed attempt, in order.
type ChainError struct {
	Attempts []error
}

func (e *ChainError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, err := range e.Attempts {
		parts[i] = err.Error()
	}
	return "all providers failed: " + strings.Join(parts, "; ")
}

func (e *ChainError) Unwrap() []error {
	return e.Attempts
}

// Chain tries providers in order and returns the first acceptable answer.
// It implements LLMProvider so callers never care how many backends exist.
type Chain struct {
	providers []Named
	logger    logger.ILogger
}

var _ LLMProvider = (*Chain)(nil)

func NewChain(log logger.ILogger, providers ...Named) *Chain {
	kept := make([]Named, 0, len(providers))
	for _, p := range providers {
		if p.Provider != nil {
			kept = append(kept, p)
		}
	}
	return &Chain{providers: kept, logger: log}
}

// Len returns the number of configured providers.
func (c *Chain) Len() int {
	return len(c.providers)
}

// Names lists the providers in the order they are tried.
func (c *Chain) Names() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name
	}
	return names
}

func (c *Chain) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	return c.ChatAccept(ctx, history, nil, options...)
}

func (c *Chain) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return c.Chat(ctx, []Message{{Role: "user", Content: prompt}}, options...)
}

// ChatAccept is Chat with a caller check: an answer that accept rejects is
// treated exactly like a transport failure and the next provider is tried.
func (c *Chain) ChatAccept(ctx context.Context, history []Message, accept func(string) error, options ...Option) (string, error) {
	if len(c.providers) == 0 {
		return "", ErrNoProvider
	}

	chainErr := &ChainError{}
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			chainErr.Attempts = append(chainErr.Attempts, err)
			break
		}

		out, err := c.call(ctx, p, history, options)
		if err == nil && strings.TrimSpace(out) == "" {
			err = ErrEmptyAnswer
		}
		if err == nil && accept != nil {
			err = accept(out)
		}
		if err == nil {
			return out, nil
		}

		c.logger.Warn(module, "Provider failed, trying next", map[string]interface{}{
			"provider": p.Name,
			"error":    err.Error(),
		})
		chainErr.Attempts = append(chainErr.Attempts, fmt.Errorf("%s: %w", p.Name, err))
	}
	return "", chainErr
}

func (c *Chain) call(ctx context.Context, p Named, history []Message, options []Option) (string, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	start := time.Now()
	out, err := p.Provider.Chat(ctx, history, options...)
	c.logger.Debug(module, "Provider call", map[string]interface{}{
		"provider": p.Name,
		"duration": time.Since(start).String(),
		"ok":       err == nil,
	})
	return out, err
}
