// Package chat relays visitor messages to a hosted language model.
//
// REQUEST FLOW:
//
//	ChatHandler → Proxy.Reply → Generator (Gemini)
//
// The Proxy owns the rules (non-empty message, timeout, system preamble,
// API key lookup); the Generator only talks to the provider. Tests swap in
// a fake Generator through the factory.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/burakyalinat/portfolio/internal/apperror"
)

// APIKeyEnv is the environment variable holding the Gemini API key.
const APIKeyEnv = "GEMINI_API_KEY"

// DefaultTimeout bounds one upstream call.
const DefaultTimeout = 30 * time.Second

// DefaultSystemPrompt introduces the assistant to the model.
const DefaultSystemPrompt = "Sen Burak'ın asistanısın. Burak bir Deep Learning mühendisi. Zeki, kısa ve hafif esprili cevaplar ver."

// ErrNotConfigured means no API key is available.
var ErrNotConfigured = errors.New("chat: " + APIKeyEnv + " is not set")

// Generator produces a reply for one message.
type Generator interface {
	Generate(ctx context.Context, system, message string) (string, error)
}

// GeneratorFactory builds a Generator for an API key.
type GeneratorFactory func(ctx context.Context, apiKey, model string) (Generator, error)

// GeminiFactory is the production GeneratorFactory.
func GeminiFactory(ctx context.Context, apiKey, model string) (Generator, error) {
	return NewGeminiGenerator(ctx, apiKey, model)
}

// Config holds the Proxy settings. Zero values select the defaults.
type Config struct {
	Model        string
	SystemPrompt string
	Timeout      time.Duration
	// KeyFunc returns the API key. It is called on every request so a key
	// added to the environment takes effect without a restart.
	KeyFunc func() string
	Factory GeneratorFactory
}

// Proxy forwards chat messages to the model.
type Proxy struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	key     string
	current Generator
}

// NewProxy creates a Proxy.
func NewProxy(cfg Config, logger *slog.Logger) *Proxy {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func() string { return os.Getenv(APIKeyEnv) }
	}
	if cfg.Factory == nil {
		cfg.Factory = GeminiFactory
	}
	return &Proxy{cfg: cfg, logger: logger}
}

// Timeout is the upper bound of one Reply call.
func (p *Proxy) Timeout() time.Duration {
	return p.cfg.Timeout
}

// Reply returns the model's answer to message.
//
// Errors:
//   - apperror.ErrValidation for an empty message
//   - apperror.ErrUpstream for a missing key or a provider failure; the
//     AppError message is safe to show, the cause is only logged
func (p *Proxy) Reply(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", apperror.ValidationFailed("message", "Message must not be empty")
	}

	gen, err := p.generator(ctx)
	if err != nil {
		p.logger.Error("chat unavailable", slog.String("error", err.Error()))
		return "", apperror.Upstream("Chat is not available right now", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	start := time.Now()
	reply, err := gen.Generate(ctx, p.cfg.SystemPrompt, message)
	if err != nil {
		p.logger.Error("chat error",
			slog.String("model", p.cfg.Model),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return "", apperror.Upstream("Something went wrong", err)
	}

	p.logger.Debug("chat reply",
		slog.String("model", p.cfg.Model),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("chars", len(reply)),
	)
	return reply, nil
}

// generator returns a Generator for the current key, reusing the previous
// one while the key is unchanged.
func (p *Proxy) generator(ctx context.Context) (Generator, error) {
	key := p.cfg.KeyFunc()
	if key == "" {
		return nil, ErrNotConfigured
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil && p.key == key {
		return p.current, nil
	}

	gen, err := p.cfg.Factory(ctx, key, p.cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("chat: creating generator: %w", err)
	}
	p.key, p.current = key, gen
	return gen, nil
}
