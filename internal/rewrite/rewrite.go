package rewrite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nomadshift/backend/internal/apperrors"
)

// DefaultTimeout bounds a single rewrite call.
const DefaultTimeout = 30 * time.Second

const maxLogLen = 200

// Context selects which prompt is used.
type Context string

const (
	ContextProfile Context = "profile"
	ContextJob     Context = "job"
)

// Generator produces text from a system instruction and a user prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Name() string
}

// Request is the decoded body of POST /api/ai/improve-description.
type Request struct {
	Description string  `json:"description"`
	Context     Context `json:"context"`
}

// Result pairs the caller's text with the rewrite.
type Result struct {
	Original string `json:"original"`
	Improved string `json:"improved"`
}

// Service rewrites profile and job descriptions through a Generator.
type Service struct {
	gen     Generator
	timeout time.Duration
	log     *slog.Logger
}

func NewService(gen Generator, timeout time.Duration, log *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{gen: gen, timeout: timeout, log: log}
}

// Improve asks the generator for a better version of req.Description. It is
// not retried.
func (s *Service) Improve(ctx context.Context, req Request) (*Result, error) {
	text := strings.TrimSpace(req.Description)
	if text == "" {
		return nil, apperrors.Validation("description must not be empty")
	}
	if req.Context == "" {
		req.Context = ContextProfile
	}
	system, err := systemPrompt(req.Context)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	s.log.Debug("ai rewrite request", "generator", s.gen.Name(), "context", req.Context, "prompt_preview", TruncateForLog(text, maxLogLen))
	out, err := s.gen.Generate(ctx, system, text)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			s.log.Warn("ai rewrite timed out", "generator", s.gen.Name(), "timeout", s.timeout)
			return nil, apperrors.UpstreamTimeout("AI service timeout", err)
		}
		s.log.Warn("ai rewrite failed", "generator", s.gen.Name(), "error", err)
		return nil, apperrors.UpstreamUnavailable("AI service unavailable", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, apperrors.UpstreamUnavailable("AI service unavailable", errors.New("empty response"))
	}
	s.log.Debug("ai rewrite response", "generator", s.gen.Name(), "duration", time.Since(start), "response_preview", TruncateForLog(out, maxLogLen))
	return &Result{Original: req.Description, Improved: out}, nil
}

// TruncateForLog shortens s to at most limit runes, marking the cut.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}

// ErrDisabled is returned by the disabled generator.
var ErrDisabled = errors.New("ai provider disabled")

// DisabledGenerator is the generator used when no AI provider is configured.
type DisabledGenerator struct{}

func (DisabledGenerator) Generate(context.Context, string, string) (string, error) { return "", ErrDisabled }
func (DisabledGenerator) Name() string { return "none" }

// New builds the generator named by cfg.Provider.
func New(ctx context.Context, cfg Config) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "none":
		return DisabledGenerator{}, nil
	case "gemini":
		g, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "ollama":
		o, err := NewOllama(cfg.OllamaBaseURL, cfg.Model, nil)
		if err != nil {
			return nil, err
		}
		return o, nil
	}
	return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
}

// Config selects and configures a generator.
type Config struct {
	Provider      string
	Model         string
	GeminiAPIKey  string
	OllamaBaseURL string
}
