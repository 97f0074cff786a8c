package ai

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ayush/syncdraft/internal/observability"
)

// Mode selects the prompt and sampling settings.
type Mode string

const (
	ModeSummary Mode = "summary"
	ModeGrammar Mode = "grammar"
)

type preset struct {
	prompt      string
	temperature float64
	maxTokens   int
}

var presets = map[Mode]preset{
	ModeSummary: {
		prompt:      "Summarize this blog post professionally in 2-3 sentences. Focus on the main points and key takeaways:\n\n",
		temperature: 0.7,
		maxTokens:   300,
	},
	ModeGrammar: {
		prompt: "Fix grammar, spelling, and improve clarity in this blog post.\n" +
			"Provide only the corrected text without explanations or markdown formatting:\n\n",
		temperature: 0.5,
		maxTokens:   2000,
	},
}

// ParseMode maps a request mode to a known one. Anything unrecognised is a summary.
func ParseMode(s string) Mode {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := presets[m]; ok {
		return m
	}
	return ModeSummary
}

// Completer produces a completion for one prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
}

// Service runs completions with an optional result cache in front.
type Service struct {
	completer Completer
	cache     Cache
	ttl       time.Duration
}

// NewService builds a Service. cache may be nil.
func NewService(completer Completer, cache Cache, ttl time.Duration) *Service {
	return &Service{completer: completer, cache: cache, ttl: ttl}
}

// Generate returns the completion for text in the given mode. Cache failures
// are logged and never fail the call.
func (s *Service) Generate(ctx context.Context, mode Mode, text string) (string, error) {
	mode = ParseMode(string(mode))
	p := presets[mode]
	key := cacheKey(mode, text)

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			observability.AICacheLookups.WithLabelValues("error").Inc()
			slog.WarnContext(ctx, "ai cache get", "error", err)
		case ok:
			observability.AICacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			observability.AICacheLookups.WithLabelValues("miss").Inc()
		}
	}

	result, err := s.completer.Complete(ctx, p.prompt+text, p.temperature, p.maxTokens)
	if err != nil {
		observability.AIUpstreamErrors.Inc()
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, s.ttl); err != nil {
			slog.WarnContext(ctx, "ai cache set", "error", err)
		}
	}
	return result, nil
}
