// Package summarize produces short extractive summaries of article text.
//
// A Summarizer tries its primary engine when that engine declares it can
// handle the configured language, and otherwise (or when the engine fails)
// falls back to taking the leading sentences. Callers only see Summarize.
package summarize

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

const (
	// DefaultSentences is the summary length used when callers pass n <= 0.
	DefaultSentences = 3
	// MinTokens is the shortest text, in whitespace-separated tokens, worth
	// summarizing. Shorter input yields "".
	MinTokens = 80
	// DefaultLanguage selects the bundled stop-word list.
	DefaultLanguage = "spanish"
)

// Tier names the strategy that produced a summary.
type Tier string

const (
	TierSkipped  Tier = "skipped"
	TierPrimary  Tier = "primary"
	TierFallback Tier = "fallback"
)

// Engine is a summarization strategy.
type Engine interface {
	// Ready reports whether the engine has the resources to handle lang.
	Ready(lang string) bool
	// Sentences returns up to n summary sentences for text.
	Sentences(ctx context.Context, text string, n int, lang string) ([]string, error)
}

// Summarizer is the two-tier summarizer.
type Summarizer struct {
	primary Engine
	lang    string
	log     *slog.Logger
	onTier  func(Tier)
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithEngine replaces the primary engine (TextRank by default). A nil engine
// leaves only the fallback tier.
func WithEngine(e Engine) Option {
	return func(s *Summarizer) {
		s.primary = e
	}
}

// WithLanguage selects the language passed to the primary engine.
func WithLanguage(lang string) Option {
	return func(s *Summarizer) {
		if lang = strings.ToLower(strings.TrimSpace(lang)); lang != "" {
			s.lang = lang
		}
	}
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l *slog.Logger) Option {
	return func(s *Summarizer) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTierHook registers fn to be called with the tier of every Summarize
// call. It is meant for run statistics.
func WithTierHook(fn func(Tier)) Option {
	return func(s *Summarizer) {
		s.onTier = fn
	}
}

// New returns a Summarizer backed by TextRank in DefaultLanguage.
func New(opts ...Option) *Summarizer {
	s := &Summarizer{
		primary: NewTextRank(),
		lang:    DefaultLanguage,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize returns up to n sentences summarizing text (n <= 0 means
// DefaultSentences). Text shorter than MinTokens yields "" so that callers
// keep their own short text. Summarize never fails.
func (s *Summarizer) Summarize(ctx context.Context, text string, n int) string {
	if n <= 0 {
		n = DefaultSentences
	}
	if len(strings.Fields(text)) < MinTokens {
		s.report(TierSkipped)
		return ""
	}

	if s.primary != nil && s.primary.Ready(s.lang) {
		picked, err := s.primary.Sentences(ctx, text, n, s.lang)
		if err == nil && len(picked) > 0 {
			if len(picked) > n {
				picked = picked[:n]
			}
			s.report(TierPrimary)
			return strings.Join(picked, " ")
		}
		if err == nil {
			err = ErrNoSentences
		}
		s.log.Debug("primary summarizer failed, using leading sentences", "error", err)
	}

	s.report(TierFallback)
	return Naive(text, n)
}

func (s *Summarizer) report(t Tier) {
	if s.onTier != nil {
		s.onTier(t)
	}
}

// Chain tries several engines in order; the first ready engine that succeeds
// wins.
type Chain []Engine

// Ready reports whether any engine in the chain is ready for lang.
func (c Chain) Ready(lang string) bool {
	for _, e := range c {
		if e != nil && e.Ready(lang) {
			return true
		}
	}
	return false
}

// Sentences returns the result of the first ready engine that succeeds.
func (c Chain) Sentences(ctx context.Context, text string, n int, lang string) ([]string, error) {
	var errs []error
	for _, e := range c {
		if e == nil || !e.Ready(lang) {
			continue
		}
		out, err := e.Sentences(ctx, text, n, lang)
		if err == nil && len(out) > 0 {
			return out, nil
		}
		if err == nil {
			err = ErrNoSentences
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, errors.New("summarize: no engine ready")
	}
	return nil, errors.Join(errs...)
}
