package narrative

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// Outcome says which text a resolution produced.
type Outcome string

const (
	OutcomeProvider Outcome = "provider"
	OutcomeLocal    Outcome = "local"
	OutcomeError    Outcome = "error"
	OutcomeEmpty    Outcome = "empty"
	OutcomeTooLong  Outcome = "too_long"
)

// Observer is told the outcome of every resolution. elapsed is zero when the
// provider was not called.
type Observer func(kind Kind, outcome Outcome, elapsed time.Duration)

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithObserver registers fn to receive resolution outcomes.
func WithObserver(fn Observer) ResolverOption {
	return func(r *Resolver) { r.observe = fn }
}

// Resolver picks between the provider and a local fallback. It never returns
// an error: an absent provider, a timeout, a failed call, an empty answer or
// an oversized answer all yield the fallback text.
type Resolver struct {
	provider Provider
	timeout  time.Duration
	logger   zerolog.Logger
	observe  Observer
}

// NewResolver wraps p. A nil p makes every resolution use the fallback.
// A non-positive timeout leaves the caller's deadline in charge.
func NewResolver(p Provider, timeout time.Duration, logger zerolog.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{provider: p, timeout: timeout, logger: logger}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Available reports whether a provider is wired in.
func (r *Resolver) Available() bool {
	return r != nil && r.provider != nil
}

// Resolve asks the provider for text. maxLen bounds the answer in runes; zero
// means unbounded. fallback is only invoked when the provider's answer is not
// used.
func (r *Resolver) Resolve(ctx context.Context, p Prompt, maxLen int, fallback func() string) string {
	if !r.Available() {
		r.report(p.Kind, OutcomeLocal, 0)
		return fallback()
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := r.provider.Complete(ctx, p)
	elapsed := time.Since(start)
	if err != nil {
		evt := r.logger.Warn()
		if errors.Is(err, ErrUnavailable) {
			evt = r.logger.Debug()
		}
		evt.Err(err).
			Str("kind", string(p.Kind)).
			Dur("elapsed", elapsed).
			Msg("narrative provider failed, using fallback")
		r.report(p.Kind, OutcomeError, elapsed)
		return fallback()
	}

	text = strings.TrimSpace(text)
	if text == "" {
		r.logger.Warn().Str("kind", string(p.Kind)).Msg("narrative provider returned empty text, using fallback")
		r.report(p.Kind, OutcomeEmpty, elapsed)
		return fallback()
	}
	if maxLen > 0 && utf8.RuneCountInString(text) > maxLen {
		r.logger.Warn().
			Str("kind", string(p.Kind)).
			Int("length", utf8.RuneCountInString(text)).
			Int("max_length", maxLen).
			Msg("narrative provider text too long, using fallback")
		r.report(p.Kind, OutcomeTooLong, elapsed)
		return fallback()
	}
	r.report(p.Kind, OutcomeProvider, elapsed)
	return text
}

func (r *Resolver) report(kind Kind, outcome Outcome, elapsed time.Duration) {
	if r != nil && r.observe != nil {
		r.observe(kind, outcome, elapsed)
	}
}
